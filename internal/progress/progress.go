package progress

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker tracks progress for a single batch phase.
type Tracker interface {
	SetStage(stage string)
	SetProgress(current, total int64)
	SetCounter(name string, value int64)
	Done()
}

// Manager creates trackers for the phases of a run.
type Manager interface {
	NewTracker(index, total int, name string) Tracker
	Wait()
}

// Mode selects a Manager implementation.
type Mode string

const (
	ModeAuto Mode = "auto"
	ModeBar  Mode = "bar"
	ModeLog  Mode = "log"
	ModeNone Mode = "none"
)

// New returns the Manager for mode. ModeAuto draws bars when stderr is a
// terminal and logs otherwise.
func New(mode Mode, log zerolog.Logger) Manager {
	switch mode {
	case ModeBar:
		return NewMPBManager()
	case ModeLog:
		return NewLogManager(log)
	case ModeNone:
		return &NoopManager{}
	default:
		if isatty.IsTerminal(os.Stderr.Fd()) {
			return NewMPBManager()
		}
		return NewLogManager(log)
	}
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager creates a new mpb-based progress manager.
func NewMPBManager() *MPBManager {
	p := mpb.New(mpb.WithWidth(60), mpb.WithOutput(os.Stderr))
	return &MPBManager{container: p}
}

// NewTracker adds a bar for one phase.
func (m *MPBManager) NewTracker(index, total int, name string) Tracker {
	stageVal := &atomic.Value{}
	stageVal.Store("")
	counters := &sync.Map{}
	bar := m.container.AddBar(100,
		mpb.PrependDecorators(
			decor.Name(fmt.Sprintf("[%d/%d] %s ", index+1, total, name), decor.WCSyncSpaceR),
			decor.Percentage(decor.WCSyncSpace),
		),
		mpb.AppendDecorators(
			decor.Any(func(s decor.Statistics) string {
				out := stageVal.Load().(string)
				counters.Range(func(k, v any) bool {
					out += fmt.Sprintf("  %s=%d", k, v)
					return true
				})
				return out
			}),
		),
	)
	return &mpbTracker{bar: bar, stage: stageVal, counters: counters}
}

// Wait waits for all progress bars to finish.
func (m *MPBManager) Wait() {
	m.container.Wait()
}

type mpbTracker struct {
	bar      *mpb.Bar
	stage    *atomic.Value
	counters *sync.Map
}

func (t *mpbTracker) SetStage(stage string) {
	t.stage.Store(stage)
}

func (t *mpbTracker) SetProgress(current, total int64) {
	if total > 0 {
		pct := int64(float64(current) / float64(total) * 100)
		t.bar.SetCurrent(pct)
	}
}

func (t *mpbTracker) SetCounter(name string, value int64) {
	t.counters.Store(name, value)
}

func (t *mpbTracker) Done() {
	t.bar.SetCurrent(100)
	t.bar.Abort(false)
}

// NoopManager discards progress. It keeps the last counters reported so
// tests can inspect them.
type NoopManager struct {
	mu       sync.Mutex
	Counters map[string]int64
	Finished int
}

func (m *NoopManager) NewTracker(index, total int, name string) Tracker {
	return &noopTracker{mgr: m}
}

func (m *NoopManager) Wait() {}

type noopTracker struct {
	mgr *NoopManager
}

func (t *noopTracker) SetStage(stage string)            {}
func (t *noopTracker) SetProgress(current, total int64) {}

func (t *noopTracker) SetCounter(name string, value int64) {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	if t.mgr.Counters == nil {
		t.mgr.Counters = make(map[string]int64)
	}
	t.mgr.Counters[name] = value
}

func (t *noopTracker) Done() {
	t.mgr.mu.Lock()
	defer t.mgr.mu.Unlock()
	t.mgr.Finished++
}
