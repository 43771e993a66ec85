package progress

import (
	"time"

	"github.com/rs/zerolog"
)

// LogManager implements Manager with throttled log lines for non-TTY
// environments (containers, CI, the HTTP service).
type LogManager struct {
	log zerolog.Logger
}

// NewLogManager creates a new log-based progress manager.
func NewLogManager(log zerolog.Logger) *LogManager {
	return &LogManager{log: log.With().Str("component", "progress").Logger()}
}

func (m *LogManager) NewTracker(index, total int, name string) Tracker {
	return &logTracker{
		log:   m.log.With().Str("tracker", name).Int("step", index+1).Int("steps", total).Logger(),
		start: time.Now(),
	}
}

func (m *LogManager) Wait() {}

type logTracker struct {
	log     zerolog.Logger
	start   time.Time
	stage   string
	lastLog time.Time
}

const logInterval = 20 * time.Second

func (t *logTracker) SetStage(stage string) {
	t.stage = stage
	t.lastLog = time.Time{}
	t.log.Info().Str("stage", stage).Msg("stage started")
}

func (t *logTracker) SetProgress(current, total int64) {
	now := time.Now()
	if now.Sub(t.lastLog) < logInterval && (total == 0 || current < total) {
		return
	}
	t.lastLog = now
	ev := t.log.Info().Str("stage", t.stage).Int64("current", current)
	if total > 0 {
		ev = ev.Int64("total", total).Float64("pct", float64(current)/float64(total)*100)
	}
	ev.Msg("progress")
}

func (t *logTracker) SetCounter(name string, value int64) {
	if time.Since(t.lastLog) < logInterval {
		return
	}
	t.lastLog = time.Now()
	t.log.Info().Str("stage", t.stage).Int64(name, value).Msg("progress")
}

func (t *logTracker) Done() {
	t.log.Info().Str("elapsed", time.Since(t.start).Truncate(time.Millisecond).String()).Msg("finished")
}
