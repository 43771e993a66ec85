package db

import (
	"github.com/jackc/pgx/v5"

	"github.com/gyeh/chargeflow/internal/model"
)

// ChannelSource implements pgx.CopyFromSource over a channel of result
// records, so rows can be produced while COPY is streaming.
type ChannelSource struct {
	ch      <-chan *model.ResultRecord
	current *model.ResultRecord
	count   int64
}

// NewChannelSource creates a CopyFromSource backed by ch.
func NewChannelSource(ch <-chan *model.ResultRecord) *ChannelSource {
	return &ChannelSource{ch: ch}
}

// Next advances to the next record. It returns false once ch is closed.
func (s *ChannelSource) Next() bool {
	rec, ok := <-s.ch
	if !ok {
		return false
	}
	s.current = rec
	s.count++
	return true
}

// Values returns the current record in model.ResultColumns order.
func (s *ChannelSource) Values() ([]any, error) {
	return s.current.CopyValues(), nil
}

func (s *ChannelSource) Err() error {
	return nil
}

// Count is the number of records handed to COPY so far.
func (s *ChannelSource) Count() int64 {
	return s.count
}

var _ pgx.CopyFromSource = (*ChannelSource)(nil)
