package audit

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"
)

// LogSink writes audit events as JSON lines, one object per event.
// It is the default sink when no audit database is configured.
type LogSink struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewLogSink creates a sink writing to w (typically os.Stdout).
func NewLogSink(w io.Writer) *LogSink {
	return &LogSink{enc: json.NewEncoder(w)}
}

var _ Sink = (*LogSink)(nil)

// Record encodes the event as a single JSON line.
func (s *LogSink) Record(_ context.Context, ev Event) error {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enc.Encode(map[string]any{
		"ts":          ev.At.Format(time.RFC3339Nano),
		"level":       "info",
		"component":   "audit",
		"action":      ev.Action,
		"document_id": ev.DocumentID,
		"actor_id":    ev.ActorID,
		"actor_name":  ev.ActorName,
		"detail":      ev.Detail,
	})
}
