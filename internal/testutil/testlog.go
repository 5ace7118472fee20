// Package testlog captures log output for assertions in tests.
package testlog

import (
	"sync"

	"bookbridge-delivery/internal/logx"
)

// Entry is one captured log call.
type Entry struct {
	Level  string
	Msg    string
	Fields []logx.Field
}

// Recorder collects entries from every logger bound to it.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// New returns an empty Recorder.
func New() *Recorder { return &Recorder{} }

// Logger returns a logx.Logger that records into the Recorder.
func (r *Recorder) Logger() logx.Logger {
	return capture{rec: r}
}

// Entries returns a snapshot of everything recorded so far.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

func (r *Recorder) record(level, msg string, fields []logx.Field) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Entry{
		Level:  level,
		Msg:    msg,
		Fields: append([]logx.Field(nil), fields...),
	})
}

type capture struct {
	rec  *Recorder
	with []logx.Field
}

func (c capture) Debug(msg string, f ...logx.Field) { c.rec.record("debug", msg, c.merge(f)) }
func (c capture) Info(msg string, f ...logx.Field)  { c.rec.record("info", msg, c.merge(f)) }
func (c capture) Warn(msg string, f ...logx.Field)  { c.rec.record("warn", msg, c.merge(f)) }
func (c capture) Error(msg string, f ...logx.Field) { c.rec.record("error", msg, c.merge(f)) }

func (c capture) With(f ...logx.Field) logx.Logger {
	return capture{rec: c.rec, with: c.merge(f)}
}

func (c capture) Sync() error { return nil }

func (c capture) merge(f []logx.Field) []logx.Field {
	out := make([]logx.Field, 0, len(c.with)+len(f))
	out = append(out, c.with...)
	return append(out, f...)
}

var _ logx.Logger = capture{}
