// Package debug traces the layout and raster phases of a render.
//
// Tracing is off unless SetEnabled(true) is called (the CLI does this for
// --debug, --debug-file or BDFSURFACE_DEBUG=1). A disabled process gets nil
// sessions, and every Session method is a no-op on nil, so the renderer can
// emit unconditionally behind a nil check. Events go to a Sink as JSON Lines
// by default or in a human-readable form.
package debug

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strconv"
	"sync/atomic"
	"time"
)

// Environment variables recognised by InitFromEnv and PrettyFromEnv.
const (
	EnvDebug       = "BDFSURFACE_DEBUG"
	EnvDebugPretty = "BDFSURFACE_DEBUG_PRETTY"
)

// traceVersion is bumped when event payloads change shape.
const traceVersion = "1"

var enabled atomic.Bool

// SetEnabled turns tracing on or off for the whole process.
func SetEnabled(on bool) {
	enabled.Store(on)
}

// Enabled reports whether tracing is on.
func Enabled() bool {
	return enabled.Load()
}

// InitFromEnv enables tracing when BDFSURFACE_DEBUG=1.
// It never disables tracing that was turned on explicitly.
func InitFromEnv() {
	if os.Getenv(EnvDebug) == "1" {
		SetEnabled(true)
	}
}

// PrettyFromEnv reports whether BDFSURFACE_DEBUG_PRETTY=1 asks for the pretty sink.
func PrettyFromEnv() bool {
	return os.Getenv(EnvDebugPretty) == "1"
}

// Session is the trace of one render call. It is not safe for concurrent use.
type Session struct {
	id      string
	sink    Sink
	started time.Time
	events  int
}

// NewSession starts a session writing to sink and emits session/Start.
// It returns nil when tracing is disabled or sink is nil.
func NewSession(sink Sink) *Session {
	if !Enabled() {
		return nil
	}
	return Open(sink)
}

// Open starts a session on sink whatever the process-wide switch says.
// It returns nil when sink is nil.
func Open(sink Sink) *Session {
	if sink == nil {
		return nil
	}
	s := &Session{
		id:      newSessionID(),
		sink:    sink,
		started: time.Now(),
	}
	s.Emit("session", "Start", SessionStartData{Version: traceVersion})
	return s
}

// SessionID returns the random identifier stamped on every event.
func (s *Session) SessionID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Events returns how many events the session has emitted so far.
func (s *Session) Events() int {
	if s == nil {
		return 0
	}
	return s.events
}

// Emit writes one event. Sink errors are dropped: tracing must never fail a render.
func (s *Session) Emit(phase, event string, data interface{}) {
	if s == nil {
		return
	}
	s.events++
	//nolint:errcheck // trace output is best effort
	s.sink.Write(Event{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		SessionID: s.id,
		Phase:     phase,
		Event:     event,
		Data:      data,
	})
}

// Close emits session/End and flushes the sink.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.Emit("session", "End", SessionEndData{
		ElapsedMs: time.Since(s.started).Milliseconds(),
		Events:    s.events + 1,
	})
	return s.sink.Close()
}

// newSessionID returns 8 hex characters, from crypto/rand when it works.
func newSessionID() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err == nil {
		return hex.EncodeToString(b)
	}
	id := strconv.FormatUint(uint64(time.Now().UnixNano())&0xffffffff, 16)
	for len(id) < 8 {
		id = "0" + id
	}
	return id
}

// Event is the envelope written for every trace record.
type Event struct {
	Timestamp string      `json:"ts"`
	SessionID string      `json:"session_id"`
	Phase     string      `json:"phase"`
	Event     string      `json:"event"`
	Data      interface{} `json:"data"`
}
