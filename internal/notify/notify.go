// Package notify carries the transient user-facing notices ("toasts") raised
// while talking to the metadata provider.
package notify

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Level is the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient notification.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Notifier receives notices. Implementations must be safe for concurrent use.
type Notifier interface {
	Notify(level Level, message string)
}

// Nop discards every notice.
type Nop struct{}

func (Nop) Notify(Level, string) {}

// LogNotifier writes notices to a logrus entry.
type LogNotifier struct {
	Entry *logrus.Entry
}

func (n LogNotifier) Notify(level Level, message string) {
	if n.Entry == nil {
		return
	}
	switch level {
	case LevelError:
		n.Entry.Error(message)
	case LevelWarning:
		n.Entry.Warn(message)
	default:
		n.Entry.Info(message)
	}
}

// Recorder keeps the most recent notices in memory so an API can hand them to the UI.
type Recorder struct {
	mu      sync.Mutex
	max     int
	notices []Notice
	now     func() time.Time
}

// NewRecorder creates a Recorder that keeps at most max notices (minimum 1).
func NewRecorder(max int) *Recorder {
	if max < 1 {
		max = 1
	}
	return &Recorder{max: max, now: time.Now}
}

func (r *Recorder) Notify(level Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Message: message, At: r.now()})
	if over := len(r.notices) - r.max; over > 0 {
		r.notices = append([]Notice(nil), r.notices[over:]...)
	}
}

// Recent returns a copy of the retained notices, oldest first.
func (r *Recorder) Recent() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Drain returns the retained notices and forgets them.
func (r *Recorder) Drain() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.notices
	r.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}

// Multi fans a notice out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(level Level, message string) {
	for _, n := range m {
		if n != nil {
			n.Notify(level, message)
		}
	}
}
