package toast

import (
	"sync"
	"time"

	"github.com/scienceol/chemdash/pkg/core/notify"
)

// Publisher is told about every show and clear, outside the toast lock.
type Publisher func(action notify.Action, n notify.Notification)

// Toast holds at most one notification and clears it a fixed duration after
// the last Show. There is no queue: a new Show replaces the current message.
type Toast struct {
	mu       sync.Mutex
	duration time.Duration
	current  *notify.Notification
	seq      uint64
	timer    *time.Timer
	stopped  bool
	publish  Publisher
}

func New(duration time.Duration, publish Publisher) *Toast {
	if publish == nil {
		publish = func(notify.Action, notify.Notification) {}
	}
	return &Toast{duration: duration, publish: publish}
}

func (t *Toast) Show(message string, severity notify.Severity) notify.Notification {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return notify.Notification{}
	}
	t.seq++
	n := notify.Notification{ID: t.seq, Message: message, Severity: severity}
	t.current = &n
	if t.timer != nil {
		t.timer.Stop()
	}
	id := n.ID
	t.timer = time.AfterFunc(t.duration, func() { t.expire(id) })
	t.mu.Unlock()

	t.publish(notify.NotificationShown, n)
	return n
}

// expire clears the notification only if it is still the one that armed the
// timer; Stop cannot recall a callback that already started.
func (t *Toast) expire(id uint64) {
	t.mu.Lock()
	if t.current == nil || t.current.ID != id {
		t.mu.Unlock()
		return
	}
	n := *t.current
	t.current = nil
	t.timer = nil
	t.mu.Unlock()

	t.publish(notify.NotificationCleared, n)
}

func (t *Toast) Dismiss() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	if t.current == nil {
		t.mu.Unlock()
		return
	}
	n := *t.current
	t.current = nil
	t.mu.Unlock()

	t.publish(notify.NotificationCleared, n)
}

func (t *Toast) Current() *notify.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.current == nil {
		return nil
	}
	n := *t.current
	return &n
}

// Stop cancels the pending clear; later Shows are ignored.
func (t *Toast) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
