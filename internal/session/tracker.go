package session

import (
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/models"
)

// Tracker couples a State with its Notifier: every sign-in or sign-out
// updates the slot synchronously and schedules the matching event.
type Tracker struct {
	*State
	notifier *Notifier
}

func NewTracker(delay time.Duration, logger logging.Logger) *Tracker {
	st := NewState()
	return &Tracker{
		State:    st,
		notifier: NewNotifier(st.Listeners, delay, logger),
	}
}

func (t *Tracker) SignedIn(sess models.Session) {
	t.Set(sess)
	t.notifier.Schedule(SignedIn, &sess)
}

func (t *Tracker) SignedOut() {
	t.Clear()
	t.notifier.Schedule(SignedOut, nil)
}

func (t *Tracker) OnAuthStateChange(l Listener) *Subscription {
	return t.Listeners.Add(l)
}

// Close stops notification delivery.
func (t *Tracker) Close() {
	t.notifier.Close()
}
