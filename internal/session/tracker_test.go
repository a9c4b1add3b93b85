package session

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_SignInThenOut(t *testing.T) {
	tr := NewTracker(10*time.Millisecond, logging.Discard())
	defer tr.Close()

	rec := &recorder{}
	sub := tr.OnAuthStateChange(rec.listener)
	defer sub.Unsubscribe()

	tr.SignedIn(*demoSession("1"))
	require.NotNil(t, tr.User())
	assert.Equal(t, "1", tr.User().ID)

	tr.SignedOut()
	assert.Nil(t, tr.User(), "the slot changes before any listener runs")

	require.Eventually(t, func() bool {
		events, _ := rec.snapshot()
		return len(events) == 2
	}, time.Second, 5*time.Millisecond)

	events, users := rec.snapshot()
	assert.Equal(t, []AuthEvent{SignedIn, SignedOut}, events)
	assert.Equal(t, []string{"1", ""}, users)
}
