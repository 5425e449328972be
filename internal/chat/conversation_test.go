package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/internal/api"
)

var t0 = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func history(n int) []api.ConversationMessage {
	out := make([]api.ConversationMessage, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, api.ConversationMessage{
			ID:         "h" + string(rune('a'+i)),
			Message:    "message",
			IsFromUser: i%2 == 0,
			CreatedAt:  t0.Add(time.Duration(i) * time.Minute),
		})
	}
	return out
}

func exchange(text string) *api.SendMessageResult {
	return &api.SendMessageResult{
		UserMessage: api.ConversationMessage{ID: "u1", Message: text, IsFromUser: true, Sentiment: "negative", CreatedAt: t0.Add(time.Hour)},
		AIMessage:   api.ConversationMessage{ID: "a1", Message: "Try the 4-7-8 breathing exercise.", CreatedAt: t0.Add(time.Hour + time.Second)},
		Sentiment:   api.SentimentResult{Sentiment: "negative", Score: -0.5},
	}
}

type harness struct {
	conv      *Conversation
	svc       *fakeMessages
	notes     *recordingNotifier
	refresher *countingRefresher

	mu     sync.Mutex
	events []Event
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		svc:       newFakeMessages(),
		notes:     &recordingNotifier{},
		refresher: &countingRefresher{},
	}
	h.conv = NewConversation(h.svc, h.notes, zerolog.Nop(),
		WithRefresher(h.refresher),
		WithClock(func() time.Time { return t0.Add(30 * time.Minute) }),
		WithListener(func(ev Event) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.events = append(h.events, ev)
		}),
	)
	return h
}

func (h *harness) kinds() []EventKind {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]EventKind, 0, len(h.events))
	for _, ev := range h.events {
		out = append(out, ev.Kind)
	}
	return out
}

func (h *harness) event(kind EventKind) (Event, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range h.events {
		if ev.Kind == kind {
			return ev, true
		}
	}
	return Event{}, false
}

func keys(msgs []Message) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Key())
	}
	return out
}

func TestConversation_LoadMapsServerShape(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = []api.ConversationMessage{
		{ID: "m1", Message: "I feel sad", IsFromUser: true, Sentiment: "negative", CreatedAt: t0},
		{ID: "m2", Message: "I'm listening.", IsFromUser: false, CreatedAt: t0.Add(time.Second)},
	}

	require.NoError(t, h.conv.Load(context.Background(), "s1"))

	view := h.conv.View()
	assert.Equal(t, "s1", view.SessionID)
	assert.False(t, view.Loading)
	require.Len(t, view.Messages, 2)

	first := view.Messages[0].(Persisted)
	assert.Equal(t, "m1", first.ID)
	assert.Equal(t, RoleUser, first.Type)
	assert.Equal(t, "I feel sad", first.Content)
	assert.Equal(t, "negative", first.Emotion)
	assert.Equal(t, t0, first.Timestamp)

	second := view.Messages[1].(Persisted)
	assert.Equal(t, RoleAssistant, second.Type)

	assert.Equal(t, []EventKind{EventLoaded}, h.kinds())
}

func TestConversation_LoadIsIdempotent(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = history(5)

	require.NoError(t, h.conv.Load(context.Background(), "s1"))
	first := h.conv.View().Messages
	require.NoError(t, h.conv.Load(context.Background(), "s1"))
	second := h.conv.View().Messages

	assert.Equal(t, first, second)
}

func TestConversation_LoadReplacesList(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = history(3)
	h.svc.histories["s2"] = history(1)

	require.NoError(t, h.conv.Load(context.Background(), "s1"))
	require.NoError(t, h.conv.Load(context.Background(), "s2"))

	view := h.conv.View()
	assert.Equal(t, "s2", view.SessionID)
	assert.Len(t, view.Messages, 1)
}

func TestConversation_LoadFailureClearsAndNotifies(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = history(2)
	require.NoError(t, h.conv.Load(context.Background(), "s1"))

	h.svc.loadErr["s1"] = &api.Error{StatusCode: 404, Message: "Session not found"}
	err := h.conv.Load(context.Background(), "s1")
	require.Error(t, err)

	view := h.conv.View()
	assert.Empty(t, view.Messages)
	assert.False(t, view.Loading)
	require.Len(t, h.notes.all(), 1)
	assert.Equal(t, Notice{Title: TitleHistoryFailed, Detail: "Session not found"}, h.notes.all()[0])
	assert.Equal(t, []EventKind{EventLoaded, EventLoadFailed}, h.kinds())
}

func TestConversation_StaleLoadIsDiscarded(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["slow"] = history(4)
	h.svc.histories["fast"] = history(1)
	gate := make(chan struct{})
	h.svc.gate["slow"] = gate

	slowDone := make(chan error, 1)
	go func() {
		slowDone <- h.conv.Load(context.Background(), "slow")
	}()

	// Wait until the slow request is in flight
	require.Eventually(t, func() bool {
		h.svc.mu.Lock()
		defer h.svc.mu.Unlock()
		return len(h.svc.loads) == 1
	}, time.Second, time.Millisecond)

	require.NoError(t, h.conv.Load(context.Background(), "fast"))
	close(gate)

	assert.ErrorIs(t, <-slowDone, ErrSuperseded)

	view := h.conv.View()
	assert.Equal(t, "fast", view.SessionID)
	assert.Len(t, view.Messages, 1)
	assert.False(t, view.Loading)
}

func TestConversation_SubmitSuccess(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = history(2)
	h.svc.result = exchange("I feel anxious")
	require.NoError(t, h.conv.Load(context.Background(), "s1"))
	before := h.conv.View().Messages

	sent, err := h.conv.Send(context.Background(), "  I feel anxious  ")
	require.True(t, sent)
	require.NoError(t, err)

	// At submission: exactly one pending user message appended
	insert, ok := h.event(EventOptimisticInsert)
	require.True(t, ok)
	require.Len(t, insert.View.Messages, len(before)+1)
	assert.Equal(t, before, insert.View.Messages[:len(before)])
	pending, ok := insert.View.Messages[len(before)].(Pending)
	require.True(t, ok)
	assert.Equal(t, RoleUser, pending.Type)
	assert.Equal(t, "I feel anxious", pending.Content)
	assert.Equal(t, t0.Add(30*time.Minute), pending.Timestamp)
	assert.Contains(t, pending.TempID, "temp-")
	assert.Empty(t, insert.View.Input)
	assert.Equal(t, Sending, insert.View.Status)

	// After settlement: prior messages, then u1 and a1
	view := h.conv.View()
	assert.Equal(t, Idle, view.Status)
	require.Len(t, view.Messages, len(before)+2)
	assert.Equal(t, before, view.Messages[:len(before)])
	assert.Equal(t, []string{"ha", "hb", "u1", "a1"}, keys(view.Messages))

	user := view.Messages[2].(Persisted)
	assert.Equal(t, RoleUser, user.Type)
	assert.Equal(t, "negative", user.Emotion)
	assistant := view.Messages[3].(Persisted)
	assert.Equal(t, RoleAssistant, assistant.Type)

	for _, m := range view.Messages {
		assert.False(t, IsPending(m))
	}

	assert.Equal(t, []sendCall{{Message: "I feel anxious", SessionID: "s1"}}, h.svc.sendCalls())
	assert.Equal(t, 1, h.refresher.count())
	assert.Empty(t, h.notes.all())
	assert.Equal(t, []EventKind{EventLoaded, EventOptimisticInsert, EventSettled}, h.kinds())
}

func TestConversation_SubmitFailureRollsBack(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantDetail string
	}{
		{"server detail", &api.Error{StatusCode: 429, Message: "Too many messages, slow down"}, "Too many messages, slow down"},
		{"transport error", errors.New("context deadline exceeded"), FallbackSend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.svc.histories["s1"] = history(3)
			h.svc.sendErr = tt.err
			require.NoError(t, h.conv.Load(context.Background(), "s1"))
			before := h.conv.View()

			sent, err := h.conv.Send(context.Background(), "hello")
			assert.True(t, sent)
			require.Error(t, err)

			after := h.conv.View()
			assert.Equal(t, before.Messages, after.Messages)
			assert.Equal(t, Idle, after.Status)
			assert.Empty(t, after.Input, "typed text is not restored")
			assert.Zero(t, h.refresher.count())

			require.Len(t, h.notes.all(), 1)
			assert.Equal(t, Notice{Title: TitleSendFailed, Detail: tt.wantDetail}, h.notes.all()[0])
			assert.Equal(t, []EventKind{EventLoaded, EventOptimisticInsert, EventRolledBack}, h.kinds())
		})
	}
}

func TestConversation_FailureEventPrecedesNotice(t *testing.T) {
	var (
		mu    sync.Mutex
		order []string
	)
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}

	svc := newFakeMessages()
	svc.histories["s1"] = history(2)
	conv := NewConversation(svc,
		NotifierFunc(func(n Notice) { record("notice:" + n.Title) }),
		zerolog.Nop(),
		WithListener(func(ev Event) {
			if ev.Kind == EventRolledBack || ev.Kind == EventLoadFailed {
				assert.Equal(t, Idle, ev.View.Status)
			}
			record(ev.Kind.String())
		}),
	)

	require.NoError(t, conv.Load(context.Background(), "s1"))
	svc.sendErr = errors.New("connection reset")
	_, err := conv.Send(context.Background(), "hello")
	require.Error(t, err)

	svc.loadErr["s2"] = errors.New("connection reset")
	require.Error(t, conv.Load(context.Background(), "s2"))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		EventLoaded.String(),
		EventOptimisticInsert.String(),
		EventRolledBack.String(),
		"notice:" + TitleSendFailed,
		EventLoadFailed.String(),
		"notice:" + TitleHistoryFailed,
	}, order)
}

func TestConversation_SubmitGuards(t *testing.T) {
	t.Run("whitespace only", func(t *testing.T) {
		h := newHarness(t)
		h.svc.histories["s1"] = history(1)
		require.NoError(t, h.conv.Load(context.Background(), "s1"))
		before := h.conv.View()

		h.conv.SetInput("   ")
		sent, err := h.conv.Submit(context.Background())
		assert.False(t, sent)
		assert.NoError(t, err)

		after := h.conv.View()
		assert.Equal(t, before.Messages, after.Messages)
		assert.Equal(t, "   ", after.Input)
		assert.Empty(t, h.svc.sendCalls())
		assert.Equal(t, []EventKind{EventLoaded}, h.kinds())
	})

	t.Run("no active session", func(t *testing.T) {
		h := newHarness(t)
		sent, err := h.conv.Send(context.Background(), "hello")
		assert.False(t, sent)
		assert.NoError(t, err)
		assert.Empty(t, h.svc.sendCalls())
		assert.Empty(t, h.conv.View().Messages)
	})

	t.Run("send in flight", func(t *testing.T) {
		h := newHarness(t)
		h.svc.histories["s1"] = history(1)
		h.svc.result = exchange("first")
		gate := make(chan struct{})
		h.svc.sendGate = gate
		require.NoError(t, h.conv.Load(context.Background(), "s1"))

		done := make(chan error, 1)
		go func() {
			_, err := h.conv.Send(context.Background(), "first")
			done <- err
		}()

		require.Eventually(t, func() bool {
			return h.conv.View().Status == Sending
		}, time.Second, time.Millisecond)

		// Mid-flight: exactly one pending message is visible
		mid := h.conv.View()
		require.Len(t, mid.Messages, 2)
		assert.True(t, IsPending(mid.Messages[1]))

		sent, err := h.conv.Send(context.Background(), "second")
		assert.False(t, sent)
		assert.NoError(t, err)
		assert.Equal(t, "second", h.conv.View().Input)

		close(gate)
		require.NoError(t, <-done)
		assert.Len(t, h.svc.sendCalls(), 1)
		assert.Equal(t, []string{"ha", "u1", "a1"}, keys(h.conv.View().Messages))
	})
}

func TestConversation_TempIDsAreUnique(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = nil
	h.svc.sendErr = errors.New("offline")
	require.NoError(t, h.conv.Load(context.Background(), "s1"))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		_, _ = h.conv.Send(context.Background(), "again")
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ev := range h.events {
		if ev.Kind != EventOptimisticInsert {
			continue
		}
		require.Len(t, ev.View.Messages, 1)
		id := ev.View.Messages[0].Key()
		assert.False(t, seen[id], "temp id %s reused", id)
		seen[id] = true
	}
	assert.Len(t, seen, 3)
}

func TestConversation_SessionSwitchDuringSend(t *testing.T) {
	h := newHarness(t)
	h.svc.histories["s1"] = history(1)
	h.svc.histories["s2"] = history(2)
	h.svc.result = exchange("hi")
	gate := make(chan struct{})
	h.svc.sendGate = gate
	require.NoError(t, h.conv.Load(context.Background(), "s1"))

	done := make(chan error, 1)
	go func() {
		_, err := h.conv.Send(context.Background(), "hi")
		done <- err
	}()
	require.Eventually(t, func() bool {
		return h.conv.View().Status == Sending
	}, time.Second, time.Millisecond)

	require.NoError(t, h.conv.Load(context.Background(), "s2"))
	close(gate)
	require.NoError(t, <-done)

	// The reply belongs to s1 and must not leak into s2
	view := h.conv.View()
	assert.Equal(t, "s2", view.SessionID)
	assert.Equal(t, []string{"ha", "hb"}, keys(view.Messages))
	assert.Equal(t, Idle, view.Status)
}

func TestConversation_RefreshFailureStillSettles(t *testing.T) {
	h := newHarness(t)
	h.refresher.err = errors.New("offline")
	h.svc.histories["s1"] = nil
	h.svc.result = exchange("hi")
	require.NoError(t, h.conv.Load(context.Background(), "s1"))

	sent, err := h.conv.Send(context.Background(), "hi")
	assert.True(t, sent)
	assert.NoError(t, err)
	assert.Equal(t, []string{"u1", "a1"}, keys(h.conv.View().Messages))
	assert.Empty(t, h.notes.all())
}

func TestView_Empty(t *testing.T) {
	assert.True(t, View{}.Empty())
	assert.False(t, View{Loading: true}.Empty())
	assert.False(t, View{Messages: []Message{Persisted{ID: "x"}}}.Empty())
}

func TestReconcile(t *testing.T) {
	list := []Message{
		Persisted{ID: "p1"},
		Pending{TempID: "temp-1"},
		Persisted{ID: "p2"},
	}

	out := reconcile(list, "temp-1", Persisted{ID: "u"}, Persisted{ID: "a"})
	assert.Equal(t, []string{"p1", "p2", "u", "a"}, keys(out))

	// Unknown temp ids leave the list untouched
	out = reconcile(list, "temp-9")
	assert.Equal(t, keys(list), keys(out))

	// The input slice is not modified
	assert.Equal(t, []string{"p1", "temp-1", "p2"}, keys(list))
}
