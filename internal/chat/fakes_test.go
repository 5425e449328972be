package chat

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"mindscape/internal/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// fakeSessions is an in-memory SessionService
type fakeSessions struct {
	mu          sync.Mutex
	sessions    []api.ChatSession
	listErr     error
	createErr   error
	listCalls   int
	createCalls int
	nextID      int
}

func (f *fakeSessions) ListSessions(ctx context.Context) ([]api.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]api.ChatSession, len(f.sessions))
	copy(out, f.sessions)
	return out, nil
}

func (f *fakeSessions) CreateSession(ctx context.Context) (api.ChatSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	if f.createErr != nil {
		return api.ChatSession{}, f.createErr
	}
	f.nextID++
	s := api.ChatSession{ID: "new-" + string(rune('0'+f.nextID)), Title: "New chat", CreatedAt: time.Now()}
	f.sessions = append([]api.ChatSession{s}, f.sessions...)
	return s, nil
}

func (f *fakeSessions) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listCalls, f.createCalls
}

// recordingNav records navigation calls
type recordingNav struct {
	mu       sync.Mutex
	replaced []string
	pushed   []string
}

func (n *recordingNav) Replace(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replaced = append(n.replaced, id)
}

func (n *recordingNav) Push(id string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushed = append(n.pushed, id)
}

// recordingNotifier records notices
type recordingNotifier struct {
	mu      sync.Mutex
	notices []Notice
}

func (r *recordingNotifier) Notify(n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recordingNotifier) all() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// sendCall is one SendMessage invocation seen by fakeMessages
type sendCall struct {
	Message   string
	SessionID string
}

// fakeMessages serves canned histories. When gate is set for a session,
// GetConversation blocks until a value arrives on it. sendGate does the
// same for SendMessage.
type fakeMessages struct {
	mu        sync.Mutex
	histories map[string][]api.ConversationMessage
	loadErr   map[string]error
	gate      map[string]chan struct{}
	sendGate  chan struct{}
	sendErr   error
	result    *api.SendMessageResult
	sends     []sendCall
	loads     []string
}

func newFakeMessages() *fakeMessages {
	return &fakeMessages{
		histories: map[string][]api.ConversationMessage{},
		loadErr:   map[string]error{},
		gate:      map[string]chan struct{}{},
	}
}

func (f *fakeMessages) GetConversation(ctx context.Context, sessionID string) ([]api.ConversationMessage, error) {
	f.mu.Lock()
	f.loads = append(f.loads, sessionID)
	gate := f.gate[sessionID]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.loadErr[sessionID]; err != nil {
		return nil, err
	}
	h := f.histories[sessionID]
	out := make([]api.ConversationMessage, len(h))
	copy(out, h)
	return out, nil
}

func (f *fakeMessages) SendMessage(ctx context.Context, message, sessionID string) (*api.SendMessageResult, error) {
	f.mu.Lock()
	f.sends = append(f.sends, sendCall{Message: message, SessionID: sessionID})
	gate := f.sendGate
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.result, nil
}

func (f *fakeMessages) sendCalls() []sendCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sendCall, len(f.sends))
	copy(out, f.sends)
	return out
}

// countingRefresher counts Refresh calls
type countingRefresher struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRefresher) Refresh(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.err
}

func (r *countingRefresher) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
