package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"mindscape/internal/api"
	"mindscape/internal/logging"
)

// ErrSuperseded is returned by Load when a newer Load replaced its result
var ErrSuperseded = errors.New("conversation load superseded")

// MessageService reads history and sends messages
type MessageService interface {
	GetConversation(ctx context.Context, sessionID string) ([]api.ConversationMessage, error)
	SendMessage(ctx context.Context, message, sessionID string) (*api.SendMessageResult, error)
}

// SessionRefresher re-fetches the session list after an exchange
type SessionRefresher interface {
	Refresh(ctx context.Context) error
}

// Status is the composer state
type Status int

const (
	// Idle accepts input
	Idle Status = iota
	// Sending waits for the server; submit is disabled
	Sending
)

func (s Status) String() string {
	if s == Sending {
		return "sending"
	}
	return "idle"
}

// EventKind names a visible change to the conversation
type EventKind int

const (
	EventLoaded EventKind = iota
	EventLoadFailed
	EventOptimisticInsert
	EventSettled
	EventRolledBack
)

func (k EventKind) String() string {
	switch k {
	case EventLoaded:
		return "loaded"
	case EventLoadFailed:
		return "load_failed"
	case EventOptimisticInsert:
		return "optimistic_insert"
	case EventSettled:
		return "settled"
	case EventRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Event is delivered to listeners after each visible change
type Event struct {
	Kind EventKind
	View View
}

// View is a copy of the conversation state for rendering
type View struct {
	SessionID string
	Messages  []Message
	Loading   bool
	Status    Status
	Input     string
}

// Empty reports whether a loaded session has no messages yet
func (v View) Empty() bool {
	return !v.Loading && len(v.Messages) == 0
}

// Conversation loads a session's messages and runs the send cycle:
// idle -> sending -> settled | failed -> idle.
type Conversation struct {
	svc       MessageService
	refresher SessionRefresher
	notifier  Notifier
	logger    zerolog.Logger
	now       func() time.Time
	listeners []func(Event)

	mu         sync.Mutex
	sessionID  string
	generation uint64
	loading    bool
	messages   []Message
	status     Status
	input      string
	tempSeq    uint64
}

// ConversationOption customises a Conversation
type ConversationOption func(*Conversation)

// WithRefresher re-fetches sessions after every successful send
func WithRefresher(r SessionRefresher) ConversationOption {
	return func(c *Conversation) { c.refresher = r }
}

// WithClock replaces time.Now for pending message timestamps
func WithClock(now func() time.Time) ConversationOption {
	return func(c *Conversation) { c.now = now }
}

// WithListener registers a callback for every Event. Listeners run on the
// goroutine that caused the change, outside the conversation lock.
func WithListener(fn func(Event)) ConversationOption {
	return func(c *Conversation) { c.listeners = append(c.listeners, fn) }
}

// NewConversation creates an idle conversation with no session
func NewConversation(svc MessageService, notifier Notifier, logger zerolog.Logger, opts ...ConversationOption) *Conversation {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	c := &Conversation{
		svc:      svc,
		notifier: notifier,
		logger:   logger.With().Str(logging.FieldComponent, "conversation").Logger(),
		now:      time.Now,
		messages: []Message{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load replaces the displayed messages with the history of sessionID. Only
// the most recent Load may write; an older one that resolves late returns
// ErrSuperseded and changes nothing.
func (c *Conversation) Load(ctx context.Context, sessionID string) error {
	c.mu.Lock()
	c.generation++
	gen := c.generation
	c.sessionID = sessionID
	c.loading = true
	c.mu.Unlock()

	msgs, err := c.svc.GetConversation(ctx, sessionID)

	c.mu.Lock()
	if gen != c.generation {
		c.mu.Unlock()
		c.logger.Debug().Str(logging.FieldSessionID, sessionID).Msg("discarding stale history")
		return ErrSuperseded
	}
	c.loading = false
	if err != nil {
		c.messages = []Message{}
		view := c.viewLocked()
		c.mu.Unlock()

		c.logger.Warn().Err(err).Str(logging.FieldSessionID, sessionID).Msg("loading history failed")
		c.emit(Event{Kind: EventLoadFailed, View: view})
		c.notifier.Notify(Notice{Title: TitleHistoryFailed, Detail: api.Detail(err, FallbackHistory)})
		return err
	}
	c.messages = fromServerList(msgs)
	view := c.viewLocked()
	c.mu.Unlock()

	c.emit(Event{Kind: EventLoaded, View: view})
	return nil
}

// SetInput replaces the composer text
func (c *Conversation) SetInput(text string) {
	c.mu.Lock()
	c.input = text
	c.mu.Unlock()
}

// Send sets the composer text and submits it
func (c *Conversation) Send(ctx context.Context, text string) (bool, error) {
	c.SetInput(text)
	return c.Submit(ctx)
}

// Submit sends the composer text. It is a no-op returning false when the
// trimmed text is empty, a send is in flight or no session is active.
//
// The input is cleared and a Pending message appended before the request.
// On success the Pending message is replaced by the stored user message and
// the assistant reply; on failure it is removed and the input stays empty.
func (c *Conversation) Submit(ctx context.Context) (bool, error) {
	c.mu.Lock()
	text := strings.TrimSpace(c.input)
	if text == "" || c.status == Sending || c.sessionID == "" {
		c.mu.Unlock()
		return false, nil
	}

	sessionID := c.sessionID
	gen := c.generation
	now := c.now()
	c.tempSeq++
	tempID := fmt.Sprintf("temp-%d-%d", now.UnixMilli(), c.tempSeq)

	c.input = ""
	c.messages = append(c.messages, Pending{
		TempID: tempID,
		Entry:  Entry{Type: RoleUser, Content: text, Timestamp: now},
	})
	c.status = Sending
	view := c.viewLocked()
	c.mu.Unlock()

	c.emit(Event{Kind: EventOptimisticInsert, View: view})

	res, err := c.svc.SendMessage(ctx, text, sessionID)

	c.mu.Lock()
	// A Load since submit already replaced the list, pending message included
	if gen == c.generation {
		if err != nil {
			c.messages = reconcile(c.messages, tempID)
		} else {
			c.messages = reconcile(c.messages, tempID, fromServer(res.UserMessage), fromServer(res.AIMessage))
		}
	}
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Str(logging.FieldSessionID, sessionID).Msg("sending message failed")
		c.finish(EventRolledBack)
		c.notifier.Notify(Notice{Title: TitleSendFailed, Detail: api.Detail(err, FallbackSend)})
		return true, err
	}

	if c.refresher != nil {
		if rerr := c.refresher.Refresh(ctx); rerr != nil {
			c.logger.Warn().Err(rerr).Msg("session refresh after send failed")
		}
	}
	c.finish(EventSettled)
	return true, nil
}

// finish returns the composer to idle and announces the outcome
func (c *Conversation) finish(kind EventKind) {
	c.mu.Lock()
	c.status = Idle
	view := c.viewLocked()
	c.mu.Unlock()
	c.emit(Event{Kind: kind, View: view})
}

// View returns a copy of the conversation state
func (c *Conversation) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

func (c *Conversation) viewLocked() View {
	msgs := make([]Message, len(c.messages))
	copy(msgs, c.messages)
	return View{
		SessionID: c.sessionID,
		Messages:  msgs,
		Loading:   c.loading,
		Status:    c.status,
		Input:     c.input,
	}
}

func (c *Conversation) emit(ev Event) {
	for _, fn := range c.listeners {
		fn(ev)
	}
}
