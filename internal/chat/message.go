// Package chat holds the client-side chat state: which session is active,
// the messages shown for it and the optimistic send cycle that keeps the
// displayed list in step with the server.
package chat

import (
	"fmt"
	"time"

	"mindscape/internal/api"
)

// Role tells the two sides of a conversation apart
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is what every displayed message carries, whatever its provenance
type Entry struct {
	Type      Role
	Content   string
	Timestamp time.Time
	// Emotion is the sentiment label the server assigned, if any
	Emotion string
}

// Message is either a Persisted message with a server id or the single
// Pending message awaiting confirmation. The set is closed.
type Message interface {
	// Key identifies the message in the displayed list
	Key() string
	Data() Entry
	provenance()
}

// Persisted is a message the server has stored
type Persisted struct {
	ID string
	Entry
}

// Pending is an optimistic message shown before the server confirms it
type Pending struct {
	TempID string
	Entry
}

func (p Persisted) Key() string { return p.ID }
func (p Persisted) Data() Entry { return p.Entry }
func (Persisted) provenance() {}

func (p Pending) Key() string { return p.TempID }
func (p Pending) Data() Entry { return p.Entry }
func (Pending) provenance() {}

// IsPending reports whether m still awaits server confirmation
func IsPending(m Message) bool {
	_, ok := m.(Pending)
	return ok
}

// fromServer maps the API shape onto a Persisted message
func fromServer(m api.ConversationMessage) Persisted {
	role := RoleAssistant
	if m.IsFromUser {
		role = RoleUser
	}
	return Persisted{
		ID: m.ID,
		Entry: Entry{
			Type:      role,
			Content:   m.Message,
			Timestamp: m.CreatedAt,
			Emotion:   m.Sentiment,
		},
	}
}

func fromServerList(msgs []api.ConversationMessage) []Message {
	out := make([]Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, fromServer(m))
	}
	return out
}

// reconcile drops the pending message tempID and appends confirmed in order.
// Persisted messages and any other pending message keep their positions.
func reconcile(list []Message, tempID string, confirmed ...Persisted) []Message {
	out := make([]Message, 0, len(list)+len(confirmed))
	for _, m := range list {
		switch v := m.(type) {
		case Persisted:
			out = append(out, v)
		case Pending:
			if v.TempID != tempID {
				out = append(out, v)
			}
		default:
			panic(fmt.Sprintf("chat: unknown message provenance %T", m))
		}
	}
	for _, p := range confirmed {
		out = append(out, p)
	}
	return out
}
