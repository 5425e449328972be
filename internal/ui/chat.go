package ui

import (
	"fmt"
	"strings"
	"time"

	"mindscape/internal/api"
	"mindscape/internal/chat"
)

// SuggestedStarters are offered when a conversation is empty
var SuggestedStarters = []string{
	"I feel anxious about work",
	"How can I improve my mood?",
	"I feel tired",
	"Can you help me relax?",
}

const skeletonRows = 3

// PrintSessions renders the session list with the active one marked.
// Sessions are numbered from 1 for /switch.
func (d *Display) PrintSessions(view chat.DirectoryView) {
	var b strings.Builder
	b.WriteString(d.styles.Title.Render("Conversations"))
	b.WriteString("\n")

	switch view.State {
	case chat.Resolving, chat.Creating:
		b.WriteString(d.skeleton(skeletonRows))
	case chat.Failed:
		b.WriteString(d.styles.Subtle.Render("  Conversations are unavailable right now."))
		b.WriteString("\n")
	default:
		if len(view.Sessions) == 0 {
			b.WriteString(d.styles.Subtle.Render("  No conversations yet. Type /new to start one."))
			b.WriteString("\n")
		}
		now := d.now()
		for i, s := range view.Sessions {
			title := s.Title
			if title == "" {
				title = "New conversation"
			}
			line := fmt.Sprintf("%2d. %s", i+1, truncate(title, 48))
			when := since(now, lastActivity(s))
			if s.ID == view.Active {
				b.WriteString(d.styles.Active.Render("▸ " + line))
			} else {
				b.WriteString("  " + line)
			}
			if when != "" {
				b.WriteString(" " + d.styles.Subtle.Render("· "+when))
			}
			b.WriteString("\n")
		}
	}
	d.write(b.String())
}

func lastActivity(s api.ChatSession) time.Time {
	if !s.LastMessageAt.IsZero() {
		return s.LastMessageAt
	}
	return s.CreatedAt
}

// PrintConversation renders the whole conversation view: skeletons while
// loading, the empty state, or every message followed by the typing
// indicator while a send is in flight.
func (d *Display) PrintConversation(view chat.View) {
	switch {
	case view.Loading:
		d.write(d.skeleton(skeletonRows))
		return
	case view.Empty():
		d.PrintEmptyState()
		return
	}
	for _, m := range view.Messages {
		d.PrintMessage(m)
	}
	if view.Status == chat.Sending {
		d.PrintTyping()
	}
}

// PrintEmptyState invites the user to start with a suggested prompt
func (d *Display) PrintEmptyState() {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(d.styles.Title.Render("How are you feeling today?"))
	b.WriteString("\n")
	b.WriteString(d.styles.Subtle.Render("Share anything on your mind, or try one of these:"))
	b.WriteString("\n")
	for _, s := range SuggestedStarters {
		b.WriteString("  • " + s + "\n")
	}
	d.write(b.String())
}

// PrintMessage renders one message bubble styled by its author
func (d *Display) PrintMessage(m chat.Message) {
	e := m.Data()
	stamp := ""
	if !e.Timestamp.IsZero() {
		stamp = e.Timestamp.Local().Format("15:04")
	}

	var b strings.Builder
	b.WriteString("\n")
	switch e.Type {
	case chat.RoleUser:
		header := d.styles.UserLabel.Render("You")
		if stamp != "" {
			header += d.styles.Subtle.Render(" · " + stamp)
		}
		if e.Emotion != "" {
			header += " " + d.emotionBadge(e.Emotion)
		}
		if chat.IsPending(m) {
			header += " " + d.styles.Pending.Render("(sending…)")
		}
		b.WriteString(header + "\n")
		b.WriteString(d.styles.UserBubble.Render(e.Content))
		b.WriteString("\n")
	default:
		header := d.styles.BotLabel.Render("MindScape")
		if stamp != "" {
			header += d.styles.Subtle.Render(" · " + stamp)
		}
		b.WriteString(header + "\n")
		b.WriteString(d.markdown(e.Content))
		b.WriteString("\n")
	}
	d.write(b.String())
}

// PrintTyping renders a static typing indicator
func (d *Display) PrintTyping() {
	d.write(d.styles.Subtle.Render("MindScape is typing ● ● ●") + "\n")
}

// PrintReplyTime reports how long the assistant took to answer
func (d *Display) PrintReplyTime(elapsed time.Duration) {
	d.write(d.styles.Subtle.Render("replied in "+formatDuration(elapsed)) + "\n")
}

func (d *Display) emotionBadge(emotion string) string {
	label := "[" + emotion + "]"
	switch strings.ToLower(emotion) {
	case "positive":
		return d.styles.Positive.Render(label)
	case "negative":
		return d.styles.Negative.Render(label)
	default:
		return d.styles.Neutral.Render(label)
	}
}

func (d *Display) skeleton(rows int) string {
	var b strings.Builder
	widths := []int{28, 40, 34}
	for i := 0; i < rows; i++ {
		w := widths[i%len(widths)]
		if w > d.width-4 {
			w = d.width - 4
		}
		if w < 1 {
			w = 1
		}
		b.WriteString("  " + d.styles.Skeleton.Render(strings.Repeat("░", w)) + "\n")
	}
	return b.String()
}
