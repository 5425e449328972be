package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mindscape/internal/chat"
	"mindscape/internal/logging"
	"mindscape/internal/state"
	"mindscape/internal/terminal"
)

func newChatCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat [sessionId]",
		Short: "Chat with the MindScape assistant",
		Long: `Opens the chat. Without a session id the last visited conversation is
reopened, or the most recent one when it no longer exists.

Commands inside the chat:
  /new            start a new conversation
  /sessions       list your conversations
  /switch <id|n>  open a conversation by id or list number
  /history        show the current conversation again
  /clear          clear the screen
  /exit           leave the chat`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requested := ""
			if len(args) == 1 {
				requested = args[0]
			}
			return a.runChat(cmd.Context(), requested)
		},
	}
}

// routeNavigator persists the chat route so the next run reopens it
type routeNavigator struct {
	store  *state.Store
	logger zerolog.Logger
}

func (n routeNavigator) Replace(sessionID string) { n.navigate("replace", sessionID) }
func (n routeNavigator) Push(sessionID string)    { n.navigate("push", sessionID) }

func (n routeNavigator) navigate(kind, sessionID string) {
	if err := n.store.SetLastSessionID(sessionID); err != nil {
		n.logger.Warn().Err(err).Msg("failed to save chat route")
	}
	n.logger.Debug().Str("route", state.RouteFor(sessionID)).Str("kind", kind).Msg("navigate")
}

// chatSession is one interactive chat run
type chatSession struct {
	a       *app
	dir     *chat.Directory
	conv    *chat.Conversation
	spinner *terminal.Spinner
	name    string

	mu       sync.Mutex
	sendFrom time.Time
}

func (a *app) runChat(ctx context.Context, requested string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if requested == "" {
		if id, ok := state.ParseRoute(a.store.Route()); ok {
			requested = id
		}
	}

	s := &chatSession{a: a, spinner: terminal.NewSpinner(a.out)}
	nav := routeNavigator{store: a.store, logger: a.logger}
	s.dir = chat.NewDirectory(a.client, nav, a.display, a.logger)
	s.conv = chat.NewConversation(a.client, a.display, a.logger,
		chat.WithRefresher(s.dir),
		chat.WithListener(s.onEvent),
	)

	a.display.PrintSessions(s.dir.View())
	active, err := s.dir.Resolve(ctx, requested)
	if err != nil {
		return err
	}

	if u := a.store.User(); u != nil {
		s.name = u.FullName
	}
	a.display.PrintWelcome(s.name)
	s.open(ctx, active)

	for {
		a.display.PrintPrompt()
		line, err := a.reader.ReadLine()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return err
			}
			break
		}
		if ctx.Err() != nil {
			break
		}
		if s.handle(ctx, line) {
			break
		}
	}

	a.display.PrintGoodbye()
	return nil
}

// handle runs one line of input and reports whether the chat should end
func (s *chatSession) handle(ctx context.Context, line string) bool {
	d := s.a.display
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/exit", "/quit", "exit", "quit":
		return true
	case "/clear":
		d.ClearScreen()
		d.PrintWelcome(s.name)
	case "/history":
		d.PrintConversation(s.conv.View())
	case "/sessions":
		if err := s.dir.Refresh(ctx); err != nil {
			d.PrintWarning("Could not refresh conversations; showing the last list")
		}
		d.PrintSessions(s.dir.View())
	case "/new":
		session, err := s.dir.Create(ctx)
		if err != nil {
			return false
		}
		d.PrintSuccess("Started a new conversation")
		s.open(ctx, session.ID)
	case "/switch":
		id, err := s.resolveSwitch(arg)
		if err != nil {
			d.PrintWarning(err.Error())
			return false
		}
		if err := s.dir.Select(id); err != nil {
			d.PrintWarning(fmt.Sprintf("No conversation %q. Use /sessions to list them.", arg))
			return false
		}
		s.open(ctx, id)
	default:
		if strings.HasPrefix(cmd, "/") {
			d.PrintWarning(fmt.Sprintf("Unknown command %s", cmd))
			return false
		}
		// Errors are already surfaced through the notifier
		_, _ = s.conv.Send(ctx, line)
	}
	return false
}

// resolveSwitch accepts a session id or a 1-based list number
func (s *chatSession) resolveSwitch(arg string) (string, error) {
	if arg == "" {
		return "", errors.New("usage: /switch <id|n>")
	}
	if n, err := strconv.Atoi(arg); err == nil {
		sessions := s.dir.View().Sessions
		if n < 1 || n > len(sessions) {
			return "", fmt.Errorf("pick a number between 1 and %d", len(sessions))
		}
		return sessions[n-1].ID, nil
	}
	return arg, nil
}

// open loads and shows a session
func (s *chatSession) open(ctx context.Context, sessionID string) {
	s.a.display.PrintSeparator()
	if err := s.conv.Load(ctx, sessionID); err != nil {
		if !errors.Is(err, chat.ErrSuperseded) {
			s.a.logger.Debug().Err(err).Str(logging.FieldSessionID, sessionID).Msg("open failed")
		}
		return
	}
	s.a.display.PrintConversation(s.conv.View())
}

// onEvent renders the optimistic send cycle
func (s *chatSession) onEvent(ev chat.Event) {
	d := s.a.display
	switch ev.Kind {
	case chat.EventOptimisticInsert:
		if n := len(ev.View.Messages); n > 0 {
			d.PrintMessage(ev.View.Messages[n-1])
		}
		s.mu.Lock()
		s.sendFrom = time.Now()
		s.mu.Unlock()
		if s.a.tty {
			s.spinner.Start("MindScape is typing")
		} else {
			d.PrintTyping()
		}
	case chat.EventSettled:
		s.spinner.Stop()
		if n := len(ev.View.Messages); n > 0 {
			d.PrintMessage(ev.View.Messages[n-1])
		}
		s.mu.Lock()
		elapsed := time.Since(s.sendFrom)
		s.mu.Unlock()
		d.PrintReplyTime(elapsed)
	case chat.EventRolledBack:
		s.spinner.Stop()
	}
}
