package chat

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"mindscape/internal/api"
	"mindscape/internal/logging"
)

// ErrUnknownSession is returned when selecting a session that is not listed
var ErrUnknownSession = errors.New("unknown chat session")

// DirectoryState is the lifecycle of the session directory
type DirectoryState int

const (
	// Resolving waits for the session list
	Resolving DirectoryState = iota
	// Ready has an active session
	Ready
	// Empty found no sessions and is about to create one
	Empty
	// Creating waits for a new session from the server
	Creating
	// Failed could not list or create sessions
	Failed
)

func (s DirectoryState) String() string {
	switch s {
	case Resolving:
		return "resolving"
	case Ready:
		return "ready"
	case Empty:
		return "empty"
	case Creating:
		return "creating"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// SessionService lists and creates chat sessions
type SessionService interface {
	ListSessions(ctx context.Context) ([]api.ChatSession, error)
	CreateSession(ctx context.Context) (api.ChatSession, error)
}

// Navigator moves the client between chat routes
type Navigator interface {
	// Replace swaps the current route without adding a history entry
	Replace(sessionID string)
	// Push moves to a route and keeps the current one in history
	Push(sessionID string)
}

// DirectoryView is a copy of the directory state for rendering
type DirectoryView struct {
	State    DirectoryState
	Sessions []api.ChatSession
	Active   string
}

// Directory owns the session list and decides which session is active
type Directory struct {
	svc      SessionService
	nav      Navigator
	notifier Notifier
	logger   zerolog.Logger

	// resolveMu serialises Resolve so two callers never both create a session
	resolveMu sync.Mutex

	mu       sync.Mutex
	state    DirectoryState
	sessions []api.ChatSession
	active   string
}

// NewDirectory creates a directory in the Resolving state
func NewDirectory(svc SessionService, nav Navigator, notifier Notifier, logger zerolog.Logger) *Directory {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	return &Directory{
		svc:      svc,
		nav:      nav,
		notifier: notifier,
		logger:   logger.With().Str(logging.FieldComponent, "directory").Logger(),
		state:    Resolving,
		sessions: []api.ChatSession{},
	}
}

// Resolve loads the session list and settles on an active session. requested
// is the session id from the current route and may be empty. A requested id
// that is listed is kept as is; otherwise the client is redirected to the
// first listed session, or to a freshly created one when there are none.
func (d *Directory) Resolve(ctx context.Context, requested string) (string, error) {
	d.resolveMu.Lock()
	defer d.resolveMu.Unlock()

	d.setState(Resolving)

	sessions, err := d.svc.ListSessions(ctx)
	if err != nil {
		d.mu.Lock()
		d.state = Failed
		d.sessions = []api.ChatSession{}
		d.active = ""
		d.mu.Unlock()

		d.logger.Warn().Err(err).Msg("listing sessions failed")
		d.notifier.Notify(Notice{Title: TitleSessionsFailed, Detail: api.Detail(err, FallbackSessions)})
		return "", err
	}

	if len(sessions) == 0 {
		d.mu.Lock()
		d.state = Empty
		d.sessions = []api.ChatSession{}
		d.mu.Unlock()
		return d.createFirst(ctx)
	}

	target := sessions[0].ID
	redirect := true
	if requested != "" && containsSession(sessions, requested) {
		target = requested
		redirect = false
	}

	d.mu.Lock()
	d.state = Ready
	d.sessions = sessions
	d.active = target
	d.mu.Unlock()

	if redirect {
		d.logger.Debug().Str(logging.FieldSessionID, target).Str("requested", requested).Msg("redirecting to first session")
		d.nav.Replace(target)
	}
	return target, nil
}

// createFirst handles Empty -> Creating -> Ready
func (d *Directory) createFirst(ctx context.Context) (string, error) {
	d.setState(Creating)

	session, err := d.svc.CreateSession(ctx)
	if err != nil {
		d.setState(Failed)
		d.logger.Warn().Err(err).Msg("creating first session failed")
		d.notifier.Notify(Notice{Title: TitleCreateFailed, Detail: api.Detail(err, FallbackCreate)})
		return "", err
	}

	d.mu.Lock()
	d.sessions = append([]api.ChatSession{session}, d.sessions...)
	d.active = session.ID
	d.state = Ready
	d.mu.Unlock()

	d.nav.Replace(session.ID)
	return session.ID, nil
}

// Create starts a new session on user request, prepends it and opens it
func (d *Directory) Create(ctx context.Context) (api.ChatSession, error) {
	session, err := d.svc.CreateSession(ctx)
	if err != nil {
		d.logger.Warn().Err(err).Msg("creating session failed")
		d.notifier.Notify(Notice{Title: TitleCreateFailed, Detail: api.Detail(err, FallbackCreate)})
		return api.ChatSession{}, err
	}

	d.mu.Lock()
	d.sessions = append([]api.ChatSession{session}, d.sessions...)
	d.active = session.ID
	d.state = Ready
	d.mu.Unlock()

	d.nav.Push(session.ID)
	return session, nil
}

// Select opens a listed session
func (d *Directory) Select(sessionID string) error {
	d.mu.Lock()
	if !containsSession(d.sessions, sessionID) {
		d.mu.Unlock()
		return ErrUnknownSession
	}
	changed := d.active != sessionID
	d.active = sessionID
	d.mu.Unlock()

	if changed {
		d.nav.Push(sessionID)
	}
	return nil
}

// Refresh re-fetches the list so titles and lastMessageAt follow the server.
// A failed refresh keeps the list already shown.
func (d *Directory) Refresh(ctx context.Context) error {
	sessions, err := d.svc.ListSessions(ctx)
	if err != nil {
		d.logger.Warn().Err(err).Msg("refreshing sessions failed")
		return err
	}

	d.mu.Lock()
	d.sessions = sessions
	if d.active != "" && containsSession(sessions, d.active) {
		d.state = Ready
	}
	d.mu.Unlock()
	return nil
}

// Active returns the active session id, empty when none
func (d *Directory) Active() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active
}

// View returns a copy of the directory state
func (d *Directory) View() DirectoryView {
	d.mu.Lock()
	defer d.mu.Unlock()
	sessions := make([]api.ChatSession, len(d.sessions))
	copy(sessions, d.sessions)
	return DirectoryView{State: d.state, Sessions: sessions, Active: d.active}
}

func (d *Directory) setState(s DirectoryState) {
	d.mu.Lock()
	d.state = s
	d.mu.Unlock()
}

func containsSession(sessions []api.ChatSession, id string) bool {
	for _, s := range sessions {
		if s.ID == id {
			return true
		}
	}
	return false
}
