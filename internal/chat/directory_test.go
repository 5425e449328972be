package chat

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/internal/api"
)

func sessionsOf(ids ...string) []api.ChatSession {
	out := make([]api.ChatSession, 0, len(ids))
	for _, id := range ids {
		out = append(out, api.ChatSession{ID: id, Title: "title " + id})
	}
	return out
}

func newDirectory(svc SessionService) (*Directory, *recordingNav, *recordingNotifier) {
	nav := &recordingNav{}
	notes := &recordingNotifier{}
	return NewDirectory(svc, nav, notes, zerolog.Nop()), nav, notes
}

func TestDirectory_Resolve(t *testing.T) {
	tests := []struct {
		name         string
		sessions     []string
		requested    string
		wantActive   string
		wantReplaced []string
	}{
		{"requested and listed", []string{"s1", "s2", "s3"}, "s2", "s2", nil},
		{"no requested id", []string{"s1", "s2"}, "", "s1", []string{"s1"}},
		{"requested id not listed", []string{"s1", "s2"}, "gone", "s1", []string{"s1"}},
		{"single session", []string{"s1"}, "", "s1", []string{"s1"}},
		{"requested is the first", []string{"s1", "s2"}, "s1", "s1", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeSessions{sessions: sessionsOf(tt.sessions...)}
			dir, nav, notes := newDirectory(svc)

			active, err := dir.Resolve(context.Background(), tt.requested)
			require.NoError(t, err)

			assert.Equal(t, tt.wantActive, active)
			assert.Equal(t, tt.wantReplaced, nav.replaced)
			assert.Empty(t, nav.pushed)
			assert.Empty(t, notes.all())

			view := dir.View()
			assert.Equal(t, Ready, view.State)
			assert.Equal(t, tt.wantActive, view.Active)
			assert.Len(t, view.Sessions, len(tt.sessions))

			_, creates := svc.counts()
			assert.Zero(t, creates)
		})
	}
}

func TestDirectory_ResolveEmptyCreatesExactlyOnce(t *testing.T) {
	svc := &fakeSessions{}
	dir, nav, _ := newDirectory(svc)

	active, err := dir.Resolve(context.Background(), "")
	require.NoError(t, err)

	_, creates := svc.counts()
	assert.Equal(t, 1, creates)
	assert.Equal(t, []string{active}, nav.replaced)

	view := dir.View()
	assert.Equal(t, Ready, view.State)
	require.Len(t, view.Sessions, 1)
	assert.Equal(t, active, view.Sessions[0].ID)
}

func TestDirectory_ConcurrentResolveCreatesOnce(t *testing.T) {
	svc := &fakeSessions{}
	dir, _, _ := newDirectory(svc)

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id, err := dir.Resolve(context.Background(), "")
			assert.NoError(t, err)
			results[i] = id
		}(i)
	}
	wg.Wait()

	_, creates := svc.counts()
	assert.Equal(t, 1, creates)
	for _, id := range results {
		assert.Equal(t, results[0], id)
	}
}

func TestDirectory_ListFailure(t *testing.T) {
	svc := &fakeSessions{
		sessions: sessionsOf("s1"),
		listErr:  &api.Error{StatusCode: 503, Message: "Service temporarily unavailable"},
	}
	dir, nav, notes := newDirectory(svc)

	_, err := dir.Resolve(context.Background(), "s1")
	require.Error(t, err)

	view := dir.View()
	assert.Equal(t, Failed, view.State)
	assert.Empty(t, view.Sessions)
	assert.Empty(t, view.Active)
	assert.Empty(t, nav.replaced)

	lists, creates := svc.counts()
	assert.Equal(t, 1, lists, "no retry loop")
	assert.Zero(t, creates)

	require.Len(t, notes.all(), 1)
	assert.Equal(t, Notice{Title: TitleSessionsFailed, Detail: "Service temporarily unavailable"}, notes.all()[0])
}

func TestDirectory_ListFailureFallback(t *testing.T) {
	svc := &fakeSessions{listErr: errors.New("dial tcp: connection refused")}
	dir, _, notes := newDirectory(svc)

	_, err := dir.Resolve(context.Background(), "")
	require.Error(t, err)
	require.Len(t, notes.all(), 1)
	assert.Equal(t, FallbackSessions, notes.all()[0].Detail)
}

func TestDirectory_CreateFailureOnEmpty(t *testing.T) {
	svc := &fakeSessions{createErr: errors.New("boom")}
	dir, nav, notes := newDirectory(svc)

	_, err := dir.Resolve(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, Failed, dir.View().State)
	assert.Empty(t, nav.replaced)
	require.Len(t, notes.all(), 1)
	assert.Equal(t, FallbackCreate, notes.all()[0].Detail)
}

func TestDirectory_CreatePrependsAndPushes(t *testing.T) {
	svc := &fakeSessions{sessions: sessionsOf("s1", "s2")}
	dir, nav, _ := newDirectory(svc)

	_, err := dir.Resolve(context.Background(), "s2")
	require.NoError(t, err)

	created, err := dir.Create(context.Background())
	require.NoError(t, err)

	view := dir.View()
	require.Len(t, view.Sessions, 3)
	assert.Equal(t, created.ID, view.Sessions[0].ID)
	assert.Equal(t, created.ID, view.Active)
	assert.Equal(t, []string{created.ID}, nav.pushed)
	assert.Empty(t, nav.replaced)
}

func TestDirectory_Select(t *testing.T) {
	svc := &fakeSessions{sessions: sessionsOf("s1", "s2")}
	dir, nav, _ := newDirectory(svc)
	_, err := dir.Resolve(context.Background(), "s1")
	require.NoError(t, err)

	require.NoError(t, dir.Select("s2"))
	assert.Equal(t, "s2", dir.Active())
	assert.Equal(t, []string{"s2"}, nav.pushed)

	// Selecting the active session does not navigate again
	require.NoError(t, dir.Select("s2"))
	assert.Len(t, nav.pushed, 1)

	assert.ErrorIs(t, dir.Select("missing"), ErrUnknownSession)
}

func TestDirectory_RefreshKeepsListOnFailure(t *testing.T) {
	svc := &fakeSessions{sessions: sessionsOf("s1", "s2")}
	dir, _, notes := newDirectory(svc)
	_, err := dir.Resolve(context.Background(), "s1")
	require.NoError(t, err)

	svc.mu.Lock()
	svc.sessions[0].Title = "I feel anxious"
	svc.mu.Unlock()
	require.NoError(t, dir.Refresh(context.Background()))
	assert.Equal(t, "I feel anxious", dir.View().Sessions[0].Title)

	svc.mu.Lock()
	svc.listErr = errors.New("offline")
	svc.mu.Unlock()
	assert.Error(t, dir.Refresh(context.Background()))
	assert.Len(t, dir.View().Sessions, 2)
	assert.Empty(t, notes.all())
}

func TestDirectoryState_String(t *testing.T) {
	assert.Equal(t, "resolving", Resolving.String())
	assert.Equal(t, "creating", Creating.String())
	assert.Equal(t, "unknown", DirectoryState(42).String())
}
