package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindscape/internal/mockapi"
	"mindscape/internal/state"
)

// cliEnv is a mock API plus a private state file and config
type cliEnv struct {
	server *mockapi.Server
	url    string
	state  string
	config string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	s := mockapi.NewServer(
		mockapi.WithUser("Ada Lovelace", "ada@example.com", "pw"),
		mockapi.WithOTPGenerator(func() string { return "123456" }),
	)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("log_level: debug\n"), 0o600))

	return &cliEnv{
		server: s,
		url:    srv.URL + mockapi.BasePath,
		state:  filepath.Join(dir, "state.json"),
		config: cfg,
	}
}

func (e *cliEnv) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	return e.runWith(t, strings.NewReader(input), args...)
}

func (e *cliEnv) runWith(t *testing.T, in io.Reader, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd(in, &out)
	root.SetArgs(append([]string{
		"--config", e.config,
		"--api-url", e.url,
		"--state", e.state,
		"--log-file", "",
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) login(t *testing.T) {
	t.Helper()
	out, err := e.run(t, "pw\n", "login", "--email", "ada@example.com")
	require.NoError(t, err)
	require.Contains(t, out, "Welcome back, Ada Lovelace!")
}

func (e *cliEnv) savedState(t *testing.T) state.State {
	t.Helper()
	s := state.NewStore(e.state)
	require.NoError(t, s.Load())
	return s.Snapshot()
}

func TestCLI_RequiresLogin(t *testing.T) {
	env := newCLIEnv(t)

	for _, cmd := range []string{"chat", "journal", "trends", "dashboard", "resources", "relax", "whoami"} {
		t.Run(cmd, func(t *testing.T) {
			_, err := env.run(t, "", cmd)
			assert.ErrorIs(t, err, errNotLoggedIn)
		})
	}
}

func TestCLI_InvalidConfig(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "", "--api-url", "not a url", "whoami")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
}

func TestCLI_LoginFailure(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "wrong\n", "login", "--email", "ada@example.com")
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.Nil(t, env.savedState(t).User)
}

func cookieValue(st state.State, name string) string {
	for _, c := range st.Cookies {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

func TestCLI_FailedCommandKeepsRefreshedCookies(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)
	before := cookieValue(env.savedState(t), "accessToken")
	require.NotEmpty(t, before)

	env.server.ExpireAccessTokens()
	stdinErr := errors.New("stdin closed")
	_, err := env.runWith(t, iotest.ErrReader(stdinErr), "chat")
	require.ErrorIs(t, err, stdinErr)

	after := cookieValue(env.savedState(t), "accessToken")
	assert.NotEmpty(t, after)
	assert.NotEqual(t, before, after)

	out, err := env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")
}

func TestCLI_LoginPersistsSession(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	st := env.savedState(t)
	require.NotNil(t, st.User)
	assert.Equal(t, "ada@example.com", st.User.Email)
	assert.Equal(t, env.url, st.BaseURL)
	assert.NotEmpty(t, st.Cookies)

	out, err := env.run(t, "", "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace")

	out, err = env.run(t, "", "whoami", "--name", "Ada King")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada King")
	assert.Equal(t, "Ada King", env.savedState(t).User.FullName)

	out, err = env.run(t, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	assert.Nil(t, env.savedState(t).User)

	_, err = env.run(t, "", "whoami")
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestCLI_OAuthURL(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "", "login", "--provider", "google")
	require.NoError(t, err)
	assert.Contains(t, out, env.url+"/auth/google")

	_, err = env.run(t, "", "login", "--provider", "myspace")
	assert.Error(t, err)
}

func TestCLI_SignupWithOTP(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "123456\nGrace Hopper\ncobol\n", "signup", "--email", "grace@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "OTP has been sent to your email")
	assert.Contains(t, out, "Welcome to MindScape, Grace Hopper!")
	assert.Equal(t, "grace@example.com", env.savedState(t).User.Email)
}

func TestCLI_SignupDirect(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "Alan Turing\nenigma\n", "signup", "--no-otp", "--email", "alan@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Welcome to MindScape, Alan Turing!")

	_, err = env.run(t, "Ada\npw\n", "signup", "--no-otp", "--email", "ada@example.com")
	require.Error(t, err)
	assert.Equal(t, "Email is already registered", err.Error())
}

func TestCLI_ResetPassword(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "123456\nnew secret\n", "reset-password", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Your password has been reset")
	assert.NotNil(t, env.savedState(t).User)

	_, err = env.run(t, "new secret\n", "login", "--email", "ada@example.com")
	assert.NoError(t, err)
}

func TestCLI_ChatRoundTrip(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "I feel anxious\n/exit\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "How are you feeling today?")
	assert.Contains(t, out, "I feel anxious")
	assert.Contains(t, out, "breathe")
	assert.Contains(t, out, "replied in")
	assert.Contains(t, out, "Take care of yourself")

	st := env.savedState(t)
	require.NotEmpty(t, st.LastSessionID)

	// The next run reopens the saved route with its history
	out, err = env.run(t, "/exit\n", "chat")
	require.NoError(t, err)
	assert.Contains(t, out, "I feel anxious")
	assert.NotContains(t, out, "How are you feeling today?")
	assert.Equal(t, st.LastSessionID, env.savedState(t).LastSessionID)
}

func TestCLI_ChatCommands(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	input := strings.Join([]string{
		"hello",
		"/new",
		"/sessions",
		"/switch 9",
		"/switch",
		"/switch 2",
		"/bogus",
		"/history",
		"",
	}, "\n")
	out, err := env.run(t, input, "chat")
	require.NoError(t, err)

	assert.Contains(t, out, "Started a new conversation")
	assert.Contains(t, out, "pick a number between 1 and 2")
	assert.Contains(t, out, "usage: /switch <id|n>")
	assert.Contains(t, out, "Unknown command /bogus")
	assert.Contains(t, out, "hello")
	// End of input leaves the chat like /exit
	assert.Contains(t, out, "Take care of yourself")
}

func TestCLI_ChatUnknownSessionRedirects(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	_, err := env.run(t, "/exit\n", "chat", "missing-session")
	require.NoError(t, err)

	id := env.savedState(t).LastSessionID
	assert.NotEmpty(t, id)
	assert.NotEqual(t, "missing-session", id)
}

func TestCLI_EmotionPages(t *testing.T) {
	env := newCLIEnv(t)
	env.login(t)

	out, err := env.run(t, "", "log-emotion", "happy", "-i", "4", "-n", "Sunny walk", "-t", "Health")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 😊 Happy (Strong)")

	out, err = env.run(t, "2\n", "log-emotion")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged 😔 Sad (Moderate)")

	_, err = env.run(t, "", "log-emotion", "bored")
	assert.EqualError(t, err, `unknown mood "bored"`)

	_, err = env.run(t, "", "log-emotion", "calm", "-i", "7")
	assert.Error(t, err)

	out, err = env.run(t, "", "journal")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunny walk")
	assert.Contains(t, out, "😔")
	assert.Contains(t, out, "Tags: Health")

	out, err = env.run(t, "", "journal", "--tag", "Health")
	require.NoError(t, err)
	assert.Contains(t, out, "Sunny walk")
	assert.NotContains(t, out, "😔")

	out, err = env.run(t, "", "journal", "--search", "nothing like this")
	require.NoError(t, err)
	assert.Contains(t, out, "No entries match")

	out, err = env.run(t, "", "trends", "--period", "month")
	require.NoError(t, err)
	assert.Contains(t, out, "month")
	assert.Contains(t, out, "Happy")

	_, err = env.run(t, "", "trends", "--period", "decade")
	assert.Error(t, err)

	out, err = env.run(t, "", "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Ada Lovelace!")
	assert.Contains(t, out, "Logged feeling Sad")

	out, err = env.run(t, "", "resources")
	require.NoError(t, err)
	assert.Contains(t, out, "Understanding anxiety")
	assert.Contains(t, out, "Anxiety is the body's alarm system")
	assert.NotContains(t, out, "<p>")

	out, err = env.run(t, "", "relax")
	require.NoError(t, err)
	assert.Contains(t, out, "Ocean waves")
	assert.Contains(t, out, "A short guided meditation")
}
