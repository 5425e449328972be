package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"mindscape/internal/api"
	"mindscape/internal/config"
	"mindscape/internal/logging"
	"mindscape/internal/state"
	"mindscape/internal/terminal"
	"mindscape/internal/ui"
)

// errNotLoggedIn is returned by commands that need a session
var errNotLoggedIn = errors.New("not logged in: run `mindscape login` first")

// app holds everything a command needs. It is built once per invocation
// after flags are parsed.
type app struct {
	cfg     *config.Config
	logger  zerolog.Logger
	closer  io.Closer
	client  *api.Client
	store   *state.Store
	display *ui.Display
	reader  *terminal.Reader
	out     io.Writer
	tty     bool
}

// newRootCmd builds the command tree reading from in and writing to out
func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{out: out}
	var configFile string

	root := &cobra.Command{
		Use:   "mindscape",
		Short: "MindScape in your terminal",
		Long: `mindscape is a terminal client for the MindScape wellness API.

Chat with the MindScape assistant, log how you feel, browse your journal and
trends, and find resources. Run without arguments to start chatting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd, configFile, in)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd.Context(), "")
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (default ./config.yaml or ~/.mindscape/config.yaml)")
	flags.String("api-url", "", "MindScape API base URL")
	flags.Duration("timeout", 0, "HTTP request timeout")
	flags.String("token", "", "bearer token sent with every request")
	flags.String("state", "", "path of the local state file")
	flags.String("log-level", "", "log level (trace, debug, info, warn, error)")
	flags.String("log-file", "", "log file; empty disables file logging")
	flags.BoolP("verbose", "v", false, "log to stderr instead of the log file")

	root.AddCommand(
		newChatCmd(a),
		newLoginCmd(a),
		newSignupCmd(a),
		newResetPasswordCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newLogEmotionCmd(a),
		newJournalCmd(a),
		newTrendsCmd(a),
		newDashboardCmd(a),
		newResourcesCmd(a),
		newRelaxCmd(a),
		newMockServerCmd(a),
	)
	a.shutdownAfter(root)
	return root
}

// shutdownAfter wraps cmd and its subcommands so shutdown runs once the
// command returns, including when it fails
func (a *app) shutdownAfter(cmd *cobra.Command) {
	if run := cmd.RunE; run != nil {
		cmd.RunE = func(c *cobra.Command, args []string) (err error) {
			defer func() {
				if serr := a.shutdown(); err == nil {
					err = serr
				}
			}()
			return run(c, args)
		}
	}
	for _, sub := range cmd.Commands() {
		a.shutdownAfter(sub)
	}
}

// init loads configuration and wires the client, state and display
func (a *app) init(cmd *cobra.Command, configFile string, in io.Reader) error {
	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	a.cfg = cfg

	logger, closer, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Verbose: cfg.Verbose,
	})
	if err != nil {
		return err
	}
	a.logger = logger.With().Str(logging.FieldComponent, "cli").Logger()
	a.closer = closer

	a.store = state.NewStore(cfg.StatePath)
	if err := a.store.Load(); err != nil {
		a.logger.Warn().Err(err).Str("path", cfg.StatePath).Msg("failed to load state")
	}

	opts := []api.Option{api.WithLogger(logger)}
	if cfg.Token != "" {
		opts = append(opts, api.WithToken(cfg.Token))
	}
	a.client = api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, opts...)
	a.client.SetCookies(a.store.Cookies(cfg.APIBaseURL))

	if in == os.Stdin && a.out == os.Stdout {
		a.reader = terminal.NewStdinReader()
		a.tty = terminal.IsTerminal()
	} else {
		a.reader = terminal.NewReader(in, a.out)
	}

	width := 80
	var displayOpts []ui.Option
	if a.tty {
		width, _ = terminal.Size()
	} else {
		displayOpts = append(displayOpts, ui.WithMarkdownStyle("notty"))
	}
	a.display = ui.NewDisplay(a.out, width, displayOpts...)

	a.logger.Debug().Str("command", cmd.Name()).Str("api", cfg.APIBaseURL).Msg("starting")
	return nil
}

// shutdown keeps refreshed session cookies for the next run
func (a *app) shutdown() error {
	defer a.closer.Close()
	if a.store.User() == nil {
		return nil
	}
	if err := a.store.SignIn(a.cfg.APIBaseURL, nil, a.client.Cookies()); err != nil {
		a.logger.Warn().Err(err).Msg("failed to save session cookies")
	}
	return nil
}

// requireLogin fails early when there is no saved session or token
func (a *app) requireLogin() error {
	if a.store.User() == nil && a.cfg.Token == "" {
		return errNotLoggedIn
	}
	return nil
}

// signedIn records a successful sign in
func (a *app) signedIn(user *api.User) error {
	if err := a.store.SignIn(a.cfg.APIBaseURL, user, a.client.Cookies()); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	a.logger.Info().Str("email", user.Email).Msg("signed in")
	return nil
}
