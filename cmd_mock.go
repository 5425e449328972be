package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"mindscape/internal/mockapi"
)

func newMockServerCmd(a *app) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Serve a scripted in-memory MindScape API",
		Long: `Serve a scripted in-memory MindScape API for local development. Replies
come from keyword rules and all data is lost on exit. Sign-up codes are
written to the log.

Point the client at it with --api-url http://localhost:4000/api/v1.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []mockapi.Option{mockapi.WithLogger(a.logger)}
			if email != "" {
				opts = append(opts, mockapi.WithUser(name, email, password))
			}
			return a.serveMock(cmd.Context(), mockapi.NewServer(opts...))
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :4000)")
	cmd.Flags().StringVar(&name, "user-name", "Demo User", "full name of the seeded account")
	cmd.Flags().StringVar(&email, "user-email", "demo@mindscape.local", "email of the seeded account; empty seeds none")
	cmd.Flags().StringVar(&password, "user-password", "demo1234", "password of the seeded account")
	return cmd
}

func (a *app) serveMock(ctx context.Context, s *mockapi.Server) error {
	ln, err := net.Listen("tcp", a.cfg.MockAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.cfg.MockAddr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	a.display.PrintSuccess(fmt.Sprintf("Mock API listening on http://%s%s", ln.Addr(), mockapi.BasePath))
	a.logger.Info().Str("addr", ln.Addr().String()).Msg("mock api started")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("mock api stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.display.PrintInfo("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down mock api: %w", err)
	}
	<-errCh
	return nil
}
