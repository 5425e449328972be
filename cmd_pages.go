package main

import (
	"github.com/spf13/cobra"
)

func newDashboardCmd(a *app) *cobra.Command {
	var activities int
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Show your greeting, stats and recent activity",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			overview, err := a.client.Overview(cmd.Context(), activities)
			if err != nil {
				return err
			}
			a.display.PrintDashboard(overview)
			return nil
		},
	}
	cmd.Flags().IntVar(&activities, "activities", 5, "number of recent activities")
	return cmd
}

func newResourcesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "resources",
		Short: "Show articles, techniques and support resources picked for you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			res, err := a.client.PersonalizedResources(cmd.Context())
			if err != nil {
				return err
			}
			a.display.PrintResources(res)
			return nil
		},
	}
}

func newRelaxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "relax",
		Short: "List relaxation videos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			videos, err := a.client.RelaxVideos(cmd.Context())
			if err != nil {
				return err
			}
			a.display.PrintRelaxVideos(videos)
			return nil
		},
	}
}
