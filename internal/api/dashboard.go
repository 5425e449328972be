package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// DashboardStats returns the headline numbers for the dashboard
func (c *Client) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var data struct {
		Stats DashboardStats `json:"stats"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/stats", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("get dashboard stats: %w", err)
	}
	return &data.Stats, nil
}

// DashboardGreeting returns the personalised greeting line
func (c *Client) DashboardGreeting(ctx context.Context) (string, error) {
	var data struct {
		GreetingMessage string `json:"greetingMessage"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/greeting", nil, nil, &data); err != nil {
		return "", fmt.Errorf("get dashboard greeting: %w", err)
	}
	return data.GreetingMessage, nil
}

// RecentActivities returns the activity feed; limit <= 0 uses the server default
func (c *Client) RecentActivities(ctx context.Context, limit int) ([]RecentActivity, error) {
	var params url.Values
	if limit > 0 {
		params = url.Values{"limit": {strconv.Itoa(limit)}}
	}
	var data struct {
		Activities []RecentActivity `json:"activities"`
	}
	if _, err := c.do(ctx, http.MethodGet, "/dashboard/activities", params, nil, &data); err != nil {
		return nil, fmt.Errorf("get recent activities: %w", err)
	}
	return data.Activities, nil
}

// Overview fetches stats, greeting and activities concurrently. The first
// failure cancels the other calls.
func (c *Client) Overview(ctx context.Context, activityLimit int) (*DashboardOverview, error) {
	var overview DashboardOverview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		stats, err := c.DashboardStats(gctx)
		if err != nil {
			return err
		}
		overview.Stats = *stats
		return nil
	})
	g.Go(func() error {
		greeting, err := c.DashboardGreeting(gctx)
		if err != nil {
			return err
		}
		overview.Greeting = greeting
		return nil
	})
	g.Go(func() error {
		activities, err := c.RecentActivities(gctx, activityLimit)
		if err != nil {
			return err
		}
		overview.Activities = activities
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}
