package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// CreateEmotion logs an emotional state
func (c *Client) CreateEmotion(ctx context.Context, payload CreateEmotionPayload) error {
	if err := validatePayload(payload); err != nil {
		return err
	}
	if _, err := c.do(ctx, http.MethodPost, "/emotions", nil, payload, nil); err != nil {
		return fmt.Errorf("create emotion: %w", err)
	}
	return nil
}

// ListEmotions returns logged emotions matching the query
func (c *Client) ListEmotions(ctx context.Context, q EmotionQuery) (*EmotionList, error) {
	params := url.Values{}
	if q.Page > 0 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.StartDate != "" {
		params.Set("startDate", q.StartDate)
	}
	if q.EndDate != "" {
		params.Set("endDate", q.EndDate)
	}
	if q.EmotionType != "" {
		params.Set("emotionType", q.EmotionType)
	}

	var list EmotionList
	if _, err := c.do(ctx, http.MethodGet, "/emotions", params, nil, &list); err != nil {
		return nil, fmt.Errorf("list emotions: %w", err)
	}
	return &list, nil
}

// Trends returns aggregate emotion statistics for a period. An empty period
// leaves the choice to the server.
func (c *Client) Trends(ctx context.Context, period string) (*Trends, error) {
	params := url.Values{}
	switch period {
	case "":
	case PeriodWeek, PeriodMonth, PeriodYear:
		params.Set("period", period)
	default:
		return nil, fmt.Errorf("%w: period must be week, month or year", ErrValidation)
	}

	var trends Trends
	if _, err := c.do(ctx, http.MethodGet, "/analytics/trends", params, nil, &trends); err != nil {
		return nil, fmt.Errorf("get trends: %w", err)
	}
	return &trends, nil
}
