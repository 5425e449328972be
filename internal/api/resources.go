package api

import (
	"context"
	"fmt"
	"net/http"
)

// PersonalizedResources returns articles, techniques and resources picked for the user
func (c *Client) PersonalizedResources(ctx context.Context) (*PersonalizedResources, error) {
	var data PersonalizedResources
	if _, err := c.do(ctx, http.MethodGet, "/resources", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("get resources: %w", err)
	}
	return &data, nil
}

// RelaxVideos returns the relaxation video list and its intro message
func (c *Client) RelaxVideos(ctx context.Context) (*RelaxVideos, error) {
	var data RelaxVideos
	if _, err := c.do(ctx, http.MethodGet, "/relax/videos", nil, nil, &data); err != nil {
		return nil, fmt.Errorf("get relax videos: %w", err)
	}
	return &data, nil
}
