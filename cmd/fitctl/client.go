package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"caila-fit-action/internal/api"
	"caila-fit-action/internal/services"
)

// Client is a small HTTP client for a running fit-action service.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a Client for the service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{baseURL: baseURL, http: http.DefaultClient}
}

// Fit uploads a dataset and returns the resulting model info.
func (c *Client) Fit(ctx context.Context, texts []string) (*services.Info, error) {
	var info services.Info
	err := c.do(ctx, http.MethodPost, "/api/v1/fit", api.Dataset{Texts: texts}, &info)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// Predict returns the stored texts at the given indices.
func (c *Client) Predict(ctx context.Context, indices []int) ([]string, error) {
	var resp api.PredictResponse
	err := c.do(ctx, http.MethodPost, "/api/v1/predict", api.PredictRequest{Texts: indices}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Texts, nil
}

// Prune removes the persisted model state.
func (c *Client) Prune(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/state", nil, nil)
}

// Info returns the model lifecycle state.
func (c *Client) Info(ctx context.Context) (*services.Info, error) {
	var info services.Info
	if err := c.do(ctx, http.MethodGet, "/api/v1/info", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Buffer
	if body != nil {
		requestBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewBuffer(requestBody)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var prob api.ProblemDetails
		if err := json.NewDecoder(resp.Body).Decode(&prob); err == nil && prob.Title != "" {
			return fmt.Errorf("%s: %s (status %d)", prob.Title, prob.Detail, prob.Status)
		}
		return fmt.Errorf("request failed: status code %d", resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response body: %w", err)
		}
	}
	return nil
}
