// Package recommender is the HTTP client for the external recommendation
// engine.
package recommender

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
	"github.com/dmitrijs2005/fintrack/internal/netx"
)

const (
	generatePath = "/generate_recommendation"
	healthPath   = "/health"
)

// Call outcomes reported to the Observer.
const (
	OutcomeSuccess     = "success"
	OutcomeError       = "error"
	OutcomeBadResponse = "bad_response"
)

// Errors for 2xx answers that lack a required field.
var (
	ErrEmptyRecommendation = errors.New("empty recommendation")
	ErrMissingGeneratedAt  = errors.New("recommendation without generated_at")
)

// Item is the snapshot of a single item the engine reasons about.
type Item struct {
	Name        string      `json:"name"`
	Price       json.Number `json:"price"`
	Category    string      `json:"category,omitempty"`
	DateAdded   string      `json:"date_added,omitempty"`
	Description string      `json:"description,omitempty"`
}

type Request struct {
	UserID int64  `json:"user_id"`
	Items  []Item `json:"items"`
}

type Response struct {
	Recommendation string `json:"recommendation"`
	GeneratedAt    string `json:"generated_at"`
}

// Observer receives the outcome of each Generate call.
type Observer interface {
	ObserveRecommenderCall(outcome string)
}

type Client struct {
	baseURL  string
	http     *http.Client
	log      logging.Logger
	observer Observer
}

// New returns a client for the engine at baseURL. Every request is bounded
// by timeout. observer may be nil.
func New(baseURL string, timeout time.Duration, log logging.Logger, observer Observer) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		http:     &http.Client{Timeout: timeout},
		log:      log.With("module", "recommender"),
		observer: observer,
	}
}

// Generate sends the snapshot and returns the engine's answer unchanged.
func (c *Client) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	var resp Response
	err := netx.PostJSON(ctx, c.http, c.baseURL+generatePath, req, &resp)
	if err != nil {
		c.observe(OutcomeError)
		c.log.Warn(ctx, "recommendation engine call failed",
			"user_id", req.UserID, "items", len(req.Items), "elapsed", time.Since(start), "error", err)
		return nil, fmt.Errorf("generate recommendation: %w", err)
	}

	if strings.TrimSpace(resp.Recommendation) == "" {
		c.observe(OutcomeBadResponse)
		c.log.Warn(ctx, "recommendation engine returned no text", "user_id", req.UserID)
		return nil, ErrEmptyRecommendation
	}
	if strings.TrimSpace(resp.GeneratedAt) == "" {
		c.observe(OutcomeBadResponse)
		c.log.Warn(ctx, "recommendation engine returned no timestamp", "user_id", req.UserID)
		return nil, ErrMissingGeneratedAt
	}

	c.observe(OutcomeSuccess)
	c.log.Debug(ctx, "recommendation generated",
		"user_id", req.UserID, "items", len(req.Items), "elapsed", time.Since(start))
	return &resp, nil
}

// Ping checks the engine's health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	if err := netx.GetJSON(ctx, c.http, c.baseURL+healthPath, nil); err != nil {
		return fmt.Errorf("recommender health: %w", err)
	}
	return nil
}

func (c *Client) observe(outcome string) {
	if c.observer != nil {
		c.observer.ObserveRecommenderCall(outcome)
	}
}
