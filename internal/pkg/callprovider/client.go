// Package callprovider talks to the hosted video/audio room API used for
// online events.
package callprovider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrNotConfigured is returned when no API key is set
var ErrNotConfigured = errors.New("call provider not configured")

// Room is a call room participants join through URL
type Room struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// RoomOptions configures a new room
type RoomOptions struct {
	// ExpiresAt closes the room for everyone
	ExpiresAt time.Time
	// AudioOnly starts participants with video disabled
	AudioOnly bool
}

// Config holds the provider endpoint and credentials
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client creates rooms over the provider's REST API
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	logger  zerolog.Logger
}

func NewClient(cfg Config, logger zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "callprovider").Logger(),
	}
}

type createRoomRequest struct {
	Name       string         `json:"name"`
	Privacy    string         `json:"privacy"`
	Properties roomProperties `json:"properties"`
}

type roomProperties struct {
	Exp            int64 `json:"exp,omitempty"`
	StartVideoOff  bool  `json:"start_video_off"`
	EnableChat     bool  `json:"enable_chat"`
	EjectAtRoomExp bool  `json:"eject_at_room_exp"`
}

// StatusError is a non-2xx answer from the provider
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("call provider returned %d: %s", e.StatusCode, e.Body)
}

// CreateRoom creates the named room, or returns it when it already exists
func (c *Client) CreateRoom(ctx context.Context, name string, opts RoomOptions) (Room, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return Room{}, ErrNotConfigured
	}

	body := createRoomRequest{
		Name:    name,
		Privacy: "public",
		Properties: roomProperties{
			StartVideoOff:  opts.AudioOnly,
			EnableChat:     true,
			EjectAtRoomExp: !opts.ExpiresAt.IsZero(),
		},
	}
	if !opts.ExpiresAt.IsZero() {
		body.Properties.Exp = opts.ExpiresAt.Unix()
	}

	var room Room
	err := c.do(ctx, http.MethodPost, "/rooms", body, &room)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest &&
		strings.Contains(statusErr.Body, "already exists") {
		return c.GetRoom(ctx, name)
	}
	if err != nil {
		return Room{}, err
	}

	c.logger.Info().Str("room", room.Name).Msg("Call room created")
	return room, nil
}

// GetRoom fetches an existing room by name
func (c *Client) GetRoom(ctx context.Context, name string) (Room, error) {
	if c.apiKey == "" || c.baseURL == "" {
		return Room{}, ErrNotConfigured
	}
	var room Room
	if err := c.do(ctx, http.MethodGet, "/rooms/"+url.PathEscape(name), nil, &room); err != nil {
		return Room{}, err
	}
	return room, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
