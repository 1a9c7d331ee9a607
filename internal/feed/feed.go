package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Photo is one entry of the wall. IsNew is set locally on pushed photos and cleared
// once their focus cycle completes.
type Photo struct {
	ID      int    `json:"id"`
	URL     string `json:"url"`
	Message string `json:"message,omitempty"`
	IsNew   bool   `json:"-"`
}

type Kind string

const (
	NewPhoto       Kind = "new-photo"
	UploadProgress Kind = "upload-progress"
	Connectivity   Kind = "connectivity"
)

// Event is one notification from the server. Only NewPhoto affects the scene.
type Event struct {
	Kind      Kind
	Photo     Photo
	Uploading bool
	Connected bool
}

type envelope struct {
	Type      string `json:"type"`
	Photo     *Photo `json:"photo,omitempty"`
	Uploading *bool  `json:"uploading,omitempty"`
}

var ErrBadEnvelope = errors.New("feed: bad envelope")

// Parse decodes one websocket message.
func Parse(b []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return Event{}, fmt.Errorf("feed: decode: %w", err)
	}
	switch Kind(env.Type) {
	case NewPhoto:
		if env.Photo == nil {
			return Event{}, fmt.Errorf("%w: new-photo without photo", ErrBadEnvelope)
		}
		p := *env.Photo
		p.IsNew = true
		return Event{Kind: NewPhoto, Photo: p}, nil
	case UploadProgress:
		return Event{Kind: UploadProgress, Uploading: env.Uploading != nil && *env.Uploading}, nil
	default:
		return Event{}, fmt.Errorf("%w: type %q", ErrBadEnvelope, env.Type)
	}
}

// Client talks to the photo server. Events are delivered on Events(); the frame loop
// drains them so nothing outside the loop touches the scene.
type Client struct {
	base   *url.URL
	http   *http.Client
	dialer *websocket.Dialer
	events chan Event

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func New(base string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(base, "/"))
	if err != nil {
		return nil, fmt.Errorf("feed: base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("feed: base url %q must be http(s)", base)
	}
	return &Client{
		base:       u,
		http:       &http.Client{Timeout: 10 * time.Second},
		dialer:     &websocket.Dialer{HandshakeTimeout: 5 * time.Second},
		events:     make(chan Event, 64),
		MinBackoff: 500 * time.Millisecond,
		MaxBackoff: 15 * time.Second,
	}, nil
}

func (c *Client) Events() <-chan Event { return c.events }

// Base is the server root, used to resolve relative photo urls.
func (c *Client) Base() string { return c.base.String() }

// Photos fetches the initial ordered list.
func (c *Client) Photos(ctx context.Context) ([]Photo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base.String()+"/api/photos", nil)
	if err != nil {
		return nil, fmt.Errorf("feed: request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("feed: list photos: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: list photos: status %d", resp.StatusCode)
	}
	var out []Photo
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("feed: decode photos: %w", err)
	}
	return out, nil
}

func (c *Client) wsURL() string {
	u := *c.base
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path += "/ws"
	return u.String()
}

// Run keeps the push socket open until ctx ends, reconnecting with capped exponential
// backoff. Connectivity changes are reported as events.
func (c *Client) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		connected, err := c.session(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			backoff = c.MinBackoff
		}
		log.Warn().Err(err).Dur("retry_in", backoff).Msg("feed socket down")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, c.MaxBackoff)
	}
}

// session runs one connection. connected reports whether the dial succeeded.
func (c *Client) session(ctx context.Context) (connected bool, err error) {
	conn, _, err := c.dialer.DialContext(ctx, c.wsURL(), nil)
	if err != nil {
		return false, fmt.Errorf("feed: dial: %w", err)
	}
	defer conn.Close()
	c.emit(ctx, Event{Kind: Connectivity, Connected: true})
	defer c.emit(ctx, Event{Kind: Connectivity, Connected: false})
	log.Info().Str("url", c.wsURL()).Msg("feed socket connected")

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("feed: read: %w", err)
		}
		ev, err := Parse(data)
		if err != nil {
			log.Debug().Err(err).Msg("feed: skipping message")
			continue
		}
		c.emit(ctx, ev)
	}
}

func (c *Client) emit(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}
