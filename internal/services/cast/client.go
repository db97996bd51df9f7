package cast

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vishen/go-chromecast/application"
)

// Session is one connected cast application.
type Session interface {
	Load(path string, startTime int, contentType string, transcode, detach, forceDetach bool) error
	Close(stopMedia bool) error
}

// Dialer opens a session against a cast device.
type Dialer func(ctx context.Context, addr string, port int) (Session, error)

// Option configures the client.
type Option func(*Client)

// WithDialer injects a custom dialer (primarily for tests).
func WithDialer(dial Dialer) Option {
	return func(c *Client) {
		if dial != nil {
			c.dial = dial
		}
	}
}

// Client plays media URLs on a single cast device.
type Client struct {
	addr string
	port int
	dial Dialer
}

// New constructs a client for the device at addr:port.
func New(addr string, port int, opts ...Option) (*Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("cast device address required")
	}
	if port <= 0 {
		port = 8009
	}
	client := &Client{addr: addr, port: port, dial: defaultDial}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Play connects to the device, starts the media, and detaches, leaving the
// device to finish playback on its own.
func (c *Client) Play(ctx context.Context, mediaURL, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	session, err := c.dial(ctx, c.addr, c.port)
	if err != nil {
		return fmt.Errorf("connect to cast device %s:%d: %w", c.addr, c.port, err)
	}
	defer func() { _ = session.Close(false) }()

	if err := session.Load(mediaURL, 0, contentType, false, true, false); err != nil {
		return fmt.Errorf("load media on %s:%d: %w", c.addr, c.port, err)
	}
	return nil
}

func defaultDial(_ context.Context, addr string, port int) (Session, error) {
	app := application.NewApplication()
	if err := app.Start(addr, port); err != nil {
		return nil, err
	}
	return app, nil
}
