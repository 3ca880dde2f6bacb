// Package publish hands a finished plan to a scheduler over socket.io.
package publish

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/url"
	"time"

	"github.com/specialistvlad/pathforge/internal/ctxlog"
	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Config describes where and how to publish.
type Config struct {
	URL                string
	Namespace          string
	Event              string
	AckEvent           string
	Timeout            time.Duration
	InsecureSkipVerify bool
}

// conn is the part of a socket.io client the publisher needs.
type conn interface {
	Once(event string, fn func(...any))
	Emit(event string, data any) error
	ID() string
	Close()
}

type dialFunc func(ctx context.Context, cfg Config) (conn, error)

// Publisher emits plan summaries.
type Publisher struct {
	cfg  Config
	dial dialFunc
}

// New returns a Publisher that connects over websocket.
func New(cfg Config) *Publisher {
	if cfg.Namespace == "" {
		cfg.Namespace = "/"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Publisher{cfg: cfg, dial: dialSocket}
}

// Publish connects, emits payload on the configured event and, when an ack
// event is configured, waits for it. It returns the first argument of the
// ack event, or nil.
func (p *Publisher) Publish(ctx context.Context, payload map[string]any) (any, error) {
	logger := ctxlog.FromContext(ctx).With("component", "publish", "url", p.cfg.URL, "event", p.cfg.Event)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	c, err := p.dial(ctx, p.cfg)
	if err != nil {
		return nil, err
	}
	defer c.Close()
	logger = logger.With("sid", c.ID())

	acked := make(chan any, 1)
	if p.cfg.AckEvent != "" {
		c.Once(p.cfg.AckEvent, func(data ...any) {
			var first any
			if len(data) > 0 {
				first = data[0]
			}
			offer(acked, first)
		})
	}

	logger.Debug("Emitting plan.")
	if err := c.Emit(p.cfg.Event, payload); err != nil {
		return nil, fmt.Errorf("failed to emit %q: %w", p.cfg.Event, err)
	}
	if p.cfg.AckEvent == "" {
		logger.Info("Plan published.")
		return nil, nil
	}

	select {
	case data := <-acked:
		logger.Info("Plan acknowledged.", "ack_event", p.cfg.AckEvent)
		return data, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("timed out after %v waiting for %q", p.cfg.Timeout, p.cfg.AckEvent)
	}
}

type socketConn struct {
	io *socket.Socket
}

func (s *socketConn) Once(event string, fn func(...any)) {
	s.io.Once(types.EventName(event), fn)
}

func (s *socketConn) Emit(event string, data any) error { return s.io.Emit(event, data) }
func (s *socketConn) ID() string                        { return s.io.Id() }
func (s *socketConn) Close()                            { s.io.Disconnect() }

// offer sends v unless ch is already full. Socket callbacks must not block
// once the waiter has gone.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// dialSocket opens a websocket-only socket.io connection and waits for the
// connect event.
func dialSocket(ctx context.Context, cfg Config) (conn, error) {
	logger := ctxlog.FromContext(ctx).With("component", "publish", "url", cfg.URL)

	parsedURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("scheduler URL %q must include scheme and host", cfg.URL)
	}

	opts := socket.DefaultOptions()
	if parsedURL.Path != "" {
		opts.SetPath(parsedURL.Path)
	}
	if cfg.InsecureSkipVerify {
		logger.Warn("Skipping TLS certificate verification")
		opts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	opts.SetTransports(types.NewSet(transports.WebSocket))

	connected := make(chan error, 1)

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	manager := socket.NewManager(baseURL, opts)
	io := manager.Socket(cfg.Namespace, opts)

	io.Once(types.EventName("connect"), func(...any) {
		logger.Debug("Connected.", "sid", io.Id())
		offer(connected, nil)
	})
	io.Once(types.EventName("connect_error"), func(errs ...any) {
		err := fmt.Errorf("connect_error")
		if len(errs) > 0 {
			if e, ok := errs[0].(error); ok {
				err = e
			}
		}
		offer(connected, err)
	})

	io.Connect()

	select {
	case err := <-connected:
		if err != nil {
			io.Disconnect()
			return nil, fmt.Errorf("socket.io connection failed: %w", err)
		}
		return &socketConn{io: io}, nil
	case <-ctx.Done():
		io.Disconnect()
		return nil, fmt.Errorf("gave up waiting for socket.io connection: %w", ctx.Err())
	}
}
