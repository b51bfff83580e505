// Package server bridges the browser extension and the engine over a
// single WebSocket. The extension forwards tab events and runtime messages;
// the host sends page requests, add-on lookups and themes back.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/tabtint/internal/engine"
	"github.com/jmylchreest/tabtint/internal/messaging"
	"github.com/jmylchreest/tabtint/internal/scheme"
	"github.com/jmylchreest/tabtint/internal/signal"
	"github.com/jmylchreest/tabtint/internal/sink"
)

var (
	// ErrNotConnected is returned when no extension is connected.
	ErrNotConnected = errors.New("extension not connected")
	// ErrTimeout is returned when the extension does not answer in time.
	ErrTimeout = errors.New("extension request timed out")
)

const (
	sendBuffer = 32
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Controller receives browser events. It is implemented by engine.Engine.
type Controller interface {
	messaging.Backend
	TabActivated(tab engine.Tab)
	TabUpdated(tab engine.Tab)
	TabAttached(tab engine.Tab)
	TabRemoved(tabID, windowID int)
	WindowRemoved(windowID int)
	WindowFocused(windowID int)
	SetSchemeOverride(value string)
	SetSystemScheme(s scheme.Scheme)
}

// Options configures a Bridge.
type Options struct {
	AllowedOrigins []string
	// RequestTimeout bounds requests whose context has no deadline.
	RequestTimeout time.Duration
	Logger         hclog.Logger
}

// Bridge implements engine.PageContext, protected.AddonRegistry and
// sink.Sink on top of the extension connection.
type Bridge struct {
	logger   hclog.Logger
	upgrader websocket.Upgrader
	timeout  time.Duration
	nextID   atomic.Uint64

	mu         sync.RWMutex
	controller Controller
	handler    *messaging.Handler
	conn       *client
}

// New creates a bridge. Attach must be called before frames are dispatched.
func New(opts Options) *Bridge {
	logger := opts.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	logger = logger.Named("bridge")
	b := &Bridge{
		logger:  logger,
		timeout: opts.RequestTimeout,
	}
	b.upgrader = websocket.Upgrader{CheckOrigin: originChecker(opts.AllowedOrigins, logger.Warn)}
	return b
}

// Attach sets the controller that incoming frames are dispatched to.
func (b *Bridge) Attach(c Controller) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.controller = c
	b.handler = messaging.NewHandler(c, b.logger.Named("messaging"))
}

// Connected reports whether an extension is connected.
func (b *Bridge) Connected() bool {
	return b.current() != nil
}

func (b *Bridge) current() *client {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.conn
}

func (b *Bridge) dispatcher() (Controller, *messaging.Handler) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.controller, b.handler
}

// ServeWS upgrades the request and serves the connection until it closes.
// A new connection replaces the previous one.
func (b *Bridge) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Error("WebSocket upgrade failed", "error", err)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	c := &client{
		ws:      ws,
		send:    make(chan Frame, sendBuffer),
		done:    make(chan struct{}),
		pending: make(map[uint64]chan Frame),
		ctx:     ctx,
	}

	b.mu.Lock()
	prev := b.conn
	b.conn = c
	b.mu.Unlock()
	if prev != nil {
		b.logger.Info("replacing extension connection")
		prev.close()
	}
	b.logger.Info("extension connected", "remote", r.RemoteAddr)

	go c.writeLoop(b.logger)
	b.readLoop(c)

	cancel()
	c.close()
	b.mu.Lock()
	if b.conn == c {
		b.conn = nil
	}
	b.mu.Unlock()
	b.logger.Info("extension disconnected", "remote", r.RemoteAddr)

}

func (b *Bridge) readLoop(c *client) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in WebSocket reader", "panic", r)
		}
	}()

	c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var f Frame
		if err := c.ws.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				b.logger.Debug("WebSocket read failed", "error", err)
			}
			return
		}
		if err := validate.Struct(&f); err != nil {
			b.logger.Warn("dropping invalid frame", "error", err)
			continue
		}
		b.dispatch(c, f)
	}
}

func (b *Bridge) dispatch(c *client, f Frame) {
	if f.Kind == KindResponse {
		c.resolve(f)
		return
	}

	ctrl, handler := b.dispatcher()
	if ctrl == nil {
		b.logger.Warn("dropping frame before engine attached", "kind", f.Kind)
		return
	}

	switch f.Kind {
	case KindMessage:
		// Handlers may issue requests of their own, so they must not block
		// the reader that delivers the responses.
		go b.handleMessage(c, handler, f)

	case KindTabActivated, KindTabUpdated, KindTabAttached:
		if f.Tab == nil {
			b.logger.Warn("tab event without tab", "kind", f.Kind)
			return
		}
		switch f.Kind {
		case KindTabActivated:
			ctrl.TabActivated(*f.Tab)
		case KindTabUpdated:
			ctrl.TabUpdated(*f.Tab)
		default:
			ctrl.TabAttached(*f.Tab)
		}

	case KindTabRemoved:
		ctrl.TabRemoved(f.TabID, f.WindowID)

	case KindWindowRemoved:
		ctrl.WindowRemoved(f.WindowID)

	case KindWindowFocused:
		ctrl.WindowFocused(f.WindowID)

	case KindSchemeOverride:
		ctrl.SetSchemeOverride(f.Scheme)

	case KindSchemeSystem:
		s, err := scheme.Parse(f.Scheme)
		if err != nil {
			b.logger.Warn("ignoring system scheme", "error", err)
			return
		}
		ctrl.SetSystemScheme(s)

	default:
		b.logger.Warn("unknown frame kind", "kind", f.Kind)
	}
}

func (b *Bridge) handleMessage(c *client, handler *messaging.Handler, f Frame) {
	reply := Frame{Kind: KindResponse, ID: f.ID}
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic in message handler", "panic", r)
			reply.Error = "internal error"
			reply.Payload = nil
		}
		if f.ID != 0 {
			c.enqueue(reply)
		}
	}()

	var sender messaging.Sender
	if f.Sender != nil {
		sender = *f.Sender
	}
	resp, err := handler.Handle(c.ctx, sender, f.Payload)
	if err != nil {
		b.logger.Debug("message failed", "error", err)
		reply.Error = err.Error()
		return
	}
	if resp != nil {
		data, err := json.Marshal(resp)
		if err != nil {
			reply.Error = err.Error()
			return
		}
		reply.Payload = data
	}
}

// request sends f and waits for the matching response.
func (b *Bridge) request(ctx context.Context, f Frame) (Frame, error) {
	c := b.current()
	if c == nil {
		return Frame{}, ErrNotConnected
	}
	if _, ok := ctx.Deadline(); !ok && b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	f.ID = b.nextID.Add(1)
	ch := c.await(f.ID)
	defer c.forget(f.ID)

	if !c.enqueue(f) {
		return Frame{}, ErrNotConnected
	}

	select {
	case resp := <-ch:
		if resp.Error != "" {
			return Frame{}, fmt.Errorf("%s failed: %s", f.Kind, resp.Error)
		}
		return resp, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Frame{}, fmt.Errorf("%w: %s", ErrTimeout, f.Kind)
		}
		return Frame{}, ctx.Err()
	case <-c.done:
		return Frame{}, ErrNotConnected
	}
}

// RequestColour implements engine.PageContext.
func (b *Bridge) RequestColour(ctx context.Context, tabID int, req messaging.GetColour) (signal.Bundle, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return signal.Bundle{}, err
	}
	resp, err := b.request(ctx, Frame{Kind: KindTabSend, TabID: tabID, Payload: payload})
	if err != nil {
		return signal.Bundle{}, err
	}
	var bundle signal.Bundle
	if err := json.Unmarshal(resp.Payload, &bundle); err != nil {
		return signal.Bundle{}, fmt.Errorf("invalid signal bundle: %w", err)
	}
	return bundle, nil
}

// SetThemeColour implements engine.PageContext.
func (b *Bridge) SetThemeColour(_ context.Context, tabID int, msg messaging.SetThemeColour) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return b.notify(Frame{Kind: KindTabNotify, TabID: tabID, Payload: payload})
}

// AddonID implements protected.AddonRegistry.
func (b *Bridge) AddonID(ctx context.Context, uuid string) (string, bool, error) {
	payload, err := json.Marshal(AddonQuery{UUID: uuid})
	if err != nil {
		return "", false, err
	}
	resp, err := b.request(ctx, Frame{Kind: KindAddonLookup, Payload: payload})
	if err != nil {
		return "", false, err
	}
	var answer AddonAnswer
	if err := json.Unmarshal(resp.Payload, &answer); err != nil {
		return "", false, fmt.Errorf("invalid add-on answer: %w", err)
	}
	return answer.ID, answer.Found && answer.ID != "", nil
}

// Apply implements sink.Sink.
func (b *Bridge) Apply(_ context.Context, u sink.Update) error {
	payload, err := json.Marshal(u.Theme)
	if err != nil {
		return err
	}
	return b.notify(Frame{Kind: KindThemeUpdate, WindowID: u.WindowID, Payload: payload})
}

func (b *Bridge) notify(f Frame) error {
	c := b.current()
	if c == nil || !c.enqueue(f) {
		return ErrNotConnected
	}
	return nil
}
