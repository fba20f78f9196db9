package client

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"pollchat/internal/model"
)

// DefaultInterval is the chat view refresh cadence
const DefaultInterval = 2 * time.Second

// ErrEmptyInput is returned by Send when name or content is blank
var ErrEmptyInput = errors.New("name and content are required")

// Poller keeps a local copy of the message list in sync with the server.
//
// Every tick starts its own fetch without waiting for earlier ones, so
// responses can land out of order; whichever arrives last replaces the list.
type Poller struct {
	api      *API
	log      *slog.Logger
	interval time.Duration
	onUpdate func([]model.Message)

	mu       sync.Mutex
	messages []model.Message
	inflight sync.WaitGroup
}

// NewPoller builds a poller. onUpdate may be nil; it is called with each new
// list while the poller's lock is held, so it must not call back into the poller.
func NewPoller(api *API, log *slog.Logger, interval time.Duration, onUpdate func([]model.Message)) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		api:      api,
		log:      log,
		interval: interval,
		onUpdate: onUpdate,
		messages: []model.Message{},
	}
}

// Messages returns a copy of the current list
func (p *Poller) Messages() []model.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Message, len(p.messages))
	copy(out, p.messages)
	return out
}

// Refresh fetches the list once and replaces the local copy wholesale.
func (p *Poller) Refresh(ctx context.Context) error {
	msgs, err := p.api.List(ctx)
	if err != nil {
		p.log.Warn("Error fetching messages", "error", err)
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = msgs
	if p.onUpdate != nil {
		p.onUpdate(msgs)
	}
	return nil
}

// Run polls until ctx is done. Fetch failures are logged and polling continues.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	defer p.inflight.Wait()

	p.refreshAsync(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.refreshAsync(ctx)
		}
	}
}

func (p *Poller) refreshAsync(ctx context.Context) {
	p.inflight.Add(1)
	go func() {
		defer p.inflight.Done()
		_ = p.Refresh(ctx)
	}()
}

// Send posts a message and re-fetches right away on success.
func (p *Poller) Send(ctx context.Context, name, content string) error {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(content) == "" {
		return ErrEmptyInput
	}

	if err := p.api.Post(ctx, name, content); err != nil {
		p.log.Warn("Error sending message", "error", err)
		return err
	}
	return p.Refresh(ctx)
}

// Watch subscribes to the server's change feed and refreshes on every event.
// It returns when ctx is done or the connection drops; polling via Run is
// unaffected either way.
func (p *Poller) Watch(ctx context.Context) error {
	header := http.Header{}
	header.Set("Origin", p.api.Origin())

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, p.api.WatchURL(), header)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		var event model.ChangeEvent
		if err := conn.ReadJSON(&event); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		p.log.Debug("change event", "type", event.Type, "id", event.ID)
		go p.Refresh(ctx)
	}
}
