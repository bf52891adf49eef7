// Package sse streams proof and workspace changes to browsers as
// Server-Sent Events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"
)

// Event types.
const (
	EventProofCompleted = "proof.completed"
	EventHistoryUpdated = "history.updated"
)

const (
	clientBuffer     = 64
	defaultReplay    = 128
	defaultKeepAlive = 15 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// frame is an encoded event with its stream id.
type frame struct {
	id  uint64
	raw []byte
}

// subscription asks the loop to add a client. Frames newer than lastID
// are replayed to it first.
type subscription struct {
	ch     chan []byte
	lastID uint64
}

// Option configures a Broker.
type Option func(*Broker)

// WithKeepAlive sets the interval of the comment lines ServeHTTP writes to
// idle streams. Zero or negative disables them.
func WithKeepAlive(d time.Duration) Option {
	return func(b *Broker) { b.keepAlive = d }
}

// WithReplay sets how many recent events are kept for clients that
// reconnect with Last-Event-ID.
func WithReplay(n int) Option {
	return func(b *Broker) { b.replay = max(n, 0) }
}

// Broker manages SSE client connections and broadcasts events.
//
// A single event loop goroutine owns the client set, the replay ring, the
// event counter and the history throttle timestamp; public methods talk to
// it over channels.
type Broker struct {
	historyMin time.Duration
	keepAlive  time.Duration
	replay     int

	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	changeCh      chan Event
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a broker that emits history.updated at most once per
// historyThrottle.
func NewBroker(historyThrottle time.Duration, opts ...Option) *Broker {
	if historyThrottle <= 0 {
		historyThrottle = 2 * time.Second
	}

	b := &Broker{
		historyMin:    historyThrottle,
		keepAlive:     defaultKeepAlive,
		replay:        defaultReplay,
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		changeCh:      make(chan Event, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	recent := make([]frame, 0, b.replay)
	var seq uint64
	var lastHistory time.Time

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		seq++
		raw := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, event.Type, payload))

		if b.replay > 0 {
			if len(recent) == b.replay {
				recent = append(recent[:0], recent[1:]...)
			}
			recent = append(recent, frame{id: seq, raw: raw})
		}

		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	for {
		select {
		case <-b.stopCh:
			for ch := range clients {
				close(ch)
			}
			return

		case sub := <-b.subscribeCh:
			clients[sub.ch] = struct{}{}
			if sub.lastID == 0 {
				continue
			}
			for _, f := range recent {
				if f.id <= sub.lastID {
					continue
				}
				select {
				case sub.ch <- f.raw:
				default:
				}
			}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case event := <-b.changeCh:
			broadcast(event)

			now := time.Now()
			if now.Sub(lastHistory) >= b.historyMin {
				lastHistory = now
				broadcast(Event{Type: EventHistoryUpdated, Data: map[string]string{}})
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	return b.SubscribeFrom(0)
}

// SubscribeFrom adds a client that first receives the retained events with
// an id greater than lastID.
func (b *Broker) SubscribeFrom(lastID uint64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, lastID: lastID}:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishProof announces a completed proof and a throttled history.updated.
func (b *Broker) PublishProof(checksum string, valid bool) {
	verdict := "invalid"
	if valid {
		verdict = "valid"
	}
	b.publishChange(Event{
		Type: EventProofCompleted,
		Data: map[string]string{"checksum": checksum, "verdict": verdict},
	})
}

// PublishWorkspaceEvent announces a workspace file change (created, updated
// or deleted) and a throttled history.updated. Unknown kinds are dropped.
func (b *Broker) PublishWorkspaceEvent(kind, path string) {
	switch kind {
	case "created", "updated", "deleted":
	default:
		return
	}
	b.publishChange(Event{Type: "workspace." + kind, Data: map[string]string{"path": path}})
}

func (b *Broker) publishChange(e Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changeCh <- e:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). A Last-Event-ID
// header resumes the stream after that event when it is still retained.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	ch := b.SubscribeFrom(lastID)
	defer b.Unsubscribe(ch)

	var ping <-chan time.Time
	if b.keepAlive > 0 {
		t := time.NewTicker(b.keepAlive)
		defer t.Stop()
		ping = t.C
	}

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ping:
			_, _ = w.Write([]byte(": ping\n\n"))
			flusher.Flush()
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}
