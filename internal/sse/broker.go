// Package sse implements a Server-Sent Events broker that streams resolved
// beat calls to observers.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/starford/collabeat/internal/models"
)

// Event types.
const (
	EventExecuted = "beat.executed"
	EventMinted   = "beat.minted"
	EventRejected = "beat.rejected"
)

const (
	clientBuffer     = 64
	defaultHistory   = clientBuffer
	defaultKeepAlive = 15 * time.Second
)

// Event represents an SSE event to broadcast.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// CallData is the payload of beat.* events.
type CallData struct {
	Op         string                 `json:"op"`
	TokenKey   string                 `json:"token_key"`
	ContractID string                 `json:"meta_contract_id"`
	Entries    []models.FinalMetadata `json:"metadatas"`
	Error      string                 `json:"error,omitempty"`
}

type frame struct {
	id  uint64
	raw []byte
}

type subscription struct {
	ch    chan []byte
	after uint64
}

// Broker manages SSE client connections and broadcasts events.
//
// A single internal event loop owns the client set and the replay history.
// Public methods talk to it through channels. Every event gets an increasing
// id; a client reconnecting with Last-Event-ID receives the retained events
// it missed.
type Broker struct {
	subscribeCh   chan subscription
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	countReqCh    chan chan int

	history   int
	keepAlive time.Duration

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithHistory sets how many recent events are kept for replay. At most
// one client buffer's worth is replayed.
func WithHistory(n int) BrokerOption {
	return func(b *Broker) { b.history = n }
}

// WithKeepAlive sets the interval of the comment lines ServeHTTP writes to
// idle streams. Zero disables them.
func WithKeepAlive(d time.Duration) BrokerOption {
	return func(b *Broker) { b.keepAlive = d }
}

// NewBroker creates a new SSE broker and starts its event loop.
func NewBroker(opts ...BrokerOption) *Broker {
	b := &Broker{
		subscribeCh:   make(chan subscription),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		countReqCh:    make(chan chan int),
		history:       defaultHistory,
		keepAlive:     defaultKeepAlive,
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
	var recent []frame
	var lastID uint64

	broadcast := func(event Event) {
		payload, err := json.Marshal(event.Data)
		if err != nil {
			return
		}
		lastID++
		f := frame{id: lastID, raw: fmt.Appendf(nil, "event: %s\nid: %d\ndata: %s\n\n", event.Type, lastID, payload)}
		if b.history > 0 {
			recent = append(recent, f)
			if len(recent) > b.history {
				recent = recent[len(recent)-b.history:]
			}
		}

		for ch := range clients {
			select {
			case ch <- f.raw:
			default:
				// Slow client; drop rather than block the loop.
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
			if sub.after == 0 {
				continue
			}
			for _, f := range recent {
				if f.id <= sub.after {
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
	return b.SubscribeAfter(0)
}

// SubscribeAfter adds a new client that first receives the retained events
// with an id greater than lastID. A zero lastID replays nothing.
func (b *Broker) SubscribeAfter(lastID uint64) chan []byte {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- subscription{ch: ch, after: lastID}:
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

// PublishCall publishes the outcome of an execute or mint call: beat.executed
// or beat.minted on success, beat.rejected otherwise.
func (b *Broker) PublishCall(op string, contract models.Contract, res models.CallResult) {
	data := CallData{
		Op:         op,
		TokenKey:   contract.TokenKey,
		ContractID: contract.ContractID,
		Entries:    res.Entries,
		Error:      res.ErrorText,
	}
	typ := EventRejected
	if res.Succeeded {
		switch op {
		case "execute":
			typ = EventExecuted
		case "mint":
			typ = EventMinted
		}
	}
	b.Publish(Event{Type: typ, Data: data})
}

// ServeHTTP is the SSE endpoint handler (GET /api/events). It honours the
// Last-Event-ID header sent by reconnecting EventSource clients.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	lastID, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch := b.SubscribeAfter(lastID)
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
