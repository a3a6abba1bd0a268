package palns

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ProgressSnapshot is what the Broadcaster ships to connected viewers: the
// best objective seen so far and when it was observed. It deliberately
// excludes the solution body itself — the core has no business encoding a
// caller's opaque Solution to JSON, so callers that want the full
// solution in the stream should marshal it themselves via a Solution that
// implements json.Marshaler and widen this struct's Extra field.
type ProgressSnapshot struct {
	Objective float64     `json:"objective"`
	Timestamp time.Time   `json:"timestamp"`
	Extra     interface{} `json:"extra,omitempty"`
}

// Broadcaster streams ProgressSnapshots to WebSocket viewers, generalizing
// the optional progress callback of §6 into a live feed. It is grounded
// in the teacher's own concurrentanalyticsadashboard connection-management
// pattern: a registry of connections guarded by its own mutex, each with
// a buffered send queue so a slow viewer never blocks the worker that
// produced the update.
type Broadcaster struct {
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	conns map[string]*subscriber

	nextID int
}

type subscriber struct {
	send chan []byte
}

// NewBroadcaster creates a Broadcaster ready to accept connections at its
// ServeHTTP handler.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		conns: make(map[string]*subscriber),
	}
}

// ServeHTTP upgrades the request to a WebSocket and registers the
// resulting connection as a subscriber until it disconnects.
func (b *Broadcaster) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("palns: websocket upgrade failed: %v", err)
		return
	}

	b.mu.Lock()
	b.nextID++
	id := b.nextID
	sub := &subscriber{send: make(chan []byte, 32)}
	key := subscriberKey(id)
	b.conns[key] = sub
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		delete(b.conns, key)
		b.mu.Unlock()
		conn.Close()
	}()

	for data := range sub.send {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}

// publish marshals snap and fans it out to every connected subscriber,
// dropping the message for any subscriber whose queue is full rather
// than blocking the worker goroutine that called it.
func (b *Broadcaster) publish(best Solution) {
	if best == nil {
		return
	}
	snap := ProgressSnapshot{Objective: best.Objective(), Timestamp: time.Now()}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.conns {
		select {
		case sub.send <- data:
		default:
		}
	}
}

func subscriberKey(id int) string {
	return "sub-" + strconv.Itoa(id)
}
