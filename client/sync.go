package client

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// SyncSentinel is the opaque body published on a travel's sync topic after a
// successful mutation. Receivers refetch; the body carries no diff.
const SyncSentinel = "PLAN_UPDATED"

// SyncTopic returns the sync notification topic for a travel
func SyncTopic(travelID string) string { return "travels/" + travelID }

// ChatTopic returns the chat topic for a travel
func ChatTopic(travelID string) string { return "chat/travels/" + travelID }

// frame is the wire format exchanged with the hub
type frame struct {
	Action string `json:"action,omitempty"`
	Topic  string `json:"topic"`
	Body   string `json:"body,omitempty"`
}

// SyncChannel is one WebSocket connection to the hub. Subscriptions are
// remembered and replayed after every reconnect; frames published while
// disconnected are dropped, and the reconnect callback is the reconciliation
// point for whatever was missed.
type SyncChannel struct {
	client *Client
	wsURL  string

	mu          sync.Mutex
	conn        *websocket.Conn
	topics      map[string]bool
	onFrame     []func(topic, body string)
	onReconnect []func()
	closed      bool

	done chan struct{}
	wg   sync.WaitGroup
}

// OpenSyncChannel dials the hub and starts the receive loop. The initial dial
// is synchronous so callers learn immediately when the endpoint is
// unreachable; later drops reconnect in the background.
func (c *Client) OpenSyncChannel(ctx context.Context) (*SyncChannel, error) {
	ch := &SyncChannel{
		client: c,
		wsURL:  websocketURL(c.baseURL, c.session.Token()),
		topics: make(map[string]bool),
		done:   make(chan struct{}),
	}

	conn, err := ch.dial(ctx)
	if err != nil {
		return nil, err
	}
	ch.conn = conn

	ch.wg.Add(1)
	go ch.readLoop()

	c.channels = append(c.channels, ch)
	return ch, nil
}

// websocketURL derives the ws endpoint from the REST base URL. The token
// rides in the query because browser-grade WebSocket APIs cannot set headers
// and the server accepts both.
func websocketURL(baseURL, token string) string {
	ws := strings.Replace(baseURL, "https://", "wss://", 1)
	ws = strings.Replace(ws, "http://", "ws://", 1)
	return ws + "/ws?token=" + url.QueryEscape(token)
}

func (ch *SyncChannel) dial(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, ch.wsURL, nil)
	return conn, err
}

// Subscribe starts delivery for a topic, persisting across reconnects
func (ch *SyncChannel) Subscribe(topic string) error {
	ch.mu.Lock()
	ch.topics[topic] = true
	conn := ch.conn
	ch.mu.Unlock()

	if conn == nil {
		return nil // replayed once the connection comes back
	}
	return ch.send(frame{Action: "subscribe", Topic: topic})
}

// Unsubscribe stops delivery for a topic
func (ch *SyncChannel) Unsubscribe(topic string) error {
	ch.mu.Lock()
	delete(ch.topics, topic)
	conn := ch.conn
	ch.mu.Unlock()

	if conn == nil {
		return nil
	}
	return ch.send(frame{Action: "unsubscribe", Topic: topic})
}

// Publish broadcasts body on topic. Fire and forget: the hub echoes the
// frame back to this connection too, and that echo drives the local refetch.
func (ch *SyncChannel) Publish(topic, body string) error {
	return ch.send(frame{Action: "publish", Topic: topic, Body: body})
}

// OnFrame registers a handler for every broadcast frame received.
// Handlers run on the receive goroutine and must not block.
func (ch *SyncChannel) OnFrame(fn func(topic, body string)) {
	ch.mu.Lock()
	ch.onFrame = append(ch.onFrame, fn)
	ch.mu.Unlock()
}

// OnReconnect registers a handler invoked after the channel re-establishes
// and replays its subscriptions. Use it to refetch state that may have
// changed while disconnected.
func (ch *SyncChannel) OnReconnect(fn func()) {
	ch.mu.Lock()
	ch.onReconnect = append(ch.onReconnect, fn)
	ch.mu.Unlock()
}

// Close tears the connection down and stops reconnecting
func (ch *SyncChannel) Close() {
	ch.mu.Lock()
	if ch.closed {
		ch.mu.Unlock()
		return
	}
	ch.closed = true
	close(ch.done)
	if ch.conn != nil {
		ch.conn.Close()
	}
	ch.mu.Unlock()
	ch.wg.Wait()
}

func (ch *SyncChannel) send(f frame) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.conn == nil {
		return ErrChannelDown
	}
	return ch.conn.WriteJSON(f)
}

// readLoop consumes broadcast frames, reconnecting on failure
func (ch *SyncChannel) readLoop() {
	defer ch.wg.Done()

	for {
		ch.mu.Lock()
		conn := ch.conn
		ch.mu.Unlock()

		for conn != nil {
			_, data, err := conn.ReadMessage()
			if err != nil {
				break
			}
			var f frame
			if err := json.Unmarshal(data, &f); err != nil || f.Topic == "" {
				continue
			}
			syncFramesReceived.WithLabelValues(topicKind(f.Topic)).Inc()
			ch.mu.Lock()
			handlers := make([]func(string, string), len(ch.onFrame))
			copy(handlers, ch.onFrame)
			ch.mu.Unlock()
			for _, fn := range handlers {
				fn(f.Topic, f.Body)
			}
		}

		if !ch.reconnect() {
			return
		}
	}
}

// reconnect dials until success or Close, then replays subscriptions.
// Returns false when the channel is closed.
func (ch *SyncChannel) reconnect() bool {
	ch.mu.Lock()
	if ch.conn != nil {
		ch.conn.Close()
		ch.conn = nil
	}
	ch.mu.Unlock()

	policy := ch.client.backoffFactory()
	for {
		select {
		case <-ch.done:
			return false
		default:
		}

		conn, err := ch.dial(context.Background())
		if err == nil {
			ch.mu.Lock()
			ch.conn = conn
			topics := make([]string, 0, len(ch.topics))
			for t := range ch.topics {
				topics = append(topics, t)
			}
			callbacks := make([]func(), len(ch.onReconnect))
			copy(callbacks, ch.onReconnect)
			ch.mu.Unlock()

			for _, t := range topics {
				_ = ch.send(frame{Action: "subscribe", Topic: t})
			}
			syncReconnects.Inc()
			ch.client.log.Info().Int("topics", len(topics)).Msg("realtime channel reconnected")
			for _, fn := range callbacks {
				fn()
			}
			return true
		}

		wait := policy.NextBackOff()
		ch.client.log.Warn().Err(err).Dur("retry_in", wait).Msg("realtime dial failed")
		select {
		case <-ch.done:
			return false
		case <-time.After(wait):
		}
	}
}

// topicKind labels metrics without exploding cardinality on travel IDs
func topicKind(topic string) string {
	if strings.HasPrefix(topic, "chat/") {
		return "chat"
	}
	return "sync"
}
