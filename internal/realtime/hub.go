package realtime

import (
	"log"
	"sync/atomic"

	"github.com/google/uuid"
)

// SyncSentinel is the opaque body published on a travel's sync topic whenever
// itinerary or sharing state changes. It carries no diff; receivers refetch.
const SyncSentinel = "PLAN_UPDATED"

// SyncTopic returns the sync notification topic for a travel
func SyncTopic(travelID uuid.UUID) string {
	return "travels/" + travelID.String()
}

// ChatTopic returns the chat topic for a travel
func ChatTopic(travelID uuid.UUID) string {
	return "chat/travels/" + travelID.String()
}

// Frame is the wire format exchanged over the WebSocket connection.
// Clients send {action, topic, body}; the hub broadcasts {topic, body}.
type Frame struct {
	Action string `json:"action,omitempty"` // subscribe | unsubscribe | publish
	Topic  string `json:"topic"`
	Body   string `json:"body,omitempty"`
}

type subscription struct {
	conn  *Conn
	topic string
}

type publication struct {
	topic string
	body  string
}

// Hub fans published frames out to every connection subscribed to the frame's
// topic, including the publisher itself. The echo is intentional: the
// originating client relies on its own notification to trigger a refetch.
type Hub struct {
	topics     map[string]map[*Conn]bool
	topicCount atomic.Int64

	subscribe   chan subscription
	unsubscribe chan subscription
	detach      chan *Conn
	publish     chan publication
	done        chan struct{}

	// OnPublish, when set, observes every publication before fanout.
	// Used to persist chat messages so REST history converges.
	OnPublish func(topic, body string)
}

// NewHub creates a hub; call Run in a goroutine before use
func NewHub() *Hub {
	return &Hub{
		topics:      make(map[string]map[*Conn]bool),
		subscribe:   make(chan subscription),
		unsubscribe: make(chan subscription),
		detach:      make(chan *Conn),
		publish:     make(chan publication, 64),
		done:        make(chan struct{}),
	}
}

// Run processes subscriptions and publications until Stop is called
func (h *Hub) Run() {
	for {
		select {
		case sub := <-h.subscribe:
			conns := h.topics[sub.topic]
			if conns == nil {
				conns = make(map[*Conn]bool)
				h.topics[sub.topic] = conns
			}
			conns[sub.conn] = true

		case sub := <-h.unsubscribe:
			if conns := h.topics[sub.topic]; conns != nil {
				delete(conns, sub.conn)
				if len(conns) == 0 {
					delete(h.topics, sub.topic)
				}
			}

		case conn := <-h.detach:
			h.drop(conn)

		case pub := <-h.publish:
			if h.OnPublish != nil {
				h.OnPublish(pub.topic, pub.body)
			}
			frame := Frame{Topic: pub.topic, Body: pub.body}
			for conn := range h.topics[pub.topic] {
				if !conn.enqueue(frame) {
					// Send buffer full: the consumer is not keeping up. It
					// must leave the topic maps together with the close, or
					// the next publish would hit its closed channel. The
					// client reconciles via REST on reconnect.
					log.Printf("realtime: dropping slow consumer on %s", pub.topic)
					h.drop(conn)
				}
			}

		case <-h.done:
			for _, conns := range h.topics {
				for conn := range conns {
					conn.close()
				}
			}
			return
		}
		h.topicCount.Store(int64(len(h.topics)))
	}
}

// drop closes a connection's send channel and removes it from every topic
func (h *Hub) drop(conn *Conn) {
	conn.close()
	for topic, conns := range h.topics {
		if conns[conn] {
			delete(conns, conn)
			if len(conns) == 0 {
				delete(h.topics, topic)
			}
		}
	}
}

// TopicCount reports how many topics currently hold subscribers
func (h *Hub) TopicCount() int {
	return int(h.topicCount.Load())
}

// Stop shuts the hub down and closes all connections
func (h *Hub) Stop() {
	close(h.done)
}

// Publish broadcasts body on topic from outside a connection (e.g. tests)
func (h *Hub) Publish(topic, body string) {
	h.publish <- publication{topic: topic, body: body}
}
