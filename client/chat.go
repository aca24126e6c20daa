package client

import (
	"context"
	"encoding/json"
)

// ChatRoom is a travel's live chat over the realtime channel. Messages
// broadcast to every subscriber, including the sender; history persists
// server-side and is backfilled over REST on join.
type ChatRoom struct {
	client   *Client
	channel  *SyncChannel
	travelID string
	sender   string
}

// chatBody is the JSON payload published on chat topics
type chatBody struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// JoinChat subscribes to a travel's chat topic. The sender name rides on
// every outgoing message.
func (c *Client) JoinChat(ch *SyncChannel, travelID, sender string) (*ChatRoom, error) {
	if err := ch.Subscribe(ChatTopic(travelID)); err != nil {
		return nil, err
	}
	return &ChatRoom{client: c, channel: ch, travelID: travelID, sender: sender}, nil
}

// Send publishes a message to the room. The local copy arrives via the hub
// echo like everyone else's, so render order matches across participants.
func (r *ChatRoom) Send(content string) error {
	if content == "" {
		return nil
	}
	body, err := json.Marshal(chatBody{Sender: r.sender, Content: content})
	if err != nil {
		return err
	}
	return r.channel.Publish(ChatTopic(r.travelID), string(body))
}

// OnMessage registers a handler for messages broadcast in this room.
// Handlers run on the receive goroutine and must not block.
func (r *ChatRoom) OnMessage(fn func(sender, content string)) {
	topic := ChatTopic(r.travelID)
	r.channel.OnFrame(func(frameTopic, frameBody string) {
		if frameTopic != topic {
			return
		}
		var msg chatBody
		if err := json.Unmarshal([]byte(frameBody), &msg); err != nil || msg.Content == "" {
			return
		}
		fn(msg.Sender, msg.Content)
	})
}

// History returns the room's persisted messages, oldest first
func (r *ChatRoom) History(ctx context.Context) ([]ChatMessage, error) {
	return r.client.ChatHistory(ctx, r.travelID)
}

// Leave unsubscribes from the room's topic
func (r *ChatRoom) Leave() error {
	return r.channel.Unsubscribe(ChatTopic(r.travelID))
}
