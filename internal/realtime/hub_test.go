package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/middleware"
)

func startTestHub(t *testing.T) (*Hub, *httptest.Server, *config.JWTConfig) {
	t.Helper()

	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	jwtCfg := &config.JWTConfig{Secret: "hub-test-secret", AccessTokenTTL: time.Hour}
	rtCfg := &config.RealtimeConfig{
		WriteWait:      5 * time.Second,
		PongWait:       30 * time.Second,
		SendBufferSize: 16,
	}

	handler := NewHandler(hub, jwtCfg, rtCfg)
	srv := httptest.NewServer(http.HandlerFunc(handler.ServeWS))
	t.Cleanup(srv.Close)

	return hub, srv, jwtCfg
}

func dialTestConn(t *testing.T, srv *httptest.Server, jwtCfg *config.JWTConfig) *websocket.Conn {
	t.Helper()

	token, err := middleware.GenerateToken(uuid.New(), "user@example.com", jwtCfg)
	require.NoError(t, err)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "?token=" + token
	ws, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) Frame {
	t.Helper()
	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	var f Frame
	require.NoError(t, ws.ReadJSON(&f))
	return f
}

func TestHubRejectsMissingToken(t *testing.T) {
	_, srv, _ := startTestHub(t)

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestHubBroadcastsToSubscribersIncludingPublisher(t *testing.T) {
	_, srv, jwtCfg := startTestHub(t)

	topic := SyncTopic(uuid.New())
	a := dialTestConn(t, srv, jwtCfg)
	b := dialTestConn(t, srv, jwtCfg)

	require.NoError(t, a.WriteJSON(Frame{Action: "subscribe", Topic: topic}))
	require.NoError(t, b.WriteJSON(Frame{Action: "subscribe", Topic: topic}))
	time.Sleep(50 * time.Millisecond) // let subscriptions register

	require.NoError(t, a.WriteJSON(Frame{Action: "publish", Topic: topic, Body: SyncSentinel}))

	// The publisher receives its own frame back
	got := readFrame(t, a)
	assert.Equal(t, topic, got.Topic)
	assert.Equal(t, SyncSentinel, got.Body)

	got = readFrame(t, b)
	assert.Equal(t, topic, got.Topic)
	assert.Equal(t, SyncSentinel, got.Body)
}

func TestHubScopesDeliveryByTopic(t *testing.T) {
	_, srv, jwtCfg := startTestHub(t)

	topicA := SyncTopic(uuid.New())
	topicB := SyncTopic(uuid.New())

	a := dialTestConn(t, srv, jwtCfg)
	b := dialTestConn(t, srv, jwtCfg)

	require.NoError(t, a.WriteJSON(Frame{Action: "subscribe", Topic: topicA}))
	require.NoError(t, b.WriteJSON(Frame{Action: "subscribe", Topic: topicB}))
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, a.WriteJSON(Frame{Action: "publish", Topic: topicA, Body: SyncSentinel}))

	got := readFrame(t, a)
	assert.Equal(t, topicA, got.Topic)

	// b subscribed to a different travel and must stay silent
	b.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var f Frame
	assert.Error(t, b.ReadJSON(&f))
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	_, srv, jwtCfg := startTestHub(t)

	topic := ChatTopic(uuid.New())
	a := dialTestConn(t, srv, jwtCfg)

	require.NoError(t, a.WriteJSON(Frame{Action: "subscribe", Topic: topic}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.WriteJSON(Frame{Action: "publish", Topic: topic, Body: "hello"}))
	got := readFrame(t, a)
	assert.Equal(t, "hello", got.Body)

	require.NoError(t, a.WriteJSON(Frame{Action: "unsubscribe", Topic: topic}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.WriteJSON(Frame{Action: "publish", Topic: topic, Body: "after"}))

	a.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	var f Frame
	assert.Error(t, a.ReadJSON(&f))
}

func TestHubOnPublishObservesFrames(t *testing.T) {
	hub, srv, jwtCfg := startTestHub(t)

	type published struct{ topic, body string }
	seen := make(chan published, 1)
	hub.OnPublish = func(topic, body string) {
		seen <- published{topic, body}
	}

	topic := ChatTopic(uuid.New())
	a := dialTestConn(t, srv, jwtCfg)
	require.NoError(t, a.WriteJSON(Frame{Action: "subscribe", Topic: topic}))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, a.WriteJSON(Frame{Action: "publish", Topic: topic, Body: `{"sender":"a","content":"hi"}`}))

	select {
	case got := <-seen:
		assert.Equal(t, topic, got.topic)
		assert.Contains(t, got.body, "hi")
	case <-time.After(2 * time.Second):
		t.Fatal("OnPublish hook never fired")
	}
}

func TestHubDropsSlowConsumerAndKeepsServing(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	topic := SyncTopic(uuid.New())

	// Nothing drains this conn's send channel, so the second publish
	// overflows its one-slot buffer and the hub drops it
	slow := newConn(hub, nil, "slow@example.com", 1, time.Second, time.Second)
	hub.subscribe <- subscription{conn: slow, topic: topic}

	hub.Publish(topic, SyncSentinel)
	hub.Publish(topic, SyncSentinel)

	healthy := newConn(hub, nil, "ok@example.com", 16, time.Second, time.Second)
	hub.subscribe <- subscription{conn: healthy, topic: topic}
	hub.Publish(topic, "after-drop")

	// Publishing past a dropped conn must not kill the hub goroutine
	deadline := time.After(2 * time.Second)
	for {
		select {
		case f := <-healthy.send:
			if f.Body == "after-drop" {
				return
			}
		case <-deadline:
			t.Fatal("hub stopped delivering after dropping a slow consumer")
		}
	}
}

func TestHubTopicCountTracksSubscriptions(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	topic := SyncTopic(uuid.New())
	conn := newConn(hub, nil, "count@example.com", 4, time.Second, time.Second)

	hub.subscribe <- subscription{conn: conn, topic: topic}
	assert.Eventually(t, func() bool { return hub.TopicCount() == 1 },
		time.Second, 10*time.Millisecond)

	hub.unsubscribe <- subscription{conn: conn, topic: topic}
	assert.Eventually(t, func() bool { return hub.TopicCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestTopicHelpers(t *testing.T) {
	id := uuid.New()
	assert.Equal(t, "travels/"+id.String(), SyncTopic(id))
	assert.Equal(t, "chat/travels/"+id.String(), ChatTopic(id))
}
