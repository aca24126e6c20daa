package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"TRIPMATE_BACK-END/internal/config"
	"TRIPMATE_BACK-END/internal/realtime"
)

// startSyncBackend serves the fake REST API and a real hub on one server
func startSyncBackend(t *testing.T, fb *fakeBackend) (*httptest.Server, *realtime.Hub) {
	t.Helper()

	hub := realtime.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	jwtCfg := &config.JWTConfig{Secret: "client-test-secret", AccessTokenTTL: time.Hour}
	rtCfg := &config.RealtimeConfig{
		WriteWait:      5 * time.Second,
		PongWait:       30 * time.Second,
		SendBufferSize: 16,
	}
	wsHandler := realtime.NewHandler(hub, jwtCfg, rtCfg)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	mux.Handle("/", fb.handler(t))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, hub
}

func newSyncedClient(t *testing.T, srv *httptest.Server) (*Client, *SyncChannel) {
	t.Helper()

	c, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	c.Session().SetToken(testToken(t, time.Hour))

	ch, err := c.OpenSyncChannel(context.Background())
	require.NoError(t, err)
	return c, ch
}

func TestSentinelFromAnotherParticipantTriggersRefetch(t *testing.T) {
	fb := newFakeBackend()
	srv, hub := startSyncBackend(t, fb)

	c, ch := newSyncedClient(t, srv)
	ts := c.NewTripStore()
	ts.AttachChannel(ch)

	var changes int32
	ts.OnChange(func(travelID string) {
		if travelID == "t1" {
			atomic.AddInt32(&changes, 1)
		}
	})

	require.NoError(t, ts.Track(context.Background(), "t1"))

	// Simulate another participant mutating the itinerary and announcing it
	fb.mu.Lock()
	fb.plans = append(fb.plans, Plan{
		ID: "p4", TravelID: "t1", DayNumber: 2, Sequence: 1,
		Place: PlaceSnapshot{PlaceID: "pl-z", Name: "Aquarium"},
	})
	fb.mu.Unlock()
	hub.Publish(SyncTopic("t1"), SyncSentinel)

	require.Eventually(t, func() bool {
		plans, err := ts.Plans(context.Background(), "t1")
		return err == nil && len(plans) == 4
	}, 3*time.Second, 20*time.Millisecond, "sentinel must trigger a refetch")

	assert.Positive(t, atomic.LoadInt32(&changes))
}

func TestOwnMutationConvergesViaEcho(t *testing.T) {
	fb := newFakeBackend()
	srv, _ := startSyncBackend(t, fb)

	c, ch := newSyncedClient(t, srv)
	ts := c.NewTripStore()
	ts.AttachChannel(ch)
	require.NoError(t, ts.Track(context.Background(), "t1"))

	_, err := ts.AddPlan(context.Background(), "t1", AddPlanRequest{
		DayNumber: 1, PlaceID: "pl-d", Name: "Market",
	})
	require.NoError(t, err)

	// The mutation refreshes the cache directly; the hub's echo of the
	// sentinel re-invalidates and must not disturb the converged state
	require.Eventually(t, func() bool {
		plans, err := ts.Plans(context.Background(), "t1")
		return err == nil && len(plans) == 4
	}, 3*time.Second, 20*time.Millisecond, "own mutation must refresh the cache")
}

func TestTwoClientsConverge(t *testing.T) {
	fb := newFakeBackend()
	srv, _ := startSyncBackend(t, fb)

	cA, chA := newSyncedClient(t, srv)
	tsA := cA.NewTripStore()
	tsA.AttachChannel(chA)
	require.NoError(t, tsA.Track(context.Background(), "t1"))

	cB, chB := newSyncedClient(t, srv)
	tsB := cB.NewTripStore()
	tsB.AttachChannel(chB)
	require.NoError(t, tsB.Track(context.Background(), "t1"))

	require.NoError(t, tsA.DeletePlan(context.Background(), "t1", "p3"))

	for name, ts := range map[string]*TripStore{"publisher": tsA, "subscriber": tsB} {
		require.Eventually(t, func() bool {
			plans, err := ts.Plans(context.Background(), "t1")
			return err == nil && len(plans) == 2
		}, 3*time.Second, 20*time.Millisecond, "%s must converge to 2 plans", name)
	}
}

func TestChatRoundTrip(t *testing.T) {
	fb := newFakeBackend()
	srv, _ := startSyncBackend(t, fb)

	cA, chA := newSyncedClient(t, srv)
	cB, chB := newSyncedClient(t, srv)

	roomA, err := cA.JoinChat(chA, "t1", "alice")
	require.NoError(t, err)
	roomB, err := cB.JoinChat(chB, "t1", "bob")
	require.NoError(t, err)

	type msg struct{ sender, content string }
	gotA := make(chan msg, 1)
	gotB := make(chan msg, 1)
	roomA.OnMessage(func(sender, content string) { gotA <- msg{sender, content} })
	roomB.OnMessage(func(sender, content string) { gotB <- msg{sender, content} })
	time.Sleep(50 * time.Millisecond) // let subscriptions settle

	require.NoError(t, roomA.Send("see you at the shrine"))

	for name, chGot := range map[string]chan msg{"sender echo": gotA, "peer": gotB} {
		select {
		case m := <-chGot:
			assert.Equal(t, "alice", m.sender, name)
			assert.Equal(t, "see you at the shrine", m.content, name)
		case <-time.After(2 * time.Second):
			t.Fatalf("%s never received the message", name)
		}
	}

	require.NoError(t, roomB.Leave())
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, roomA.Send("still there?"))
	select {
	case <-gotB:
		t.Fatal("left room must not receive messages")
	case <-time.After(300 * time.Millisecond):
	}
}

func TestPublishAfterCloseFails(t *testing.T) {
	fb := newFakeBackend()
	srv, _ := startSyncBackend(t, fb)

	_, ch := newSyncedClient(t, srv)
	ch.Close()

	err := ch.Publish(SyncTopic("t1"), SyncSentinel)
	assert.Error(t, err)
}
