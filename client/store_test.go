package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory travel API for store tests
type fakeBackend struct {
	mu         sync.Mutex
	travel     Travel
	plans      []Plan
	failDelete bool

	travelFetches int32
	planFetches   int32
	travelDelay   time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		travel: Travel{ID: "t1", Title: "Tokyo", TravelerCount: 2, OwnerID: "u1"},
		plans: []Plan{
			{ID: "p1", TravelID: "t1", DayNumber: 1, Sequence: 1, Place: PlaceSnapshot{PlaceID: "pl-a", Name: "Hotel"}},
			{ID: "p2", TravelID: "t1", DayNumber: 1, Sequence: 2, Place: PlaceSnapshot{PlaceID: "pl-b", Name: "Shrine"}},
			{ID: "p3", TravelID: "t1", DayNumber: 1, Sequence: 3, Place: PlaceSnapshot{PlaceID: "pl-c", Name: "Ramen"}},
		},
	}
}

func (fb *fakeBackend) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/travels/t1":
			atomic.AddInt32(&fb.travelFetches, 1)
			if fb.travelDelay > 0 {
				time.Sleep(fb.travelDelay)
			}
			fb.mu.Lock()
			defer fb.mu.Unlock()
			writeJSON(t, w, http.StatusOK, fb.travel)

		case r.Method == http.MethodGet && r.URL.Path == "/api/travels/t1/plans":
			atomic.AddInt32(&fb.planFetches, 1)
			fb.mu.Lock()
			defer fb.mu.Unlock()
			writeJSON(t, w, http.StatusOK, map[string]any{"plans": fb.plans})

		case r.Method == http.MethodPost && r.URL.Path == "/api/travels/t1/plans":
			var req AddPlanRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			fb.mu.Lock()
			seq := 0
			for _, p := range fb.plans {
				if p.DayNumber == req.DayNumber && p.Sequence > seq {
					seq = p.Sequence
				}
			}
			plan := Plan{
				ID: "p-new", TravelID: "t1", DayNumber: req.DayNumber, Sequence: seq + 1,
				Place: PlaceSnapshot{PlaceID: req.PlaceID, Name: req.Name},
			}
			fb.plans = append(fb.plans, plan)
			fb.mu.Unlock()
			writeJSON(t, w, http.StatusCreated, plan)

		case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/api/travels/t1/plans/"):
			if fb.failDelete {
				writeJSON(t, w, http.StatusInternalServerError, map[string]string{"error": "Database error"})
				return
			}
			planID := strings.TrimPrefix(r.URL.Path, "/api/travels/t1/plans/")
			fb.mu.Lock()
			kept := fb.plans[:0]
			var day, seq int
			for _, p := range fb.plans {
				if p.ID == planID {
					day, seq = p.DayNumber, p.Sequence
					continue
				}
				kept = append(kept, p)
			}
			fb.plans = kept
			for i := range fb.plans {
				if fb.plans[i].DayNumber == day && fb.plans[i].Sequence > seq {
					fb.plans[i].Sequence--
				}
			}
			fb.mu.Unlock()
			writeJSON(t, w, http.StatusOK, map[string]string{"message": "deleted"})

		default:
			http.NotFound(w, r)
		}
	})
}

func newTestStore(t *testing.T, fb *fakeBackend) *TripStore {
	t.Helper()
	srv := httptest.NewServer(fb.handler(t))
	t.Cleanup(srv.Close)

	c, err := New(srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c.NewTripStore()
}

func TestStoreCoalescesConcurrentFetches(t *testing.T) {
	fb := newFakeBackend()
	fb.travelDelay = 150 * time.Millisecond
	ts := newTestStore(t, fb)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			plans, err := ts.Plans(context.Background(), "t1")
			assert.NoError(t, err)
			assert.Len(t, plans, 3)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&fb.planFetches),
		"concurrent fetches of the same trip must share one request")
}

func TestStorePlansOrderedAndCached(t *testing.T) {
	fb := newFakeBackend()
	ts := newTestStore(t, fb)

	require.NoError(t, ts.Track(context.Background(), "t1"))

	plans, err := ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, plans, 3)
	for i, p := range plans {
		assert.Equal(t, i+1, p.Sequence)
	}

	before := atomic.LoadInt32(&fb.planFetches)
	_, err = ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&fb.planFetches), "second read must hit the cache")
}

func TestStoreOptimisticDeleteRenumbers(t *testing.T) {
	fb := newFakeBackend()
	ts := newTestStore(t, fb)
	require.NoError(t, ts.Track(context.Background(), "t1"))

	require.NoError(t, ts.DeletePlan(context.Background(), "t1", "p2"))

	plans, err := ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "p1", plans[0].ID)
	assert.Equal(t, 1, plans[0].Sequence)
	assert.Equal(t, "p3", plans[1].ID)
	assert.Equal(t, 2, plans[1].Sequence, "trailing entry must renumber after delete")
}

func TestStoreDeleteRollsBackOnFailure(t *testing.T) {
	fb := newFakeBackend()
	fb.failDelete = true
	ts := newTestStore(t, fb)
	require.NoError(t, ts.Track(context.Background(), "t1"))

	err := ts.DeletePlan(context.Background(), "t1", "p2")
	require.Error(t, err)

	plans, err := ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, plans, 3, "failed delete must restore the snapshot")
	assert.Equal(t, []int{1, 2, 3}, []int{plans[0].Sequence, plans[1].Sequence, plans[2].Sequence})
}

func TestStorePlanIDForPlace(t *testing.T) {
	fb := newFakeBackend()
	ts := newTestStore(t, fb)
	require.NoError(t, ts.Track(context.Background(), "t1"))

	id, ok := ts.PlanIDForPlace("t1", "pl-b")
	require.True(t, ok)
	assert.Equal(t, "p2", id)

	_, ok = ts.PlanIDForPlace("t1", "unknown-place")
	assert.False(t, ok)

	require.NoError(t, ts.DeletePlanByPlace(context.Background(), "t1", "pl-b"))
	_, ok = ts.PlanIDForPlace("t1", "pl-b")
	assert.False(t, ok)
}

func TestStoreAddPlanRefreshesWithoutChannel(t *testing.T) {
	fb := newFakeBackend()
	ts := newTestStore(t, fb)
	require.NoError(t, ts.Track(context.Background(), "t1"))

	// No realtime channel is attached, so no sentinel echo can arrive;
	// the successful add alone must refresh the cache
	_, err := ts.AddPlan(context.Background(), "t1", AddPlanRequest{
		DayNumber: 1, PlaceID: "pl-d", Name: "Market",
	})
	require.NoError(t, err)

	plans, err := ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, plans, 4, "successful add must invalidate the cached itinerary")
	assert.Equal(t, 4, plans[3].Sequence, "server-assigned sequence wins")
}

func TestStoreInvalidateRefetches(t *testing.T) {
	fb := newFakeBackend()
	ts := newTestStore(t, fb)
	require.NoError(t, ts.Track(context.Background(), "t1"))

	// Another participant adds an entry behind this client's back;
	// the cache is stale until invalidated
	fb.mu.Lock()
	fb.plans = append(fb.plans, Plan{
		ID: "p4", TravelID: "t1", DayNumber: 2, Sequence: 1,
		Place: PlaceSnapshot{PlaceID: "pl-z", Name: "Aquarium"},
	})
	fb.mu.Unlock()

	plans, err := ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	assert.Len(t, plans, 3, "remote change is invisible until the sentinel arrives")

	require.NoError(t, ts.Invalidate(context.Background(), "t1"))

	plans, err = ts.Plans(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, plans, 4)
}

func TestStoreDaysFromDateRange(t *testing.T) {
	fb := newFakeBackend()
	fb.travel.StartDate = "2026-03-01"
	fb.travel.EndDate = "2026-03-03"
	ts := newTestStore(t, fb)

	days, err := ts.Days(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, days)
}

func TestStoreDaysEmptyWithoutDates(t *testing.T) {
	fb := newFakeBackend() // dates unset
	ts := newTestStore(t, fb)

	days, err := ts.Days(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, days)

	fb2 := newFakeBackend()
	fb2.travel.StartDate = "not-a-date"
	fb2.travel.EndDate = "2026-03-03"
	ts2 := newTestStore(t, fb2)

	days, err = ts2.Days(context.Background(), "t1")
	require.NoError(t, err)
	assert.Empty(t, days)
}
