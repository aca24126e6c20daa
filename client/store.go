package client

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/singleflight"

	"TRIPMATE_BACK-END/internal/utils"
)

// TripStore caches one or more trips and their itineraries and keeps them
// fresh. Sentinel notifications, including the echo of this client's own
// publishes, invalidate the cache; the store then refetches authoritative
// state. Concurrent refetches of the same trip coalesce into one request.
type TripStore struct {
	client  *Client
	channel *SyncChannel

	sf singleflight.Group

	mu        sync.RWMutex
	trips     map[string]*tripState
	listeners []func(travelID string)
}

type tripState struct {
	travel      *Travel
	plans       []Plan
	planByPlace map[string]string // place_id -> plan id
}

// NewTripStore creates a store bound to the client's REST API
func (c *Client) NewTripStore() *TripStore {
	return &TripStore{
		client: c,
		trips:  make(map[string]*tripState),
	}
}

// AttachChannel wires sentinel notifications into cache invalidation.
// A reconnect invalidates every tracked trip since notifications may have
// been missed while disconnected.
func (ts *TripStore) AttachChannel(ch *SyncChannel) {
	ts.mu.Lock()
	ts.channel = ch
	ts.mu.Unlock()

	ch.OnFrame(func(topic, body string) {
		if body != SyncSentinel {
			return
		}
		ts.mu.RLock()
		var match string
		for id := range ts.trips {
			if topic == SyncTopic(id) {
				match = id
				break
			}
		}
		ts.mu.RUnlock()
		if match != "" {
			go ts.Invalidate(context.Background(), match)
		}
	})

	ch.OnReconnect(func() {
		ts.mu.RLock()
		ids := make([]string, 0, len(ts.trips))
		for id := range ts.trips {
			ids = append(ids, id)
		}
		ts.mu.RUnlock()
		for _, id := range ids {
			storeRefetches.WithLabelValues("reconnect").Inc()
			go func(travelID string) { _ = ts.refetch(context.Background(), travelID) }(id)
		}
	})
}

// OnChange registers a listener called after a trip's cached state updates.
// Listeners run on background goroutines and must not block.
func (ts *TripStore) OnChange(fn func(travelID string)) {
	ts.mu.Lock()
	ts.listeners = append(ts.listeners, fn)
	ts.mu.Unlock()
}

// Track loads a trip into the cache and subscribes to its sync topic
func (ts *TripStore) Track(ctx context.Context, travelID string) error {
	ts.mu.Lock()
	if _, ok := ts.trips[travelID]; !ok {
		ts.trips[travelID] = &tripState{}
	}
	ch := ts.channel
	ts.mu.Unlock()

	if ch != nil {
		if err := ch.Subscribe(SyncTopic(travelID)); err != nil {
			return err
		}
	}
	return ts.refetch(ctx, travelID)
}

// Untrack drops a trip from the cache and unsubscribes its sync topic
func (ts *TripStore) Untrack(travelID string) {
	ts.mu.Lock()
	delete(ts.trips, travelID)
	ch := ts.channel
	ts.mu.Unlock()

	if ch != nil {
		_ = ch.Unsubscribe(SyncTopic(travelID))
	}
}

// Travel returns the cached trip header, fetching when absent
func (ts *TripStore) Travel(ctx context.Context, travelID string) (*Travel, error) {
	ts.mu.RLock()
	state, ok := ts.trips[travelID]
	ts.mu.RUnlock()
	if ok && state.travel != nil {
		copied := *state.travel
		return &copied, nil
	}
	if err := ts.refetch(ctx, travelID); err != nil {
		return nil, err
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if state, ok := ts.trips[travelID]; ok && state.travel != nil {
		copied := *state.travel
		return &copied, nil
	}
	return nil, ErrNotFound
}

// Plans returns the cached itinerary ordered by (day, sequence), fetching
// when absent
func (ts *TripStore) Plans(ctx context.Context, travelID string) ([]Plan, error) {
	ts.mu.RLock()
	state, ok := ts.trips[travelID]
	ts.mu.RUnlock()
	if ok && state.plans != nil {
		return append([]Plan(nil), state.plans...), nil
	}
	if err := ts.refetch(ctx, travelID); err != nil {
		return nil, err
	}
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	if state, ok := ts.trips[travelID]; ok && state.plans != nil {
		return append([]Plan(nil), state.plans...), nil
	}
	return nil, ErrNotFound
}

// Day returns the cached entries for one day, in sequence order
func (ts *TripStore) Day(ctx context.Context, travelID string, day int) ([]Plan, error) {
	plans, err := ts.Plans(ctx, travelID)
	if err != nil {
		return nil, err
	}
	out := make([]Plan, 0)
	for _, p := range plans {
		if p.DayNumber == day {
			out = append(out, p)
		}
	}
	return out, nil
}

// Days returns the day numbers 1..N spanned by the trip's date range,
// inclusive on both ends. Nil when the trip has no dates or they do not
// parse.
func (ts *TripStore) Days(ctx context.Context, travelID string) ([]int, error) {
	travel, err := ts.Travel(ctx, travelID)
	if err != nil {
		return nil, err
	}
	if travel.StartDate == "" || travel.EndDate == "" {
		return nil, nil
	}
	start, err := utils.ParseDate(travel.StartDate)
	if err != nil {
		return nil, nil
	}
	end, err := utils.ParseDate(travel.EndDate)
	if err != nil {
		return nil, nil
	}
	days := make([]int, utils.DayCount(&start, &end))
	for i := range days {
		days[i] = i + 1
	}
	return days, nil
}

// PlanIDForPlace maps a place to its plan entry in a trip, if present.
// This is how "already added" markers and place-keyed deletes resolve the
// itinerary entry to operate on.
func (ts *TripStore) PlanIDForPlace(travelID, placeID string) (string, bool) {
	ts.mu.RLock()
	defer ts.mu.RUnlock()
	state, ok := ts.trips[travelID]
	if !ok || state.planByPlace == nil {
		return "", false
	}
	id, ok := state.planByPlace[placeID]
	return id, ok
}

// AddPlan appends a place to a day, refetches the itinerary so the cache
// carries the server-assigned sequence, then announces the change. The
// refetch must not wait for the sentinel echo: without a channel attached
// the cache would otherwise stay stale. The echo re-invalidates, which is
// harmless.
func (ts *TripStore) AddPlan(ctx context.Context, travelID string, req AddPlanRequest) (*Plan, error) {
	plan, err := ts.client.AddPlan(ctx, travelID, req)
	if err != nil {
		return nil, err
	}
	storeRefetches.WithLabelValues("mutation").Inc()
	if err := ts.refetch(ctx, travelID); err != nil {
		ts.client.log.Warn().Err(err).Str("travel_id", travelID).Msg("post-add refetch failed")
	}
	ts.announce(travelID)
	return plan, nil
}

// DeletePlan removes an entry optimistically: the cached itinerary updates
// immediately (with same-day renumbering) and rolls back if the server
// rejects the delete.
func (ts *TripStore) DeletePlan(ctx context.Context, travelID, planID string) error {
	ts.mu.Lock()
	state, ok := ts.trips[travelID]
	var snapshot []Plan
	if ok && state.plans != nil {
		snapshot = append([]Plan(nil), state.plans...)
		state.setPlans(removeAndRenumber(state.plans, planID))
	}
	ts.mu.Unlock()
	if snapshot != nil {
		ts.notify(travelID)
	}

	if err := ts.client.DeletePlan(ctx, travelID, planID); err != nil {
		if snapshot != nil {
			ts.mu.Lock()
			if state, ok := ts.trips[travelID]; ok {
				state.setPlans(snapshot)
			}
			ts.mu.Unlock()
			ts.notify(travelID)
		}
		return err
	}

	storeRefetches.WithLabelValues("mutation").Inc()
	if err := ts.refetch(ctx, travelID); err != nil {
		ts.client.log.Warn().Err(err).Str("travel_id", travelID).Msg("post-delete refetch failed")
	}
	ts.announce(travelID)
	return nil
}

// DeletePlanByPlace removes the itinerary entry holding a place
func (ts *TripStore) DeletePlanByPlace(ctx context.Context, travelID, placeID string) error {
	planID, ok := ts.PlanIDForPlace(travelID, placeID)
	if !ok {
		return ErrNotFound
	}
	return ts.DeletePlan(ctx, travelID, planID)
}

// Invalidate drops the cached state and refetches
func (ts *TripStore) Invalidate(ctx context.Context, travelID string) error {
	storeRefetches.WithLabelValues("sentinel").Inc()
	return ts.refetch(ctx, travelID)
}

// refetch loads travel and plans, coalescing concurrent calls per trip
func (ts *TripStore) refetch(ctx context.Context, travelID string) error {
	_, err, _ := ts.sf.Do(travelID, func() (interface{}, error) {
		travel, err := ts.client.GetTravel(ctx, travelID)
		if err != nil {
			return nil, err
		}
		plans, err := ts.client.ListPlans(ctx, travelID)
		if err != nil {
			return nil, err
		}

		ts.mu.Lock()
		state, ok := ts.trips[travelID]
		if !ok {
			state = &tripState{}
			ts.trips[travelID] = state
		}
		state.travel = travel
		state.setPlans(plans)
		ts.mu.Unlock()
		return nil, nil
	})
	if err != nil {
		return err
	}
	ts.notify(travelID)
	return nil
}

// announce publishes the sentinel after a successful mutation. Fire and
// forget: if the channel is down, participants reconcile on reconnect.
func (ts *TripStore) announce(travelID string) {
	ts.mu.RLock()
	ch := ts.channel
	ts.mu.RUnlock()
	if ch == nil {
		return
	}
	if err := ch.Publish(SyncTopic(travelID), SyncSentinel); err != nil {
		ts.client.log.Warn().Err(err).Str("travel_id", travelID).Msg("sentinel publish failed")
	}
}

func (ts *TripStore) notify(travelID string) {
	ts.mu.RLock()
	listeners := make([]func(string), len(ts.listeners))
	copy(listeners, ts.listeners)
	ts.mu.RUnlock()
	go func() {
		for _, fn := range listeners {
			fn(travelID)
		}
	}()
}

// setPlans stores a sorted copy and rebuilds the place index
func (st *tripState) setPlans(plans []Plan) {
	sorted := append([]Plan(nil), plans...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].DayNumber != sorted[j].DayNumber {
			return sorted[i].DayNumber < sorted[j].DayNumber
		}
		return sorted[i].Sequence < sorted[j].Sequence
	})
	st.plans = sorted
	st.planByPlace = make(map[string]string, len(sorted))
	for _, p := range sorted {
		st.planByPlace[p.Place.PlaceID] = p.ID
	}
}

// removeAndRenumber drops one plan and pulls trailing same-day sequences
// forward, mirroring what the server does
func removeAndRenumber(plans []Plan, planID string) []Plan {
	out := make([]Plan, 0, len(plans))
	var removedDay, removedSeq int
	found := false
	for _, p := range plans {
		if p.ID == planID {
			removedDay, removedSeq = p.DayNumber, p.Sequence
			found = true
			continue
		}
		out = append(out, p)
	}
	if !found {
		return out
	}
	for i := range out {
		if out[i].DayNumber == removedDay && out[i].Sequence > removedSeq {
			out[i].Sequence--
		}
	}
	return out
}
