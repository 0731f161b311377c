package storage

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shohag/hookbridge/internal/models"
)

func testStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { store.Close() })
	return store
}

func testEvent(eventID, eventType string, role models.Role) *models.Event {
	return &models.Event{
		ID:         models.NewID("evt"),
		EventID:    eventID,
		EventType:  eventType,
		Role:       role,
		Payload:    json.RawMessage(`{"customer":{"id":"cus_1"}}`),
		ReceivedAt: time.Now().UTC(),
	}
}

func TestRecordEventDedupesOnProviderID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	inserted, err := store.RecordEvent(ctx, testEvent("ev_1", "customer_created", models.RoleCustomer))
	require.NoError(t, err)
	assert.True(t, inserted)

	// Same provider event id, different receipt id: ignored.
	inserted, err = store.RecordEvent(ctx, testEvent("ev_1", "customer_created", models.RoleCustomer))
	require.NoError(t, err)
	assert.False(t, inserted)

	counts, err := store.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts.Total)
}

func TestGetEventByEventID(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.RecordEvent(ctx, testEvent("ev_2", "subscription_paused", models.RoleSubscription))
	require.NoError(t, err)

	ev, err := store.GetEventByEventID(ctx, "ev_2")
	require.NoError(t, err)
	require.NotNil(t, ev)
	assert.Equal(t, "subscription_paused", ev.EventType)
	assert.Equal(t, models.RoleSubscription, ev.Role)
	assert.JSONEq(t, `{"customer":{"id":"cus_1"}}`, string(ev.Payload))

	missing, err := store.GetEventByEventID(ctx, "ev_nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListEventsPaginates(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i, id := range []string{"ev_a", "ev_b", "ev_c"} {
		ev := testEvent(id, "customer_created", models.RoleCustomer)
		ev.ReceivedAt = base.Add(time.Duration(i) * time.Second)
		_, err := store.RecordEvent(ctx, ev)
		require.NoError(t, err)
	}

	events, err := store.ListEvents(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	assert.Equal(t, "ev_c", events[0].EventID)

	events, err = store.ListEvents(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "ev_a", events[0].EventID)
}

func TestCountEventsByRole(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	_, err := store.RecordEvent(ctx, testEvent("ev_1", "customer_created", models.RoleCustomer))
	require.NoError(t, err)
	_, err = store.RecordEvent(ctx, testEvent("ev_2", "subscription_created", models.RoleSubscription))
	require.NoError(t, err)
	_, err = store.RecordEvent(ctx, testEvent("ev_3", "payment_succeeded", models.RolePayment))
	require.NoError(t, err)
	_, err = store.RecordEvent(ctx, testEvent("ev_4", "payment_succeeded", models.RolePayment))
	require.NoError(t, err)

	counts, err := store.CountEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts.Total)
	assert.Equal(t, int64(1), counts.Customer)
	assert.Equal(t, int64(1), counts.Subscription)
	assert.Equal(t, int64(2), counts.Payment)
}
