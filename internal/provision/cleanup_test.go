package provision

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shohag/hookbridge/internal/hookdeck"
)

func TestCleanupDeletesOnlyOwnedResources(t *testing.T) {
	gateway := newFakeGateway()
	rec, teardown := testReconciler(t, gateway, &fakeBilling{}, "")
	defer teardown()

	_, err := rec.Apply(context.Background(), ModeDev)
	require.NoError(t, err)

	// An unrelated source and connection live on the same account.
	gateway.sources["someone-elses"] = &hookdeck.Source{ID: "src_other", Name: "someone-elses"}
	gateway.connections["other-conn"] = &hookdeck.Connection{ID: "conn_other", Name: "other-conn"}
	gateway.destinations = []hookdeck.Destination{
		{ID: "des_1", Name: "chargebee-customer-handler"},
		{ID: "des_other", Name: "unrelated-destination"},
	}

	var out bytes.Buffer
	err = rec.Cleanup(context.Background(), strings.NewReader("y\ny\ny\n"), &out, false)
	require.NoError(t, err)

	assert.Contains(t, gateway.deleted, "connections/conn_chargebee-customer")
	assert.Contains(t, gateway.deleted, "connections/conn_chargebee-subscription")
	assert.Contains(t, gateway.deleted, "connections/conn_chargebee-payment")
	assert.Contains(t, gateway.deleted, "sources/src_1")
	assert.Contains(t, gateway.deleted, "destinations/des_1")

	assert.NotContains(t, gateway.deleted, "connections/conn_other")
	assert.NotContains(t, gateway.deleted, "sources/src_other")
	assert.NotContains(t, gateway.deleted, "destinations/des_other")
}

func TestCleanupRespectsDeclinedConfirmation(t *testing.T) {
	gateway := newFakeGateway()
	rec, teardown := testReconciler(t, gateway, &fakeBilling{}, "")
	defer teardown()

	_, err := rec.Apply(context.Background(), ModeDev)
	require.NoError(t, err)

	// Decline connections, accept sources, decline destinations.
	var out bytes.Buffer
	err = rec.Cleanup(context.Background(), strings.NewReader("n\ny\nn\n"), &out, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"sources/src_1"}, gateway.deleted)
	assert.Len(t, gateway.connections, 3)
}

func TestCleanupAssumeYesSkipsPrompts(t *testing.T) {
	gateway := newFakeGateway()
	rec, teardown := testReconciler(t, gateway, &fakeBilling{}, "")
	defer teardown()

	_, err := rec.Apply(context.Background(), ModeDev)
	require.NoError(t, err)

	var out bytes.Buffer
	err = rec.Cleanup(context.Background(), strings.NewReader(""), &out, true)
	require.NoError(t, err)

	assert.Empty(t, gateway.connections)
	assert.Empty(t, gateway.sources)
	assert.NotContains(t, out.String(), "[y/N]")
}
