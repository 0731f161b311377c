package provision

import "github.com/shohag/hookbridge/internal/hookdeck"

// Stable names identify every resource this tool owns across runs. They are
// the only correlation mechanism between runs: no local state is persisted,
// so upserts keyed by these names are what makes re-running safe.
const (
	SourceName = "chargebee-billing"
	SourceType = "CHARGEBEE"

	// EndpointDisplayName is the well-known name of the billing provider's
	// webhook registration, used as its idempotency key.
	EndpointDisplayName = "Hookdeck Webhook Endpoint"

	APIVersion = "v2"
)

// Route is one of the three fixed routing rules: which connection and
// destination names it owns, the handler path it delivers to, and the filter
// that selects its slice of the event namespace.
type Route struct {
	Role            string
	ConnectionName  string
	DestinationName string
	Path            string
	Rule            hookdeck.Rule
}

// Routes returns the fixed routing table in upsert order. The filters
// partition the subscribed event set: every event type in EnabledEvents
// matches exactly one route.
func Routes() []Route {
	return []Route{
		{
			Role:            "customer",
			ConnectionName:  "chargebee-customer",
			DestinationName: "chargebee-customer-handler",
			Path:            "/webhooks/chargebee/customer",
			Rule:            hookdeck.FilterStartsWith("customer_"),
		},
		{
			Role:            "subscription",
			ConnectionName:  "chargebee-subscription",
			DestinationName: "chargebee-subscription-handler",
			Path:            "/webhooks/chargebee/subscription",
			Rule:            hookdeck.FilterStartsWith("subscription_"),
		},
		{
			Role:            "payment",
			ConnectionName:  "chargebee-payment",
			DestinationName: "chargebee-payment-handler",
			Path:            "/webhooks/chargebee/payments",
			Rule:            hookdeck.FilterEquals("payment_succeeded"),
		},
	}
}

// EnabledEvents is the complete set of event types the billing provider is
// asked to send. Keep it in sync with the route filters above.
var EnabledEvents = []string{
	"customer_created",
	"customer_changed",
	"customer_deleted",
	"customer_moved_in",
	"customer_moved_out",
	"subscription_created",
	"subscription_started",
	"subscription_activated",
	"subscription_changed",
	"subscription_cancelled",
	"subscription_reactivated",
	"subscription_renewed",
	"subscription_scheduled_cancellation_removed",
	"subscription_changes_scheduled",
	"subscription_scheduled_changes_removed",
	"subscription_shipping_address_updated",
	"subscription_deleted",
	"subscription_resumed",
	"subscription_paused",
	"payment_succeeded",
}
