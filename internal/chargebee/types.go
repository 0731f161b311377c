package chargebee

// WebhookEndpoint is the billing provider's webhook registration: where to
// POST events, which credentials to send, and which event types to include.
type WebhookEndpoint struct {
	ID                string   `json:"id,omitempty"`
	Name              string   `json:"name"`
	URL               string   `json:"url"`
	APIVersion        string   `json:"api_version,omitempty"`
	BasicAuthUsername string   `json:"basic_auth_username,omitempty"`
	BasicAuthPassword string   `json:"basic_auth_password,omitempty"`
	EnabledEvents     []string `json:"enabled_events,omitempty"`
}

// List responses wrap each entry in a one-key object.
type webhookEndpointList struct {
	List []struct {
		WebhookEndpoint WebhookEndpoint `json:"webhook_endpoint"`
	} `json:"list"`
}

type webhookEndpointResult struct {
	WebhookEndpoint WebhookEndpoint `json:"webhook_endpoint"`
}
