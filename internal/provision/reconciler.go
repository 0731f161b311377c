package provision

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/shohag/hookbridge/internal/chargebee"
	"github.com/shohag/hookbridge/internal/config"
	"github.com/shohag/hookbridge/internal/hookdeck"
)

// Mode selects the destination wiring: dev routes through the gateway's local
// tunnel by path, prod routes to the deployed handler app by URL.
type Mode string

const (
	ModeDev  Mode = "dev"
	ModeProd Mode = "prod"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeDev, ModeProd:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be dev or prod", s)
	}
}

// Reconciler converges the remote routing topology on the fixed naming table.
// It holds no state between runs; every run re-derives what exists by asking
// the remote APIs.
type Reconciler struct {
	gateway *hookdeck.Client
	billing *chargebee.Client
	webhook config.WebhookConfig
	destURL string
	log     zerolog.Logger
}

func NewReconciler(gateway *hookdeck.Client, billing *chargebee.Client, webhook config.WebhookConfig, destBaseURL string, log zerolog.Logger) *Reconciler {
	return &Reconciler{
		gateway: gateway,
		billing: billing,
		webhook: webhook,
		destURL: destBaseURL,
		log:     log,
	}
}

// Result reports what a run converged on.
type Result struct {
	Source          *hookdeck.Source
	Connections     []*hookdeck.Connection
	Endpoint        *chargebee.WebhookEndpoint
	EndpointCreated bool
}

// Apply runs one reconciliation pass: upsert the source, upsert the three
// connections in fixed order, then register (or update) the billing
// provider's webhook endpoint against the source's URL. Steps run strictly in
// sequence; the first failure aborts the run. There is no rollback — every
// step is an upsert keyed by a stable name, so re-running converges.
func (r *Reconciler) Apply(ctx context.Context, mode Mode) (*Result, error) {
	if r.webhook.Username == "" || r.webhook.Password == "" {
		return nil, fmt.Errorf("webhook basic auth credentials must be non-empty")
	}
	if mode == ModeProd && r.destURL == "" {
		return nil, fmt.Errorf("prod mode requires a destination base URL")
	}

	src, err := r.gateway.UpsertSource(ctx, &hookdeck.Source{
		Name: SourceName,
		Type: SourceType,
		Config: &hookdeck.SourceConfig{
			Auth: &hookdeck.SourceAuth{
				Username: r.webhook.Username,
				Password: r.webhook.Password,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upsert source: %w", err)
	}
	if src.URL == "" {
		// Without a source URL there is nothing to point the billing
		// provider at; connections against it would be unusable.
		return nil, fmt.Errorf("upsert source: response for %q carried no url", SourceName)
	}
	r.log.Info().Str("source_id", src.ID).Str("url", src.URL).Msg("source ready")

	result := &Result{Source: src}

	for _, route := range Routes() {
		conn, err := r.gateway.UpsertConnection(ctx, &hookdeck.Connection{
			Name:        route.ConnectionName,
			SourceID:    src.ID,
			Destination: r.destinationFor(route, mode),
			Rules:       []hookdeck.Rule{route.Rule},
		})
		if err != nil {
			return nil, fmt.Errorf("upsert connection %q: %w", route.ConnectionName, err)
		}
		r.log.Info().
			Str("connection", route.ConnectionName).
			Str("role", route.Role).
			Str("connection_id", conn.ID).
			Msg("connection ready")
		result.Connections = append(result.Connections, conn)
	}

	endpoint, created, err := r.upsertBillingEndpoint(ctx, src)
	if err != nil {
		return nil, err
	}
	result.Endpoint = endpoint
	result.EndpointCreated = created

	return result, nil
}

// destinationFor picks the mode-appropriate destination variant: a tunnel
// path in dev, the public handler URL in prod. The variants are never mixed
// within a run.
func (r *Reconciler) destinationFor(route Route, mode Mode) *hookdeck.Destination {
	if mode == ModeProd {
		return &hookdeck.Destination{
			Name:   route.DestinationName,
			Type:   hookdeck.DestinationTypeHTTP,
			Config: &hookdeck.DestinationConfig{URL: strings.TrimSuffix(r.destURL, "/") + route.Path},
		}
	}
	return &hookdeck.Destination{
		Name:   route.DestinationName,
		Type:   hookdeck.DestinationTypeCLI,
		Config: &hookdeck.DestinationConfig{Path: route.Path},
	}
}

// upsertBillingEndpoint emulates upsert-by-name over the billing provider's
// list/create/update API. The list-then-branch is not atomic: two concurrent
// runs can both miss and both create. Acceptable for an operator-driven tool;
// do not invoke this concurrently.
func (r *Reconciler) upsertBillingEndpoint(ctx context.Context, src *hookdeck.Source) (*chargebee.WebhookEndpoint, bool, error) {
	existing, err := r.billing.ListWebhookEndpoints(ctx)
	if err != nil {
		// Fail open: a failed listing degrades to "nothing exists" and we
		// fall through to the create branch.
		r.log.Warn().Err(err).Msg("listing webhook endpoints failed, assuming none exist")
		existing = nil
	}

	var matches []chargebee.WebhookEndpoint
	for _, ep := range existing {
		if ep.Name == EndpointDisplayName {
			matches = append(matches, ep)
		}
	}

	desired := &chargebee.WebhookEndpoint{
		Name:              EndpointDisplayName,
		URL:               src.URL,
		APIVersion:        APIVersion,
		BasicAuthUsername: r.webhook.Username,
		BasicAuthPassword: r.webhook.Password,
		EnabledEvents:     EnabledEvents,
	}

	if len(matches) > 0 {
		if len(matches) > 1 {
			ids := make([]string, 0, len(matches))
			for _, ep := range matches {
				ids = append(ids, ep.ID)
			}
			r.log.Warn().
				Strs("endpoint_ids", ids).
				Msgf("found %d endpoints named %q, updating the first", len(matches), EndpointDisplayName)
		}
		updated, err := r.billing.UpdateWebhookEndpoint(ctx, matches[0].ID, desired)
		if err != nil {
			return nil, false, fmt.Errorf("update webhook endpoint %s: %w", matches[0].ID, err)
		}
		r.log.Info().Str("endpoint_id", updated.ID).Str("url", src.URL).Msg("webhook endpoint updated")
		return updated, false, nil
	}

	created, err := r.billing.CreateWebhookEndpoint(ctx, desired)
	if err != nil {
		return nil, false, fmt.Errorf("create webhook endpoint: %w", err)
	}
	r.log.Info().Str("endpoint_id", created.ID).Str("url", src.URL).Msg("webhook endpoint created")
	return created, true, nil
}
