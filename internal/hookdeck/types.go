package hookdeck

// Destination types understood by the gateway. CLI destinations deliver to a
// local tunnel path; HTTP destinations deliver to a public URL.
const (
	DestinationTypeCLI  = "CLI"
	DestinationTypeHTTP = "HTTP"
)

// Source is an inbound webhook entry point. ID and URL are assigned by the
// gateway; the URL is where the billing provider must send events.
type Source struct {
	ID     string        `json:"id,omitempty"`
	Name   string        `json:"name"`
	Type   string        `json:"type,omitempty"`
	Config *SourceConfig `json:"config,omitempty"`
	URL    string        `json:"url,omitempty"`
}

type SourceConfig struct {
	Auth *SourceAuth `json:"auth,omitempty"`
}

// SourceAuth is the Basic Auth pair the gateway requires on inbound requests.
type SourceAuth struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Destination is an outbound delivery target, inlined into a Connection.
// Exactly one of Config.Path (CLI) or Config.URL (HTTP) is set.
type Destination struct {
	ID     string             `json:"id,omitempty"`
	Name   string             `json:"name"`
	Type   string             `json:"type,omitempty"`
	Config *DestinationConfig `json:"config,omitempty"`
}

type DestinationConfig struct {
	Path string `json:"path,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Connection binds a Source to a Destination with filter rules.
type Connection struct {
	ID          string       `json:"id,omitempty"`
	Name        string       `json:"name"`
	SourceID    string       `json:"source_id,omitempty"`
	Destination *Destination `json:"destination,omitempty"`
	Rules       []Rule       `json:"rules,omitempty"`
}

// Rule is a filter predicate over the inbound payload body.
type Rule struct {
	Type string      `json:"type"`
	Body *FilterBody `json:"body,omitempty"`
}

// FilterBody matches against the payload's event_type field. The operand is
// either a literal string (equals) or an operator object such as
// {"$startsWith": "customer_"}.
type FilterBody struct {
	EventType interface{} `json:"event_type,omitempty"`
}

// FilterStartsWith builds a rule matching event types with the given prefix.
func FilterStartsWith(prefix string) Rule {
	return Rule{Type: "filter", Body: &FilterBody{
		EventType: map[string]interface{}{"$startsWith": prefix},
	}}
}

// FilterEquals builds a rule matching exactly one event type.
func FilterEquals(eventType string) Rule {
	return Rule{Type: "filter", Body: &FilterBody{EventType: eventType}}
}

type sourceList struct {
	Models []Source `json:"models"`
}

type connectionList struct {
	Models []Connection `json:"models"`
}

type destinationList struct {
	Models []Destination `json:"models"`
}
