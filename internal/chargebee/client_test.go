package chargebee

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListWebhookEndpointsUnwrapsList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/webhook_endpoints", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "test_key", user)
		assert.Empty(t, pass)

		w.Write([]byte(`{"list":[
			{"webhook_endpoint":{"id":"whe_1","name":"First","url":"https://a.example"}},
			{"webhook_endpoint":{"id":"whe_2","name":"Second","url":"https://b.example"}}
		]}`))
	}))
	defer srv.Close()

	client := NewClient("test-site", "test_key", srv.URL)
	endpoints, err := client.ListWebhookEndpoints(context.Background())
	require.NoError(t, err)

	require.Len(t, endpoints, 2)
	assert.Equal(t, "whe_1", endpoints[0].ID)
	assert.Equal(t, "Second", endpoints[1].Name)
}

func TestCreateWebhookEndpointFormEncoding(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v2/webhook_endpoints", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"webhook_endpoint":{"id":"whe_new","name":"My Endpoint"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-site", "test_key", srv.URL)
	created, err := client.CreateWebhookEndpoint(context.Background(), &WebhookEndpoint{
		Name:              "My Endpoint",
		URL:               "https://hooks.example/in",
		APIVersion:        "v2",
		BasicAuthUsername: "user",
		BasicAuthPassword: "pass",
		EnabledEvents:     []string{"customer_created", "subscription_renewed", "payment_succeeded"},
	})
	require.NoError(t, err)
	assert.Equal(t, "whe_new", created.ID)

	assert.Equal(t, "My Endpoint", form.Get("name"))
	assert.Equal(t, "https://hooks.example/in", form.Get("url"))
	assert.Equal(t, "v2", form.Get("api_version"))
	assert.Equal(t, "user", form.Get("basic_auth_username"))
	assert.Equal(t, "pass", form.Get("basic_auth_password"))
	// List fields flattened as key[index].
	assert.Equal(t, "customer_created", form.Get("enabled_events[0]"))
	assert.Equal(t, "subscription_renewed", form.Get("enabled_events[1]"))
	assert.Equal(t, "payment_succeeded", form.Get("enabled_events[2]"))
}

func TestUpdateWebhookEndpointOmitsName(t *testing.T) {
	var form url.Values
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		path = r.URL.Path
		require.NoError(t, r.ParseForm())
		form = r.PostForm
		w.Write([]byte(`{"webhook_endpoint":{"id":"whe_1"}}`))
	}))
	defer srv.Close()

	client := NewClient("test-site", "test_key", srv.URL)
	_, err := client.UpdateWebhookEndpoint(context.Background(), "whe_1", &WebhookEndpoint{
		Name: "Ignored On Update",
		URL:  "https://hooks.example/in",
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/v2/webhook_endpoints/whe_1", path)
	assert.False(t, form.Has("name"))
	assert.Equal(t, "https://hooks.example/in", form.Get("url"))
}

func TestErrorCarriesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"api_key_invalid"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient("test-site", "bad_key", srv.URL)
	_, err := client.ListWebhookEndpoints(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "api_key_invalid")
}

func TestDefaultBaseURLFromSite(t *testing.T) {
	client := NewClient("acme-test", "key", "")
	assert.Equal(t, "https://acme-test.chargebee.com", client.baseURL)
}
