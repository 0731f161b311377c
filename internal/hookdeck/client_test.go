package hookdeck

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertSourceSendsBearerAndJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/sources", r.URL.Path)
		assert.Equal(t, "Bearer hd_key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var src Source
		require.NoError(t, json.NewDecoder(r.Body).Decode(&src))
		assert.Equal(t, "billing-events", src.Name)
		require.NotNil(t, src.Config)
		assert.Equal(t, "hook", src.Config.Auth.Username)

		src.ID = "src_abc"
		src.URL = "https://hkdk.example/xyz"
		json.NewEncoder(w).Encode(src)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "hd_key")
	src, err := client.UpsertSource(context.Background(), &Source{
		Name:   "billing-events",
		Type:   "CHARGEBEE",
		Config: &SourceConfig{Auth: &SourceAuth{Username: "hook", Password: "secret"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "src_abc", src.ID)
	assert.Equal(t, "https://hkdk.example/xyz", src.URL)
}

func TestListConnectionsUnwrapsModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models":[{"id":"conn_1","name":"a"},{"id":"conn_2","name":"b"}]}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "hd_key")
	conns, err := client.ListConnections(context.Background())
	require.NoError(t, err)
	require.Len(t, conns, 2)
	assert.Equal(t, "conn_2", conns[1].ID)
}

func TestDeleteTargetsResourcePath(t *testing.T) {
	var path, method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		method = r.Method
		w.Write([]byte(`{"id":"src_abc"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "hd_key")
	require.NoError(t, client.DeleteSource(context.Background(), "src_abc"))
	assert.Equal(t, http.MethodDelete, method)
	assert.Equal(t, "/sources/src_abc", path)
}

func TestNon2xxIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad_key")
	_, err := client.ListSources(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Contains(t, err.Error(), "unauthorized")
}

func TestFilterHelpers(t *testing.T) {
	starts := FilterStartsWith("customer_")
	assert.Equal(t, "filter", starts.Type)
	assert.Equal(t, map[string]interface{}{"$startsWith": "customer_"}, starts.Body.EventType)

	equals := FilterEquals("payment_succeeded")
	assert.Equal(t, "filter", equals.Type)
	assert.Equal(t, "payment_succeeded", equals.Body.EventType)
}
