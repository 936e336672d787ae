package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sublymus/sublyadmin/internal/fleet"
)

func intPtr(n int) *int { return &n }

func TestFetchSnapshot_SendsBearerTokenAndDecodesObjectShape(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/admin/monitoring", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"services":[{"id":"svc1","name":"svc1","type":"app","status":"running",
				"current":{"timestamp":1000,"cpu":10,"memory":1000,"replicas":1},"history":[]}],
			"host":null
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "secret-token")
	snap, err := c.FetchSnapshot(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	require.Len(t, snap.Services, 1)
	assert.Equal(t, "svc1", snap.Services[0].ID)
	assert.Nil(t, snap.Host)
}

func TestFetchSnapshot_DecodesBareListShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"id":"svc1","name":"svc1","type":"theme","status":"stopped",
			"current":{"timestamp":1000,"cpu":0,"memory":0,"replicas":0},"history":[]}]`))
	}))
	defer srv.Close()

	snap, err := New(srv.URL, "t").FetchSnapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Services, 1)
	assert.Equal(t, fleet.KindTheme, snap.Services[0].Type)
	assert.Nil(t, snap.Host)
}

func TestFetchSnapshot_UnwrapsErrorEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"status":"error","message":"insufficient role"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient role")
}

func TestFetchSnapshot_PlainFailureReportsStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, "t").FetchSnapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestPerformAction_PostsCommandBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/monitoring/action", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	cmd := fleet.Command{ID: "svc1", Kind: fleet.KindStore, Action: fleet.ActionScale, Replicas: intPtr(3)}
	require.NoError(t, New(srv.URL, "t").PerformAction(context.Background(), cmd))

	assert.Equal(t, "svc1", got["id"])
	assert.Equal(t, "store", got["type"])
	assert.Equal(t, "scale", got["action"])
	assert.Equal(t, float64(3), got["replicas"])
}

func TestPerformAction_OmitsReplicasWhenUnset(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	cmd := fleet.Command{ID: "svc1", Kind: fleet.KindApp, Action: fleet.ActionRestart}
	require.NoError(t, New(srv.URL, "t").PerformAction(context.Background(), cmd))

	_, hasReplicas := got["replicas"]
	assert.False(t, hasReplicas)
	_, hasID := got["id"]
	assert.True(t, hasID)
}

func TestPerformGroupAction_PostsKindAndAction(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/admin/monitoring/group-action", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer srv.Close()

	require.NoError(t, New(srv.URL, "t").PerformGroupAction(context.Background(), fleet.KindAll, fleet.ActionStart))
	assert.Equal(t, "all", got["type"])
	assert.Equal(t, "start", got["action"])
	_, hasID := got["id"]
	assert.False(t, hasID)
}
