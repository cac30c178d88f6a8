package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, StatusReady, Classify("ready"))
	assert.Equal(t, StatusReady, Classify("done"))
	assert.Equal(t, StatusReady, Classify(" READY "))
	assert.Equal(t, StatusFailed, Classify("failed"))
	assert.Equal(t, StatusPending, Classify("running"))
	assert.Equal(t, StatusPending, Classify("collecting"))
	assert.Equal(t, StatusPending, Classify(""))
}

func TestCleanUsername(t *testing.T) {
	assert.Equal(t, "someone", CleanUsername(" @someone "))
	assert.Equal(t, "https://www.tiktok.com/@someone", ProfileURL("@someone"))
}

func TestBrightDataSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/datasets/v3/trigger", r.URL.Path)
		assert.Equal(t, "ds_1", r.URL.Query().Get("dataset_id"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var payload []map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload, 1)
		assert.Equal(t, "https://www.tiktok.com/@someone", payload[0]["url"])

		w.Write([]byte(`{"snapshot_id":"s_42"}`))
	}))
	defer server.Close()

	client := NewBrightData(server.URL, "secret", "ds_1")
	id, err := client.Submit(context.Background(), "@someone")
	require.NoError(t, err)
	assert.Equal(t, "s_42", id)
}

func TestBrightDataSubmitErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dataset_id") == "empty" {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"bad token"}`))
	}))
	defer server.Close()

	_, err := NewBrightData(server.URL, "secret", "ds_1").Submit(context.Background(), "a")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "401")

	_, err = NewBrightData(server.URL, "secret", "empty").Submit(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNoJobID)

	_, err = NewBrightData(server.URL, "", "ds_1").Submit(context.Background(), "a")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestBrightDataPollAndRetrieve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/datasets/v3/progress/s_1":
			w.Write([]byte(`{"status":"running","progress":40}`))
		case "/datasets/v3/progress/s_2":
			w.Write([]byte(`{"status":"ready"}`))
		case "/datasets/v3/snapshot/s_2":
			assert.Equal(t, "json", r.URL.Query().Get("format"))
			w.Write([]byte(`[{"description":"hello","play_count":10}]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewBrightData(server.URL, "secret", "ds_1")
	ctx := context.Background()

	status, err := client.PollOnce(ctx, "s_1")
	require.NoError(t, err)
	assert.Equal(t, StatusPending, status)

	status, err = client.PollOnce(ctx, "s_2")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, status)

	items, err := client.Retrieve(ctx, "s_2")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "hello", items[0]["description"])
	assert.Equal(t, float64(10), items[0]["play_count"])

	_, err = client.PollOnce(ctx, "missing")
	assert.Error(t, err)
}
