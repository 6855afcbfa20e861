package reference_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/modelheap/registry-admin/internal/adapters/reference"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchAllArrayForm(t *testing.T) {
	// Mock Server
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models", r.URL.Path)
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "test-key", r.Header.Get("apikey"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`[
			{"name": "L3-8B", "description": "Llama 3 8B", "version": "1.0.0"},
			{"name": "Mistral-7B", "tags": ["general"]},
			{"name": "L3-8B", "description": "Llama 3 8B refresh", "version": "1.2.0"}
		]`))
	}))
	defer server.Close()

	client := reference.NewClient(reference.Config{
		BaseURL: server.URL,
		APIKey:  "test-key",
	})

	records, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Duplicate collapsed to the newest version, at first position
	assert.Equal(t, "L3-8B", records[0].Name)
	assert.Equal(t, "Llama 3 8B refresh", records[0].Description)
	assert.Equal(t, "1.2.0", records[0].Version)
	assert.Equal(t, "Mistral-7B", records[1].Name)
}

func TestFetchAllObjectForm(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"Zephyr-7B": {"description": "fine-tune"},
			"L3-8B": {"name": "L3-8B", "nsfw": false}
		}`))
	}))
	defer server.Close()

	client := reference.NewClient(reference.Config{BaseURL: server.URL})

	records, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	// Keys sorted, names filled in from keys when missing
	assert.Equal(t, "L3-8B", records[0].Name)
	assert.Equal(t, "Zephyr-7B", records[1].Name)
	assert.Equal(t, "fine-tune", records[1].Description)
}

func TestFetchAllVersionlessDuplicateLosesToVersioned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"name": "L3-8B", "description": "no version"},
			{"name": "L3-8B", "description": "versioned", "version": "0.1.0"}
		]`))
	}))
	defer server.Close()

	client := reference.NewClient(reference.Config{BaseURL: server.URL})

	records, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "versioned", records[0].Description)
}

func TestPushSendsRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/L3-8B", r.URL.Path)
		assert.Equal(t, "PUT", r.Method)

		body, _ := io.ReadAll(r.Body)
		var rec schema.ReferenceRecord
		require.NoError(t, json.Unmarshal(body, &rec))
		assert.Equal(t, "L3-8B", rec.Name)
		assert.Equal(t, "updated", rec.Description)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := reference.NewClient(reference.Config{BaseURL: server.URL})

	err := client.Push(context.Background(), schema.ReferenceRecord{
		Name:        "L3-8B",
		Description: "updated",
	})
	assert.NoError(t, err)
}

func TestUpstreamFailureBecomesProblem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"message": "catalogue rebuilding"}`))
	}))
	defer server.Close()

	client := reference.NewClient(reference.Config{BaseURL: server.URL})

	_, err := client.FetchAll(context.Background())
	require.Error(t, err)

	problem, ok := err.(*domain.Problem)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, problem.Status)
	assert.Equal(t, "catalogue rebuilding", problem.Detail)
}
