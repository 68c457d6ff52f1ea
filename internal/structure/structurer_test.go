package structure

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/echonote/echonote/internal/openai"
)

func newClient(t *testing.T, handler http.HandlerFunc) *openai.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := openai.New("test-key", srv.URL)
	require.NoError(t, err)
	return c
}

func responsesPayload(text string) string {
	body := map[string]any{
		"output": []map[string]any{{
			"type": "message",
			"content": []map[string]any{{
				"type": "output_text",
				"text": text,
			}},
		}},
	}
	raw, _ := json.Marshal(body)
	return string(raw)
}

func TestStructureParsesObject(t *testing.T) {
	var req responsesRequest
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/responses", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		_, _ = w.Write([]byte(responsesPayload(`{"title":"Report and Call","category":["Work"],"action_items":["Finish the report","Call Alex"],"mood":"focused"}`)))
	})

	s := NewLLM(client, "gpt-4.1-nano")
	obj, err := s.Structure(context.Background(), "Finish the report and call Alex")
	require.NoError(t, err)
	assert.Equal(t, "Report and Call", obj["title"])

	// prompt embeds the transcript verbatim and the strict schema rides along
	assert.True(t, strings.Contains(req.Input, "Finish the report and call Alex"))
	assert.NotNil(t, req.Text["format"])
}

func TestStructureEmptyOutputFails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responsesPayload("   ")))
	})

	s := NewLLM(client, "")
	_, err := s.Structure(context.Background(), "hello")
	assert.Error(t, err)
}

func TestStructureNonJSONFails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(responsesPayload("not json at all")))
	})

	s := NewLLM(client, "")
	_, err := s.Structure(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-JSON")
}

func TestStructureUpstreamErrorFails(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"auth"}`, http.StatusUnauthorized)
	})

	s := NewLLM(client, "")
	_, err := s.Structure(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}
