package external

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, routes map[string]string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.URL.Query().Get("auth"))
		body, ok := routes[r.URL.Path]
		if !ok {
			body = "null"
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRealtimeDBFetchTech(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/categories/language/Go.json": `{
			"q1": {"question": "What is a goroutine?", "hint": "runtime", "answer": "A lightweight thread", "priority": 2, "counter": 1},
			"q2": {"question": "What is a channel?", "hint": "", "answer": "A typed conduit", "priority": "high"}
		}`,
	})
	client := NewRealtimeDBClient(srv.URL+"/", "secret", nil)

	got, err := client.FetchTech(context.Background(), "language", "Go")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "What is a goroutine?", got["q1"].Question)
	assert.Equal(t, OptionalInt{Value: 2, Set: true}, got["q1"].Priority)
	assert.Equal(t, OptionalInt{Value: 1, Set: true}, got["q1"].Counter)
	assert.False(t, got["q2"].Priority.Set, "non-numeric priority is treated as unset")
	assert.False(t, got["q2"].Counter.Set)
}

func TestRealtimeDBMissingNodeIsEmpty(t *testing.T) {
	srv := newTestServer(t, nil)
	client := NewRealtimeDBClient(srv.URL, "secret", nil)

	got, err := client.FetchTech(context.Background(), "framework", "Vue")
	require.NoError(t, err)
	assert.Empty(t, got)

	techs, err := client.TechNames(context.Background(), "framework")
	require.NoError(t, err)
	assert.Empty(t, techs)
}

func TestRealtimeDBCategories(t *testing.T) {
	srv := newTestServer(t, map[string]string{
		"/categories.json":           `{"language": true, "framework": true}`,
		"/categories/language.json":  `{"TypeScript": true, "JavaScript": true}`,
		"/categories/framework.json": `{"React": true}`,
	})
	client := NewRealtimeDBClient(srv.URL, "secret", nil)

	got, err := client.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"language":  {"JavaScript", "TypeScript"},
		"framework": {"React"},
	}, got)
}

func TestRealtimeDBErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "denied", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewRealtimeDBClient(srv.URL, "", nil).FetchTech(context.Background(), "language", "Go")
	assert.ErrorContains(t, err, "401")
}

func TestOptionalIntRejectsNonIntegral(t *testing.T) {
	tests := []struct {
		in   string
		want OptionalInt
	}{
		{`3`, OptionalInt{Value: 3, Set: true}},
		{`-2`, OptionalInt{Value: -2, Set: true}},
		{`4.0`, OptionalInt{Value: 4, Set: true}},
		{`1e2`, OptionalInt{Value: 100, Set: true}},
		{`1.5`, OptionalInt{}},
		{`1e300`, OptionalInt{}},
		{`"7"`, OptionalInt{}},
		{`null`, OptionalInt{}},
		{`true`, OptionalInt{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got OptionalInt
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}
