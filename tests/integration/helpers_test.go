//go:build integration
// +build integration

package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"testing"
	"time"
)

type sessionView struct {
	ID       string `json:"id"`
	Total    int    `json:"total"`
	Shown    int    `json:"shown"`
	Finished bool   `json:"finished"`
	Current  *struct {
		ID       string `json:"id"`
		Category string `json:"category"`
		TechName string `json:"techName"`
	} `json:"current"`
}

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func newClientID() string {
	return fmt.Sprintf("it-%d", time.Now().UnixNano())
}

// doJSON sends payload (if any) with the client id header and decodes into out when non-nil.
func doJSON(t *testing.T, method, url, clientID string, payload any, wantStatus int, out any) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		var errResp map[string]any
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		t.Fatalf("%s %s: expected %d, got %d, error: %v", method, url, wantStatus, resp.StatusCode, errResp)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
}

// firstCategory returns a category from the live catalog, skipping the test when empty.
func firstCategory(t *testing.T, baseURL string) string {
	t.Helper()
	var catalog struct {
		Categories map[string][]string `json:"categories"`
	}
	doJSON(t, http.MethodGet, baseURL+"/v1/catalog", "", nil, http.StatusOK, &catalog)
	for category := range catalog.Categories {
		return category
	}
	t.Skip("question store is empty")
	return ""
}
