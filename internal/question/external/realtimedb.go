package external

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

// RealtimeDBClient reads the question tree from a Firebase Realtime Database
// over its REST API. Layout: categories/{category}/{techName}/{id}.
type RealtimeDBClient struct {
	baseURL    string
	authToken  string
	httpClient *http.Client
}

func NewRealtimeDBClient(baseURL, authToken string, httpClient *http.Client) *RealtimeDBClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 5 * time.Second}
	}
	return &RealtimeDBClient{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		authToken:  authToken, // database secret or ID token, env `REALTIMEDB_AUTH`.
		httpClient: httpClient,
	}
}

// RealtimeQuestion is one record under a technology node.
type RealtimeQuestion struct {
	Question string      `json:"question"`
	Hint     string      `json:"hint"`
	Answer   string      `json:"answer"`
	Priority OptionalInt `json:"priority"`
	Counter  OptionalInt `json:"counter"`
}

// OptionalInt decodes an integral JSON number. Strings, fractions and values
// outside the 32-bit range are treated as unset.
type OptionalInt struct {
	Value int
	Set   bool
}

func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	*o = OptionalInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || (data[0] != '-' && (data[0] < '0' || data[0] > '9')) {
		return nil
	}
	f, err := json.Number(data).Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return nil
	}
	*o = OptionalInt{Value: int(f), Set: true}
	return nil
}

// Categories returns every category with its technology names, sorted.
func (c *RealtimeDBClient) Categories(ctx context.Context) (map[string][]string, error) {
	categories, err := c.shallowKeys(ctx, "categories")
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string, len(categories))
	for _, category := range categories {
		techs, err := c.TechNames(ctx, category)
		if err != nil {
			return nil, err
		}
		out[category] = techs
	}
	return out, nil
}

// TechNames lists the technologies stored under a category.
func (c *RealtimeDBClient) TechNames(ctx context.Context, category string) ([]string, error) {
	return c.shallowKeys(ctx, "categories", category)
}

// FetchTech returns the questions stored under category/techName keyed by id.
// A missing node yields an empty map.
func (c *RealtimeDBClient) FetchTech(ctx context.Context, category, techName string) (map[string]RealtimeQuestion, error) {
	var payload map[string]RealtimeQuestion
	if err := c.get(ctx, nil, &payload, "categories", category, techName); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = map[string]RealtimeQuestion{}
	}
	return payload, nil
}

func (c *RealtimeDBClient) shallowKeys(ctx context.Context, segments ...string) ([]string, error) {
	values := url.Values{}
	values.Set("shallow", "true")

	var payload map[string]json.RawMessage
	if err := c.get(ctx, values, &payload, segments...); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (c *RealtimeDBClient) get(ctx context.Context, values url.Values, out any, segments ...string) error {
	if values == nil {
		values = url.Values{}
	}
	if c.authToken != "" {
		values.Set("auth", c.authToken)
	}
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	endpoint := fmt.Sprintf("%s/%s.json", c.baseURL, strings.Join(escaped, "/"))
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("realtimedb non-200: %d", resp.StatusCode)
	}
	// A missing node comes back as JSON null and leaves out untouched.
	return json.NewDecoder(resp.Body).Decode(out)
}
