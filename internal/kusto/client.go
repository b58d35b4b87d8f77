// Package kusto is the mock data-explorer client. It never performs
// network I/O: queries resolve to locally fabricated rows keyed on
// substrings of the query text, which is enough for the dashboard's
// query panel to feel live.
package kusto

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/msticdev/msmonitor/internal/seed"
)

// Row is one fabricated result row.
type Row map[string]interface{}

// Result is the outcome of a query execution.
type Result struct {
	Rows       []Row     `json:"rows"`
	RowCount   int       `json:"row_count"`
	DurationMs int64     `json:"duration_ms"`
	Cached     bool      `json:"cached"`
	ExecutedAt time.Time `json:"executed_at"`
}

// ClientContext carries the simulated access token. It is created and
// injected explicitly by the owner of the client; there is no ambient
// token singleton.
type ClientContext struct {
	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClientContext creates an empty token context.
func NewClientContext() *ClientContext {
	return &ClientContext{}
}

// AccessToken returns the current simulated token, minting a new one
// when missing or expired.
func (c *ClientContext) AccessToken(now time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == "" || now.After(c.tokenExpiry) {
		c.token = fmt.Sprintf("mock-token-%d", now.UnixNano())
		c.tokenExpiry = now.Add(55 * time.Minute)
	}
	return c.token
}

// Client executes mock KQL queries with an LRU cache over query text.
type Client struct {
	cctx  *ClientContext
	cache *lru.Cache[string, []Row]
}

// NewClient creates a mock client. cacheSize <= 0 selects a default.
func NewClient(cctx *ClientContext, cacheSize int) (*Client, error) {
	if cctx == nil {
		return nil, fmt.Errorf("client context is required")
	}
	if cacheSize <= 0 {
		cacheSize = 128
	}
	cache, err := lru.New[string, []Row](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create query cache: %w", err)
	}
	return &Client{cctx: cctx, cache: cache}, nil
}

// ExecuteQuery fabricates rows for the given KQL text. Identical query
// text yields identical rows (seeded on the text), served from cache
// after the first execution.
func (c *Client) ExecuteQuery(ctx context.Context, kql string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kql = strings.TrimSpace(kql)
	if kql == "" {
		return nil, fmt.Errorf("empty query")
	}

	now := time.Now().UTC()
	_ = c.cctx.AccessToken(now)

	if rows, ok := c.cache.Get(kql); ok {
		return &Result{
			Rows:       rows,
			RowCount:   len(rows),
			DurationMs: 1,
			Cached:     true,
			ExecutedAt: now,
		}, nil
	}

	rows := fabricateRows(kql)
	c.cache.Add(kql, rows)

	return &Result{
		Rows:       rows,
		RowCount:   len(rows),
		DurationMs: int64(seed.IntBetween(kql+"-latency", 40, 900)),
		Cached:     false,
		ExecutedAt: now,
	}, nil
}

// fabricateRows keys the row shape on substrings of the query text.
func fabricateRows(kql string) []Row {
	lower := strings.ToLower(kql)
	switch {
	case strings.Contains(lower, "count"):
		return []Row{{"Count": seed.IntBetween(kql+"-count", 1_000, 250_000)}}
	case strings.Contains(lower, "securityevents"):
		return securityEventRows(kql)
	case strings.Contains(lower, "summarize"):
		return summaryRows(kql)
	default:
		return pipelineRunRows(kql)
	}
}

func securityEventRows(kql string) []Row {
	n := seed.IntBetween(kql+"-rows", 3, 8)
	eventTypes := []string{"SignInSuccess", "SignInFailure", "TokenIssued", "PrivilegeUse", "ResourceAccess"}
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("%s-ev-%d", kql, i)
		rows = append(rows, Row{
			"TimeGenerated": time.Now().UTC().Add(-time.Duration(seed.IntBetween(k+"-age", 1, 720)) * time.Minute).Format(time.RFC3339),
			"EventType":     seed.Pick(k+"-type", eventTypes),
			"UserId":        fmt.Sprintf("user-%03d", seed.IntBetween(k+"-user", 1, 12)),
			"ResultCode":    seed.Pick(k+"-result", []string{"0", "0", "0", "50126"}),
			"IpAddress":     fmt.Sprintf("10.%d.%d.%d", seed.IntBetween(k+"-a", 0, 255), seed.IntBetween(k+"-b", 0, 255), seed.IntBetween(k+"-c", 1, 254)),
		})
	}
	return rows
}

func summaryRows(kql string) []Row {
	sources := []string{"LinkedIn", "GitHub", "AzureAD", "Office365", "Defender"}
	rows := make([]Row, 0, len(sources))
	for _, src := range sources {
		rows = append(rows, Row{
			"Source":      src,
			"Records":     seed.IntBetween(kql+"-"+src+"-records", 10_000, 900_000),
			"FailureRate": seed.Range(kql+"-"+src+"-fail", 0, 12),
		})
	}
	return rows
}

func pipelineRunRows(kql string) []Row {
	n := seed.IntBetween(kql+"-rows", 2, 6)
	rows := make([]Row, 0, n)
	for i := 0; i < n; i++ {
		k := fmt.Sprintf("%s-run-%d", kql, i)
		rows = append(rows, Row{
			"RunId":      fmt.Sprintf("run-%06d", seed.IntBetween(k+"-id", 1, 999_999)),
			"Status":     seed.Pick(k+"-status", []string{"Succeeded", "Succeeded", "Succeeded", "Failed"}),
			"DurationMs": seed.IntBetween(k+"-dur", 800, 90_000),
			"Records":    seed.IntBetween(k+"-records", 100, 50_000),
		})
	}
	return rows
}
