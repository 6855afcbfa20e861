package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/httpclient"
	"github.com/modelheap/registry-admin/pkg/schema"
)

const defaultBaseURL = "https://api.modelheap.dev/v1/reference"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the model reference catalogue.
type Client struct {
	config Config
	client httpclient.HTTPClient
}

func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// FetchAll retrieves the full catalogue. The upstream serves either a
// JSON array of records or an object keyed by model name; both are
// accepted. Array entries that repeat a name are collapsed to the one
// carrying the newest version tag.
func (c *Client) FetchAll(ctx context.Context) ([]schema.ReferenceRecord, error) {
	u := fmt.Sprintf("%s/models", strings.TrimRight(c.config.BaseURL, "/"))

	var raw json.RawMessage
	if err := httpclient.SendRequest(ctx, c.client, "GET", u, c.headers(), nil, &raw); err != nil {
		return nil, c.wrapError("Reference Fetch Failed", err)
	}

	records, err := decodeCatalogue(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to decode catalogue: %w", err)
	}

	return dedupeNewest(records), nil
}

// Push writes one updated record back to the catalogue.
func (c *Client) Push(ctx context.Context, rec schema.ReferenceRecord) error {
	if rec.Name == "" {
		return errors.New("reference: record has no name")
	}

	u := fmt.Sprintf("%s/models/%s", strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(rec.Name))
	if err := httpclient.SendRequest(ctx, c.client, "PUT", u, c.headers(), rec, nil); err != nil {
		return c.wrapError("Reference Push Failed", err)
	}
	return nil
}

func (c *Client) headers() map[string]string {
	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["apikey"] = c.config.APIKey
	}
	return headers
}

func (c *Client) wrapError(title string, err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	// create a nice RFC 9457 problem carrying the upstream context
	return domain.New(
		upstreamErr.StatusCode,
		title,
		upstreamErr.Message(),
		domain.WithExtension("upstream_url", upstreamErr.URL),
		domain.WithLog(err),
	)
}

func decodeCatalogue(raw json.RawMessage) ([]schema.ReferenceRecord, error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []schema.ReferenceRecord
		if err := json.Unmarshal(raw, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	// Object form: keys are model names, values the records. Keys are
	// emitted sorted so downstream ordering is stable across fetches.
	var byName map[string]schema.ReferenceRecord
	if err := json.Unmarshal(raw, &byName); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	records := make([]schema.ReferenceRecord, 0, len(byName))
	for _, name := range names {
		rec := byName[name]
		if rec.Name == "" {
			rec.Name = name
		}
		records = append(records, rec)
	}
	return records, nil
}

// dedupeNewest collapses records sharing a name, keeping the entry with
// the newest parseable version at the position of first appearance.
func dedupeNewest(records []schema.ReferenceRecord) []schema.ReferenceRecord {
	index := make(map[string]int, len(records))
	out := make([]schema.ReferenceRecord, 0, len(records))
	for _, rec := range records {
		at, seen := index[rec.Name]
		if !seen {
			index[rec.Name] = len(out)
			out = append(out, rec)
			continue
		}
		if newerVersion(rec.Version, out[at].Version) {
			out[at] = rec
		}
	}
	return out
}

// newerVersion reports whether a is strictly newer than b. Records
// without a parseable version lose to ones that have one; when neither
// parses, the incumbent wins.
func newerVersion(a, b string) bool {
	va, errA := version.NewVersion(a)
	if errA != nil {
		return false
	}
	vb, errB := version.NewVersion(b)
	if errB != nil {
		return true
	}
	return va.GreaterThan(vb)
}
