package gridstats

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelheap/registry-admin/internal/core/domain"
	"github.com/modelheap/registry-admin/internal/httpclient"
	"github.com/modelheap/registry-admin/pkg/schema"
)

const defaultBaseURL = "https://grid.modelheap.dev/api/v1"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client talks to the worker grid's status endpoint.
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

// FetchStats retrieves the live runtime counters, keyed by the model
// name each worker advertised.
func (c *Client) FetchStats(ctx context.Context) (map[string]schema.ModelStats, error) {
	u := fmt.Sprintf("%s/models/stats", strings.TrimRight(c.config.BaseURL, "/"))

	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["apikey"] = c.config.APIKey
	}

	var stats map[string]schema.ModelStats
	if err := httpclient.SendRequest(ctx, c.client, "GET", u, headers, nil, &stats); err != nil {
		var upstreamErr *httpclient.UpstreamError
		if !errors.As(err, &upstreamErr) {
			return nil, err
		}
		return nil, domain.New(
			upstreamErr.StatusCode,
			"Grid Stats Fetch Failed",
			upstreamErr.Message(),
			domain.WithExtension("upstream_url", upstreamErr.URL),
			domain.WithLog(err),
		)
	}

	return stats, nil
}
