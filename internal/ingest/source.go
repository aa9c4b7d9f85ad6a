// AngelaMos | 2026
// source.go

package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/byzip-v2/byzip-backend-v2/internal/config"
	"github.com/byzip-v2/byzip-backend-v2/internal/httpclient"
)

// Source is one public data endpoint feeding housing_supplies.
type Source struct {
	Name  string
	Label string
	Path  string
}

var DefaultSources = []Source{
	{
		Name:  "apt",
		Label: "APT subscription notices",
		Path:  "ApplyhomeInfoDetailSvc/v1/getAPTLttotPblancDetail",
	},
	{
		Name:  "urbty",
		Label: "Urban housing and officetel notices",
		Path:  "ApplyhomeInfoDetailSvc/v1/getUrbtyOfctlLttotPblancDetail",
	},
}

const maxResponseBytes = 16 << 20

type Fetcher interface {
	Configured() bool
	Fetch(ctx context.Context, src Source) ([]any, error)
}

type PublicDataClient struct {
	http   *httpclient.CircuitBreakerClient
	cfg    config.PublicDataConfig
	logger *slog.Logger
}

func NewPublicDataClient(
	client *httpclient.CircuitBreakerClient,
	cfg config.PublicDataConfig,
	logger *slog.Logger,
) *PublicDataClient {
	if cfg.PerPage <= 0 {
		cfg.PerPage = 10
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 1
	}
	return &PublicDataClient{http: client, cfg: cfg, logger: logger}
}

func (c *PublicDataClient) Configured() bool {
	return c.cfg.APIKey != ""
}

// Fetch pages through src until MaxPages is reached or a short page is
// returned. Any failed page fails the whole source.
func (c *PublicDataClient) Fetch(ctx context.Context, src Source) ([]any, error) {
	var all []any

	for page := 1; page <= c.cfg.MaxPages; page++ {
		items, err := c.fetchPage(ctx, src, page)
		if err != nil {
			return nil, err
		}

		c.logger.DebugContext(ctx, "public data page fetched",
			"source", src.Name,
			"page", page,
			"items", len(items),
		)

		all = append(all, items...)
		if len(items) < c.cfg.PerPage {
			break
		}
	}

	return all, nil
}

func (c *PublicDataClient) pageURL(src Source, page int) string {
	q := url.Values{}
	q.Set("serviceKey", c.cfg.APIKey)
	q.Set("page", strconv.Itoa(page))
	q.Set("perPage", strconv.Itoa(c.cfg.PerPage))
	if c.cfg.Since != "" {
		q.Set("cond[RCRIT_PBLANC_DE::GTE]", c.cfg.Since)
	}

	return strings.TrimRight(c.cfg.BaseURL, "/") + "/" + src.Path + "?" + q.Encode()
}

func (c *PublicDataClient) fetchPage(ctx context.Context, src Source, page int) ([]any, error) {
	resp, err := c.http.Get(ctx, c.pageURL(src, page))
	if err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", src.Name, page, err)
	}
	if err := httpclient.CheckResponse(resp, src.Name); err != nil {
		return nil, fmt.Errorf("fetch %s page %d: %w", src.Name, page, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s page %d: %w", src.Name, page, err)
	}

	return ExtractItems(body)
}

// ExtractItems pulls the record list out of a response body. Records live in
// "data" or "body.items"; any other shape yields no items. String records
// are decoded as JSON when possible and kept verbatim otherwise.
func ExtractItems(body []byte) ([]any, error) {
	var payload map[string]any
	if err := decodeJSON(body, &payload); err != nil {
		return nil, fmt.Errorf("decode public data response: %w", err)
	}

	raw, ok := payload["data"]
	if !ok || raw == nil {
		if b, isMap := payload["body"].(map[string]any); isMap {
			raw = b["items"]
		}
	}

	list, ok := raw.([]any)
	if !ok {
		return nil, nil
	}

	items := make([]any, 0, len(list))
	for _, v := range list {
		if s, isStr := v.(string); isStr {
			var decoded any
			if err := decodeJSON([]byte(s), &decoded); err == nil {
				v = decoded
			}
		}
		items = append(items, v)
	}

	return items, nil
}

func decodeJSON(b []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	return dec.Decode(v)
}
