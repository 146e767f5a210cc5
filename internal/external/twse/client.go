package twse

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"

	"golang.org/x/text/encoding/traditionalchinese"
	"golang.org/x/text/transform"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/httputil"
	"github.com/wonny/extremes/pkg/logger"
)

// Report formats served by MI_INDEX
const (
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// DefaultBaseURL is the TWSE site root
const DefaultBaseURL = "https://www.twse.com.tw"

// Client downloads the TWSE daily quote report (MI_INDEX, type=ALL)
// ⭐ SSOT: 상장(TWSE) 일별 시세 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	format     string
}

// Option configures a Client
type Option func(*Client)

// WithBaseURL overrides the site root (tests, mirrors)
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithFormat selects the csv or html report
func WithFormat(format string) Option {
	return func(c *Client) { c.format = format }
}

// NewClient creates a new TWSE client
func NewClient(httpClient *httputil.Client, log *logger.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    DefaultBaseURL,
		format:     FormatCSV,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name implements contracts.SnapshotSource
func (c *Client) Name() string {
	return "twse"
}

// reportURL builds the MI_INDEX request for date
func (c *Client) reportURL(date contracts.TradingDate) string {
	params := url.Values{}
	params.Set("response", c.format)
	params.Set("date", date.String())
	params.Set("type", "ALL")
	return fmt.Sprintf("%s/exchangeReport/MI_INDEX?%s", c.baseURL, params.Encode())
}

// Fetch implements contracts.SnapshotSource.
// Non-trading days come back as an empty body and an empty snapshot.
func (c *Client) Fetch(ctx context.Context, date contracts.TradingDate) (contracts.Snapshot, error) {
	log := c.logger.WithField("date", date.String())
	log.Info("Start download")

	body, err := c.httpClient.GetBody(ctx, c.reportURL(date))
	if err != nil {
		return nil, fmt.Errorf("twse download %s: %w", date, err)
	}

	var snap contracts.Snapshot
	switch c.format {
	case FormatHTML:
		snap, err = ParseHTML(bytes.NewReader(body))
	default:
		snap, err = ParseCSV(decodeBig5(body))
	}
	if err != nil {
		return nil, fmt.Errorf("twse parse %s: %w", date, err)
	}

	log.WithField("count", len(snap)).Info("Parsed records")
	return snap, nil
}

// decodeBig5 converts the cp950 CSV body to UTF-8
func decodeBig5(body []byte) io.Reader {
	return transform.NewReader(bytes.NewReader(body), traditionalchinese.Big5.NewDecoder())
}
