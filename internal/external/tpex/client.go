package tpex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/internal/marketdata"
	"github.com/wonny/extremes/pkg/httputil"
	"github.com/wonny/extremes/pkg/logger"
)

// DefaultBaseURL is the TPEx OpenAPI host
const DefaultBaseURL = "https://www.tpex.org.tw"

// Client handles the TPEx (OTC) OpenAPI
// ⭐ SSOT: 장외(TPEx) OpenAPI 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
}

// NewClient creates a new TPEx client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Name implements contracts.SnapshotSource
func (c *Client) Name() string {
	return "tpex"
}

// Field names changed across OpenAPI revisions; first non-empty wins
var (
	codeFields  = []string{"Code", "SecuritiesCompanyCode"}
	nameFields  = []string{"Name", "SecuritiesCompanyAbbr", "CompanyName"}
	lowFields   = []string{"Low", "Min", "LowestPrice"}
	highFields  = []string{"High", "Max", "HighestPrice"}
	closeFields = []string{"Close", "ClosingPrice"}
)

// Fetch implements contracts.SnapshotSource. The date is sent in ROC form.
func (c *Client) Fetch(ctx context.Context, date contracts.TradingDate) (contracts.Snapshot, error) {
	log := c.logger.WithField("date", date.String())
	log.Info("Start download")

	params := url.Values{}
	params.Set("l", "zh-tw")
	params.Set("d", date.ROC())
	params.Set("s", "0,asc,0")
	endpoint := fmt.Sprintf("%s/openapi/v1/tpex_mainboard_daily_close_quotes?%s", c.baseURL, params.Encode())

	body, err := c.httpClient.GetBody(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("tpex download %s: %w", date, err)
	}

	snap, err := ParseQuotes(body)
	if err != nil {
		return nil, fmt.Errorf("tpex parse %s: %w", date, err)
	}

	log.WithField("count", len(snap)).Info("Parsed records")
	return snap, nil
}

// ParseQuotes decodes the daily close quotes array
func ParseQuotes(body []byte) (contracts.Snapshot, error) {
	snap := contracts.Snapshot{}
	if len(strings.TrimSpace(string(body))) == 0 {
		return snap, nil
	}

	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode quotes: %w", err)
	}

	for _, item := range items {
		rec, ok := marketdata.BuildRecord(marketdata.RawRow{
			Code:  pick(item, codeFields),
			Name:  pick(item, nameFields),
			Low:   pick(item, lowFields),
			High:  pick(item, highFields),
			Close: pick(item, closeFields),
		})
		if ok {
			snap = append(snap, rec)
		}
	}

	return snap.Dedupe(), nil
}

// pick returns the first non-empty field as a string
func pick(item map[string]interface{}, keys []string) string {
	for _, k := range keys {
		switch v := item[k].(type) {
		case string:
			if strings.TrimSpace(v) != "" {
				return v
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
	}
	return ""
}

// suspensionDay is one row of the suspension_trading_days feed
type suspensionDay struct {
	Date        string `json:"Date"`
	Name        string `json:"Name"`
	TradingType string `json:"TradingType"`
}

// FetchHolidays lists dates the market is closed (TradingType "0").
// Implements tradingdate.CalendarSource.
func (c *Client) FetchHolidays(ctx context.Context) (map[contracts.TradingDate]string, error) {
	endpoint := fmt.Sprintf("%s/openapi/v1/exchange/suspension_trading_days?l=zh-tw", c.baseURL)

	body, err := c.httpClient.GetBody(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("tpex calendar: %w", err)
	}

	var days []suspensionDay
	if err := json.Unmarshal(body, &days); err != nil {
		return nil, fmt.Errorf("decode calendar: %w", err)
	}

	holidays := make(map[contracts.TradingDate]string, len(days))
	for _, day := range days {
		if day.TradingType != "0" {
			continue
		}
		d, err := ParseROCDate(day.Date)
		if err != nil {
			continue
		}
		holidays[d] = day.Name
	}

	c.logger.WithField("count", len(holidays)).Debug("Fetched exchange calendar")
	return holidays, nil
}

// ParseROCDate accepts 114/05/26 or 1140526
func ParseROCDate(s string) (contracts.TradingDate, error) {
	s = strings.TrimSpace(s)

	var year, month, day int
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) != 3 {
			return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
		}
		var err error
		if year, err = strconv.Atoi(parts[0]); err != nil {
			return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
		}
		if month, err = strconv.Atoi(parts[1]); err != nil {
			return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
		}
		if day, err = strconv.Atoi(parts[2]); err != nil {
			return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
		}
	} else {
		if len(s) != 7 {
			return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
		}
		year, month, day = n/10000, n/100%100, n%100
	}

	t := time.Date(year+1911, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Month() != time.Month(month) || t.Day() != day {
		return "", fmt.Errorf("%w: %q", contracts.ErrInvalidDate, s)
	}
	return contracts.NewTradingDate(t), nil
}
