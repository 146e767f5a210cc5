package tpex

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/extremes/internal/contracts"
	"github.com/wonny/extremes/pkg/config"
	"github.com/wonny/extremes/pkg/httputil"
	"github.com/wonny/extremes/pkg/logger"
)

func newTestClient(baseURL string) *Client {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	return NewClient(httputil.New(cfg, logger.Nop()).DisableRetry(), logger.Nop(), baseURL)
}

func TestParseQuotes_FieldFallbacks(t *testing.T) {
	body := []byte(`[
		{"Code":"6488","Name":"環球晶","Low":"410.50","High":"420.00","Close":"415.00"},
		{"SecuritiesCompanyCode":"8069","CompanyName":"元太","LowestPrice":"230.00","HighestPrice":"240.00","ClosingPrice":"235.50"},
		{"SecuritiesCompanyCode":"5347","SecuritiesCompanyAbbr":"世界","Min":98.5,"Max":101,"Close":"100.00"},
		{"Code":"006201","Name":"ETF","Low":"1","High":"1","Close":"1"},
		{"Code":"3105","Name":"穩懋","Low":"---","High":"---","Close":"---"}
	]`)

	snap, err := ParseQuotes(body)
	require.NoError(t, err)
	require.Len(t, snap, 3)

	assert.Equal(t, contracts.SecurityRecord{Code: "6488", Name: "環球晶", Low: 410.5, High: 420, Close: 415}, snap[0])
	assert.Equal(t, "元太", snap[1].Name)
	assert.Equal(t, 235.5, snap[1].Close)
	assert.Equal(t, "世界", snap[2].Name)
	assert.Equal(t, 98.5, snap[2].Low)
	assert.Equal(t, 101.0, snap[2].High)
}

func TestParseQuotes_Invalid(t *testing.T) {
	_, err := ParseQuotes([]byte(`<html>maintenance</html>`))
	assert.Error(t, err)

	snap, err := ParseQuotes([]byte("  "))
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFetch_SendsROCDate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openapi/v1/tpex_mainboard_daily_close_quotes", r.URL.Path)
		assert.Equal(t, "114/05/26", r.URL.Query().Get("d"))
		assert.Equal(t, "zh-tw", r.URL.Query().Get("l"))
		w.Write([]byte(`[{"Code":"6488","Name":"環球晶","Low":"410","High":"420","Close":"415"}]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	snap, err := client.Fetch(context.Background(), "20250526")
	require.NoError(t, err)
	assert.Len(t, snap, 1)
	assert.Equal(t, "tpex", client.Name())
}

func TestFetchHolidays(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openapi/v1/exchange/suspension_trading_days", r.URL.Path)
		w.Write([]byte(`[
			{"Date":"114/05/30","Name":"端午節","TradingType":"0"},
			{"Date":"114/05/31","Name":"端午節","TradingType":"0"},
			{"Date":"114/01/22","Name":"市場無交易，僅辦理結算交割","TradingType":"1"},
			{"Date":"bad","Name":"x","TradingType":"0"}
		]`))
	}))
	defer server.Close()

	holidays, err := newTestClient(server.URL).FetchHolidays(context.Background())
	require.NoError(t, err)
	assert.Len(t, holidays, 2)
	assert.Equal(t, "端午節", holidays["20250530"])
	_, settlementOnly := holidays["20250122"]
	assert.False(t, settlementOnly)
}

func TestParseROCDate(t *testing.T) {
	tests := []struct {
		input   string
		want    contracts.TradingDate
		wantErr bool
	}{
		{"114/05/26", "20250526", false},
		{"1140526", "20250526", false},
		{"99/12/31", "20101231", false},
		{"114/02/30", "", true},
		{"114-05-26", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseROCDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, contracts.ErrInvalidDate)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
