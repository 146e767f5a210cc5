package twse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/traditionalchinese"

	"github.com/wonny/extremes/pkg/config"
	"github.com/wonny/extremes/pkg/httputil"
	"github.com/wonny/extremes/pkg/logger"
)

const sampleCSV = `"114年05月26日 大盤統計資訊"
"指數","收盤指數","漲跌(+/-)","漲跌點數","漲跌百分比(%)","特殊處理註記"
"發行量加權股價指數","21,196.76","+","37.28","0.18",""

"114年05月26日每日收盤行情(全部)"
"證券代號","證券名稱","成交股數","成交筆數","成交金額","開盤價","最高價","最低價","收盤價","漲跌(+/-)"
="0050","元大台灣50","12,345","100","1,000,000","180.00","181.00","179.00","180.50","+"
"2330","台積電","25,012,345","60,123","25,000,000,000","1,000.00","1,010.00","970.00","1,005.00","+"
"2317","鴻海","10,000","500","1,000,000","150.00","152.50","149.00","151.00","-"
"2002","中鋼","1,000","10","20,000","--","--","--","--",""
"00878","國泰永續高股息","1","1","1","20.00","20.10","19.90","20.00","+"
"2330","台積電重複","1","1","1","1","1","1","1",""
"備註:"
`

func big5(t *testing.T, s string) []byte {
	t.Helper()
	out, err := traditionalchinese.Big5.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(out)
}

func newTestClient(baseURL string, opts ...Option) *Client {
	cfg := &config.Config{Env: "test", LogLevel: "error"}
	httpClient := httputil.New(cfg, logger.Nop()).DisableRetry()
	return NewClient(httpClient, logger.Nop(), append([]Option{WithBaseURL(baseURL)}, opts...)...)
}

func TestParseCSV(t *testing.T) {
	snap, err := ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	require.Len(t, snap, 2)
	assert.Equal(t, "2330", snap[0].Code)
	assert.Equal(t, "台積電", snap[0].Name)
	assert.Equal(t, 970.0, snap[0].Low)
	assert.Equal(t, 1010.0, snap[0].High)
	assert.Equal(t, 1005.0, snap[0].Close)
	assert.Equal(t, "2317", snap[1].Code)
}

func TestParseCSV_Empty(t *testing.T) {
	snap, err := ParseCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestFetch_CSV(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/exchangeReport/MI_INDEX", r.URL.Path)
		assert.Equal(t, "csv", r.URL.Query().Get("response"))
		assert.Equal(t, "20250526", r.URL.Query().Get("date"))
		assert.Equal(t, "ALL", r.URL.Query().Get("type"))
		w.Write(big5(t, sampleCSV))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	snap, err := client.Fetch(context.Background(), "20250526")
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "台積電", snap[0].Name)
	assert.Equal(t, "twse", client.Name())
}

func TestFetch_HolidayIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	snap, err := newTestClient(server.URL).Fetch(context.Background(), "20250530")
	require.NoError(t, err)
	assert.Empty(t, snap)
}

func TestFetch_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Fetch(context.Background(), "20250526")
	assert.Error(t, err)
}

const sampleHTML = `<html><body>
<table><tr><td>發行量加權股價指數</td><td>21,196.76</td></tr></table>
<table>
<thead><tr><th>證券代號</th><th>證券名稱</th></tr></thead>
<tbody>
<tr><td>2330</td><td>台積電</td><td>1</td><td>1</td><td>1</td><td>1,000.00</td><td>1,010.00</td><td>970.00</td><td>1,005.00</td><td>+</td></tr>
<tr><td>2002</td><td>中鋼</td><td>1</td><td>1</td><td>1</td><td>--</td><td>--</td><td>--</td><td>--</td><td></td></tr>
<tr><td>1101</td><td> 台泥 </td><td>1</td><td>1</td><td>1</td><td>33.00</td><td>33.50</td><td>32.80</td><td>33.10</td><td>-</td></tr>
</tbody>
</table>
</body></html>`

func TestFetch_HTML(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "html", r.URL.Query().Get("response"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write([]byte(sampleHTML))
	}))
	defer server.Close()

	snap, err := newTestClient(server.URL, WithFormat(FormatHTML)).Fetch(context.Background(), "20250526")
	require.NoError(t, err)
	require.Len(t, snap, 2)
	assert.Equal(t, "2330", snap[0].Code)
	assert.Equal(t, "台泥", snap[1].Name)
	assert.Equal(t, 32.8, snap[1].Low)
}
