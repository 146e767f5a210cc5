package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/extremes/pkg/config"
	"github.com/wonny/extremes/pkg/httputil"
	"github.com/wonny/extremes/pkg/logger"
)

// Example_basic demonstrates fetching a daily quote page
func Example_basic() {
	cfg := &config.Config{
		Env:      "production",
		LogLevel: "info",
	}
	log := logger.New(cfg)

	// Create HTTP client (SSOT)
	client := httputil.New(cfg, log).
		WithRetry(5, 2*time.Second). // 5 retries, 2s initial delay
		WithLocalRateLimit(2)

	body, err := client.GetBody(context.Background(),
		"https://www.twse.com.tw/exchangeReport/MI_INDEX?response=csv&date=20250526&type=ALL")
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		return
	}

	fmt.Printf("Received %d bytes\n", len(body))
}
