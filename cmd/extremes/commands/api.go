package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/extremes/internal/api"
	"github.com/wonny/extremes/internal/api/handlers"
	"github.com/wonny/extremes/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

이 명령어는:
- ledger 및 돌파 이벤트 조회 엔드포인트 제공
- 분석 실행 트리거 제공
- Prometheus 메트릭 노출 (METRICS_ENABLED)

Endpoints:
  GET  /health          - Health check (DB ping when configured)
  GET  /metrics         - Prometheus metrics
  GET  /api/ledger      - 다운로드 완료 날짜
  GET  /api/breaches    - 최근 실행의 돌파 이벤트
  POST /api/runs        - 분석 실행

Example:
  go run ./cmd/extremes api
  go run ./cmd/extremes api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort   string
	apiNoSink bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default PORT)")
	apiCmd.Flags().BoolVar(&apiNoSink, "no-files", false, "runs triggered over HTTP write no output files")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== Extremes API Server ===")

	// 1. Load config
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)
	defer log.Close()

	log.WithFields(map[string]interface{}{
		"port":     cfg.Port,
		"env":      cfg.Env,
		"exchange": cfg.Exchange.Name,
		"storage":  cfg.Storage.Backend,
	}).Info("Initializing API server")

	// 3. Wire storage, source and analyzer
	defaults, err := pipelineConfig(cfg)
	if err != nil {
		return err
	}
	d, err := buildDeps(context.Background(), cfg, log, !apiNoSink)
	if err != nil {
		return err
	}
	defer d.Close()

	// 4. Create handlers
	dataHandler := handlers.NewDataHandler(cfg.Exchange.Name, d.ledger, log)
	analysisHandler := handlers.NewAnalysisHandler(d.analyzer, d.store, defaults, log)

	// 5. Create router
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler = d.metrics.Handler()
	}
	var health api.HealthChecker
	if d.db != nil {
		health = d.db
	}
	router := api.NewRouter(dataHandler, analysisHandler, metricsHandler, health, log)

	// 6. Create server
	server := api.New(cfg, log, router)

	// 7. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	if metricsHandler != nil {
		fmt.Println("  GET  /metrics")
	}
	fmt.Println("  GET  /api/ledger")
	fmt.Println("  GET  /api/breaches")
	fmt.Println("  POST /api/runs")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
