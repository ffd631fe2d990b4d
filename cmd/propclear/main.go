// PropClear - Property due diligence that deploys in 60 seconds.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/propclear/propclear/internal/alerts"
	"github.com/propclear/propclear/internal/api"
	"github.com/propclear/propclear/internal/audit"
	"github.com/propclear/propclear/internal/bus"
	"github.com/propclear/propclear/internal/cache"
	"github.com/propclear/propclear/internal/domain"
	"github.com/propclear/propclear/internal/fraud"
	"github.com/propclear/propclear/internal/market"
	"github.com/propclear/propclear/internal/repository"
	"github.com/propclear/propclear/internal/signals"
	"github.com/propclear/propclear/internal/worker"
)

// Version information (set via ldflags)
var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func main() {
	// Initialize structured logger
	logLevel := slog.LevelInfo
	if os.Getenv("PROPCLEAR_DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting propclear",
		"version", Version,
		"commit", Commit,
		"build_date", BuildDate,
	)

	// Load configuration
	cfg := domain.DefaultConfig()

	// Check for Pro tier via environment
	if os.Getenv("PROPCLEAR_TIER") == "pro" {
		cfg = domain.ProConfig()
		slog.Info("running in Pro tier mode")
	}

	if port := os.Getenv("PROPCLEAR_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = p
		}
	}
	if seed := os.Getenv("PROPCLEAR_SEED"); seed != "" {
		if s, err := strconv.ParseInt(seed, 10, 64); err == nil {
			cfg.Signals.Seed = s
			slog.Info("signal source pinned", "seed", s)
		}
	}
	if path := os.Getenv("PROPCLEAR_DB_PATH"); path != "" {
		cfg.Repository.SQLitePath = path
	}

	slog.Info("configuration loaded",
		"tier", cfg.Tier,
		"repository", cfg.Repository.Driver,
		"cache", cfg.Cache.Type,
		"eventbus", cfg.EventBus.Type,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		slog.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Initialize Repository
	repo, err := repository.New(cfg.Repository)
	if err != nil {
		slog.Error("failed to initialize repository", "error", err)
		os.Exit(1)
	}
	defer repo.Close()
	slog.Info("repository initialized", "driver", cfg.Repository.Driver)

	// Initialize Cache
	cacheImpl, err := cache.New(cfg.Cache)
	if err != nil {
		slog.Error("failed to initialize cache", "error", err)
		os.Exit(1)
	}
	defer cacheImpl.Close()
	slog.Info("cache initialized", "type", cfg.Cache.Type)

	// Initialize EventBus
	busImpl, err := bus.New(cfg.EventBus)
	if err != nil {
		slog.Error("failed to initialize event bus", "error", err)
		os.Exit(1)
	}
	defer busImpl.Close()
	slog.Info("event bus initialized", "type", cfg.EventBus.Type)

	// Initialize the synthetic signal source shared by every generator
	gen := signals.NewGenerator(signals.NewSource(cfg.Signals.Seed))

	// Initialize Fraud Analyzer with repository-backed cross-references
	analyzer := fraud.NewAnalyzer(gen, fraud.NewCrossReferencer(repo))
	slog.Info("fraud analyzer initialized")

	// Initialize Market Resolver
	resolver := market.NewResolver(repo, cacheImpl, gen)
	slog.Info("market resolver initialized")

	// Initialize Alert Engine
	engine, err := alerts.NewEngine()
	if err != nil {
		slog.Error("failed to initialize alert engine", "error", err)
		os.Exit(1)
	}
	if err := loadAlertRules(ctx, repo, engine); err != nil {
		slog.Error("failed to load alert rules", "error", err)
		os.Exit(1)
	}
	slog.Info("alert engine initialized", "rules_count", engine.RuleCount())

	// Initialize Audit Orchestrator
	orchestrator := audit.NewOrchestrator(repo, gen, analyzer, resolver, busImpl)
	slog.Info("audit orchestrator initialized")

	// Initialize the alert worker consuming completed audits
	alertWorker := worker.NewWorker(busImpl, engine)
	if err := alertWorker.Start(); err != nil {
		slog.Error("failed to start alert worker", "error", err)
		os.Exit(1)
	}
	slog.Info("alert worker started")

	// Initialize Server
	handler := api.NewHandler(repo, cacheImpl, orchestrator, resolver, engine, gen, Version)
	srv := api.NewServer(handler, cfg.Server)

	// Start Server in goroutine
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("propclear is ready",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
	)

	printBanner(cfg, Version)

	// Wait for shutdown signal
	<-ctx.Done()
	slog.Info("shutting down...")

	// Stop the alert worker first so in-flight audits still publish
	alertWorker.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("propclear shutdown complete")
}

// loadAlertRules loads rules from the database into the engine. An
// empty database is seeded with the built-in rule set so a fresh
// install raises alerts out of the box.
func loadAlertRules(ctx context.Context, repo domain.Repository, engine *alerts.Engine) error {
	dbRules, err := repo.ListAlertRules(ctx)
	if err != nil {
		slog.Warn("failed to list alert rules from database", "error", err)
		return nil
	}

	if len(dbRules) == 0 {
		slog.Info("no alert rules in database, seeding built-in rules")
		for _, rule := range alerts.DefaultRules() {
			if err := repo.SaveAlertRule(ctx, rule); err != nil {
				slog.Warn("failed to seed alert rule", "rule", rule.Name, "error", err)
			}
			dbRules = append(dbRules, rule)
		}
	}

	return engine.LoadRules(dbRules)
}

func printBanner(cfg *domain.Config, version string) {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════╗")
	fmt.Println("  ║              🏠 PROPCLEAR                 ║")
	fmt.Println("  ║     Property Due Diligence Engine         ║")
	fmt.Println("  ║      Every title, fully traced.           ║")
	fmt.Println("  ╚═══════════════════════════════════════════╝")
	fmt.Println()
	fmt.Printf("  Version:  %s\n", version)
	fmt.Printf("  Tier:     %s\n", cfg.Tier)
	fmt.Printf("  Server:   http://%s:%d\n", cfg.Server.Host, cfg.Server.Port)
	fmt.Println()
	fmt.Println("  Endpoints:")
	fmt.Println("    POST /properties                  - Submit a property for audit")
	fmt.Println("    GET  /properties/{id}             - Get property by ID")
	fmt.Println("    GET  /properties/{id}/fraud       - Get fraud score")
	fmt.Println("    GET  /properties/{id}/title       - Get title verification")
	fmt.Println("    GET  /properties/{id}/encumbrance - Get encumbrance certificate")
	fmt.Println("    GET  /litigation/high-risk        - List high-risk litigation")
	fmt.Println("    GET  /market/{city}               - Current market snapshot")
	fmt.Println("    POST /documents/verify            - Verify a document")
	fmt.Println("    POST /rera/projects               - Register a RERA project")
	fmt.Println("    POST /alert-rules                 - Create an alert rule")
	fmt.Println("    POST /alert-rules/reload          - Hot-reload alert rules")
	fmt.Println("    GET  /health                      - Health check")
	fmt.Println()
}
