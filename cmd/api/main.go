package main

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mehtaphysical/stripe-pay-sandbox/internal/adapters"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/config"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/controller"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/repository"
	"github.com/mehtaphysical/stripe-pay-sandbox/internal/service"
)

func main() {
	// Setup
	defaultLogger("INFO")

	//Load configurations
	cfg, err := config.Load()
	if err != nil {
		zap.L().Fatal("Failed to load config", zap.Error(err))
	}

	// Initialize database pool
	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s&connect_timeout=180",
		cfg.DbUser,
		cfg.DbPassword,
		cfg.DbHost,
		cfg.DbPort,
		cfg.DbName,
		cfg.SSLMode,
	)

	pool, err := config.InitPostgresPool(connString)
	if err != nil {
		zap.L().Fatal("Failed to initialize database", zap.Error(err))
	}
	defer pool.Close()

	// Initialize gateways
	contactRepo := repository.NewContactRepository(pool)
	stripeGateway := adapters.NewStripeAdapter(cfg.StripeSecretKey)
	ledgerGateway := adapters.NewLedgerAdapter(cfg.LedgerNodeURL, cfg.LedgerContractID, cfg.LedgerSigningKey)

	// Setup services
	settlementService := service.NewSettlementService(
		stripeGateway,
		ledgerGateway,
		contactRepo,
		service.Thresholds{
			MinAccountCreationAmount: cfg.MinAccountCreationAmount,
			MinOperatingBalance:      cfg.MinOperatingBalance,
			FillAmount:               cfg.FillAmount,
		},
		cfg.HostName,
		zap.L().Named("settlement_service"),
	)
	settlementController := controller.NewSettlementController(settlementService, contactRepo)

	// Router
	r := chi.NewRouter()
	r.Post("/settlements/{accountId}/pay", settlementController.Pay)
	r.Post("/settlements/{accountId}/complete", settlementController.Complete)
	r.Post("/contacts/{accountId}", settlementController.UpsertContact)

	r.Get("/settlements/health", settlementController.GetHealthCheck)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	// Start server
	zap.L().Info("Server running",
		zap.Int("port", cfg.Port),
		zap.String("ledger_contract", cfg.LedgerContractID),
	)
	if err := http.ListenAndServe(":"+strconv.Itoa(cfg.Port), r); err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}

func defaultLogger(levelSet string) {
	level := zapcore.InfoLevel
	if err := level.Set(levelSet); err != nil {
		panic(err)
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level.SetLevel(level)
	l, err := zapConfig.Build(zap.AddStacktrace(zap.ErrorLevel))
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(l)
	zap.RedirectStdLog(l.Named("stdlog"))
}
