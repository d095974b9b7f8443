package server

import (
	"log/slog"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/config"
	"bank-ledger/internal/handler"
	"bank-ledger/internal/ledgerclient"
	"bank-ledger/internal/metrics"
	"bank-ledger/internal/repository"
	"bank-ledger/internal/service"
)

// NewTransferServer wires the transfer service. Its movement calls go to the
// ledger service at cfg.LedgerBaseURL; only the transfers table lives here.
func NewTransferServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := openDB(cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to database", "service", "transfer")

	store := repository.NewStore(db, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry())
	ledger := ledgerclient.New(cfg.LedgerBaseURL, logger)

	transferService := service.NewTransferService(store.Transfers(), ledger, logger)
	transferHandler := handler.NewTransferHandler(transferService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))
	router.Use(metrics.Middleware("transfer"))

	router.HandleFunc("/health", healthHandler(db)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authed := router.PathPrefix("/transfers").Subrouter()
	authed.Use(auth.Middleware(tokens))
	authed.HandleFunc("", transferHandler.Transfer).Methods("POST")
	authed.HandleFunc("/{transfer_id}", transferHandler.GetTransfer).Methods("GET")

	return &Server{
		router: router,
		db:     db,
		logger: logger,
	}, nil
}
