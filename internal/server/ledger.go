package server

import (
	"log/slog"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bank-ledger/internal/auth"
	"bank-ledger/internal/config"
	"bank-ledger/internal/handler"
	"bank-ledger/internal/metrics"
	"bank-ledger/internal/repository"
	"bank-ledger/internal/service"
)

// NewLedgerServer wires the account/ledger service: accounts, login,
// movements, balance, statement.
func NewLedgerServer(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := openDB(cfg.GetDBConnectionString())
	if err != nil {
		return nil, err
	}
	logger.Info("Connected to database", "service", "ledger")

	store := repository.NewStore(db, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry())
	hasher := auth.NewBcryptHasher()

	accountService := service.NewAccountService(store, hasher, tokens, logger)
	movementService := service.NewMovementService(store, logger)

	accountHandler := handler.NewAccountHandler(accountService, movementService)
	movementHandler := handler.NewMovementHandler(movementService)

	router := mux.NewRouter()
	router.Use(loggingMiddleware(logger))
	router.Use(metrics.Middleware("ledger"))

	router.HandleFunc("/accounts", accountHandler.CreateAccount).Methods("POST")
	router.HandleFunc("/login", accountHandler.Login).Methods("POST")
	router.HandleFunc("/health", healthHandler(db)).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	authed := router.PathPrefix("/accounts/{account_id}").Subrouter()
	authed.Use(auth.Middleware(tokens))
	authed.HandleFunc("/balance", accountHandler.GetBalance).Methods("GET")
	authed.HandleFunc("/statement", accountHandler.GetStatement).Methods("GET")
	authed.HandleFunc("/movements", movementHandler.Apply).Methods("POST")
	authed.HandleFunc("", accountHandler.DeactivateAccount).Methods("DELETE")

	return &Server{
		router: router,
		db:     db,
		logger: logger,
	}, nil
}
