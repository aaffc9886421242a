package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stonelib/library-management/internal"
	"github.com/stonelib/library-management/internal/auth"
	authstore "github.com/stonelib/library-management/internal/auth/postgres"
	"github.com/stonelib/library-management/internal/book"
	bookstore "github.com/stonelib/library-management/internal/book/postgres"
	"github.com/stonelib/library-management/internal/mailer"
	"github.com/stonelib/library-management/internal/role"
	rolestore "github.com/stonelib/library-management/internal/role/postgres"
	"github.com/stonelib/library-management/internal/transport"
	"github.com/stonelib/library-management/internal/transport/rest"
	"github.com/stonelib/library-management/internal/user"
	userstore "github.com/stonelib/library-management/internal/user/postgres"
	"github.com/stonelib/library-management/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	GormDB *gorm.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	setupRoutes(deps)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("received signal, shutting down", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("server stopped")
}

func setupRoutes(deps *Dependencies) {
	lg := deps.Logger
	cfg := deps.Config
	gdb := deps.GormDB

	baseHandler := transport.NewBaseHandler(lg)
	mail := mailer.New(cfg.Mail, lg)

	userRepo := userstore.NewRepository(gdb, cfg.Security.BCryptCost)
	authRepo := authstore.NewRepository(gdb)
	roleRepo := rolestore.NewRepository(gdb)
	bookRepo := bookstore.NewRepository(gdb)
	loanRepo := bookstore.NewLoanRepository(gdb)

	tokenStore := auth.NewMemoryTokenStore()
	authService := auth.NewService(authRepo, userRepo, tokenStore, mail, gdb, cfg.Security, lg)
	authorizer := auth.NewAuthorizer(authRepo, lg)
	authHandler := auth.NewHandler(baseHandler, authService, authorizer)

	userService := user.NewService(userRepo, mail, gdb, cfg.Library.AdminEmail, lg)
	userHandler := user.NewHandler(baseHandler, userService)

	roleService := role.NewService(roleRepo, gdb, lg)
	roleHandler := role.NewHandler(baseHandler, roleService)

	bookService := book.NewService(bookRepo, loanRepo, mail, gdb, cfg.Library.MaxBooksPerLoan, lg)
	bookHandler := book.NewHandler(baseHandler, bookService)
	loanGuard := book.NewLoanGuard(loanRepo, lg)

	rest.RegisterAllRoutes(deps.Router, deps.DB.DB, authHandler, userHandler, roleHandler, bookHandler, loanGuard, lg)
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm connection: %w", err)
	}

	return &Dependencies{
		Config: config,
		Logger: logger.L(),
		DB:     db,
		GormDB: gormDB,
		Router: chi.NewRouter(),
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}
