package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harambee/studentliving/internal/apiserver/database"
	"github.com/harambee/studentliving/internal/apiserver/handler"
	"github.com/harambee/studentliving/internal/auth/jwt"
	"github.com/harambee/studentliving/internal/common/cnst"
	"github.com/harambee/studentliving/internal/common/config"
	"github.com/harambee/studentliving/internal/common/errorx"
	"github.com/harambee/studentliving/internal/document"
	"github.com/harambee/studentliving/internal/i18n"
	"github.com/harambee/studentliving/internal/lifecycle"
	"github.com/harambee/studentliving/internal/notify"
	"github.com/harambee/studentliving/pkg/logger"
	"github.com/harambee/studentliving/pkg/metrics"
	"github.com/harambee/studentliving/pkg/trace"
	"github.com/harambee/studentliving/pkg/version"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

var (
	configPath string

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of apiserver",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("apiserver version %s\n", version.Get())
		},
	}

	migrateCmd = &cobra.Command{
		Use:   "migrate",
		Short: "Migrate the database schema and seed the master admin",
		Run: func(cmd *cobra.Command, args []string) {
			cfg := loadConfig()
			lg := initLogger(cfg)
			defer lg.Sync()

			db := initDatabase(lg, &cfg.Database)
			defer db.Close()
			seedSuperAdmin(cmd.Context(), lg, db, &cfg.SuperAdmin)
			lg.Info("Database is up to date")
		},
	}

	rootCmd = &cobra.Command{
		Use:   "apiserver",
		Short: "Student Living API Server",
		Long:  `Student Living API Server manages accommodations, applications, leases, invoices and maintenance requests`,
		Run: func(cmd *cobra.Command, args []string) {
			run()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "conf", cnst.ApiServerYaml, "path to configuration file")
	rootCmd.AddCommand(versionCmd, migrateCmd)
}

func loadConfig() *config.APIServerConfig {
	cfg, cfgPath, err := config.LoadConfig[config.APIServerConfig](configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration from %s: %v", cfgPath, err)
	}
	return cfg
}

func initLogger(cfg *config.APIServerConfig) *zap.Logger {
	lg, err := logger.NewLogger(&cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	return lg
}

func initDatabase(lg *zap.Logger, cfg *config.DatabaseConfig) database.Database {
	db, err := database.NewDatabase(cfg)
	if err != nil {
		lg.Fatal("Failed to initialize database", zap.String("type", cfg.Type), zap.Error(err))
	}
	return db
}

func seedSuperAdmin(ctx context.Context, lg *zap.Logger, db database.Database, cfg *config.SuperAdminConfig) {
	created, err := database.InitSuperAdmin(ctx, db, cfg.Username, cfg.Email, cfg.Password)
	if err != nil {
		lg.Fatal("Failed to initialize super admin", zap.Error(err))
	}
	if created {
		lg.Info("Created master admin", zap.String("username", cfg.Username))
	}
}

func initI18n(cfg *config.I18nConfig) *i18n.I18n {
	text, err := i18n.NewI18n(cfg.Fallback, cfg.Path)
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	return text
}

func initDocuments(ctx context.Context, lg *zap.Logger, cfg *config.APIServerConfig) *document.Renderer {
	store, err := document.NewStore(ctx, lg.Named("document.store"), cfg.Documents)
	if err != nil {
		lg.Fatal("Failed to initialize document store", zap.String("store", cfg.Documents.Store), zap.Error(err))
	}
	renderer, err := document.NewRenderer(lg.Named("document"), store, cfg.Documents.TemplateDir, cfg.Timeouts.Document)
	if err != nil {
		lg.Fatal("Failed to load document templates", zap.Error(err))
	}
	return renderer
}

func initNotifier(ctx context.Context, lg *zap.Logger, cfg *config.APIServerConfig, db database.Database,
	text *i18n.I18n, m *metrics.Metrics) *notify.Dispatcher {
	d, err := notify.NewFromConfig(ctx, lg.Named("notify"), cfg.Notifier, db, text, m, cfg.Timeouts.Notification)
	if err != nil {
		lg.Fatal("Failed to initialize notifier", zap.Error(err))
	}
	return d
}

func initRouter(cfg *config.APIServerConfig, lg *zap.Logger, svc *lifecycle.Service, jwtService *jwt.Service,
	docs handler.DocumentReader, m *metrics.Metrics) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(errorx.NewErrorHandler(lg).RecoveryMiddleware())
	if cfg.Tracing.Enabled {
		r.Use(otelgin.Middleware(cfg.Tracing.ServiceName))
	}
	r.Use(m.Middleware())
	if cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}
	handler.RegisterRoutes(r, handler.NewHandler(lg, svc, jwtService, docs), jwtService)
	return r
}

func run() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := loadConfig()
	lg := initLogger(cfg)
	defer lg.Sync()

	shutdownTracing, err := trace.InitTracing(ctx, &cfg.Tracing, lg)
	if err != nil {
		lg.Fatal("Failed to initialize tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			lg.Warn("Failed to flush traces", zap.Error(err))
		}
	}()

	db := initDatabase(lg, &cfg.Database)
	defer db.Close()
	seedSuperAdmin(ctx, lg, db, &cfg.SuperAdmin)

	jwtService, err := jwt.NewService(cfg.JWT)
	if err != nil {
		lg.Fatal("Failed to initialize JWT service", zap.Error(err))
	}

	m := metrics.New(cfg.Metrics)
	text := initI18n(&cfg.I18n)
	docs := initDocuments(ctx, lg, cfg)
	notifier := initNotifier(ctx, lg, cfg, db, text, m)
	svc := lifecycle.New(lg.Named("lifecycle"), db, notifier, docs, lifecycle.WithMetrics(m))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: initRouter(cfg, lg, svc, jwtService, docs, m),
	}

	lg.Info("Starting apiserver", zap.String("version", version.Get()), zap.Int("port", cfg.Server.Port))
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("Shutting down apiserver")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		lg.Error("Failed to shutdown server", zap.Error(err))
	}
	if err := notifier.Close(); err != nil {
		lg.Warn("Failed to close notifier", zap.Error(err))
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
