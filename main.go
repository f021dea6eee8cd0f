package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"clientdesk/internal/audit"
	"clientdesk/internal/auth"
	dashboardapp "clientdesk/internal/dashboard/application"
	dashboardhttp "clientdesk/internal/dashboard/interfaces/http"
	"clientdesk/internal/digest"
	implrepo "clientdesk/internal/implementations/infrastructure/postgres"
	implhttp "clientdesk/internal/implementations/interfaces/http"
	"clientdesk/internal/notify"
	"clientdesk/internal/observability/metrics"
	prospectrepo "clientdesk/internal/prospects/infrastructure/postgres"
	prospecthttp "clientdesk/internal/prospects/interfaces/http"
	revenueapp "clientdesk/internal/revenue/application"
	revenuehttp "clientdesk/internal/revenue/interfaces/http"
	"clientdesk/internal/storage"
	taskrepo "clientdesk/internal/tasks/infrastructure/postgres"
	taskhttp "clientdesk/internal/tasks/interfaces/http"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	_ = godotenv.Load()

	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	db, err := storage.Open(context.Background(), storage.Config{
		DSN:             cfg.DatabaseURL,
		MaxOpenConns:    cfg.DBMaxOpen,
		MaxIdleConns:    cfg.DBMaxIdle,
		ConnectAttempts: cfg.DBConnectAttempts,
	}, logger)
	if err != nil {
		logger.Fatalf("db open error: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(cfg.DatabaseURL); err != nil {
		logger.Fatalf("db migrate error: %v", err)
	}

	metrics.Init(db, logger)
	recordChecker := auth.NewRecordChecker(db)
	auditRepo := audit.NewRepository(db)

	taskRepo := taskrepo.NewRepository(db)
	prospectRepo := prospectrepo.NewRepository(db)
	implRepo := implrepo.NewRepository(db)

	taskHandler, err := taskhttp.NewHandler(taskRepo, recordChecker, auditRepo)
	if err != nil {
		logger.Fatalf("task handler error: %v", err)
	}
	prospectHandler, err := prospecthttp.NewHandler(prospectRepo, recordChecker, auditRepo)
	if err != nil {
		logger.Fatalf("prospect handler error: %v", err)
	}
	implHandler, err := implhttp.NewHandler(implRepo, recordChecker, auditRepo)
	if err != nil {
		logger.Fatalf("implementation handler error: %v", err)
	}

	dashboardService, err := dashboardapp.NewService(taskRepo, prospectRepo, implRepo, nil)
	if err != nil {
		logger.Fatalf("dashboard service error: %v", err)
	}
	revenueService, err := revenueapp.NewService(implRepo, nil)
	if err != nil {
		logger.Fatalf("revenue service error: %v", err)
	}

	digestCfg, err := digest.LoadConfig()
	if err != nil {
		logger.Fatalf("digest config error: %v", err)
	}
	if digestCfg.Enabled() {
		var channels []notify.Channel
		for _, url := range strings.Split(digestCfg.WebhookURL, ",") {
			url = strings.TrimSpace(url)
			if url == "" {
				continue
			}
			channel, err := notify.NewWebhookChannel(url)
			if err != nil {
				logger.Fatalf("digest webhook error: %v", err)
			}
			channels = append(channels, channel)
		}
		template, err := notify.NewTemplate(os.Getenv("DIGEST_TEMPLATE"))
		if err != nil {
			logger.Fatalf("digest template error: %v", err)
		}
		runner, err := digest.NewRunner(taskRepo, implRepo, notify.NewMulti(channels...), template, logger)
		if err != nil {
			logger.Fatalf("digest runner error: %v", err)
		}
		go digest.NewScheduler(runner, digestCfg, logger).Start(context.Background())
		logger.Printf("daily digest scheduled at %s UTC for %d users", digestCfg.DailyAt, len(digestCfg.Users))
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	exportHandler := revenuehttp.NewExportHandler(revenueService, auditRepo, logger)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/dashboard", dashboardhttp.NewHandler(dashboardService, logger))
	mux.Handle("/api/v1/tasks", taskHandler)
	mux.Handle("/api/v1/tasks/", taskHandler)
	mux.Handle("/api/v1/prospects", prospectHandler)
	mux.Handle("/api/v1/prospects/", prospectHandler)
	mux.Handle("/api/v1/implementations", implHandler)
	mux.Handle("/api/v1/implementations/", implHandler)
	mux.Handle("/api/v1/revenue/statement", revenuehttp.NewStatementHandler(revenueService, logger))
	mux.Handle("/api/v1/exports/revenue.csv", exportHandler)
	mux.Handle("/api/v1/exports/revenue.xlsx", exportHandler)
	mux.Handle("/api/v1/exports/revenue.pdf", exportHandler)
	mux.Handle("/api/v1/audit", audit.NewHandler(auditRepo, logger))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	DatabaseURL       string
	HTTPAddr          string
	DBMaxOpen         int
	DBMaxIdle         int
	DBConnectAttempts int
	JWTSecret         string
}

func loadConfig() config {
	cfg := config{
		DatabaseURL:       getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		DBMaxOpen:         getenvIntDefault("DB_MAX_OPEN", 10),
		DBMaxIdle:         getenvIntDefault("DB_MAX_IDLE", 5),
		DBConnectAttempts: getenvIntDefault("DB_CONNECT_ATTEMPTS", 5),
		JWTSecret:         getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL or PG_DSN is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
