package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/manabi/internal/api"
	"github.com/hitoshi/manabi/internal/catalog"
	"github.com/hitoshi/manabi/internal/config"
	"github.com/hitoshi/manabi/internal/database"
	"github.com/hitoshi/manabi/internal/handler"
	"github.com/hitoshi/manabi/internal/logger"
	"github.com/hitoshi/manabi/internal/metrics"
	"github.com/hitoshi/manabi/internal/middleware"
	"github.com/hitoshi/manabi/internal/security"
	"github.com/hitoshi/manabi/internal/session"
	"github.com/hitoshi/manabi/internal/storage"
	"github.com/hitoshi/manabi/internal/view"
)

// Streams はコマンドの入出力先。
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップし、環境変数からConfigを読み込んだ後、
// LOG_LEVEL に従ってログレベルを設定し直す。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))
	return cfg, l, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(s Streams, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(os.Getenv("SERVER_HOST"), port)
	}

	logOut := s.Out
	if cmd.Interactive() {
		logOut = s.Err
	}
	cfg, log, err := Init(logOut)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Debug("starting application",
		slog.String("command", string(cmd)),
		slog.String("api_base_url", cfg.APIBaseURL),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var rest []string
	if len(args) > 1 {
		rest = args[1:]
	}

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg, log)
	case CommandLogin, CommandLogout, CommandWhoami:
		return runSessionCommand(ctx, cfg, log, cmd, s, rest)
	default:
		return runServe(ctx, cfg, log)
	}
}

// openSession はSTORAGE_URLのストレージを開き、保存済みのセッションを復元する。
func openSession(ctx context.Context, cfg *config.Config, log *slog.Logger) (storage.Storage, *session.Store, error) {
	st, err := storage.Open(ctx, cfg.StorageURL, storage.Options{KeyPrefix: cfg.StorageKeyPrefix})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session storage: %w", err)
	}

	store, err := session.New(ctx, st, log)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to restore session: %w", err)
	}

	log.Info("session storage opened", slog.String("driver", storage.Driver(st)))
	return st, store, nil
}

// newAPIClient はセッションのトークンを付与するバックエンドクライアントを生成する。
func newAPIClient(cfg *config.Config, store *session.Store, log *slog.Logger) *api.Client {
	return api.NewClient(cfg.APIBaseURL, &http.Client{Timeout: cfg.APITimeout}, store, log)
}

// newServer は全依存関係をワイヤリングしたHTTPサーバーを生成する。
// 返すclose関数でストレージとレートリミッターを解放する。
func newServer(ctx context.Context, cfg *config.Config, log *slog.Logger) (*http.Server, func(), error) {
	// 1. セッション
	st, store, err := openSession(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	// 2. バックエンドクライアントとメトリクス
	client := newAPIClient(cfg, store, log)

	var collector metrics.MetricsCollector = metrics.Nop{}
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		c := metrics.NewCollector(reg)
		client.SetRecorder(c)
		collector = c
		metricsHandler = metrics.Handler(reg)
	}

	// 3. 画面
	renderer, err := view.New(security.NewSanitizer(), log)
	if err != nil {
		st.Close()
		return nil, nil, fmt.Errorf("failed to load templates: %w", err)
	}

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(cfg.RateLimitAuth))

	// ネットワーク越しのストレージは /health で疎通を確認する
	var storageCheck handler.HealthChecker
	if hc, ok := st.(handler.HealthChecker); ok {
		storageCheck = hc
	}

	// 4. ルーターの構築
	router := handler.NewRouter(&handler.RouterDeps{
		Store:          store,
		Backend:        client,
		Catalog:        catalog.New(log),
		Renderer:       renderer,
		Logger:         log,
		Metrics:        collector,
		MetricsHandler: metricsHandler,
		RateLimiter:    rateLimiter,
		CSRF: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		StorageDriver: storage.Driver(st),
		StorageCheck:  storageCheck,
	})

	server := &http.Server{
		Addr:         cfg.ListenAddr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	closeFn := func() {
		rateLimiter.Stop()
		if err := st.Close(); err != nil {
			log.Warn("failed to close session storage", slog.String("error", err.Error()))
		}
	}
	return server, closeFn, nil
}

// runServe はWeb UIサーバーを起動する。
// ctxがキャンセルされる（SIGINTまたはSIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	server, closeFn, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeFn()

	errCh := make(chan error, 1)
	go func() {
		log.Info("web server starting",
			slog.String("addr", server.Addr),
			slog.String("base_url", cfg.BaseURL),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down web server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("web server stopped gracefully")
	return nil
}

// runMigrate はpostgresストレージのマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	databaseURL := cfg.MigrationURL()
	if databaseURL == "" {
		return errors.New("DATABASE_URL (or a postgres STORAGE_URL) is not set")
	}

	log.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(databaseURL)),
	)

	if err := database.RunMigrations(databaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(host, port string) error {
	url := healthcheckURL(host, port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// healthcheckURL は待ち受けアドレスから/healthのURLを組み立てる。
// 全インターフェースで待ち受けている場合はループバックへ接続する。
func healthcheckURL(host, port string) string {
	switch host {
	case "", "0.0.0.0", "::":
		host = config.DefaultServerHost
	}
	return "http://" + net.JoinHostPort(host, port) + "/health"
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
