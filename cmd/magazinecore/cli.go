package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"magazinecore/internal/artifact"
	"magazinecore/internal/cache"
	"magazinecore/internal/config"
	"magazinecore/internal/database"
	"magazinecore/internal/handlers"
	"magazinecore/internal/models"
	"magazinecore/internal/packs"
	"magazinecore/internal/render"
	"magazinecore/internal/renderer"
	"magazinecore/internal/router"
	"magazinecore/internal/session"
	"magazinecore/internal/store"
	"magazinecore/internal/supervisor"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "magazinecore",
		Short: "Magazine issue layout & publishing core",
	}
	root.AddCommand(newServeCmd())
	root.AddCommand(newRenderCmd())
	root.AddCommand(newMigrateCmd())
	return root
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			db, err := database.Connect(cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer db.Close()
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("run migrations: %w", err)
			}
			slog.Info("migrations applied")
			return nil
		},
	}
}

func newRenderCmd() *cobra.Command {
	var htmlFallback bool

	cmd := &cobra.Command{
		Use:   "render <issue-id> <pack-id>",
		Short: "Queue and run a single render job synchronously",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			issueID, packID := args[0], args[1]

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			app, cleanup, err := bootstrap(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			renderer := models.RendererPagedPrimary
			if htmlFallback {
				renderer = models.RendererHTMLFallback
			}

			job, err := app.renderJobs.Create(issueID, packID, renderer)
			if err != nil {
				return fmt.Errorf("create render job: %w", err)
			}

			ctx, cancel := context.WithTimeout(context.Background(), cfg.RenderTimeout)
			defer cancel()

			if err := app.supervisor.RunJob(ctx, job); err != nil {
				return fmt.Errorf("run render job: %w", err)
			}

			slog.Info("render job completed", "job_id", job.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&htmlFallback, "html-fallback", false, "force the HTML-fallback renderer instead of the paged-media primary")
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP admin surface and the scheduled render sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			app, cleanup, err := bootstrap(cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.IsDev() {
				if err := database.Seed(app.db); err != nil {
					return fmt.Errorf("seed database: %w", err)
				}
			}

			if _, err := packs.LoadDir(cfg.TemplatePackDir, app.packStore); err != nil {
				slog.Warn("no template packs loaded from disk", "dir", cfg.TemplatePackDir, "error", err)
			}

			pageRenderer, err := render.New(cfg.IsDev())
			if err != nil {
				return fmt.Errorf("init template renderer: %w", err)
			}

			secureCookies := !cfg.IsDev()
			sessionStore := session.NewStore(app.valkey, secureCookies)

			authHandlers := handlers.NewAuth(pageRenderer, sessionStore, app.userStore)
			dashboardHandlers := handlers.NewDashboard(pageRenderer, app.renderJobs)
			jobsHandlers := handlers.NewJobs(pageRenderer, app.issueStore, app.packStore, app.renderJobs).WithSignal(app.signal)

			r := router.New(sessionStore, dashboardHandlers, jobsHandlers, authHandlers, secureCookies)

			srv := &http.Server{
				Addr:         cfg.Addr(),
				Handler:      r,
				ReadTimeout:  5 * time.Second,
				WriteTimeout: 90 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			c := cron.New()
			if _, err := c.AddFunc("@every 1m", func() {
				runSweep(app)
			}); err != nil {
				return fmt.Errorf("schedule render sweep: %w", err)
			}
			c.Start()
			defer c.Stop()

			go func() {
				slog.Info("server starting", "addr", cfg.Addr())
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					slog.Error("server failed to start", "error", err)
					os.Exit(1)
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			sig := <-quit
			slog.Info("shutdown signal received", "signal", sig)

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}
			slog.Info("server stopped gracefully")
			return nil
		},
	}
}

// runSweep finds every queued render job and drives it to completion.
// Errors are logged, not returned — one bad job must never stop the
// scheduler from picking up the rest.
func runSweep(app *application) {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.RenderTimeout)
	defer cancel()

	n, err := app.supervisor.RunQueued(ctx)
	if err != nil {
		slog.Error("render sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("render sweep processed queued jobs", "count", n)
	}
}

// application bundles the wiring shared by serve and render.
type application struct {
	cfg        *config.Config
	db         *sql.DB
	valkey     *redis.Client
	signal     *cache.JobSignal
	userStore  *store.UserStore
	issueStore *store.IssueStore
	packStore  *store.TemplatePackStore
	renderJobs *store.RenderJobStore
	supervisor *supervisor.Supervisor
}

func bootstrap(cfg *config.Config) (*application, func(), error) {
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("run migrations: %w", err)
	}

	valkey, err := cache.ConnectValkey(cfg.ValkeyHost, cfg.ValkeyPort, cfg.ValkeyPassword)
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("connect valkey: %w", err)
	}

	userStore := store.NewUserStore(db)
	issueStore := store.NewIssueStore(db)
	articleStore := store.NewArticleStore(db)
	imageStore := store.NewImageStore(db)
	packStore := store.NewTemplatePackStore(db)
	renderJobs := store.NewRenderJobStore(db)
	signal := cache.NewJobSignal(valkey)

	artifacts, err := artifact.New(cfg.OutputDir)
	if err != nil {
		db.Close()
		valkey.Close()
		return nil, nil, fmt.Errorf("init artifact store: %w", err)
	}

	renderAdapter, chromeAdapter, err := buildRenderAdapter(cfg)
	if err != nil {
		db.Close()
		valkey.Close()
		return nil, nil, err
	}

	sup := supervisor.New(supervisor.Deps{
		Issues:    issueStore,
		Articles:  articleStore,
		Images:    imageStore,
		Packs:     packStore,
		Jobs:      renderJobs,
		Signal:    signal,
		Artifacts: artifacts,
		Render:    renderAdapter,
	})

	app := &application{
		cfg:        cfg,
		db:         db,
		valkey:     valkey,
		signal:     signal,
		userStore:  userStore,
		issueStore: issueStore,
		packStore:  packStore,
		renderJobs: renderJobs,
		supervisor: sup,
	}

	cleanup := func() {
		db.Close()
		valkey.Close()
		if chromeAdapter != nil {
			chromeAdapter.Close()
		}
	}

	return app, cleanup, nil
}

// buildRenderAdapter wires the primary Chrome renderer in front of the
// HTML fallback, unless RendererMode opts out of Chrome entirely. The
// *ChromeAdapter is also returned directly (nil if not started) so the
// caller can release its pooled browser instances on shutdown — the
// chain composing it no longer exposes a Close of its own.
func buildRenderAdapter(cfg *config.Config) (renderer.Adapter, *renderer.ChromeAdapter, error) {
	if cfg.RendererMode == config.RendererModeHTMLFallbackOnly {
		return renderer.HTMLFallback{}, nil, nil
	}

	chrome, err := renderer.NewChromeAdapter(2, cfg.ChromeBinPath)
	if err != nil {
		slog.Warn("chrome adapter unavailable, falling back to html-only rendering", "error", err)
		return renderer.HTMLFallback{}, nil, nil
	}
	return renderer.Chain(chrome, renderer.HTMLFallback{}), chrome, nil
}
