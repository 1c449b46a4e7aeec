package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/tanpawarit/omotenashi-concierge/agent/contract"
	"github.com/tanpawarit/omotenashi-concierge/agent/decider"
	"github.com/tanpawarit/omotenashi-concierge/agent/guestctx"
	"github.com/tanpawarit/omotenashi-concierge/agent/orchestrator"
	sessionx "github.com/tanpawarit/omotenashi-concierge/agent/session"
	toolx "github.com/tanpawarit/omotenashi-concierge/agent/tool"
	"github.com/tanpawarit/omotenashi-concierge/directory"
	"github.com/tanpawarit/omotenashi-concierge/knowledge"
	configx "github.com/tanpawarit/omotenashi-concierge/pkg/config"
	_ "github.com/tanpawarit/omotenashi-concierge/pkg/logger/autoload"
	openrouterx "github.com/tanpawarit/omotenashi-concierge/pkg/openrouter"
	"github.com/tanpawarit/omotenashi-concierge/server"
)

type AppConfig struct {
	Port              int           `envconfig:"PORT" default:"8000"`
	MemoryExpiryHours int           `envconfig:"MEMORY_EXPIRY_HOURS" default:"1"`
	TurnTimeout       time.Duration `envconfig:"TURN_TIMEOUT" default:"30s"`
	DataDir           string        `envconfig:"DATA_DIR" default:"data"`
	DirectoryDriver   string        `envconfig:"DIRECTORY_DRIVER" default:"json"`
	PostgresDSN       string        `envconfig:"POSTGRES_DSN"`
}

// guestDirectory is the full directory surface main wires together: turn
// resolution plus the admin listing.
type guestDirectory interface {
	contractx.GuestDirectory
	Guests(ctx context.Context) ([]contractx.Guest, error)
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("")

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	openRouterClient := openrouterx.NewClient(*openRouterCfg)
	if openRouterClient == nil {
		panic("failed to initialize openrouter client")
	}

	checkCtx, checkCancel := context.WithTimeout(ctx, openRouterCfg.Timeout)
	if err := openrouterx.CheckModels(checkCtx, openRouterClient); err != nil {
		log.Warn().Err(err).Msg("model availability check failed")
	}
	checkCancel()

	dir := mustDirectory(ctx, appCfg)

	kb, err := knowledge.Load(filepath.Join(appCfg.DataDir, "property_info.json"))
	if err != nil {
		log.Fatal().Err(err).Msg("load property knowledge base")
	}

	registry, err := toolx.NewRegistry(kb)
	if err != nil {
		log.Fatal().Err(err).Msg("build tool registry")
	}

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("build chat model")
	}
	dec, err := decider.New(ctx, chatModel, registry.ToolInfos())
	if err != nil {
		log.Fatal().Err(err).Msg("build decider")
	}

	sessions := sessionx.NewStore(time.Duration(appCfg.MemoryExpiryHours) * time.Hour)
	resolver := guestctx.NewResolver(dir)

	orch, err := orchestrator.New(registry, dec, sessions, resolver, orchestrator.Config{
		TurnTimeout: appCfg.TurnTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build orchestrator")
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("0.0.0.0:%d", appCfg.Port),
		Handler: server.New(orch, sessions, dir).Handler(),
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Int("tools", len(registry.Names())).Msg("concierge listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown incomplete")
	}
}

func mustDirectory(ctx context.Context, cfg *AppConfig) guestDirectory {
	switch cfg.DirectoryDriver {
	case "postgres":
		dir, err := directory.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("connect guest directory")
		}
		return dir
	case "", "json":
		dir, err := directory.LoadJSON(
			filepath.Join(cfg.DataDir, "guests.json"),
			filepath.Join(cfg.DataDir, "bookings.json"),
		)
		if err != nil {
			log.Fatal().Err(err).Msg("load guest directory")
		}
		return dir
	default:
		log.Fatal().Str("driver", cfg.DirectoryDriver).Msg("unknown directory driver")
		return nil
	}
}
