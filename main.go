package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordleboard/internal/config"
	"github.com/robalobadob/wordleboard/internal/host"
	"github.com/robalobadob/wordleboard/internal/httpserver"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if cfg.Log.Pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	if lvl, err := zerolog.ParseLevel(cfg.Log.Level); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := httpserver.New(cfg, httpserver.Deps{Hosts: host.NewMemoryStore()})
	log.Info().
		Str("mode", cfg.Board.DispatchMode).
		Str("devDomain", cfg.Board.DevDomain).
		Str("endpoint", srv.ProxyEndpoint()).
		Msg("starting wordleboard")
	if err := srv.Run(ctx, cfg.HTTP.Addr); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
