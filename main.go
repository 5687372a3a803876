package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"smartexpense/config"
	"smartexpense/database"
	"smartexpense/logger"
	"smartexpense/router"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// @title Smart Expense Tracker API
// @version 1.0
// @description Personal expense tracking: expense CRUD, statistics, budget and exports.
// @host localhost:3000
// @BasePath /

const version = "1.0.0"

var (
	configFile  string
	port        string
	seed        bool
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "external config file (optional)")
	flag.StringVar(&configFile, "c", "", "external config file (shorthand)")
	flag.StringVar(&port, "port", "", "listen port, e.g. 3000 or :3000")
	flag.StringVar(&port, "p", "", "listen port (shorthand)")
	flag.BoolVar(&seed, "seed", false, "insert sample expenses when the table is empty")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&showVersion, "v", false, "print version (shorthand)")
}

func main() {
	flag.Parse()

	if showVersion {
		fmt.Printf("expense-tracker v%s\n", version)
		return
	}

	// .env 可选
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(logger.New(cfg.Log.Level, cfg.Log.Format))

	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Info().Str("port", port).Msg("port set from command line")
	}

	config.PrintConfig()

	if err := database.Init(cfg); err != nil {
		log.Fatal().Err(err).Msg("failed to initialise database")
	}

	if seed {
		if _, err := database.Seed(database.DB, time.Now()); err != nil {
			log.Fatal().Err(err).Msg("failed to seed database")
		}
	}

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.SetupRouter(cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("app", fmt.Sprintf("http://localhost%s/", cfg.Server.Port)).
			Str("swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", cfg.Server.Port)).
			Msg("expense tracker started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
