// Command pkmndraft runs the draft server: it loads the item database,
// wires the Lobby Manager and Deadline Scheduler together, and serves the
// HTTP front end from spec.md §6. Grounded on internal/cmd/main.go and
// internal/draft/gateway/cmd/main.go's godotenv-load + zerolog-console +
// signal.NotifyContext shutdown shape.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CharlesMicou/pkmn-draft/internal/config"
	"github.com/CharlesMicou/pkmn-draft/internal/httpapi"
	"github.com/CharlesMicou/pkmn-draft/internal/itemdb"
	"github.com/CharlesMicou/pkmn-draft/internal/manager"
	"github.com/CharlesMicou/pkmn-draft/internal/scheduler"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// redirectPort is the unconditional HTTPS-redirect listener spec.md §6
// describes: "additionally bind port 80 as an unconditional HTTPS
// redirect" whenever both HTTPS_CERT and HTTPS_KEY are set.
const redirectPort = "80"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := godotenv.Load(); err != nil {
		log.Warn().Err(err).Msg("could not load .env file; proceeding with existing environment")
	}

	cfg, err := config.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	db, err := itemdb.Load(cfg.ItemDBRoot)
	if err != nil {
		log.Fatal().Err(err).Str("root", cfg.ItemDBRoot).Msg("failed to load item database")
	}
	log.Info().Int("sets", len(db.Sets)).Str("root", cfg.ItemDBRoot).Msg("item database loaded")

	clock := clockwork.NewRealClock()
	sched := scheduler.New(clock, 4)
	mgr := manager.New(db, sched, clock)

	go sched.Run(ctx)
	go mgr.Run(ctx)

	handler := httpapi.NewHandler(mgr)
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	var redirectServer *http.Server
	if cfg.TLSEnabled() {
		redirectServer = newRedirectServer()
		go func() {
			log.Info().Str("addr", redirectServer.Addr).Msg("HTTPS redirect listener starting")
			if err := redirectServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("redirect listener terminated unexpectedly")
			}
		}()
	}

	go func() {
		log.Info().Str("addr", server.Addr).Bool("tls", cfg.TLSEnabled()).Msg("server starting")
		var serveErr error
		if cfg.TLSEnabled() {
			serveErr = server.ListenAndServeTLS(cfg.HTTPSCert, cfg.HTTPSKey)
		} else {
			serveErr = server.ListenAndServe()
		}
		if serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			log.Error().Err(serveErr).Msg("server terminated unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	if redirectServer != nil {
		if err := redirectServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("redirect listener shutdown failed")
		}
	}
	log.Info().Msg("shutdown complete")
}

// newRedirectServer builds the unconditional HTTP->HTTPS redirect listener
// bound to port 80 per spec.md §6.
func newRedirectServer() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	})
	return &http.Server{
		Addr:    ":" + redirectPort,
		Handler: mux,
	}
}
