// Command devbackend serves the back-office API from in-memory fixtures so
// the console can be run without the production backend.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/kodstechnologies/lm-backoffice/internal/devbackend"
	"github.com/kodstechnologies/lm-backoffice/internal/logging"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", envOr("DEVBACKEND_ADDR", ":8085"), "Listen address")
	secret := flag.String("secret", envOr("DEVBACKEND_SECRET", ""), "HS256 signing key for issued tokens")
	level := flag.String("log-level", envOr("DEVBACKEND_LOG_LEVEL", "info"), "Log level")
	ttl := flag.Duration("token-ttl", 12*time.Hour, "Lifetime of issued tokens")
	flag.Parse()

	logger := logging.NewWriter(os.Stderr, *level, "devbackend")

	opts := []devbackend.Option{devbackend.WithLogger(logger), devbackend.WithTokenTTL(*ttl)}
	if *secret != "" {
		opts = append(opts, devbackend.WithSecret([]byte(*secret)))
	}
	backend := devbackend.New(opts...)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Mount("/api/v1", backend.Router())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "err", err)
		}
	}()

	logger.Info("listening", "addr", *addr, "base", "/api/v1", "otp", devbackend.DevOTP)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed", "err", err)
	}
	logger.Info("stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
