// cmd/api/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"remarket/internal/adapters/in/http/middleware"
	"remarket/internal/platform/di"
)

func main() {
	ctx := context.Background()

	initCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	infra, err := di.NewInfra(initCtx)
	if err != nil {
		cancel()
		log.Fatalf("[boot] infra init failed: %v", err)
	}
	cont := di.NewContainer(initCtx, infra)
	cancel()

	port := infra.Config.Port

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	di.Register(mux, cont)

	cors := middleware.CORS(infra.Config.AllowedOrigin)
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      cors(middleware.Recover(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		sig := <-c
		log.Printf("[boot] received signal: %v; shutting down...", sig)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("[boot] server shutdown error: %v", err)
		}
		if err := infra.Close(); err != nil {
			log.Printf("[boot] infra close error: %v", err)
		}
		close(idleConnsClosed)
	}()

	log.Printf("[boot] listening on :%s", port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("[boot] server error: %v", err)
	}

	<-idleConnsClosed
	log.Printf("[boot] server stopped")
}
