package main

import (
	"context"
	"encoding/gob"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pdfquiz"

	"github.com/gorilla/sessions"
	"golang.org/x/sync/errgroup"
)

func init() {
	gob.Register(&pdfquiz.Session{})
}

func main() {
	cfg := pdfquiz.ConfigFromEnv()
	pdfquiz.SetVerbose(cfg.Verbose)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := pdfquiz.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}

	// Without a key the server still lists, imports and plays quizzes.
	ai, err := pdfquiz.NewCollaborator(ctx, cfg)
	if err != nil {
		log.Printf("AI generation disabled: %v", err)
		ai = nil
	}

	svc := pdfquiz.NewService(kv, ai, cfg)
	defer svc.Close()

	if cfg.AdminPassHash == "" {
		log.Printf("ADMIN_PASS_HASH is not set, admin routes are open")
	}

	store := sessions.NewFilesystemStore(cfg.SessionDir, []byte(cfg.SessionSecret))
	// Play sessions carry whole question lists, too big for the 4KB default.
	store.MaxLength(0)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           newServer(svc, store, cfg).routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Server starting on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Printf("Server error: %v", err)
	}
}
