package main

import (
	"context"
	"expvar"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/heryandp/antrian/internal/announce"
	"github.com/heryandp/antrian/internal/config"
	"github.com/heryandp/antrian/internal/dispatch"
	"github.com/heryandp/antrian/internal/httpapi"
	"github.com/heryandp/antrian/internal/hub"
	"github.com/heryandp/antrian/internal/store/postgres"
	"github.com/heryandp/antrian/internal/telemetry"

	"github.com/igm/sockjs-go/sockjs"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// logPlayer stands in for a speaker-attached player. It prints the
// segment sequence a playback device would resolve to audio files.
type logPlayer struct{}

func (logPlayer) Play(segments []announce.Segment) error {
	parts := make([]string, len(segments))
	for i, segment := range segments {
		parts[i] = string(segment)
	}
	log.Printf("announce play %s", strings.Join(parts, " "))
	return nil
}

func main() {
	cfg := config.Load()
	shutdownTelemetry := telemetry.Setup("queue-service")
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	catalog, err := config.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	st := postgres.NewStore(pool)
	if err := st.EnsureSchema(context.Background()); err != nil {
		log.Fatalf("schema: %v", err)
	}
	if err := st.ProvisionCatalog(context.Background(), catalog.Services, catalog.ExpandCounters()); err != nil {
		log.Fatalf("provision catalog: %v", err)
	}
	log.Printf("catalog loaded office=%q services=%d", catalog.OfficeName, len(catalog.Services))

	h := hub.New()
	coordinator := dispatch.New(st, h, logPlayer{})
	handler := httpapi.NewHandler(coordinator, st)
	limiter := httpapi.NewRateLimiter(httpapi.RateLimitConfig{
		PerMinute: cfg.RateLimitPerMinute,
		Burst:     cfg.RateLimitBurst,
	})

	mux := http.NewServeMux()
	mux.Handle("/metrics", expvar.Handler())
	mux.Handle("/", handler.Routes())

	sockjsHandler := sockjs.NewHandler("/realtime", sockjs.DefaultOptions, func(session sockjs.Session) {
		sub := h.Subscribe()
		defer h.Unsubscribe(sub)

		go func() {
			for msg := range sub.Send {
				if err := session.Send(string(msg)); err != nil {
					return
				}
			}
		}()

		for {
			msg, err := session.Recv()
			if err != nil {
				return
			}
			event, ok := hub.ParseEvent([]byte(msg))
			if !ok {
				log.Printf("realtime drop malformed frame from %s", session.ID())
				continue
			}
			h.Publish(event)
		}
	})
	mux.Handle("/realtime/", sockjsHandler)

	otelHandler := otelhttp.NewHandler(httpapi.LoggingMiddleware(limiter.Middleware(mux)), "queue-service")
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      otelHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("queue-service listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Printf("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}
