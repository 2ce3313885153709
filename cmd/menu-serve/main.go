package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkresource "go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/platewise/menu-etl/internal/httpapi"
	"github.com/platewise/menu-etl/internal/menuparse"
	"github.com/platewise/menu-etl/internal/store"
)

func main() {
	dbFlag := flag.String("db", "", "path to SQLite database file (overrides DB_PATH env var)")
	flag.Parse()

	_ = godotenv.Load()

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	shutdownTracing := setupTracing(ctx)
	defer shutdownTracing()

	caller, err := menuparse.NewAnthropicCallerFromEnv()
	if err != nil {
		log.Fatalf("configure model caller: %v", err)
	}
	pipeline := menuparse.NewPipeline(caller, menuparse.PipelineConfig{})

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = os.Getenv("DB_PATH")
	}
	var runs httpapi.RunStore
	if dbPath != "" {
		st, err := store.Open(dbPath)
		if err != nil {
			log.Fatalf("open sqlite store (%s): %v", dbPath, err)
		}
		defer st.Close()
		runs = st
		log.Printf("using sqlite store at %s", dbPath)
	} else {
		log.Printf("no database configured; extractions will not be persisted")
	}

	handler := httpapi.NewServer(pipeline, runs)
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("menu extraction API listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}

// setupTracing installs an OTLP trace exporter when an endpoint is
// configured. Without one the default no-op tracer stays in place.
func setupTracing(ctx context.Context) func() {
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		return func() {}
	}

	exporter, err := otlptracehttp.New(ctx)
	if err != nil {
		log.Printf("trace exporter init failed, continuing without tracing: %v", err)
		return func() {}
	}

	resource := sdkresource.NewSchemaless(
		attribute.String("service.name", "menu-etl"),
	)

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(time.Second)),
		sdktrace.WithResource(resource),
	)
	otel.SetTracerProvider(provider)

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = provider.Shutdown(shutdownCtx)
	}
}
