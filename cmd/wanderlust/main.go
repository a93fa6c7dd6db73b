package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/caltha/wanderlust/internal/config"
	"github.com/caltha/wanderlust/internal/infrastructure/providers"
	"github.com/caltha/wanderlust/internal/infrastructure/repository"
	"github.com/caltha/wanderlust/internal/present/rest"
	authmw "github.com/caltha/wanderlust/internal/present/rest/middleware"
	"github.com/caltha/wanderlust/internal/service"
	"github.com/caltha/wanderlust/internal/usecase"
)

func main() {
	configPath := flag.String("c", "config.yaml", "path to the config file")
	flag.Parse()

	conf, err := config.Load(*configPath)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	db, err := providers.NewDatabase(conf.Server)
	if err != nil {
		panic("failed to connect database")
	}

	err = providers.MigrateDatabase(db)
	if err != nil {
		panic("failed to migrate database")
	}

	rdb := providers.NewRedis(conf.Server)

	local := repository.NewLocalStore(db)
	remote := repository.NewRemoteStore(rdb, conf.Server.RemoteKey)
	signal := service.NewSignalService(rdb)
	auth := service.NewAuthService(conf.Auth)

	content := usecase.NewContentUsecase(local, remote, signal)

	// The first render waits behind this; the snapshot must be
	// settled before the server accepts traffic.
	bootCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := content.Bootstrap(bootCtx); err != nil {
		cancel()
		panic("failed to bootstrap content: " + err.Error())
	}
	cancel()

	var mc *memcache.Client
	if conf.Server.MemcachedAddr != "" {
		mc = providers.NewMemcache(conf.Server.MemcachedAddr)
	}

	views, err := rest.NewViews(conf.Site, mc)
	if err != nil {
		panic("failed to parse templates: " + err.Error())
	}

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	if conf.Server.EnableTrace {
		cleanup, err := setupTraceProvider(conf.Server.TraceEndpoint)
		if err != nil {
			slog.Warn(
				"failed to set up trace provider",
				slog.String("error", err.Error()),
				slog.String("module", "main"),
			)
		} else {
			defer cleanup()
			e.Use(otelecho.Middleware("wanderlust"))
		}
	}

	am := authmw.NewAuthMiddleware(auth)
	e.Use(am.IdentifyIdentity)

	e.HTTPErrorHandler = views.ErrorHandler

	handler := rest.NewHandler(conf.Site, views, content, signal)
	handler.RegisterRoutes(e)

	e.Static("/assets", "assets")

	e.Logger.Fatal(e.Start(conf.Server.Listen))
}

func setupTraceProvider(endpoint string) (func(), error) {
	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", "wanderlust"),
		)),
	)
	otel.SetTracerProvider(tp)

	cleanup := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = tp.Shutdown(ctx)
	}
	return cleanup, nil
}
