package main

import (
	"context"
	"log/slog"
	"os"

	"reviewhub/config"
	"reviewhub/internal/delivery"
	"reviewhub/internal/delivery/http"
	"reviewhub/internal/delivery/http/middleware"
	"reviewhub/internal/delivery/http/router/handler"
	"reviewhub/internal/domain/service"
	"reviewhub/internal/infra/ai"
	"reviewhub/internal/infra/auth"
	logs "reviewhub/internal/infra/log"
	"reviewhub/internal/infra/oauth/google"
	"reviewhub/internal/infra/persistence/postgres"
	"reviewhub/internal/infra/pubsub"
	"reviewhub/internal/infra/ratelimit"
	"reviewhub/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
		postgres.New,
	)
}

func injectRepo() fx.Option {
	return fx.Options(
		fx.Provide(
			postgres.NewTransactionManager,
		),
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			auth.NewStateCodec,
			google.NewReviewProvider,
			google.NewDirectoryService,
			ai.NewReplyGenerator,
			pubsub.NewEventPublisher,
			newLoginGuard,
		),
	)
}

// newLoginGuard wires the in-memory login rate limiter into the fx lifecycle
// so its sweeper goroutine starts and stops with the app.
func newLoginGuard(lc fx.Lifecycle, cfg *config.Config, logger *slog.Logger) service.LoginGuard {
	guard := ratelimit.NewLoginGuard(cfg, logger)
	lc.Append(fx.Hook{
		OnStart: guard.Start,
		OnStop:  guard.Stop,
	})

	return guard
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewAuthService,
			impl.NewConnectService,
			impl.NewCredentialService,
			impl.NewSyncService,
			impl.NewReplyService,
			impl.NewReviewService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewAuthHandler,
			handler.NewConnectHandler,
			handler.NewSyncHandler,
			handler.NewReviewHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))

				// Trigger graceful shutdown to execute all OnStop hooks
				if shutdownErr := params.Shutdown(); shutdownErr != nil {
					slog.Error("Failed to shutdown gracefully", slog.Any("error", shutdownErr))
					os.Exit(1)
				}
			}
		}()
	}
}
