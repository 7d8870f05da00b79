package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/retail-ledger/internal/application/inventory"
	"github.com/jhoicas/retail-ledger/internal/application/numbering"
	"github.com/jhoicas/retail-ledger/internal/application/payment"
	"github.com/jhoicas/retail-ledger/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/retail-ledger/internal/infrastructure/redis"
	httpRouter "github.com/jhoicas/retail-ledger/internal/interfaces/http"
	"github.com/jhoicas/retail-ledger/pkg/config"
	"github.com/jhoicas/retail-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	schema, err := postgres.DetectSchema(ctx, pool)
	if err != nil {
		log.Fatal().Err(err).Msg("inspección del esquema")
	}
	if !schema.PaymentKeyColumn {
		log.Warn().Msg("payments.idempotency_key no existe; la deduplicación usará solo similitud")
	}

	txRunner := postgres.NewTxRunner(pool, schema, cfg.DB.AcquireTimeout)
	repos := txRunner.Repos()

	// Bloqueo de envíos: Redis si está configurado, si no solo índices únicos + similitud.
	var locker payment.SubmissionLocker = payment.NoopLocker{}
	if cfg.Redis.Enabled() {
		rdb, err := infraredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis no disponible; se continúa sin bloqueo de envíos")
		} else {
			defer rdb.Close()
			locker = infraredis.NewSubmissionLocker(rdb, cfg.Ledger.SubmissionLockTTL, log)
		}
	}

	numbers := numbering.NewGenerator(log)
	engine := inventory.NewMovementEngine()
	policy := payment.GuardPolicy{
		Window:                     cfg.Ledger.DuplicateWindow,
		FailOpenOnMissingFields:    cfg.Ledger.FailOpenOnMissingFields,
		FailOpenOnMissingKeyColumn: cfg.Ledger.FailOpenOnMissingKeyCol,
	}

	paymentUC := payment.NewUseCase(txRunner, repos, numbers, locker, policy, log)
	adjustmentUC := inventory.NewAdjustmentUseCase(txRunner, repos, engine, log)
	transferUC := inventory.NewTransferUseCase(txRunner, repos, engine, numbers, log)
	auditUC := inventory.NewAuditUseCase(repos)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log))

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Retail Ledger API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Payments:    paymentUC,
		Adjustments: adjustmentUC,
		Transfers:   transferUC,
		Audit:       auditUC,
		JWTSecret:   cfg.JWT.Secret,
		JWTIssuer:   cfg.JWT.Issuer,
		Log:         log,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
