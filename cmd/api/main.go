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

	"github.com/jhoicas/sylistock-api/docs"
	"github.com/jhoicas/sylistock-api/internal/application/bankability"
	"github.com/jhoicas/sylistock-api/internal/application/catalog"
	"github.com/jhoicas/sylistock-api/internal/application/inventory"
	"github.com/jhoicas/sylistock-api/internal/application/ledger"
	"github.com/jhoicas/sylistock-api/internal/application/reporting"
	"github.com/jhoicas/sylistock-api/internal/domain/entity"
	"github.com/jhoicas/sylistock-api/internal/domain/repository"
	"github.com/jhoicas/sylistock-api/internal/infrastructure/events"
	"github.com/jhoicas/sylistock-api/internal/infrastructure/memory"
	"github.com/jhoicas/sylistock-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/sylistock-api/internal/interfaces/http"
	"github.com/jhoicas/sylistock-api/pkg/config"
	"github.com/jhoicas/sylistock-api/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// repositories adaptadores de persistencia elegidos por STORE_DRIVER.
type repositories struct {
	tx            ledger.TxRunner
	products      repository.ProductRepository
	stock         repository.StockItemRepository
	logs          repository.InventoryLogRepository
	merchants     repository.MerchantRepository
	verifications repository.VerificationRepository
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Str("score_mode", cfg.Score.RecomputeMode).
		Msg("iniciando aplicación")

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	repos, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer repos.close()

	scoreUC := bankability.NewUseCase(
		repos.merchants, repos.verifications, repos.logs, repos.stock,
		bankability.Config{ActivityWindowDays: cfg.Score.ActivityWindowDays},
		log,
	)

	// inline: recálculo en la misma petición; kafka: evento por movimiento y listener en segundo plano.
	var trigger ledger.ScoreTrigger = scoreUC
	if cfg.Score.RecomputeMode == config.RecomputeKafka {
		publisher := events.NewPublisher(events.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.ScoreTopic), log)
		defer publisher.Close()
		trigger = publisher

		listener := events.NewScoreListener(
			events.NewKafkaReader(cfg.Kafka.Brokers, cfg.Kafka.ScoreTopic, cfg.Kafka.GroupID),
			scoreUC, log,
		)
		defer listener.Close()
		go listener.Start(ctx)
	}

	ledgerUC := ledger.NewUseCase(repos.tx, repos.merchants, trigger, ledger.Config{
		OnUnknownBarcode: ledger.UnknownBarcodePolicy(cfg.Ledger.OnUnknownBarcode),
	}, log)
	inventoryUC := inventory.NewUseCase(repos.products, repos.stock, repos.merchants, trigger, log)
	reportingUC := reporting.NewUseCase(repos.merchants, repos.stock, repos.logs)
	catalogUC := catalog.NewUseCase(repos.products)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    docs.SwaggerInfo.Title,
		}))
	} else {
		log.Warn().Str("file", swaggerFile).Msg("swagger deshabilitado: archivo no encontrado")
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "store": cfg.Store.Driver})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:      ledgerUC,
		Inventory:   inventoryUC,
		Reporting:   reportingUC,
		Bankability: scoreUC,
		Catalog:     catalogUC,
		Merchants:   repos.merchants,
		JWTSecret:   cfg.JWT.Secret,
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
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}

func openStore(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Store.Driver == config.StoreMemory {
		s := memory.New(memory.WithLockTimeout(cfg.Ledger.LockTimeout))
		if id := cfg.Store.SeedMerchantID; id != "" {
			now := time.Now().UTC()
			err := s.Merchants().Create(ctx, &entity.MerchantProfile{
				ID:             id,
				BusinessName:   "Demo",
				AlertThreshold: entity.DefaultAlertThreshold,
				CreatedAt:      now,
				UpdatedAt:      now,
			})
			if err != nil {
				return nil, err
			}
		}
		return &repositories{
			tx:            s,
			products:      s.Products(),
			stock:         s.StockItems(),
			logs:          s.Logs(),
			merchants:     s.Merchants(),
			verifications: s.Verifications(),
			close:         func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	return &repositories{
		tx:            postgres.NewTxRunner(pool, cfg.Ledger.LockTimeout),
		products:      postgres.NewProductRepository(pool),
		stock:         postgres.NewStockItemRepository(pool),
		logs:          postgres.NewInventoryLogRepository(pool),
		merchants:     postgres.NewMerchantRepository(pool),
		verifications: postgres.NewVerificationRepository(pool),
		close:         pool.Close,
	}, nil
}
