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
	"github.com/jhoicas/mes-dispatch/internal/application/dispatch"
	"github.com/jhoicas/mes-dispatch/internal/application/inventory"
	"github.com/jhoicas/mes-dispatch/internal/application/ports"
	"github.com/jhoicas/mes-dispatch/internal/application/production"
	"github.com/jhoicas/mes-dispatch/internal/application/workorder"
	"github.com/jhoicas/mes-dispatch/internal/domain/repository"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/catalog"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/memory"
	infrapdf "github.com/jhoicas/mes-dispatch/internal/infrastructure/pdf"
	"github.com/jhoicas/mes-dispatch/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/mes-dispatch/internal/interfaces/http"
	"github.com/jhoicas/mes-dispatch/pkg/config"
	"github.com/jhoicas/mes-dispatch/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

// backend repositorios y unidad de trabajo del driver elegido.
type backend struct {
	txRunner     ports.TxRunner
	workOrders   repository.WorkOrderRepository
	products     repository.ProductRepository
	equipment    repository.EquipmentRepository
	materials    repository.MaterialRepository
	transactions repository.MaterialTransactionRepository
	bom          repository.BOMRepository
	logs         repository.ProductionLogRepository
	close        func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()
	var be *backend
	switch cfg.Store.Driver {
	case config.StoreDriverMemory:
		be, err = memoryBackend(cfg.Store)
	default:
		be, err = postgresBackend(ctx, cfg.DB, log)
	}
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.Store.Driver).Msg("inicializar almacenamiento")
	}
	defer be.close()

	bomResolver := inventory.NewBomResolver(be.products, be.bom)
	ledger := inventory.NewMaterialLedger(be.txRunner, be.materials, be.transactions, log)
	workOrderUC := workorder.NewUseCase(
		be.txRunner, be.workOrders, be.products, be.materials, be.logs,
		bomResolver, infrapdf.NewTravelerGenerator(cfg.App.Name), log,
	)
	queue := dispatch.NewQueue(be.txRunner, be.equipment, log)
	recorder := production.NewRecorder(be.txRunner, be.equipment, ledger,
		production.Options{CountDefects: cfg.Production.CountDefects}, log)
	replenishmentUC := inventory.NewReplenishmentUseCase(be.workOrders, be.materials, be.bom)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
		ErrorHandler: httpRouter.ErrorHandler,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "MES Dispatch API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		WorkOrders:    workOrderUC,
		Queue:         queue,
		Recorder:      recorder,
		Ledger:        ledger,
		BOM:           bomResolver,
		Replenishment: replenishmentUC,
		JWTSecret:     cfg.JWT.Secret,
	})
	if cfg.JWT.Secret == "" {
		log.Warn().Msg("JWT_SECRET vacío: rutas de operario sin autenticación")
	}

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

func postgresBackend(ctx context.Context, cfg config.DBConfig, log *logger.Logger) (*backend, error) {
	if cfg.MigrateOnStart {
		m, err := postgres.NewMigrator(cfg.ConnectionString(), log)
		if err != nil {
			return nil, err
		}
		err = m.Up()
		_ = m.Close()
		if err != nil {
			return nil, err
		}
	}

	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &backend{
		txRunner:     postgres.NewTxRunner(pool),
		workOrders:   postgres.NewWorkOrderRepository(pool),
		products:     postgres.NewProductRepository(pool),
		equipment:    postgres.NewEquipmentRepository(pool),
		materials:    postgres.NewMaterialRepository(pool),
		transactions: postgres.NewMaterialTransactionRepository(pool),
		bom:          postgres.NewBOMRepository(pool),
		logs:         postgres.NewProductionLogRepository(pool),
		close:        pool.Close,
	}, nil
}

func memoryBackend(cfg config.StoreConfig) (*backend, error) {
	s := memory.NewStore()
	if cfg.SeedFile != "" {
		c, err := catalog.LoadFile(cfg.SeedFile, cfg.SeedLatin1)
		if err != nil {
			return nil, err
		}
		c.Apply(s)
	}
	return &backend{
		txRunner:     s,
		workOrders:   s.WorkOrders(),
		products:     s.Products(),
		equipment:    s.Equipment(),
		materials:    s.Materials(),
		transactions: s.Transactions(),
		bom:          s.BOM(),
		logs:         s.Logs(),
		close:        func() {},
	}, nil
}
