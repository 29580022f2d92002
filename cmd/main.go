package main

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/procurelink/rfq-service/internal/db"
	"github.com/procurelink/rfq-service/internal/events"
	"github.com/procurelink/rfq-service/internal/handlers"
	"github.com/procurelink/rfq-service/internal/notifications"
	"github.com/procurelink/rfq-service/internal/repository"
	"github.com/procurelink/rfq-service/internal/router"
	"github.com/procurelink/rfq-service/internal/router/config"
	"github.com/procurelink/rfq-service/internal/services"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	runDBMigration(cfg.MigrationURL, cfg.PostgresConn)

	dbPool, err := db.InitDb(cfg)
	if err != nil {
		log.Fatalf("error initializing database: %v", err)
	}
	defer dbPool.Close()

	logger := log.New(os.Stdout, "INFO: ", log.LstdFlags)

	rfqRepo := repository.NewPostgresRFQRepository(dbPool)
	bidRepo := repository.NewPostgresBidRepository(dbPool)
	panelRepo := repository.NewPostgresPanelRepository(dbPool)
	notificationRepo := repository.NewPostgresNotificationRepository(dbPool)

	emitter := events.NewEmitter()
	notificationService := notifications.NewService(notificationRepo, bidRepo, logger)
	emitter.Subscribe(notificationService.HandleEvent)

	locks := services.NewRFQLocks()
	visibility := services.NewVisibilityResolver(panelRepo)
	rfqService := services.NewRFQService(rfqRepo, bidRepo, panelRepo, locks, emitter)
	bidService := services.NewBidService(rfqRepo, bidRepo, visibility, locks, emitter)
	awardService := services.NewAwardService(rfqRepo, bidRepo, locks, emitter)
	panelService := services.NewPanelService(panelRepo)

	rfqHandler := handlers.NewRFQHandler(rfqService, awardService, logger, 5*time.Second)
	bidHandler := handlers.NewBidHandler(bidService, logger, 5*time.Second)
	panelHandler := handlers.NewPanelHandler(panelService, logger, 5*time.Second)
	notificationHandler := handlers.NewNotificationHandler(notificationService, logger, 5*time.Second)

	routes := router.InitRoutes(rfqHandler, bidHandler, panelHandler, notificationHandler)

	log.Printf("server is listening on %s...", cfg.ServerAddress)
	if err := http.ListenAndServe(cfg.ServerAddress, routes); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func runDBMigration(migrationURL string, dbSource string) {
	migration, err := migrate.New(migrationURL, dbSource)
	if err != nil {
		log.Fatal("cannot create a new migrate instance", err)
	}

	if err = migration.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatal("failed to run migrate up:", err)
	}
	log.Println("db migrated successfully")
}
