package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/avray/eventreg-server/internal/cache"
	"github.com/avray/eventreg-server/internal/config"
	"github.com/avray/eventreg-server/internal/logger"
	"github.com/avray/eventreg-server/internal/model"
	"github.com/avray/eventreg-server/internal/repository/postgres"
	"github.com/avray/eventreg-server/internal/service"
	storage "github.com/avray/eventreg-server/internal/storage/minio"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	exportEvent := flag.Int64("export-event", 0, "stream the event's registrations as CSV to stdout")
	archive := flag.Bool("archive", false, "upload the export to object storage instead of stdout")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)
	logger.Info("starting", "version", buildVersion, "build_date", buildDate, "commit", buildCommit)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	if *exportEvent == 0 {
		logger.Info("migrations applied, nothing to export")
		return
	}

	eventRepo := postgres.NewEventRepository(db)
	registrationRepo := postgres.NewRegistrationRepository(db)
	counts := cache.NewCounts(cfg.Cache.CountTTL)

	registrations := service.NewRegistration(registrationRepo, eventRepo, counts, logger.Component("registrations"))
	total, err := registrations.CountRegistrations(ctx, *exportEvent)
	if err != nil {
		logger.Fatal("failed to count registrations", "error", err)
	}
	logger.Info("exporting registrations", "event_id", *exportEvent, "total", total)

	var objects model.Storage
	if *archive {
		client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			logger.Fatal("failed to create object storage client", "error", err)
		}
		objects, err = storage.NewClient(ctx, client, cfg.Storage.Bucket)
		if err != nil {
			logger.Fatal("failed to initialize object storage", "error", err)
		}
	}

	exporter := service.NewExport(registrationRepo, eventRepo, objects, logger.Component("export"))

	if *archive {
		key, err := exporter.Archive(ctx, *exportEvent)
		if err != nil {
			logger.Fatal("failed to archive registrations", "error", err)
		}
		logger.Info("archive complete", "key", key)
		return
	}

	written, err := exporter.WriteCSV(ctx, *exportEvent, os.Stdout)
	if err != nil {
		logger.Fatal("failed to export registrations", "error", err)
	}
	logger.Info("export complete", "rows", written)
}
