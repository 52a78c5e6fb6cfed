package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"upreport/internal/amqp"
	"upreport/internal/cli"
	"upreport/internal/log"
	"upreport/internal/services"
	"upreport/internal/worker"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "report-worker: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file for local development
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		return err
	}
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	logger.Info("Starting report-worker")

	if cfg.AMQPURL == "" {
		return errors.New("AMQP_URL is required for the report worker")
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, cfg.AMQPEventsQueue)
	if err != nil {
		return fmt.Errorf("initialize AMQP client: %w", err)
	}
	defer amqpClient.Close()
	logger.Info("Initialized AMQP client",
		"exchange", cfg.AMQPExchange,
		log.FieldQueue, cfg.AMQPQueue,
		"events_queue", cfg.AMQPEventsQueue)

	svc, cleanup, err := cli.NewReportService(ctx, cfg, logger, services.WithNotifier(amqpClient))
	if err != nil {
		return fmt.Errorf("initialize report service: %w", err)
	}
	defer func() {
		if err := cleanup(); err != nil {
			logger.Error("Cleanup failed", log.FieldError, err)
		}
	}()

	reportWorker := worker.NewReportWorker(svc, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeReportRequests(gctx, reportWorker.HandleRequest)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down worker...", log.FieldOperation, log.OpShutdown)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("message consumption failed: %w", err)
	}
	logger.Info("Worker shutdown complete")
	return nil
}
