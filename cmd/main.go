package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"etcfiles/blueprint"
	"etcfiles/config"
	"etcfiles/logger"
	"etcfiles/output"
	"etcfiles/scanner"
	"etcfiles/systeminfo"
	"etcfiles/tracing"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger.Init(cfg.LogLevel)

	if cfg.TraceFile != "" {
		if err := tracing.Start(cfg.TraceFile); err != nil {
			logger.Warnf("Failed to start trace: %v", err)
		} else {
			defer tracing.Stop()
		}
	}

	// Handle graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx, cfg); err != nil {
		logger.Errorf("Scanning failed: %v", err)
		cancel()
		tracing.Stop()
		os.Exit(1)
	}
}

// run performs one scan and writes the blueprint. A cancelled scan still
// writes what was collected.
func run(ctx context.Context, cfg *config.Config) error {
	metrics := &output.Metrics{StartTime: time.Now().Format(time.RFC3339)}

	var host *blueprint.Host
	if cfg.CollectSystemInfo {
		host = systeminfo.GetHost(ctx)
	}

	writer, err := output.New(cfg, host, metrics)
	if err != nil {
		return err
	}

	scanErr := scanner.ScanFiles(ctx, cfg, metrics, writer)
	metrics.EndTime = time.Now().Format(time.RFC3339)
	writer.SetMetrics(*metrics)
	if err := writer.Close(); err != nil {
		return fmt.Errorf("write blueprint: %w", err)
	}

	switch {
	case errors.Is(scanErr, context.Canceled):
		logger.Warnf("Scan interrupted; wrote partial blueprint with %d files to %s", metrics.FilesRecorded, cfg.OutputFileName)
		return nil
	case scanErr != nil:
		return scanErr
	}
	logger.Infof("Wrote blueprint with %d files to %s", metrics.FilesRecorded, cfg.OutputFileName)
	return nil
}

func handleSignals(cancelFunc context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)
	handleSignalEvent(cancelFunc, sigChan)
}

func handleSignalEvent(cancelFunc context.CancelFunc, sigChan <-chan os.Signal) {
	sig := <-sigChan
	logger.Infof("%v received. Shutting down...", sig)
	cancelFunc()
}
