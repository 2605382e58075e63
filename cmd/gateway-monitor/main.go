/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/carverauto/gatewaymon/pkg/config"
	"github.com/carverauto/gatewaymon/pkg/events"
	"github.com/carverauto/gatewaymon/pkg/lifecycle"
	"github.com/carverauto/gatewaymon/pkg/logger"
	"github.com/carverauto/gatewaymon/pkg/metrics"
	"github.com/carverauto/gatewaymon/pkg/monitor"
	"github.com/carverauto/gatewaymon/pkg/poller"
	"github.com/carverauto/gatewaymon/pkg/version"
)

const (
	componentName     = "gateway-monitor"
	defaultConfigPath = "/etc/serviceradar/gateway-monitor.json"
	shutdownTimeout   = 5 * time.Second
	exitUnavailable   = 1
)

// sink is a monitor.Sink that owns a connection.
type sink interface {
	monitor.Sink
	Close() error
}

func main() {
	code, err := run()
	if err != nil {
		log.Fatalf("Fatal error: %v", err)
	}

	os.Exit(code)
}

func run() (int, error) {
	configPath := flag.String("config", defaultConfigPath, "Path to gateway monitor config file")
	once := flag.Bool("once", false, "Run a single cycle, print the state and exit non-zero when UNAVAILABLE")
	showVersion := flag.Bool("version", false, "Print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(componentName))

		return 0, nil
	}

	ctx := context.Background()

	// Step 1: Load config
	var cfg monitor.ServiceConfig
	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return 0, fmt.Errorf("failed to load config: %w", err)
	}

	// Step 2: Create logger from loaded config
	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = logger.DefaultConfig()
	}

	if err := lifecycle.InitializeLogger(logConfig); err != nil {
		return 0, err
	}

	monitorLogger, err := lifecycle.CreateComponentLogger(componentName, logConfig)
	if err != nil {
		return 0, fmt.Errorf("failed to initialize logger: %w", err)
	}

	monitorLogger.Info().Str("version", version.GetVersion()).Str("build", version.GetBuildID()).Msg("Starting gateway monitor")

	// Step 3: Metrics
	provider, err := metrics.NewProvider(ctx, cfg.Metrics, version.GetVersion())
	if err != nil {
		return 0, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := provider.Shutdown(shutdownCtx); err != nil {
			monitorLogger.Warn().Err(err).Msg("Failed to flush metrics")
		}
	}()

	recorder, err := metrics.NewRecorder(provider.MeterProvider())
	if err != nil {
		return 0, fmt.Errorf("failed to create metrics recorder: %w", err)
	}

	// Step 4: Observation sink
	out, err := newSink(ctx, &cfg, monitorLogger)
	if err != nil {
		return 0, err
	}

	defer func() {
		if err := out.Close(); err != nil {
			monitorLogger.Warn().Err(err).Msg("Failed to close event sink")
		}
	}()

	// Step 5: Monitor
	mon, err := newMonitor(ctx, &cfg, out, recorder, monitorLogger)
	if err != nil {
		return 0, err
	}

	if *once {
		state := mon.RunCycle(ctx)
		fmt.Println(state)

		if !state.IsAvailable() {
			return exitUnavailable, nil
		}

		return 0, nil
	}

	// Step 6: Poll until signaled
	p, err := poller.New(mon.Interval(), mon.Poll, monitorLogger, poller.WithSkipObserver(recorder))
	if err != nil {
		return 0, fmt.Errorf("failed to create poller: %w", err)
	}

	return 0, lifecycle.RunService(ctx, p, monitorLogger)
}

func newSink(ctx context.Context, cfg *monitor.ServiceConfig, log logger.Logger) (sink, error) {
	if cfg.NATS == nil || cfg.NATS.URL == "" {
		log.Info().Msg("NATS not configured, writing observations to the log")

		return events.NewLogSink(log), nil
	}

	s, err := events.NewNATSSink(ctx, cfg.NATS, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create event sink: %w", err)
	}

	return s, nil
}

func newMonitor(
	ctx context.Context, cfg *monitor.ServiceConfig, out monitor.Sink, recorder *metrics.Recorder, log logger.Logger,
) (*monitor.Monitor, error) {
	creds, err := monitor.LoadCredentialOverrides()
	if err != nil {
		return nil, err
	}

	opts := []monitor.Option{
		monitor.WithObserver(recorder),
		monitor.WithEnvCredentials(creds),
	}

	hostInfo, err := monitor.CollectHostInfo(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Continuing without monitoring-host metadata")
	} else {
		opts = append(opts, monitor.WithHostInfo(hostInfo))
	}

	mon, err := monitor.New(&cfg.Config, out, log, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create monitor: %w", err)
	}

	return mon, nil
}
