// rangeview - distance sensor display client
//
// rangeview subscribes to one MQTT topic carrying a distance reading in
// centimetres, keeps the latest value fresh, classifies it, and serves the
// display state over HTTP and WebSocket at a fixed frame rate. The broker
// connection is retried with bounded exponential backoff for as long as the
// process runs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nerrad567/rangeview/internal/api"
	"github.com/nerrad567/rangeview/internal/infrastructure/config"
	"github.com/nerrad567/rangeview/internal/infrastructure/influxdb"
	"github.com/nerrad567/rangeview/internal/infrastructure/logging"
	"github.com/nerrad567/rangeview/internal/infrastructure/mqtt"
	"github.com/nerrad567/rangeview/internal/reading"
	"github.com/nerrad567/rangeview/internal/reconnect"
	"github.com/nerrad567/rangeview/internal/session"
	"github.com/nerrad567/rangeview/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// healthCheckTimeout bounds the startup check of optional sinks.
const healthCheckTimeout = 5 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// It returns nil on clean shutdown. An unreachable broker is not an error:
// the telemetry client keeps retrying in the background.
func run(ctx context.Context) error {
	log := logging.Default()
	log.Info("starting rangeview",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Metrics sink (optional)
	var recorder telemetry.Recorder
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})

		checkCtx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
		if hcErr := influxClient.HealthCheck(checkCtx); hcErr != nil {
			log.Warn("InfluxDB health check failed", "error", hcErr)
		}
		cancel()

		recorder = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

	mqttClient := mqtt.New(cfg.MQTT)
	mqttClient.SetLogger(log.With("component", "mqtt"))

	link := reconnect.New(reconnect.Policy{
		Initial: cfg.MQTT.ReconnectInitial(),
		Max:     cfg.MQTT.ReconnectMax(),
	})

	sess := session.New(session.Config{
		Range:           reading.Range{Min: cfg.Sensor.Range.Min, Max: cfg.Sensor.Range.Max},
		StalenessWindow: cfg.Sensor.StalenessWindow,
		StartEnabled:    cfg.Display.StartEnabled,
	}, link)

	// The frame sink is set once the API server exists.
	frames := &frameSink{}

	client := telemetry.New(mqttClient, link, sess, telemetry.Options{
		Topic:        cfg.MQTT.Topic,
		QoS:          byte(cfg.MQTT.QoS),
		TickInterval: cfg.TickInterval(),
		Recorder:     recorder,
		OnFrame:      frames.publish,
	})
	client.SetLogger(log.With("component", "telemetry"))

	if cfg.API.Enabled {
		server, apiErr := api.New(api.Deps{
			Config:    cfg.API,
			WS:        cfg.WebSocket,
			Logger:    log,
			Telemetry: client,
			Version:   version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := server.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := server.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
		frames.set(server)
		log.Info("API server started",
			"address", fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port),
		)
	} else {
		log.Info("API server disabled")
	}

	if err := client.Start(ctx); err != nil {
		return fmt.Errorf("starting telemetry: %w", err)
	}
	// Registered last so it runs first: disconnect from the broker before
	// the API server and metrics sink go away.
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing telemetry client", "error", closeErr)
		}
	}()

	log.Info("telemetry running",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
		"topic", cfg.MQTT.Topic,
	)

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	log.Info("rangeview stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses RANGEVIEW_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("RANGEVIEW_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
