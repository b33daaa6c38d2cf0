package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `
mqtt:
  broker:
    host: "broker.lan"
    port: 8883
    tls: true
    client_id: "display-kitchen"
  topic: "garage/distance"
  qos: 1
  reconnect:
    initial_delay: 2
    max_delay: 60
sensor:
  staleness_window: 3s
  range:
    min: 0
    max: 400
display:
  tick_rate: 30
  start_enabled: true
api:
  port: 9090
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "broker.lan" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "broker.lan")
	}
	if !cfg.MQTT.Broker.TLS {
		t.Error("MQTT.Broker.TLS = false, want true")
	}
	if cfg.MQTT.Topic != "garage/distance" {
		t.Errorf("MQTT.Topic = %q, want %q", cfg.MQTT.Topic, "garage/distance")
	}
	if cfg.MQTT.ReconnectInitial() != 2*time.Second || cfg.MQTT.ReconnectMax() != time.Minute {
		t.Errorf("reconnect = %v..%v, want 2s..1m", cfg.MQTT.ReconnectInitial(), cfg.MQTT.ReconnectMax())
	}
	if cfg.Sensor.StalenessWindow != 3*time.Second {
		t.Errorf("Sensor.StalenessWindow = %v, want 3s", cfg.Sensor.StalenessWindow)
	}
	if cfg.Sensor.Range.Max != 400 {
		t.Errorf("Sensor.Range.Max = %d, want 400", cfg.Sensor.Range.Max)
	}
	if !cfg.Display.StartEnabled {
		t.Error("Display.StartEnabled = false, want true")
	}
	if cfg.TickInterval() != time.Second/30 {
		t.Errorf("TickInterval() = %v, want %v", cfg.TickInterval(), time.Second/30)
	}

	// Untouched sections keep their defaults.
	if cfg.MQTT.KeepAlive != 60 {
		t.Errorf("MQTT.KeepAlive = %d, want default 60", cfg.MQTT.KeepAlive)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want default json", cfg.Logging.Format)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.MQTT.Broker.Host != "localhost" || cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("broker = %s:%d, want localhost:1883", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port)
	}
	if cfg.MQTT.Broker.ClientID != "distance_display_client" {
		t.Errorf("ClientID = %q", cfg.MQTT.Broker.ClientID)
	}
	if cfg.MQTT.Topic != "sensor/distance" {
		t.Errorf("Topic = %q", cfg.MQTT.Topic)
	}
	if cfg.MQTT.ReconnectInitial() != 5*time.Second || cfg.MQTT.ReconnectMax() != 300*time.Second {
		t.Errorf("reconnect = %v..%v, want 5s..5m", cfg.MQTT.ReconnectInitial(), cfg.MQTT.ReconnectMax())
	}
	if cfg.Sensor.StalenessWindow != 5*time.Second {
		t.Errorf("StalenessWindow = %v, want 5s", cfg.Sensor.StalenessWindow)
	}
	if cfg.TickInterval() != 100*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 100ms", cfg.TickInterval())
	}
	if cfg.Display.StartEnabled {
		t.Error("Display.StartEnabled = true, want false")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: [yaml: content"))
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
mqtt:
  topic: "sensor/#"
`
	_, err := Load(writeConfig(t, content))
	if err == nil {
		t.Fatal("Load() expected validation error for wildcard topic, got nil")
	}
	if !strings.Contains(err.Error(), "wildcards") {
		t.Errorf("Load() error = %v, want wildcard message", err)
	}
}

func TestLoad_EmptyClientIDIsGenerated(t *testing.T) {
	content := `
mqtt:
  broker:
    client_id: ""
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	id := cfg.MQTT.Broker.ClientID
	if !strings.HasPrefix(id, "rangeview-") || len(id) != len("rangeview-")+8 {
		t.Errorf("ClientID = %q, want rangeview-xxxxxxxx", id)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("RANGEVIEW_MQTT_HOST", "env-broker")
	t.Setenv("RANGEVIEW_MQTT_TOPIC", "env/topic")
	t.Setenv("RANGEVIEW_MQTT_USERNAME", "sensor")
	t.Setenv("RANGEVIEW_MQTT_PASSWORD", "s3cret")
	t.Setenv("RANGEVIEW_API_HOST", "127.0.0.1")
	t.Setenv("RANGEVIEW_INFLUXDB_TOKEN", "tok")
	t.Setenv("RANGEVIEW_LOG_LEVEL", "debug")

	cfg, err := Load(writeConfig(t, "mqtt:\n  broker:\n    host: file-broker\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	checks := []struct {
		name, got, want string
	}{
		{"MQTT.Broker.Host", cfg.MQTT.Broker.Host, "env-broker"},
		{"MQTT.Topic", cfg.MQTT.Topic, "env/topic"},
		{"MQTT.Auth.Username", cfg.MQTT.Auth.Username, "sensor"},
		{"MQTT.Auth.Password", cfg.MQTT.Auth.Password, "s3cret"},
		{"API.Host", cfg.API.Host, "127.0.0.1"},
		{"InfluxDB.Token", cfg.InfluxDB.Token, "tok"},
		{"Logging.Level", cfg.Logging.Level, "debug"},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %q, want %q", c.name, c.got, c.want)
		}
	}
}

func TestLoad_EnvEmptyClientID(t *testing.T) {
	t.Setenv("RANGEVIEW_MQTT_CLIENT_ID", "")

	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !strings.HasPrefix(cfg.MQTT.Broker.ClientID, "rangeview-") {
		t.Errorf("ClientID = %q, want a generated id", cfg.MQTT.Broker.ClientID)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(c *Config) {},
		},
		{
			name:    "qos too high",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: "mqtt.qos",
		},
		{
			name:    "empty topic",
			mutate:  func(c *Config) { c.MQTT.Topic = "" },
			wantErr: "mqtt.topic is required",
		},
		{
			name:    "single-level wildcard",
			mutate:  func(c *Config) { c.MQTT.Topic = "sensor/+" },
			wantErr: "wildcards",
		},
		{
			name:    "bad port",
			mutate:  func(c *Config) { c.MQTT.Broker.Port = 0 },
			wantErr: "mqtt.broker.port",
		},
		{
			name:    "max below initial",
			mutate:  func(c *Config) { c.MQTT.Reconnect.MaxDelay = 1 },
			wantErr: "max_delay",
		},
		{
			name:    "zero staleness",
			mutate:  func(c *Config) { c.Sensor.StalenessWindow = 0 },
			wantErr: "staleness_window",
		},
		{
			name:    "inverted range",
			mutate:  func(c *Config) { c.Sensor.Range = RangeConfig{Min: 10, Max: 5} },
			wantErr: "sensor.range",
		},
		{
			name:    "tick rate too high",
			mutate:  func(c *Config) { c.Display.TickRate = 120 },
			wantErr: "display.tick_rate",
		},
		{
			name:   "api port ignored when disabled",
			mutate: func(c *Config) { c.API.Enabled = false; c.API.Port = 0 },
		},
		{
			name:    "influx without url",
			mutate:  func(c *Config) { c.InfluxDB.Enabled = true; c.InfluxDB.Bucket = "b" },
			wantErr: "influxdb.url",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantErr: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.MQTT.QoS = 5
	cfg.Display.TickRate = 0

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil, want errors")
	}
	if !strings.Contains(err.Error(), "mqtt.qos") || !strings.Contains(err.Error(), "display.tick_rate") {
		t.Errorf("Validate() error = %v, want both problems listed", err)
	}
}

func TestConfig_Timeouts(t *testing.T) {
	cfg := Default()

	if cfg.API.GetReadTimeout() != 30*time.Second {
		t.Errorf("GetReadTimeout() = %v, want 30s", cfg.API.GetReadTimeout())
	}
	if cfg.API.GetWriteTimeout() != 30*time.Second {
		t.Errorf("GetWriteTimeout() = %v, want 30s", cfg.API.GetWriteTimeout())
	}
	if cfg.API.GetIdleTimeout() != 60*time.Second {
		t.Errorf("GetIdleTimeout() = %v, want 60s", cfg.API.GetIdleTimeout())
	}
}
