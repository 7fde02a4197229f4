package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	_ = os.Unsetenv("COREBOOK_CONFIG")
	_ = os.Unsetenv("COREBOOK_LOG_LEVEL")
	_ = os.Unsetenv("COREBOOK_SYMBOLS")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %s", c.Logging.Level)
	}
	if c.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %s", c.Server.Addr)
	}
	if c.Kafka.Enabled {
		t.Fatal("kafka must be disabled by default")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
logging:
  level: warn
server:
  addr: ":9090"
instruments:
  - symbol: BTC-USD
    price_scale: 2
    tick_size: 5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COREBOOK_CONFIG", path)

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Logging.Level != "warn" {
		t.Fatalf("file override failed for log level, got %s", c.Logging.Level)
	}
	if c.Server.Addr != ":9090" {
		t.Fatalf("file override failed for addr, got %s", c.Server.Addr)
	}
	in, ok := c.Instrument("BTC-USD")
	if !ok || in.TickSize != 5 || in.PriceScale != 2 {
		t.Fatalf("instrument = %+v, ok = %v", in, ok)
	}
	if _, ok := c.Instrument("UNLISTED"); ok {
		t.Fatal("unlisted symbol must not resolve")
	}
}

func TestBrokenConfigFileIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("logging: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("COREBOOK_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("malformed config file must not load silently")
	}

	t.Setenv("COREBOOK_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("missing config file must not load silently")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("COREBOOK_LOG_LEVEL", "debug")
	t.Setenv("COREBOOK_HTTP_ADDR", ":7070")
	t.Setenv("COREBOOK_KAFKA_ENABLED", "true")
	t.Setenv("COREBOOK_KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("COREBOOK_SYMBOLS", "SOL-USD,DOGE-USD")

	c, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Logging.Level != "debug" {
		t.Fatalf("env override failed for log level, got %s", c.Logging.Level)
	}
	if c.Server.Addr != ":7070" {
		t.Fatalf("env override failed for addr, got %s", c.Server.Addr)
	}
	if !c.Kafka.Enabled || len(c.Kafka.Brokers) != 2 || c.Kafka.Brokers[1] != "k2:9092" {
		t.Fatalf("env override failed for kafka, got %+v", c.Kafka)
	}
	if len(c.Instruments) != 2 || c.Instruments[0].Symbol != "SOL-USD" {
		t.Fatalf("env override failed for symbols, got %+v", c.Instruments)
	}
}

func TestValidateRejectsBadInstrument(t *testing.T) {
	c := defaultConfig()
	c.Instruments = append(c.Instruments, Instrument{Symbol: "BAD", TickSize: 0})
	if err := c.Validate(); err == nil {
		t.Fatal("zero tick_size must not validate")
	}

	c = defaultConfig()
	c.Instruments = []Instrument{{Symbol: "", TickSize: 1}}
	if err := c.Validate(); err == nil {
		t.Fatal("empty symbol must not validate")
	}
}
