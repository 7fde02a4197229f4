// Package config loads service configuration: defaults, then an optional
// YAML file pointed at by COREBOOK_CONFIG, then environment overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Instrument struct {
	Symbol string `yaml:"symbol"`
	// PriceScale is the number of decimal places carried by wire prices;
	// internal prices are integers at this scale.
	PriceScale int32 `yaml:"price_scale"`
	// TickSize is the minimum increment in scaled units.
	TickSize int64 `yaml:"tick_size"`
}

type Config struct {
	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
	Server struct {
		Addr                string `yaml:"addr"`
		ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int    `yaml:"idle_timeout_seconds"`
	} `yaml:"server"`
	WAL struct {
		Dir         string `yaml:"dir"`
		SegmentSize int64  `yaml:"segment_size"`
	} `yaml:"wal"`
	Outbox struct {
		Dir string `yaml:"dir"`
	} `yaml:"outbox"`
	Snapshot struct {
		Dir             string `yaml:"dir"`
		IntervalSeconds int    `yaml:"interval_seconds"`
	} `yaml:"snapshot"`
	Kafka struct {
		Enabled     bool     `yaml:"enabled"`
		Brokers     []string `yaml:"brokers"`
		EventsTopic string   `yaml:"events_topic"`
		DepthTopic  string   `yaml:"depth_topic"`
		// Format selects the event encoding: "json" or "proto".
		Format                   string `yaml:"format"`
		BroadcastIntervalMillis  int    `yaml:"broadcast_interval_millis"`
		DepthIntervalMillis      int    `yaml:"depth_interval_millis"`
		DepthLevels              int    `yaml:"depth_levels"`
	} `yaml:"kafka"`
	Instruments []Instrument `yaml:"instruments"`
}

func defaultConfig() Config {
	var c Config
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Server.Addr = ":8080"
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.WAL.Dir = "./data/wal"
	c.WAL.SegmentSize = 4 << 20
	c.Outbox.Dir = "./data/outbox"
	c.Snapshot.Dir = "./data/snapshots"
	c.Snapshot.IntervalSeconds = 30
	c.Kafka.Enabled = false
	c.Kafka.Brokers = []string{"localhost:9092"}
	c.Kafka.EventsTopic = "book.events"
	c.Kafka.DepthTopic = "book.depth"
	c.Kafka.Format = "json"
	c.Kafka.BroadcastIntervalMillis = 250
	c.Kafka.DepthIntervalMillis = 1000
	c.Kafka.DepthLevels = 10
	c.Instruments = []Instrument{
		{Symbol: "BTCUSDT", PriceScale: 2, TickSize: 1},
		{Symbol: "ETHUSDT", PriceScale: 2, TickSize: 1},
	}
	return c
}

// Load builds the configuration: defaults, then the YAML file pointed at
// by COREBOOK_CONFIG, then env overrides. A config file that was asked for
// but cannot be read or parsed is an error; running on silent defaults
// would hide a broken deployment.
func Load() (Config, error) {
	c := defaultConfig()
	if path := os.Getenv("COREBOOK_CONFIG"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return c, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if v := os.Getenv("COREBOOK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("COREBOOK_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("COREBOOK_WAL_DIR"); v != "" {
		c.WAL.Dir = v
	}
	if v := os.Getenv("COREBOOK_OUTBOX_DIR"); v != "" {
		c.Outbox.Dir = v
	}
	if v := os.Getenv("COREBOOK_KAFKA_ENABLED"); v == "1" || v == "true" {
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("COREBOOK_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitCSV(v)
	}
	if v := os.Getenv("COREBOOK_SYMBOLS"); v != "" {
		c.Instruments = c.Instruments[:0]
		for _, sym := range splitCSV(v) {
			c.Instruments = append(c.Instruments, Instrument{Symbol: sym, PriceScale: 2, TickSize: 1})
		}
	}
	return c, nil
}

// Instrument returns the configured instrument for sym, or false when the
// symbol is not listed.
func (c Config) Instrument(sym string) (Instrument, bool) {
	for _, in := range c.Instruments {
		if in.Symbol == sym {
			return in, true
		}
	}
	return Instrument{}, false
}

func (c Config) Validate() error {
	for _, in := range c.Instruments {
		if in.Symbol == "" {
			return fmt.Errorf("config: instrument with empty symbol")
		}
		if in.TickSize <= 0 {
			return fmt.Errorf("config: instrument %s: tick_size must be positive", in.Symbol)
		}
		if in.PriceScale < 0 {
			return fmt.Errorf("config: instrument %s: price_scale must not be negative", in.Symbol)
		}
	}
	return nil
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
