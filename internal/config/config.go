// Package config loads modem session settings from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jeongseonghan/bandmodem/internal/modem"
)

// Config mirrors the YAML file. Absent keys keep the values from Default.
type Config struct {
	Scheme        string         `yaml:"scheme"`
	Modulation    string         `yaml:"modulation"`
	BitsPerSymbol int            `yaml:"bits_per_symbol"`
	USF           int            `yaml:"usf"`
	SampleRate    float64        `yaml:"sample_rate"`
	Bands         [][]float64    `yaml:"bands"`
	Amplitude     float64        `yaml:"amplitude"`
	Filter        FilterConfig   `yaml:"filter"`
	Preamble      PreambleConfig `yaml:"preamble"`
	Channel       ChannelConfig  `yaml:"channel"`
	Server        ServerConfig   `yaml:"server"`
	Verbose       bool           `yaml:"verbose"`
}

type FilterConfig struct {
	Span    int     `yaml:"span"`
	RollOff float64 `yaml:"rolloff"`
}

type PreambleConfig struct {
	Length int `yaml:"length"`
	Seed   int `yaml:"seed"`
}

// ChannelConfig points at a remote channel server speaking the sample wire
// frame over WebSocket. An empty URL means a local loopback.
type ChannelConfig struct {
	URL      string        `yaml:"url"`
	Compress bool          `yaml:"compress"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns the settings used when no file is given.
func Default() *Config {
	d := modem.DefaultConfig()
	bands := make([][]float64, len(d.Bands))
	for i, b := range d.Bands {
		bands[i] = []float64{b.Low, b.High}
	}
	return &Config{
		Scheme:        d.Scheme.String(),
		Modulation:    d.Modulation.String(),
		BitsPerSymbol: d.BitsPerSymbol,
		USF:           d.USF,
		SampleRate:    d.SampleRate,
		Bands:         bands,
		Amplitude:     d.Amplitude,
		Filter: FilterConfig{
			Span:    d.FilterSpan,
			RollOff: d.RollOff,
		},
		Preamble: PreambleConfig{
			Length: d.PreambleLength,
			Seed:   int(d.PreambleSeed),
		},
		Channel: ChannelConfig{
			Timeout: 10 * time.Second,
		},
		Server: ServerConfig{
			Addr: "0.0.0.0:8080",
		},
	}
}

// Load reads and validates a YAML file on top of Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML on top of Default and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings can build a modem.
func (c *Config) Validate() error {
	mc, err := c.ModemConfig()
	if err != nil {
		return err
	}
	if err := mc.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Channel.Timeout < 0 {
		return fmt.Errorf("invalid config: negative channel timeout %v", c.Channel.Timeout)
	}
	return nil
}

// ModemConfig converts the file representation to a modem.Config. It does
// not validate the modem parameters themselves.
func (c *Config) ModemConfig() (modem.Config, error) {
	scheme, err := modem.ParseScheme(c.Scheme)
	if err != nil {
		return modem.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	mod, err := modem.ParseModulation(c.Modulation)
	if err != nil {
		return modem.Config{}, fmt.Errorf("invalid config: %w", err)
	}
	if c.Preamble.Seed < 0 || c.Preamble.Seed > 63 {
		return modem.Config{}, fmt.Errorf("invalid config: preamble seed %d outside [0, 63]", c.Preamble.Seed)
	}

	plan := make(modem.BandPlan, len(c.Bands))
	for i, b := range c.Bands {
		if len(b) != 2 {
			return modem.Config{}, fmt.Errorf("invalid config: %w: band %d needs [low, high]", modem.ErrBandPlan, i)
		}
		plan[i] = modem.Band{Low: b[0], High: b[1]}
	}

	return modem.Config{
		Scheme:         scheme,
		Modulation:     mod,
		BitsPerSymbol:  c.BitsPerSymbol,
		USF:            c.USF,
		SampleRate:     c.SampleRate,
		Bands:          plan,
		Amplitude:      c.Amplitude,
		FilterSpan:     c.Filter.Span,
		RollOff:        c.Filter.RollOff,
		PreambleLength: c.Preamble.Length,
		PreambleSeed:   uint8(c.Preamble.Seed),
	}, nil
}
