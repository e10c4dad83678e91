package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	euronet "github.com/caarlos0/homekit-euronet"
	logp "github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

type Config struct {
	Host             string        `env:"HOST"`
	Port             string        `env:"PORT"              envDefault:"80"`
	Username         string        `env:"USERNAME,notEmpty"`
	Password         string        `env:"PASSWORD,notEmpty"`
	Code             string        `env:"CODE"`
	Interval         time.Duration `env:"INTERVAL"          envDefault:"10s"`
	Timeout          time.Duration `env:"TIMEOUT"           envDefault:"10s"`
	ZoneNames        []string      `env:"ZONE_NAMES"`
	ZoneColumns      []string      `env:"ZONE_COLUMNS"      envDefault:"ingresso_aperto"`
	SensorsFile      string        `env:"SENSORS_FILE"`
	DiscoveryTimeout time.Duration `env:"DISCOVERY_TIMEOUT" envDefault:"3s"`
	Address          string        `env:"LISTEN"            envDefault:":9009"`
	DB               string        `env:"DB"                envDefault:"./db"`
	LogLevel         string        `env:"LOG_LEVEL"         envDefault:"info"`
}

func (c Config) validate() error {
	var errs []error
	if c.Code != "" && (len(c.Code) != 6 || strings.Trim(c.Code, "0123456789") != "") {
		errs = append(errs, fmt.Errorf("CODE must have 6 digits"))
	}
	if c.Interval <= 0 {
		errs = append(errs, fmt.Errorf("INTERVAL must be positive"))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("TIMEOUT must be positive"))
	}
	if c.DiscoveryTimeout <= 0 {
		errs = append(errs, fmt.Errorf("DISCOVERY_TIMEOUT must be positive"))
	}
	if _, err := logp.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
	}
	for _, col := range c.ZoneColumns {
		if !slices.ContainsFunc(euronet.Columns, func(known euronet.Column) bool {
			return known.String() == col
		}) {
			errs = append(errs, fmt.Errorf("ZONE_COLUMNS: unknown column %q", col))
		}
	}
	return errors.Join(errs...)
}

func (c Config) tables() (euronet.Tables, error) {
	if c.SensorsFile == "" {
		return euronet.DefaultTables(), nil
	}
	return euronet.LoadTables(c.SensorsFile)
}

// exposed reports whether the sensor gets its own accessory.
func (c Config) exposed(s euronet.Sensor) bool {
	switch s.Kind {
	case euronet.KindZone:
		return slices.Contains(c.ZoneColumns, s.Column.String())
	case euronet.KindNumeric:
		return false
	default:
		return true
	}
}

// zoneNames prefers the configured names over the scraped ones, filling the
// gaps with "Zone N".
func (c Config) zoneNames(scraped []string) []string {
	names := scraped
	if len(c.ZoneNames) > 0 {
		names = c.ZoneNames
	}
	result := make([]string, len(names))
	for i, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			result[i] = name
			continue
		}
		result[i] = fmt.Sprintf("Zone %d", i+1)
	}
	return result
}
