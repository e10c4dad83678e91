package euronet

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed sensors.yaml
var defaultTables []byte

// Tables are the static sensor definitions.
type Tables struct {
	System   []SystemDef  `yaml:"system"`
	Numeric  []NumericDef `yaml:"numeric"`
	Programs []ProgramDef `yaml:"programs"`
}

type SystemDef struct {
	ID    string `yaml:"id"`
	Name  string `yaml:"name"`
	Index int    `yaml:"index"`
	Mask  int    `yaml:"mask"`
}

type NumericDef struct {
	ID         string     `yaml:"id"`
	Name       string     `yaml:"name"`
	Index      int        `yaml:"index"`
	Conversion Conversion `yaml:"conversion"`
	Unit       string     `yaml:"unit"`
}

type ProgramDef struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Char string `yaml:"char"`
}

// Conversion turns a raw system slot into a value.
type Conversion string

const (
	ConversionRaw         Conversion = "raw"
	ConversionCenti       Conversion = "centi"
	ConversionBus         Conversion = "bus"
	ConversionTemperature Conversion = "temperature"
)

func (c Conversion) Apply(v int) float64 {
	switch c {
	case ConversionCenti:
		return float64(v) / 100
	case ConversionBus:
		return math.RoundToEven(float64(v)/183*100) / 100
	case ConversionTemperature:
		return math.RoundToEven(float64(v-2000) / 12)
	default:
		return float64(v)
	}
}

func (c Conversion) valid() bool {
	switch c {
	case "", ConversionRaw, ConversionCenti, ConversionBus, ConversionTemperature:
		return true
	default:
		return false
	}
}

// DefaultTables returns the built-in sensor tables.
func DefaultTables() Tables {
	tables, err := ParseTables(defaultTables)
	if err != nil {
		panic(err)
	}
	return tables
}

// LoadTables reads sensor tables from a YAML file.
func LoadTables(path string) (Tables, error) {
	bts, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("could not read sensor tables: %w", err)
	}
	tables, err := ParseTables(bts)
	if err != nil {
		return Tables{}, fmt.Errorf("could not load %s: %w", path, err)
	}
	return tables, nil
}

func ParseTables(bts []byte) (Tables, error) {
	var tables Tables
	if err := yaml.Unmarshal(bts, &tables); err != nil {
		return Tables{}, fmt.Errorf("invalid yaml: %w", err)
	}
	return tables, tables.Validate()
}

// Validate checks indexes, conversions and id uniqueness.
func (t Tables) Validate() error {
	var errs []error
	seen := map[string]bool{}
	check := func(kind, id string, index int) {
		if id == "" {
			errs = append(errs, fmt.Errorf("%s: missing id", kind))
		}
		key := kind + "/" + id
		if seen[key] {
			errs = append(errs, fmt.Errorf("%s %q: duplicated id", kind, id))
		}
		seen[key] = true
		if index < 0 || index >= systemSlots {
			errs = append(errs, fmt.Errorf("%s %q: index %d out of range", kind, id, index))
		}
	}
	for _, d := range t.System {
		check("system", d.ID, d.Index)
		if d.Mask <= 0 {
			errs = append(errs, fmt.Errorf("system %q: mask must be > 0", d.ID))
		}
	}
	for _, d := range t.Numeric {
		check("numeric", d.ID, d.Index)
		if !d.Conversion.valid() {
			errs = append(errs, fmt.Errorf("numeric %q: unknown conversion %q", d.ID, d.Conversion))
		}
	}
	for _, d := range t.Programs {
		check("program", d.ID, 0)
		if utf8.RuneCountInString(d.Char) != 1 {
			errs = append(errs, fmt.Errorf("program %q: char must be a single character", d.ID))
		}
	}
	return errors.Join(errs...)
}
