package euronet

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

type Kind uint8

const (
	KindZone Kind = iota + 1
	KindSystem
	KindProgram
	KindNumeric
)

func (k Kind) String() string {
	switch k {
	case KindZone:
		return "zone"
	case KindSystem:
		return "system"
	case KindProgram:
		return "program"
	case KindNumeric:
		return "numeric"
	default:
		return "unknown"
	}
}

// Sensor projects a single value out of a snapshot.
type Sensor struct {
	ID   string
	Name string
	Kind Kind
	Unit string

	// Zone, ZoneName and Column are only set for zone sensors.
	Zone     int
	ZoneName string
	Column   Column

	project func(s *Snapshot) float64
}

// Value projects the sensor value, a nil snapshot is always 0.
func (s Sensor) Value(snap *Snapshot) float64 {
	if snap == nil || s.project == nil {
		return 0
	}
	return s.project(snap)
}

// On is the binary value of the sensor.
func (s Sensor) On(snap *Snapshot) bool {
	return s.Value(snap) != 0
}

// Binary reports whether the sensor only ever projects 0 or 1.
func (s Sensor) Binary() bool {
	return s.Kind != KindNumeric
}

func ZoneSensor(zone int, name string, col Column) Sensor {
	label := "Ingresso - " + name
	if col != ColumnOpen {
		label += " " + title(col.String())
	}
	return Sensor{
		ID:       fmt.Sprintf("%s_%s_%d", strings.ToLower(strings.ReplaceAll(name, " ", "_")), col, zone),
		Name:     label,
		Kind:     KindZone,
		Zone:     zone,
		ZoneName: name,
		Column:   col,
		project: func(s *Snapshot) float64 {
			return boolAs(s.Zone(col, zone))
		},
	}
}

func SystemSensor(d SystemDef) Sensor {
	return Sensor{
		ID:   "system_state_" + d.ID,
		Name: "Sistema - " + d.Name,
		Kind: KindSystem,
		project: func(s *Snapshot) float64 {
			return boolAs(s.Masked(d.Index, d.Mask))
		},
	}
}

func ProgramSensor(d ProgramDef) Sensor {
	c, _ := utf8.DecodeRuneInString(d.Char)
	return Sensor{
		ID:   "system_gstate_" + d.ID,
		Name: "Programma - " + d.Name,
		Kind: KindProgram,
		project: func(s *Snapshot) float64 {
			return boolAs(s.Program(c))
		},
	}
}

func NumericSensor(d NumericDef) Sensor {
	return Sensor{
		ID:   "system_number_" + d.ID,
		Name: "SistemaNum - " + d.Name,
		Kind: KindNumeric,
		Unit: d.Unit,
		project: func(s *Snapshot) float64 {
			return d.Conversion.Apply(s.Raw(d.Index))
		},
	}
}

// Sensors builds every sensor: programs, system, numeric, and then one per
// zone and column.
func (t Tables) Sensors(zones []string) []Sensor {
	var sensors []Sensor
	for _, d := range t.Programs {
		sensors = append(sensors, ProgramSensor(d))
	}
	for _, d := range t.System {
		sensors = append(sensors, SystemSensor(d))
	}
	for _, d := range t.Numeric {
		sensors = append(sensors, NumericSensor(d))
	}
	for i, name := range zones {
		for _, col := range Columns {
			sensors = append(sensors, ZoneSensor(i, name, col))
		}
	}
	return sensors
}

func boolAs(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// title upper cases every letter following a non letter, lower cases the rest.
// "allarme_24h" -> "Allarme 24H"
func title(key string) string {
	var sb strings.Builder
	prev := false
	for _, r := range strings.ReplaceAll(key, "_", " ") {
		letter := unicode.IsLetter(r)
		switch {
		case letter && !prev:
			r = unicode.ToUpper(r)
		case letter:
			r = unicode.ToLower(r)
		}
		sb.WriteRune(r)
		prev = letter
	}
	return sb.String()
}
