package euronet

import (
	"strings"
	"time"
)

const (
	systemSlots   = 10
	ingressiSlots = 5
)

// SystemState holds the positional slots of the Sta= response.
// Index 0 is the main status bitmask, 4 the battery voltage, 6 the bus voltage
// and 7 the raw temperature.
type SystemState [systemSlots]int

// IngressiState holds one bitmask per zone column, bit i being zone i.
type IngressiState [ingressiSlots]int

// Column is a column of IngressiState.
type Column int

const (
	ColumnAlarm24h Column = iota
	ColumnOpen
	ColumnExcluded
	ColumnMemory24h
	ColumnAlarmMemory
)

// Columns lists all zone columns in wire order.
var Columns = []Column{
	ColumnAlarm24h,
	ColumnOpen,
	ColumnExcluded,
	ColumnMemory24h,
	ColumnAlarmMemory,
}

func (c Column) String() string {
	switch c {
	case ColumnAlarm24h:
		return "allarme_24h"
	case ColumnOpen:
		return "ingresso_aperto"
	case ColumnExcluded:
		return "ingresso_escluso"
	case ColumnMemory24h:
		return "memoria_24h"
	case ColumnAlarmMemory:
		return "memoria_allarme"
	default:
		return "unknown"
	}
}

// Snapshot is one fully decoded view of the panel.
// It is never modified after being published, readers may share it freely.
type Snapshot struct {
	System    SystemState
	Ingressi  IngressiState
	GState    string
	UpdatedAt time.Time
}

// Zone reports whether the given zone bit is set in the given column.
func (s *Snapshot) Zone(col Column, zone int) bool {
	if s == nil || col < 0 || int(col) >= ingressiSlots || zone < 0 || zone >= 63 {
		return false
	}
	return (s.Ingressi[col]>>zone)&1 == 1
}

// Program reports whether the given program char is active.
func (s *Snapshot) Program(c rune) bool {
	if s == nil {
		return false
	}
	return strings.ContainsRune(s.GState, c)
}

// Masked reports whether any of the mask bits are set in the given system slot.
func (s *Snapshot) Masked(idx, mask int) bool {
	return s.Raw(idx)&mask != 0
}

// Raw returns the given system slot, or 0 if out of range.
func (s *Snapshot) Raw(idx int) int {
	if s == nil || idx < 0 || idx >= systemSlots {
		return 0
	}
	return s.System[idx]
}
