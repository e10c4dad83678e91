package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/brutella/hap/accessory"
	euronet "github.com/caarlos0/homekit-euronet"
	"github.com/stretchr/testify/require"
)

func TestSetupSensors(t *testing.T) {
	cfg := Config{ZoneColumns: []string{"ingresso_aperto", "ingresso_escluso"}}
	sensors := euronet.DefaultTables().Sensors([]string{"Porta", "Garage"})

	accs := setupSensors(cfg, sensors)
	require.Len(t, accs, 5+25+2*2)
	for i, a := range accs {
		require.Equal(t, uint64(100+i), a.Id)
		require.NotEqual(t, euronet.KindNumeric, a.sensor.Kind)
	}
}

func TestBinarySensorUpdate(t *testing.T) {
	sensor := euronet.ZoneSensor(1, "Garage", euronet.ColumnOpen)
	a := newBinarySensor(sensor)

	a.Update(nil, true)
	require.Equal(t, 0, a.Contact.ContactSensorState.Value())
	require.Equal(t, 1, a.Fault.Value())

	a.Update(&euronet.Snapshot{Ingressi: euronet.IngressiState{0, 0b10}}, false)
	require.Equal(t, 1, a.Contact.ContactSensorState.Value())
	require.Equal(t, 0, a.Fault.Value())

	// stale keeps the last value around
	a.Update(&euronet.Snapshot{Ingressi: euronet.IngressiState{0, 0b10}}, true)
	require.Equal(t, 1, a.Contact.ContactSensorState.Value())
	require.Equal(t, 1, a.Fault.Value())

	a.Update(&euronet.Snapshot{}, false)
	require.Equal(t, 0, a.Contact.ContactSensorState.Value())
	require.Equal(t, 0, a.Fault.Value())
}

func TestPanelUpdate(t *testing.T) {
	sensors := euronet.DefaultTables().Sensors(nil)
	panel := newPanel(accessory.Info{Name: "Centrale"}, sensors)

	snap := &euronet.Snapshot{
		System: euronet.SystemState{64, 0, 0, 0, 0, 0, 0, 2240},
	}
	panel.Update(snap, false)
	require.InDelta(t, 20, panel.Temperature.CurrentTemperature.Value(), 0.001)
	require.Equal(t, 1, panel.Tampered.Value())
	require.Equal(t, 0, panel.Fault.Value())

	snap = &euronet.Snapshot{
		System: euronet.SystemState{16, 0, 0, 0, 0, 0, 0, 2240},
	}
	panel.Update(snap, false)
	require.Equal(t, 0, panel.Tampered.Value())
	require.Equal(t, 1, panel.Fault.Value())

	panel.Update(&euronet.Snapshot{}, true)
	require.Equal(t, 1, panel.Fault.Value())
}

func TestPanelTemperature(t *testing.T) {
	var out bytes.Buffer
	log.SetOutput(&out)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })

	sensors := euronet.DefaultTables().Sensors(nil)
	panel := newPanel(accessory.Info{Name: "Centrale"}, sensors)

	t.Run("below zero", func(t *testing.T) {
		out.Reset()
		snap := &euronet.Snapshot{
			System: euronet.SystemState{0, 0, 0, 0, 0, 0, 0, 1940},
		}
		panel.Update(snap, false)
		require.InDelta(t, -5, panel.Temperature.CurrentTemperature.Value(), 0.001)

		panel.Update(snap, false)
		panel.Update(snap, false)
		require.Equal(t, 1, strings.Count(out.String(), "temperature=-5"), out.String())
	})

	t.Run("above 100", func(t *testing.T) {
		snap := &euronet.Snapshot{
			System: euronet.SystemState{0, 0, 0, 0, 0, 0, 0, 3500},
		}
		panel.Update(snap, false)
		require.InDelta(t, 125, panel.Temperature.CurrentTemperature.Value(), 0.001)
	})

	t.Run("out of range", func(t *testing.T) {
		out.Reset()
		snap := &euronet.Snapshot{
			System: euronet.SystemState{0, 0, 0, 0, 0, 0, 0, 9000},
		}
		panel.Update(snap, false)
		panel.Update(snap, false)
		require.InDelta(t, maxTemperature, panel.Temperature.CurrentTemperature.Value(), 0.001)
		require.Equal(t, 0, strings.Count(out.String(), "temperature"), out.String())
	})
}

func TestFindSensor(t *testing.T) {
	sensors := euronet.DefaultTables().Sensors(nil)
	require.Equal(t, "system_number_temp", findSensor(sensors, "system_number_temp").ID)

	missing := findSensor(sensors, "nope")
	require.Equal(t, "nope", missing.ID)
	require.Zero(t, missing.Value(&euronet.Snapshot{System: euronet.SystemState{1, 1, 1}}))
}
