package main

import (
	euronet "github.com/caarlos0/homekit-euronet"
)

type BinarySensors []*BinarySensor

func (sensors BinarySensors) Update(snap *euronet.Snapshot, stale bool) {
	for _, s := range sensors {
		s.Update(snap, stale)
	}
}

// setupSensors creates an accessory for every exposed sensor.
// Accessory ids follow the sensor order, which is stable as long as the
// tables and the zones do not change.
func setupSensors(cfg Config, sensors []euronet.Sensor) BinarySensors {
	var result BinarySensors
	for _, sensor := range sensors {
		if !cfg.exposed(sensor) {
			continue
		}
		a := newBinarySensor(sensor)
		a.Id = uint64(100 + len(result))
		result = append(result, a)
	}
	return result
}
