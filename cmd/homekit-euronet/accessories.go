package main

import (
	"github.com/brutella/hap/accessory"
	"github.com/brutella/hap/characteristic"
	"github.com/brutella/hap/service"
	euronet "github.com/caarlos0/homekit-euronet"
	"golang.org/x/exp/slices"
)

// BinarySensor shows any on/off sensor as a contact sensor.
type BinarySensor struct {
	*accessory.A
	Contact *service.ContactSensor
	Fault   *characteristic.StatusFault

	sensor euronet.Sensor
}

func newBinarySensor(sensor euronet.Sensor) *BinarySensor {
	a := BinarySensor{
		sensor: sensor,
	}
	a.A = accessory.New(accessory.Info{
		Name:         sensor.Name,
		SerialNumber: sensor.ID,
		Manufacturer: manufacturer,
	}, accessory.TypeSensor)

	a.Fault = characteristic.NewStatusFault()

	a.Contact = service.NewContactSensor()
	a.Contact.AddC(a.Fault.C)
	a.AddS(a.Contact.S)

	return &a
}

func (a *BinarySensor) Update(snap *euronet.Snapshot, stale bool) {
	setFault(a.Fault, stale, a.sensor.ID)
	if snap == nil {
		return
	}

	current := boolToInt(a.sensor.On(snap))
	if a.Contact.ContactSensorState.Value() == current {
		return
	}
	_ = a.Contact.ContactSensorState.SetValue(current)
	log.Info(
		"sensor",
		"id", a.sensor.ID,
		"name", a.sensor.Name,
		"status", current,
	)
}

const (
	minTemperature = -40
	maxTemperature = 125
)

// Panel is the control unit itself: its temperature, tamper and fault
// status.
type Panel struct {
	*accessory.A
	Temperature *service.TemperatureSensor
	Tampered    *characteristic.StatusTampered
	Fault       *characteristic.StatusFault

	temperature euronet.Sensor
	tamper      euronet.Sensor
	fail        euronet.Sensor
}

func newPanel(info accessory.Info, sensors []euronet.Sensor) *Panel {
	a := Panel{
		temperature: findSensor(sensors, "system_number_temp"),
		tamper:      findSensor(sensors, "system_state_tamper_int"),
		fail:        findSensor(sensors, "system_state_fail"),
	}
	a.A = accessory.New(info, accessory.TypeSensor)

	a.Temperature = service.NewTemperatureSensor()
	a.Temperature.CurrentTemperature.SetMinValue(minTemperature)
	a.Temperature.CurrentTemperature.SetMaxValue(maxTemperature)
	a.AddS(a.Temperature.S)

	a.Tampered = characteristic.NewStatusTampered()
	a.Temperature.AddC(a.Tampered.C)

	a.Fault = characteristic.NewStatusFault()
	a.Temperature.AddC(a.Fault.C)

	return &a
}

func (a *Panel) Update(snap *euronet.Snapshot, stale bool) {
	setFault(a.Fault, stale || a.fail.On(snap), "panel")
	if snap == nil {
		return
	}

	// HomeKit clamps to the characteristic range, compare clamped values.
	v := min(max(a.temperature.Value(snap), minTemperature), maxTemperature)
	if a.Temperature.CurrentTemperature.Value() != v {
		a.Temperature.CurrentTemperature.SetValue(v)
		log.Info("panel status", "temperature", v)
	}

	if v := boolToInt(a.tamper.On(snap)); a.Tampered.Value() != v {
		_ = a.Tampered.SetValue(v)
		log.Info("panel status", "tamper", v)
	}
}

func setFault(fault *characteristic.StatusFault, stale bool, id string) {
	v := boolToInt(stale)
	if fault.Value() == v {
		return
	}
	_ = fault.SetValue(v)
	log.Debug("fault", "id", id, "status", v)
}

// findSensor returns the sensor with the given id, or a sensor that always
// projects 0 if the tables do not have it.
func findSensor(sensors []euronet.Sensor, id string) euronet.Sensor {
	idx := slices.IndexFunc(sensors, func(s euronet.Sensor) bool {
		return s.ID == id
	})
	if idx < 0 {
		return euronet.Sensor{ID: id}
	}
	return sensors[idx]
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
