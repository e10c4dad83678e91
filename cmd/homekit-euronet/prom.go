package main

import (
	euronet "github.com/caarlos0/homekit-euronet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var sensorGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "homekit_euronet",
	Subsystem: "panel",
	Name:      "sensor",
	Help:      "Value of each panel sensor",
}, []string{"id", "kind"})

var zoneGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "homekit_euronet",
	Subsystem: "panel",
	Name:      "zone",
	Help:      "Zone bits, one series per zone and column",
}, []string{"name", "column"})

var staleGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "homekit_euronet",
	Subsystem: "poll",
	Name:      "stale",
	Help:      "1 if the last poll cycle failed",
})

var lastUpdateGauge = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "homekit_euronet",
	Subsystem: "poll",
	Name:      "last_success_timestamp_seconds",
	Help:      "Time of the last successful poll cycle",
})

var cycleCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "homekit_euronet",
	Subsystem: "poll",
	Name:      "cycles_total",
	Help:      "Poll cycles run",
})

var cycleErrorCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "homekit_euronet",
	Subsystem: "poll",
	Name:      "cycle_errors_total",
	Help:      "Poll cycles that failed",
})

func observe(sensors []euronet.Sensor, snap *euronet.Snapshot, err error) {
	cycleCounter.Inc()
	if err != nil {
		cycleErrorCounter.Inc()
		staleGauge.Set(1)
		return
	}
	staleGauge.Set(0)
	lastUpdateGauge.Set(float64(snap.UpdatedAt.Unix()))

	for _, s := range sensors {
		if s.Kind == euronet.KindZone {
			zoneGauge.WithLabelValues(s.ZoneName, s.Column.String()).Set(s.Value(snap))
			continue
		}
		sensorGauge.WithLabelValues(s.ID, s.Kind.String()).Set(s.Value(snap))
	}
}
