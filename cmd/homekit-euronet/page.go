package main

import (
	_ "embed"
	"html/template"
	"net/http"
	"strconv"
	"time"

	euronet "github.com/caarlos0/homekit-euronet"
)

//go:embed index.html
var index string

var indexTpl = template.Must(template.New("index").Parse(index))

type PageItem struct {
	Name  string
	Value string
	On    bool
}

type PageZone struct {
	Number int
	Name   string
	Bits   []bool
}

type Page struct {
	Host      string
	Stale     bool
	Error     string
	UpdatedAt string
	Numeric   []PageItem
	Binary    []PageItem
	Columns   []string
	Zones     []PageZone
}

func newPage(host string, sensors []euronet.Sensor, zones []string, snap *euronet.Snapshot, err error) Page {
	page := Page{
		Host:      host,
		Stale:     err != nil,
		UpdatedAt: "never",
	}
	if err != nil {
		page.Error = err.Error()
	}
	if snap != nil {
		page.UpdatedAt = snap.UpdatedAt.Format(time.RFC3339)
	}

	for _, s := range sensors {
		switch s.Kind {
		case euronet.KindZone:
			continue
		case euronet.KindNumeric:
			value := strconv.FormatFloat(s.Value(snap), 'f', -1, 64)
			if s.Unit != "" {
				value += " " + s.Unit
			}
			page.Numeric = append(page.Numeric, PageItem{Name: s.Name, Value: value})
		default:
			page.Binary = append(page.Binary, PageItem{Name: s.Name, On: s.On(snap)})
		}
	}

	for _, col := range euronet.Columns {
		page.Columns = append(page.Columns, col.String())
	}
	for i, name := range zones {
		zone := PageZone{Number: i + 1, Name: name}
		for _, col := range euronet.Columns {
			zone.Bits = append(zone.Bits, snap.Zone(col, i))
		}
		page.Zones = append(page.Zones, zone)
	}
	return page
}

func pageHandler(host string, sensors []euronet.Sensor, zones []string, coord *euronet.Coordinator) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		page := newPage(host, sensors, zones, coord.Snapshot(), coord.LastError())
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := indexTpl.Execute(w, page); err != nil {
			log.Error("could not render page", "err", err)
		}
	})
}
