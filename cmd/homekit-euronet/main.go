package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/brutella/hap"
	"github.com/brutella/hap/accessory"
	"github.com/caarlos0/env/v11"
	euronet "github.com/caarlos0/homekit-euronet"
	"github.com/cenkalti/backoff/v4"
	logp "github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var log = logp.NewWithOptions(os.Stderr, logp.Options{
	ReportTimestamp: true,
	TimeFormat:      time.Kitchen,
	Prefix:          "homekit",
})

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const manufacturer = "Lince"

func main() {
	log.Info(
		"homekit-euronet",
		"version", version,
		"commit", commit,
		"date", date,
		"info", "Homekit bridge for Lince Euronet alarm systems",
	)

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(
			"could not parse env",
			"err",
			strings.TrimPrefix(strings.ReplaceAll(err.Error(), "; ", "\n"), "env: ")+"\n",
		)
	}
	if err := cfg.validate(); err != nil {
		log.Fatal("invalid configuration", "err", err)
	}
	if level, err := logp.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
		euronet.SetLogLevel(level)
	}

	tables, err := cfg.tables()
	if err != nil {
		log.Fatal("could not load sensor tables", "err", err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-c
		log.Info("stopping server")
		signal.Stop(c)
		cancel()
	}()

	host, port, macAddr := resolveHost(ctx, cfg)
	cli := euronet.New(host, port, cfg.Username, cfg.Password, cfg.Timeout)

	if err := retry(ctx, func() error {
		err := cli.Ping(ctx)
		if errors.Is(err, euronet.ErrUnauthorized) {
			return backoff.Permanent(err)
		}
		return err
	}); err != nil {
		log.Fatal("could not connect to the alarm system", "host", host, "port", port, "err", err)
	}

	scraped := cfg.ZoneNames
	if len(scraped) == 0 {
		if err := retry(ctx, func() (err error) {
			scraped, err = cli.ZoneNames(ctx)
			return
		}); err != nil {
			log.Fatal("could not get zone names", "err", err)
		}
	}
	zones := cfg.zoneNames(scraped)
	sensors := tables.Sensors(zones)

	log.Info(
		"loading accessories",
		"zones", strings.Join(zones, "\n"),
		"sensors", len(sensors),
	)

	if macAddr == "" {
		macAddr, err = euronet.MacAddress(host)
		if err != nil {
			log.Warn(
				"could not get the mac address, needs 'cap_net_raw+ep' capabilities",
				"err", err,
			)
		}
	}

	bridge := accessory.NewBridge(accessory.Info{
		Name:         "Euronet Bridge",
		Manufacturer: manufacturer,
		Firmware:     version,
	})

	panel := newPanel(accessory.Info{
		Name:         "Centrale",
		SerialNumber: macAddr,
		Manufacturer: manufacturer,
		Model:        "Euronet",
	}, sensors)
	panel.Id = 2

	binaries := setupSensors(cfg, sensors)

	coord := euronet.NewCoordinator(cli, cfg.Interval, cfg.Timeout)
	coord.Subscribe(func(snap *euronet.Snapshot, err error) {
		observe(sensors, snap, err)
		panel.Update(snap, err != nil)
		binaries.Update(snap, err != nil)
	})

	if err := retry(ctx, func() error {
		return coord.Refresh(ctx)
	}); err != nil {
		log.Fatal("could not init accessories", "err", err)
	}

	go coord.Run(ctx)

	fs := hap.NewFsStore(cfg.DB)

	server, err := hap.NewServer(fs, bridge.A, securityAccessories(panel, binaries)...)
	if err != nil {
		log.Fatal("fail to create server", "error", err)
	}
	server.Addr = cfg.Address
	server.ServeMux().Handle("/metrics", promhttp.Handler())
	server.ServeMux().Handle("/", pageHandler(host, sensors, zones, coord))

	log.Info("starting server", "addr", server.Addr)
	if err := server.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error("failed to close server", "err", err)
	}
}

// resolveHost uses the configured host, or discovers the panel in the local
// network if none was given.
func resolveHost(ctx context.Context, cfg Config) (host, port, mac string) {
	if cfg.Host != "" {
		host, port = euronet.SplitHostPort(cfg.Host, cfg.Port)
		return host, port, ""
	}

	log.Info("no host configured, looking for the alarm system", "timeout", cfg.DiscoveryTimeout)
	dev, err := euronet.Discover(ctx, cfg.DiscoveryTimeout)
	if err != nil {
		log.Fatal("could not find the alarm system, set HOST", "err", err)
	}
	port = dev.Port
	if port == "" {
		port = cfg.Port
	}
	return dev.Host, port, dev.MAC
}

func retry(ctx context.Context, fn func() error) error {
	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = time.Second * 5
	bo.MaxElapsedTime = time.Minute

	return backoff.RetryNotify(fn, backoff.WithContext(bo, ctx), func(err error, d time.Duration) {
		log.Error("request to central failed", "err", err, "retry_in", d)
	})
}

func securityAccessories(panel *Panel, sensors BinarySensors) []*accessory.A {
	result := []*accessory.A{panel.A}
	for _, s := range sensors {
		result = append(result, s.A)
	}
	return result
}
