// Command apcontrold runs the AP Manager service: it discovers
// AP-capable wireless interfaces and exposes their AP-daemon control
// channel to operations issued against pkg/wifi/apmanager (spec.md
// §1, §6).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/wifictl/apcontrold/internal/config"
	"github.com/wifictl/apcontrold/internal/diagnostics"
	"github.com/wifictl/apcontrold/internal/health"
	"github.com/wifictl/apcontrold/internal/logger"
	"github.com/wifictl/apcontrold/pkg/wifi/apmanager"
	"github.com/wifictl/apcontrold/pkg/wifi/capabilities"
	"github.com/wifictl/apcontrold/pkg/wifi/controller"
	"github.com/wifictl/apcontrold/pkg/wifi/discovery"
	nl80211 "github.com/wifictl/apcontrold/pkg/wifi/discovery/netlink"
)

const appName = "apcontrold"

var configPath = flag.String("config", "", "Path to configuration file (YAML); defaults are used when omitted")

// Application wires together the AP manager, its discovery agent, the
// health checker and the diagnostics server (spec.md §6 lifecycle).
type Application struct {
	cfg         config.Config
	manager     *apmanager.Manager
	health      *health.Checker
	diagnostics *diagnostics.Server
	agent       *discovery.Agent
	gateway     *Gateway
}

func main() {
	flag.Parse()

	cfgManager, err := config.NewManager(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	cfg := cfgManager.Get()

	log, err := logger.New(logger.Config{
		Path:       cfg.Logging.Path,
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	log.Info().Str("app", appName).Msg("starting")

	app := NewApplication(cfg, log)
	if err := app.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start")
	}

	app.WaitForShutdown()

	if err := app.Stop(); err != nil {
		log.Error().Err(err).Msg("error during shutdown")
		os.Exit(1)
	}
	log.Info().Msg("stopped")
}

// NewApplication constructs every component but does not yet start any
// background work.
func NewApplication(cfg config.Config, log zerolog.Logger) *Application {
	checker := health.New(cfg.Health, log, func() {
		log.Error().Msg("watchdog requested shutdown")
		os.Exit(1)
	})

	factory := &controller.Factory{
		SocketDir:      cfg.Hostapd.SocketDir,
		CommandTimeout: cfg.Hostapd.CommandTimeout,
		Logger:         log,
	}

	manager := apmanager.New(cfg.Hostapd.ProbeTimeout, log)

	driver := nl80211.New(factory, nl80211.StaticCapabilitiesProvider{
		Default: capabilities.Capabilities{},
	}, log)
	agent := discovery.NewAgent(driver, log)

	diag := diagnostics.New(cfg.HTTP, checker, manager, log)

	return &Application{
		cfg:         cfg,
		manager:     manager,
		health:      checker,
		diagnostics: diag,
		agent:       agent,
		// gateway is the RPC-facing entry point operations arrive
		// through once a transport is wired in (spec.md §6); nothing
		// in this binary calls it yet.
		gateway: NewGateway(manager),
	}
}

// Start registers the discovery agent with the manager (which starts
// it, runs the initial bounded probe, and admits the results,
// spec.md §4.6) and starts the diagnostics HTTP server.
func (a *Application) Start() error {
	a.health.UpdateComponent("apmanager", true, "started")

	a.manager.AddPresenceObserver(a.diagnostics.NotifyPresence)

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Hostapd.ProbeTimeout+2*time.Second)
	defer cancel()
	a.manager.RegisterDiscoveryAgent(ctx, a.agent)
	a.health.SetAccessPointCount(len(a.manager.GetAll()))

	if a.cfg.HTTP.Enabled {
		go func() {
			if err := a.diagnostics.Start(); err != nil {
				a.health.RecordError(err)
			}
		}()
	}
	return nil
}

// Stop tears down the manager (which stops every registered discovery
// agent) and the diagnostics server in that order (spec.md §6
// graceful shutdown).
func (a *Application) Stop() error {
	a.manager.Close()
	a.health.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return a.diagnostics.Stop(ctx)
}

// WaitForShutdown blocks until SIGINT or SIGTERM is received.
func (a *Application) WaitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
}
