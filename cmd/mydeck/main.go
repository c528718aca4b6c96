// Command mydeck runs a page-based control panel on a Stream Deck. It ships
// a standby page with a clock, a climate page backed by Nature Remo, a
// lighting page backed by Philips Hue, and a page of small tools.
package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/macrat/mydeck/internal/app"
	"github.com/macrat/mydeck/internal/config"
	"github.com/macrat/mydeck/internal/deck"
	"github.com/macrat/mydeck/internal/icon"
	"github.com/macrat/mydeck/internal/modules/hue"
	"github.com/macrat/mydeck/internal/modules/remo"
	"github.com/macrat/mydeck/internal/widget"
)

var (
	configPath = pflag.StringP("config", "c", "mydeck.yaml", "path to the configuration file")
	deviceFlag = pflag.Int("device", -1, "device index, overriding the configuration")
	brightFlag = pflag.Int("brightness", -1, "backlight level 0-100, overriding the configuration")
	emulate    = pflag.Bool("emulate", false, "run against an in-memory device instead of hardware")
	verbose    = pflag.BoolP("verbose", "v", false, "enable debug logging")
)

func main() {
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	conf, err := loadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "path", *configPath, "error", err)
		os.Exit(1)
	}
	if *deviceFlag >= 0 {
		conf.Device.Index = *deviceFlag
	}
	if *brightFlag >= 0 {
		conf.Device.Brightness = *brightFlag
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Main device loop: wait for a device, run, reconnect on disconnect.
	for {
		d := waitForDevice(ctx, conf, logger)
		if d == nil {
			return
		}

		runWithDevice(ctx, d, conf, logger)

		select {
		case <-ctx.Done():
			logger.Info("exiting")
			return
		default:
			logger.Info("waiting for device reconnect")
		}
	}
}

func loadConfig() (*config.Config, error) {
	conf, err := config.Load(*configPath)
	if err == nil {
		return conf, nil
	}

	// A missing file at the default location just means defaults; an
	// explicitly given path must exist.
	if errors.Is(err, os.ErrNotExist) && !pflag.CommandLine.Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

// waitForDevice opens the configured device, polling until one shows up.
// Returns nil once the context is cancelled.
func waitForDevice(ctx context.Context, conf *config.Config, logger *slog.Logger) *deck.Deck {
	if *emulate {
		logger.Info("running on the emulator")
		return deck.New(deck.NewEmulator(3, 5), logger)
	}

	for {
		d, err := deck.Open(conf.Device.Index, logger)
		if err == nil {
			return d
		}
		if errors.Is(err, deck.ErrDeviceNotFound) {
			logger.Debug("waiting for device", "index", conf.Device.Index)
		} else {
			logger.Error("failed to open device", "error", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(2 * time.Second):
		}
	}
}

// runWithDevice builds the page topology and runs it until the device
// disconnects or the context is cancelled.
func runWithDevice(ctx context.Context, d *deck.Deck, conf *config.Config, logger *slog.Logger) {
	d.SetBrightness(conf.Device.Brightness)
	if err := d.Reset(); err != nil {
		logger.Error("failed to clear device", "error", err)
	}

	top, err := buildTopology(ctx, conf, logger)
	if err != nil {
		logger.Error("failed to build topology", "error", err)
		return
	}

	actx := app.NewContext(d, nil, logger)
	actx.Execute(top)
	logger.Info("ready")

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case <-d.Done():
		logger.Warn("device disconnected")
	}

	actx.Stop()
	if err := d.Close(); err != nil {
		logger.Error("failed to close device", "error", err)
	}
}

const (
	pageStandby = "STBY"
	pageAC      = "AC"
	pageLight   = "LIGHT"
	pageTools   = "TOOLS"
)

// buildTopology assembles the pager over a 3x5 grid. The left column holds
// navigation; integration pages only exist when their configuration does.
func buildTopology(ctx context.Context, conf *config.Config, logger *slog.Logger) (*app.Pager, error) {
	pages := map[string]app.Application{}

	var remoClient *remo.Client
	if conf.Remo.Enabled() {
		remoClient = remo.NewClient(conf.Remo.Token)
		pages[pageAC] = buildACPage(conf, remoClient)
	}

	if conf.Hue.Enabled() {
		page, err := buildLightPage(ctx, conf)
		if err != nil {
			logger.Warn("skipping light page", "error", err)
		} else {
			pages[pageLight] = page
		}
	}

	pages[pageTools] = buildToolsPage()
	pages[pageStandby] = buildStandbyPage(conf, remoClient, pages)

	return app.NewPager(pages, pageStandby)
}

func buildStandbyPage(conf *config.Config, remoClient *remo.Client, pages map[string]app.Application) app.Application {
	apps := []app.Application{
		widget.NewClock(deck.Keys(7)),
	}

	nav := []struct {
		key  int
		page string
		tint color.RGBA
	}{
		{0, pageAC, color.RGBA{R: 0, G: 96, B: 192, A: 255}},
		{5, pageLight, color.RGBA{R: 224, G: 160, B: 0, A: 255}},
		{10, pageTools, color.RGBA{R: 0, G: 160, B: 64, A: 255}},
	}
	for _, n := range nav {
		if _, ok := pages[n.page]; !ok {
			continue
		}
		apps = append(apps, app.NewNavKey(deck.Keys(n.key), n.page, &icon.Marker{
			Text:   n.page,
			Marker: n.tint,
			Pos:    icon.Left,
			Kind:   icon.Wedge,
		}))
	}

	if remoClient != nil && conf.Remo.DeviceID != "" {
		apps = append(apps, remo.NewRoomTempKey(remoClient, conf.Remo.DeviceID, 9))
	}

	return app.NewGroup(apps...)
}

func buildACPage(conf *config.Config, client *remo.Client) app.Application {
	apps := []app.Application{
		backKey(),
		remo.NewModeKeySet(client, conf.Remo.ApplianceID, map[int]string{
			1: "cool",
			2: "warm",
			6: "dry",
			7: "",
		}),
		remo.NewTempKeySet(client, conf.Remo.ApplianceID, 3, 8, 13),
		remo.NewVolumeKey(client, conf.Remo.ApplianceID, 12),
	}
	if conf.Remo.DeviceID != "" {
		apps = append(apps, remo.NewRoomTempKey(client, conf.Remo.DeviceID, 11))
	}
	return app.NewGroup(apps...)
}

func buildLightPage(ctx context.Context, conf *config.Config) (app.Application, error) {
	bridge := conf.Hue.Bridge
	if bridge == "" {
		found, err := hue.DiscoverBridge(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to discover bridge: %w", err)
		}
		bridge = found
	}

	client := hue.NewClient(bridge, conf.Hue.AppKey)
	apps := []app.Application{backKey()}
	for _, light := range conf.Hue.Lights {
		apps = append(apps, hue.NewLightKey(client, light.ID, light.Key))
	}
	for _, group := range conf.Hue.Groups {
		apps = append(apps, hue.NewGroupedLightKey(client, group.ID, group.Key))
	}
	return app.NewGroup(apps...), nil
}

func buildToolsPage() app.Application {
	return app.NewGroup(
		backKey(),
		widget.NewCounter(deck.Keys(1)),
		widget.NewStopwatch(deck.Keys(6)),
		widget.NewClock(deck.Keys(2)),
		widget.NewKitchenTimer(3, 8, 13),
	)
}

func backKey() app.Application {
	return app.NewNavKey(deck.Keys(0), pageStandby, &icon.Marker{
		Text: "back",
		Pos:  icon.Left,
		Kind: icon.Wedge,
	})
}
