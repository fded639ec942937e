// Command hostdemo embeds a Plugin Host Instance behind a real PortAudio
// duplex stream and a websocket control plane, exercising the full
// lifecycle/control/reply surface against a synthesized backend.Fake plugin
// (see loader.go); no native plugin module is loaded.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"

	"github.com/gordonklaus/portaudio"
	"github.com/labstack/echo/v4"

	"pluginhost/host"
	"pluginhost/internal/registry"
	"pluginhost/internal/window"
)

func main() {
	controlAddr := flag.String("control-addr", ":8088", "control-plane websocket listen address")
	dbPath := flag.String("db", "hostdemo.db", "plugin description cache database path")
	sampleRate := flag.Float64("sample-rate", 44100, "audio sample rate in Hz")
	blockSize := flag.Int("block-size", 512, "audio block size in frames")
	numParams := flag.Int("num-params", 256, "parameter table size (must cover every plugin this instance will open)")
	cmdQueueCap := flag.Int("queue-capacity", 64, "command/reply queue capacity")
	logLevel := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(*logLevel)})))

	reg, err := registry.Open(*dbPath)
	if err != nil {
		slog.Error("open plugin registry", "error", err)
		os.Exit(1)
	}
	defer reg.Close()

	if err := portaudio.Initialize(); err != nil {
		slog.Error("initialize portaudio", "error", err)
		os.Exit(1)
	}
	defer portaudio.Terminate()

	ctl := newControlHandler(*cmdQueueCap)

	inst := host.New(host.Config{
		InstanceID:           "hostdemo",
		Loader:               nativeLoader{},
		WindowBackend:        window.NewFake(), // no native editor UI in this demo
		BridgeMode:           host.BridgeModeDirect,
		Registry:             reg,
		CommandQueueCapacity: *cmdQueueCap,
		NumParameters:        *numParams,
		SampleRateHz:         *sampleRate,
		BlockSize:            *blockSize,
		Reply:                ctl.reply,
		Log:                  slog.Default(),
	})
	inst.Start()
	defer inst.Stop()

	bridge := newAudioBridge(inst, ctl)
	if err := bridge.Start(*sampleRate, *blockSize); err != nil {
		slog.Error("start audio bridge", "error", err)
		os.Exit(1)
	}
	defer bridge.Stop()

	e := echo.New()
	e.HideBanner = true
	ctl.Register(e)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		slog.Info("hostdemo shutting down")
		if err := e.Shutdown(ctx); err != nil {
			slog.Warn("control plane shutdown", "error", err)
		}
		cancel()
	}()

	if addrHost, addrPort, err := net.SplitHostPort(*controlAddr); err == nil {
		slog.Info("control plane listening", "host", addrHost, "port", addrPort)
	}
	if err := e.Start(*controlAddr); err != nil {
		slog.Info("control plane stopped", "error", err)
	}
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
