// Command xbeemon attaches to an XBee module on a serial port, logs every API
// frame it receives and serves driver metrics over HTTP.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/MasandeM/xbee"
	"github.com/MasandeM/xbee/internal/config"
	"github.com/MasandeM/xbee/internal/httpserver"
	"github.com/MasandeM/xbee/internal/logging"
	"github.com/MasandeM/xbee/internal/metrics"
)

func main() {
	fs := pflag.NewFlagSet("xbeemon", pflag.ExitOnError)
	config.RegisterFlags(fs)
	_ = fs.Parse(os.Args[1:])
	path, _ := fs.GetString("config")

	cfg, err := config.Load(path, fs)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("xbeemon stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port, err := openPort(cfg.Serial)
	if err != nil {
		return err
	}
	defer port.Close()
	log.Info("serial port open", zap.String("port", cfg.Serial.Port), zap.Int("baud", cfg.Serial.Baud))

	reg := metrics.NewRegistry()
	driverMetrics := metrics.NewDriverMetrics(reg)
	opts := []xbee.Option{
		xbee.WithLogger(log.Named("xbee")),
		xbee.WithRxCapacity(cfg.Device.RxCapacity),
		xbee.WithObserver(driverMetrics),
	}

	var dev *xbee.Device
	if cfg.Device.CommandMode {
		dev, err = switchToAPI(ctx, port, cfg.Device, log, opts)
		if err != nil {
			return err
		}
	} else {
		dev = xbee.New(port, opts...)
	}

	mon := newMonitor(dev, driverMetrics, log)
	if err := mon.identify(); err != nil {
		log.Warn("could not query module identity", zap.Error(err))
	}

	var httpSrv *httpserver.Server
	if cfg.Metrics.Enable {
		httpSrv = httpserver.New(cfg.HTTP, cfg.Metrics.Path, metrics.Handler(reg), mon.ready, mon.status)
		go func() {
			if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("http server error", zap.Error(err))
			}
		}()
		log.Info("status server listening", zap.String("addr", cfg.HTTP.Addr))
	}

	err = mon.run(ctx, cfg.Monitor.PollInterval)

	if httpSrv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		_ = httpSrv.Shutdown(shutdownCtx)
	}
	if errors.Is(err, context.Canceled) {
		log.Info("shutting down")
		return nil
	}
	return err
}

func openPort(cfg config.SerialConfig) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("unable to open %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("unable to set read timeout: %w", err)
	}
	return port, nil
}

// switchToAPI takes a module in transparent mode into API mode (AP=1).
func switchToAPI(ctx context.Context, port xbee.UART, cfg config.DeviceConfig, log *zap.Logger, opts []xbee.Option) (*xbee.Device, error) {
	wait := time.Duration(cfg.GuardTime)*time.Millisecond*2 + 3*time.Second
	ctx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()

	tr := xbee.NewTransparent(port, xbee.SleepDelay{}, cfg.CommandChar[0], cfg.GuardTime)
	if err := tr.EnterCommandMode(ctx); err != nil {
		return nil, err
	}
	if err := tr.SendCommand(ctx, "AP1"); err != nil {
		return nil, err
	}
	if err := tr.ExitCommandMode(ctx); err != nil {
		return nil, err
	}
	log.Info("module switched to API mode")
	return tr.ToAPI(opts...), nil
}
