// Command dht-display samples a DHT temperature/humidity sensor, shows the
// reading on an I2C character LCD and publishes events to MQTT.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/sweeney/dht-display/internal/app"
	"github.com/sweeney/dht-display/internal/config"
	"github.com/sweeney/dht-display/internal/debounce"
	"github.com/sweeney/dht-display/internal/dht"
	"github.com/sweeney/dht-display/internal/gpio"
	"github.com/sweeney/dht-display/internal/lcd"
	"github.com/sweeney/dht-display/internal/logger"
	"github.com/sweeney/dht-display/internal/mqtt"
	"github.com/sweeney/dht-display/internal/status"
	"github.com/sweeney/dht-display/internal/timer"
	"github.com/sweeney/dht-display/internal/web"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	log := logger.New(cfg.LogLevel)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatalw("fatal", "error", err)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	// Sensor timing is a busy wait; keep it on one OS thread.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	dataLine, err := gpio.NewDataLine(cfg.Chip, cfg.PinSensor)
	if err != nil {
		return fmt.Errorf("init sensor line: %w", err)
	}
	defer dataLine.Close()

	// Print reading mode
	if cfg.Once {
		return printReading(cfg, dataLine)
	}

	start := time.Now()
	clock := newTickClock(start)

	sensor, err := dht.NewSensor(dht.Config{
		Pin:     cfg.PinSensor,
		Variant: cfg.Variant(),
		Line:    dataLine,
		Counter: gpio.NewNanoCounter(),
		Clock:   clock,
	})
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}

	buttonReader, err := gpio.NewRealReader(cfg.Chip, cfg.PinButton)
	if err != nil {
		return fmt.Errorf("init button: %w", err)
	}
	defer buttonReader.Close()

	button, err := debounce.New(buttonReader, clock, cfg.DebounceMs())
	if err != nil {
		return fmt.Errorf("init debounce: %w", err)
	}
	button.OnPress(func() { log.Debugw("button pressed") })

	display, closeBus, err := openDisplay(cfg)
	if err != nil {
		return err
	}
	defer closeBus()

	application, err := app.New(
		app.Config{ResampleMs: cfg.ResampleMs(), BacklightMs: cfg.BacklightMs()},
		app.Deps{Sensor: sensor, Button: button, Display: display, Clock: clock},
	)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}

	// Initialize MQTT
	var publisher interface {
		mqtt.Publisher
		mqtt.ConnectionStatus
	} = discardPublisher{}
	if cfg.Broker != "" {
		p, err := mqtt.NewRealPublisher(mqtt.Options{Broker: cfg.Broker, Logger: log.SugaredLogger})
		if err != nil {
			return fmt.Errorf("init mqtt: %w", err)
		}
		publisher = p
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(start, status.Config{
		Sensor:      cfg.Variant().String(),
		PollMs:      cfg.Poll.Milliseconds(),
		DebounceMs:  cfg.Debounce.Milliseconds(),
		ResampleMs:  cfg.Resample.Milliseconds(),
		BacklightMs: cfg.Backlight.Milliseconds(),
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Warnw("failed to publish startup event", "error", err)
	} else {
		log.Infow("published startup event")
	}

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Errorw("http server error", "error", err)
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
		log.Infow("http status server listening", "addr", cfg.HTTPAddr)
	}

	var heartbeat *timer.Timer
	if cfg.Heartbeat > 0 {
		heartbeat, err = timer.New(clock, uint32(cfg.Heartbeat.Milliseconds()))
		if err != nil {
			return fmt.Errorf("init heartbeat: %w", err)
		}
	}

	log.Infow("started",
		"sensor", cfg.Variant(), "pin_sensor", cfg.PinSensor, "pin_button", cfg.PinButton,
		"poll", cfg.Poll, "debounce", cfg.Debounce, "resample", cfg.Resample,
		"backlight", cfg.Backlight, "broker", cfg.Broker, "heartbeat", cfg.Heartbeat)

	ticker := time.NewTicker(cfg.Poll)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(application, clock, publisher, publisher, tracker, heartbeat, log, ticker.C, sigCh)
}

// runLoop initializes the application and then ticks it on every poll until a
// signal arrives. The clock is advanced from the tick timestamps so that every
// component sees the same time within one tick.
func runLoop(application *app.App, clock *tickClock, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, heartbeat *timer.Timer, log *logger.Logger, tick <-chan time.Time, sig <-chan os.Signal) error {
	handle := func(events []app.Event) {
		for _, event := range events {
			logEvent(log, event)
			if !mqtt.Publishable(event.Type) {
				continue
			}
			if err := publisher.Publish(clock.Now(), event); err != nil {
				// Don't crash on publish failure
				log.Warnw("publish error", "event", event.Type, "error", err)
			}
		}
		if tracker != nil {
			tracker.Update(application.State(), application.Reading(), application.Counts())
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
		}
	}

	handle(application.Init())

	for {
		select {
		case s := <-sig:
			name := signalName(s)
			log.Infow("shutting down", "signal", name)
			event := mqtt.SystemEvent{
				Timestamp: clock.Now(),
				Event:     "SHUTDOWN",
				Reason:    name,
				Retained:  true,
			}
			if tracker != nil {
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", name)
			}
			if err := publisher.PublishSystem(event); err != nil {
				log.Warnw("failed to publish shutdown event", "error", err)
			} else {
				log.Infow("published shutdown event")
			}
			return nil

		case t := <-tick:
			clock.advance(t)
			handle(application.Tick())

			if heartbeat != nil && heartbeat.Check() {
				heartbeat.Check() // re-arm from now
				counts := application.Counts()
				log.Infow("heartbeat",
					"state", application.State(), "samples", counts.Samples,
					"sample_failures", counts.SampleFailures, "errors", counts.Errors)

				hbEvent := mqtt.SystemEvent{
					Timestamp: clock.Now(),
					Event:     "HEARTBEAT",
				}
				if tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
					}
					hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
				}
				if err := publisher.PublishSystem(hbEvent); err != nil {
					log.Warnw("heartbeat publish error", "error", err)
				}
			}
		}
	}
}

func logEvent(log *logger.Logger, e app.Event) {
	switch e.Type {
	case app.EventSample:
		log.Infow("sample",
			"temperature", e.Reading.Temperature, "humidity", e.Reading.Humidity,
			"unit", e.Reading.Unit, "state", e.State)
	case app.EventSampleFailed:
		log.Warnw("sample failed", "error", e.Err, "state", e.State)
	case app.EventInputError, app.EventDisplayError:
		log.Errorw("event", "type", e.Type, "error", e.Err, "state", e.State)
	case app.EventDisplayUpdate:
		log.Debugw("display updated", "state", e.State)
	default:
		log.Infow("event", "type", e.Type, "state", e.State)
	}
}

func openDisplay(cfg *config.Config) (*lcd.Display, func() error, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, fmt.Errorf("init periph host: %w", err)
	}
	bus, err := i2creg.Open(cfg.I2CBus)
	if err != nil {
		return nil, nil, fmt.Errorf("open i2c bus %q: %w", cfg.I2CBus, err)
	}
	dev := &i2c.Dev{Addr: uint16(cfg.LCDAddress), Bus: bus}
	display, err := lcd.New(dev, lcd.Config{Cols: cfg.LCDCols, Rows: cfg.LCDRows})
	if err != nil {
		bus.Close()
		return nil, nil, fmt.Errorf("init lcd at 0x%x: %w", cfg.LCDAddress, err)
	}
	return display, bus.Close, nil
}

func printReading(cfg *config.Config, line dht.Line) error {
	sensor, err := dht.NewSensor(dht.Config{
		Pin:     cfg.PinSensor,
		Variant: cfg.Variant(),
		Line:    line,
		Counter: gpio.NewNanoCounter(),
		Clock:   timer.NewSystemClock(),
	})
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	r, err := sensor.Sample(dht.Celsius)
	if err != nil {
		return fmt.Errorf("read sensor: %w", err)
	}
	fmt.Println(formatReading(r))
	return nil
}

func formatReading(r dht.Reading) string {
	return fmt.Sprintf("Temp: %.1f C (%.1f F), Hum: %.2f %%",
		r.Temperature, dht.CelsiusToFahrenheit(r.Temperature), r.Humidity)
}

func signalName(s os.Signal) string {
	switch s {
	case syscall.SIGINT:
		return "SIGINT"
	case syscall.SIGTERM:
		return "SIGTERM"
	}
	return "UNKNOWN"
}

// tickClock is the millisecond clock shared by the core. It only moves when
// the run loop receives a tick.
type tickClock struct {
	epoch time.Time
	now   time.Time
}

func newTickClock(epoch time.Time) *tickClock {
	return &tickClock{epoch: epoch, now: epoch}
}

func (c *tickClock) advance(t time.Time) {
	c.now = t
}

// NowMs returns milliseconds since the epoch, wrapping at 2^32.
func (c *tickClock) NowMs() uint32 {
	return uint32(c.now.Sub(c.epoch).Milliseconds())
}

// Now returns the wall time of the last tick.
func (c *tickClock) Now() time.Time {
	return c.now
}

// discardPublisher is used when no broker is configured.
type discardPublisher struct{}

func (discardPublisher) Publish(time.Time, app.Event) error { return nil }

func (discardPublisher) PublishSystem(mqtt.SystemEvent) error { return nil }

func (discardPublisher) Close() error { return nil }

func (discardPublisher) IsConnected() bool { return false }

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
