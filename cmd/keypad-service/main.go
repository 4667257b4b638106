package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"periph.io/x/conn/v3/physic"

	"keypad-service/internal/config"
	"keypad-service/internal/core"
	"keypad-service/internal/hardware"
	"keypad-service/internal/keymap"
	"keypad-service/internal/lighting"
	"keypad-service/internal/logger"
	"keypad-service/internal/messaging"
	"keypad-service/internal/oled"
	"keypad-service/internal/preview"
)

var (
	flagConfig   string
	flagLogLevel int
	flagDriver   string
	flagProfile  string
	flagRedis    string
	flagPreview  string
	flagTerminal bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "keypad-service",
		Short: "LED animation, input and layer selector engine for RP2040 macropads",
		Long: `keypad-service scans the macropad's key matrix and rotary encoder,
drives the WS2812 underglow and the optional status display, and forwards
key actions to the host over Redis.

Use --driver sim to run without a board and watch the LEDs with --preview
or --terminal.`,
		SilenceUsage: true,
		RunE:         run,
	}

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Board profile (numpad4x6, silent3x3)")
	rootCmd.Flags().IntVar(&flagLogLevel, "log", -1, "Service log level (0=NONE, 1=ERROR, 2=WARN, 3=INFO, 4=DEBUG)")
	rootCmd.Flags().StringVar(&flagDriver, "driver", "", "LED driver (spi, sim)")
	rootCmd.Flags().StringVar(&flagRedis, "redis", "", "Redis address, empty keeps the configured one")
	rootCmd.Flags().StringVar(&flagPreview, "preview", "", "Listen address for the websocket preview")
	rootCmd.Flags().BoolVar(&flagTerminal, "terminal", false, "Draw the LEDs in the terminal")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "keymap",
		Short: "Validate and print the keymap of the configured profile",
		RunE:  printKeymap,
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return nil, err
		}
	}
	if flagProfile != "" {
		if err := cfg.ApplyProfile(flagProfile); err != nil {
			return nil, err
		}
	}
	if flagLogLevel >= 0 {
		cfg.LogLevel = flagLogLevel
	}
	if flagDriver != "" {
		cfg.LED.Driver = flagDriver
	}
	if flagRedis != "" {
		cfg.Redis.Enabled = true
		cfg.Redis.Addr = flagRedis
	}
	if flagPreview != "" {
		cfg.Preview.Addr = flagPreview
	}
	if flagTerminal {
		cfg.Preview.Terminal = true
	}
	return cfg, cfg.Validate()
}

func newLogger(level logger.LogLevel) *logger.Logger {
	if os.Getenv("INVOCATION_ID") != "" {
		// Running under systemd, journald adds timestamps
		return logger.NewLogger(os.Stdout, level)
	}
	return logger.NewConsoleLogger(os.Stdout, level)
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	l := newLogger(logger.LogLevel(cfg.LogLevel))
	l.Infof("Starting keypad service...")

	km, err := keymap.ForProfile(cfg.Profile)
	if err != nil {
		return err
	}

	deps, closeHW, err := openHardware(cfg, l)
	if err != nil {
		return err
	}
	defer closeHW()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var hub *preview.Hub
	if cfg.Preview.Addr != "" {
		hub = preview.NewHub(l, nil)
		deps.Observers = append(deps.Observers, hub)
	}
	if cfg.Preview.Terminal {
		deps.Observers = append(deps.Observers, preview.NewTerminal(os.Stderr, 50*time.Millisecond))
	}

	system, err := core.NewKeypadSystem(cfg, km, deps, l)
	if err != nil {
		return err
	}

	if hub != nil {
		hub.SetControl(system.HandleControl)
		go hub.Run(ctx)
		go func() {
			if err := hub.Serve(ctx, cfg.Preview.Addr); err != nil {
				l.Errorf("Preview server failed: %v", err)
			}
		}()
	}

	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("failed to start system: %w", err)
	}
	l.Infof("System started successfully")

	err = system.Run(ctx)
	l.Infof("Received shutdown signal, shutting down...")
	system.Shutdown()
	l.Infof("Shutdown complete")

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openHardware builds the board drivers for the configured LED driver.
func openHardware(cfg *config.Config, l *logger.Logger) (core.Deps, func(), error) {
	var deps core.Deps
	var closers []func() error
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.Redis.Enabled {
		deps.Link = messaging.NewRedisClient(cfg.Redis.Addr, l)
	}

	if cfg.LED.Driver == config.DriverSim {
		deps.IO = hardware.NewSimIO()
		deps.Strip = lighting.NewMemoryStrip()
		return deps, closeAll, nil
	}

	deps.IO = hardware.NewLinuxHardwareIO(l.WithTag("Hardware"),
		cfg.Keys.InputDevice,
		cfg.Encoder.InputDevice,
		map[string]hardware.PinMapping{
			hardware.EncoderButtonPin: {Chip: cfg.Encoder.ButtonChip, Line: cfg.Encoder.ButtonLine},
		})

	freq := physic.Frequency(cfg.LED.SPIFreqKHz) * physic.KiloHertz
	strip, err := hardware.OpenNeoPixelStrip(cfg.LED.SPIPort, freq, cfg.LED.LimitVal)
	if err != nil {
		return deps, closeAll, fmt.Errorf("failed to open LED strip: %w", err)
	}
	closers = append(closers, strip.Close)
	deps.Strip = strip

	if cfg.OLED.Enabled {
		display, err := hardware.OpenSSD1306(cfg.OLED.Bus, cfg.OLED.Width, cfg.OLED.Height)
		if err != nil {
			l.Warnf("Status display unavailable: %v", err)
		} else {
			closers = append(closers, display.Close)
			deps.Display = oled.Display(display)
		}
	}

	return deps, closeAll, nil
}

func printKeymap(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		var err error
		if cfg, err = config.Load(flagConfig); err != nil {
			return err
		}
	}
	if flagProfile != "" {
		if err := cfg.ApplyProfile(flagProfile); err != nil {
			return err
		}
	}

	km, err := keymap.ForProfile(cfg.Profile)
	if err != nil {
		return err
	}
	if err := km.Validate(); err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), km.Format())
	return nil
}
