package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"keypad-service/internal/types"
)

const (
	ProfileNumpad4x6 = "numpad4x6"
	ProfileSilent3x3 = "silent3x3"

	DriverSPI = "spi"
	DriverSim = "sim"
)

type Device struct {
	VendorID     uint16 `yaml:"vendor_id"`
	ProductID    uint16 `yaml:"product_id"`
	Version      uint16 `yaml:"version"`
	Manufacturer string `yaml:"manufacturer"`
	Product      string `yaml:"product"`
	Serial       string `yaml:"serial"`
}

type Encoder struct {
	InputDevice string `yaml:"input_device"` // rotary-encoder evdev node
	ButtonChip  string `yaml:"button_chip"`
	ButtonLine  int    `yaml:"button_line"`
	DebounceMs  uint32 `yaml:"debounce_ms"`
}

type Keys struct {
	InputDevice string   `yaml:"input_device"`    // matrix-keypad evdev node
	Codes       []uint16 `yaml:"codes,omitempty"` // row-major, one per matrix position
}

type LED struct {
	Driver     string `yaml:"driver"` // "spi" | "sim"
	SPIPort    string `yaml:"spi_port"`
	SPIFreqKHz int    `yaml:"spi_freq_khz"`
	LimitVal   uint8  `yaml:"limit_val"`
	DefaultHue uint8  `yaml:"default_hue"`
	DefaultSat uint8  `yaml:"default_sat"`
	DefaultVal uint8  `yaml:"default_val"`
	MinVal     uint8  `yaml:"min_val"`
	ValStep    uint8  `yaml:"val_step"`
}

type Animation struct {
	Mode            string `yaml:"mode"`
	FrameIntervalMs uint32 `yaml:"frame_interval_ms"`
	WanderPeriodMs  uint32 `yaml:"wander_period_ms"`
	BreathPeriodMs  uint32 `yaml:"breath_period_ms"`
	IndicatorHoldMs uint32 `yaml:"indicator_hold_ms"`
	DotHoldMs       uint32 `yaml:"dot_hold_ms"`
	RainbowStepMs   uint32 `yaml:"rainbow_step_ms"`
	SleepTimeoutMs  uint32 `yaml:"sleep_timeout_ms"`
}

type OLED struct {
	Enabled   bool   `yaml:"enabled"`
	Bus       string `yaml:"bus"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	TimeoutMs uint32 `yaml:"timeout_ms"`
	Title     string `yaml:"title"`
}

type Redis struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type Preview struct {
	Addr     string `yaml:"addr"` // empty disables the websocket server
	Terminal bool   `yaml:"terminal"`
}

type Config struct {
	Profile        string `yaml:"profile"`
	LogLevel       int    `yaml:"log_level"`
	ScanIntervalMs uint32 `yaml:"scan_interval_ms"`

	Device    Device    `yaml:"device"`
	Encoder   Encoder   `yaml:"encoder"`
	Keys      Keys      `yaml:"keys"`
	LED       LED       `yaml:"led"`
	Animation Animation `yaml:"animation"`
	OLED      OLED      `yaml:"oled"`
	Redis     Redis     `yaml:"redis"`
	Preview   Preview   `yaml:"preview,omitempty"`
}

// Default returns the handwired 4x6 numpad configuration.
func Default() *Config {
	return &Config{
		Profile:        ProfileNumpad4x6,
		LogLevel:       3,
		ScanIntervalMs: 1,
		Device: Device{
			VendorID:     0xFEED,
			ProductID:    0x0002,
			Version:      0x0001,
			Manufacturer: "Sina",
			Product:      "rp2040_handwired_4x6",
			Serial:       "SINA-RP2040-4X6-01",
		},
		Encoder: Encoder{
			InputDevice: "/dev/input/by-path/platform-rotary-encoder-event",
			ButtonChip:  "gpiochip0",
			ButtonLine:  12,
			DebounceMs:  10,
		},
		Keys: Keys{
			InputDevice: "/dev/input/by-path/platform-matrix-keypad-event",
		},
		LED: LED{
			Driver:     DriverSPI,
			SPIFreqKHz: 2500,
			LimitVal:   80,
			DefaultHue: 149,
			DefaultSat: 255,
			DefaultVal: 80,
			MinVal:     8,
			ValStep:    8,
		},
		Animation: Animation{
			Mode:            "wander",
			FrameIntervalMs: 20,
			WanderPeriodMs:  120,
			BreathPeriodMs:  2500,
			IndicatorHoldMs: 1200,
			DotHoldMs:       800,
			RainbowStepMs:   12,
			SleepTimeoutMs:  600000,
		},
		OLED: OLED{
			Bus:       "",
			Width:     128,
			Height:    64,
			TimeoutMs: 60000,
			Title:     "Silent 3x3",
		},
		Redis: Redis{
			Enabled: true,
			Addr:    "127.0.0.1:6379",
		},
	}
}

// ApplyProfile switches to a profile and adopts its board defaults.
func (c *Config) ApplyProfile(profile string) error {
	switch profile {
	case ProfileNumpad4x6:
		c.LED.LimitVal = 80
		c.OLED.Enabled = false
	case ProfileSilent3x3:
		c.LED.LimitVal = 150
		c.OLED.Enabled = true
	default:
		return fmt.Errorf("unknown profile %q", profile)
	}
	c.Profile = profile
	return nil
}

// Load reads a YAML file over the defaults. Profile defaults are applied
// before the file's own values so explicit settings win.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var probe struct {
		Profile string `yaml:"profile"`
	}
	if err := yaml.Unmarshal(b, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	c := Default()
	if probe.Profile != "" {
		if err := c.ApplyProfile(probe.Profile); err != nil {
			return nil, err
		}
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return c, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate checks the parts of the configuration that do not depend on the keymap.
func (c *Config) Validate() error {
	switch c.Profile {
	case ProfileNumpad4x6, ProfileSilent3x3:
	default:
		return fmt.Errorf("unknown profile %q", c.Profile)
	}
	if c.LogLevel < 0 || c.LogLevel > 4 {
		return fmt.Errorf("log_level %d out of range 0..4", c.LogLevel)
	}
	if c.ScanIntervalMs == 0 {
		return fmt.Errorf("scan_interval_ms must be positive")
	}
	switch c.LED.Driver {
	case DriverSPI, DriverSim:
	default:
		return fmt.Errorf("unknown led driver %q", c.LED.Driver)
	}
	if c.LED.DefaultVal < c.LED.MinVal {
		return fmt.Errorf("led default_val %d below min_val %d", c.LED.DefaultVal, c.LED.MinVal)
	}
	if c.LED.ValStep == 0 {
		return fmt.Errorf("led val_step must be positive")
	}
	a := c.Animation
	if _, err := types.ParseRenderMode(a.Mode); err != nil {
		return err
	}
	if a.FrameIntervalMs == 0 || a.BreathPeriodMs == 0 || a.RainbowStepMs == 0 {
		return fmt.Errorf("animation intervals must be positive")
	}
	if a.WanderPeriodMs < 20 || a.WanderPeriodMs > 1000 {
		return fmt.Errorf("wander_period_ms %d out of range 20..1000", a.WanderPeriodMs)
	}
	if a.IndicatorHoldMs == 0 || a.DotHoldMs == 0 {
		return fmt.Errorf("overlay hold times must be positive")
	}
	if c.OLED.Enabled && (c.OLED.Width <= 0 || c.OLED.Height <= 0) {
		return fmt.Errorf("oled size %dx%d invalid", c.OLED.Width, c.OLED.Height)
	}
	return nil
}
