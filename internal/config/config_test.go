package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultIsValid(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, uint16(0xFEED), c.Device.VendorID)
	assert.Equal(t, uint8(149), c.LED.DefaultHue)
	assert.Equal(t, uint8(80), c.LED.LimitVal)
	assert.Equal(t, uint32(10), c.Encoder.DebounceMs)
}

func TestLoadAppliesProfileThenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypad.yaml")
	data := []byte(`
profile: silent3x3
led:
  driver: sim
  default_val: 40
animation:
  wander_period_ms: 200
device:
  vendor_id: 0x1209
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	c, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, c.Validate())

	assert.Equal(t, ProfileSilent3x3, c.Profile)
	assert.True(t, c.OLED.Enabled)
	assert.Equal(t, uint8(150), c.LED.LimitVal)
	assert.Equal(t, DriverSim, c.LED.Driver)
	assert.Equal(t, uint8(40), c.LED.DefaultVal)
	assert.Equal(t, uint8(255), c.LED.DefaultSat, "unset fields keep defaults")
	assert.Equal(t, uint32(200), c.Animation.WanderPeriodMs)
	assert.Equal(t, uint16(0x1209), c.Device.VendorID)
}

func TestLoadRejectsUnknownProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("profile: qwerty\n"), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestProfilesShareDeviceIdentity(t *testing.T) {
	want := Default().Device
	for _, profile := range []string{ProfileNumpad4x6, ProfileSilent3x3} {
		c := Default()
		require.NoError(t, c.ApplyProfile(profile))
		assert.Equal(t, want, c.Device, profile)
	}
	assert.Equal(t, uint16(0x0002), want.ProductID)
	assert.Equal(t, "SINA-RP2040-4X6-01", want.Serial)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keypad.yaml")
	c := Default()
	require.NoError(t, c.ApplyProfile(ProfileSilent3x3))
	require.NoError(t, Save(path, c))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.LED.Driver = "pwm" }},
		{"wander too fast", func(c *Config) { c.Animation.WanderPeriodMs = 10 }},
		{"wander too slow", func(c *Config) { c.Animation.WanderPeriodMs = 1001 }},
		{"zero frame interval", func(c *Config) { c.Animation.FrameIntervalMs = 0 }},
		{"default below min", func(c *Config) { c.LED.DefaultVal = 4 }},
		{"unknown mode", func(c *Config) { c.Animation.Mode = "sparkle" }},
		{"log level", func(c *Config) { c.LogLevel = 7 }},
		{"oled size", func(c *Config) { c.OLED.Enabled = true; c.OLED.Width = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
