package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/librescoot/librefsm"

	"keypad-service/internal/config"
	"keypad-service/internal/hardware"
	"keypad-service/internal/input"
	"keypad-service/internal/keymap"
	"keypad-service/internal/lighting"
	"keypad-service/internal/logger"
	"keypad-service/internal/messaging"
	"keypad-service/internal/oled"
	"keypad-service/internal/preview"
	"keypad-service/internal/types"
)

const queueSize = 64

// firstKeyCode is the evdev code the matrix driver assigns to row 0, col 0
// when no explicit code table is configured.
const firstKeyCode = 0x2c0

// Deps are the outer surfaces a KeypadSystem drives. Link, Display and
// Clock are optional.
type Deps struct {
	IO        HardwareIO
	Strip     lighting.Strip
	Link      MessagingClient
	Display   oled.Display
	Clock     Clock
	Observers []FrameObserver
}

type KeypadSystem struct {
	cfg       *config.Config
	keymap    *keymap.Keymap
	logger    *logger.Logger
	io        HardwareIO
	strip     lighting.Strip
	link      MessagingClient
	display   oled.Display
	clock     Clock
	observers []FrameObserver

	// Owned by the scan loop
	light     *lighting.State
	renderer  *lighting.Renderer
	button    *input.Button
	layers    keymap.LayerStack
	status    *oled.Status
	oledLines []string
	held      map[int]keymap.Keycode
	bootHeld  map[int]bool
	pending   types.Layer
	lastInput types.Timestamp
	pinFailed bool

	keyIndex    map[uint16]int
	machine     *librefsm.Machine
	queue       chan func()
	mu          sync.RWMutex
	snapshot    preview.Snapshot
	initialized bool
}

func NewKeypadSystem(cfg *config.Config, km *keymap.Keymap, deps Deps, l *logger.Logger) (*KeypadSystem, error) {
	if deps.IO == nil || deps.Strip == nil {
		return nil, fmt.Errorf("hardware io and strip are required")
	}
	if err := km.Validate(); err != nil {
		return nil, fmt.Errorf("invalid keymap: %w", err)
	}

	mode, err := types.ParseRenderMode(cfg.Animation.Mode)
	if err != nil {
		return nil, err
	}

	keyIndex, err := buildKeyIndex(cfg.Keys.Codes, km.Keys())
	if err != nil {
		return nil, err
	}

	clock := deps.Clock
	if clock == nil {
		clock = NewSystemClock()
	}

	v := &KeypadSystem{
		cfg:       cfg,
		keymap:    km,
		logger:    l,
		io:        deps.IO,
		strip:     deps.Strip,
		link:      deps.Link,
		display:   deps.Display,
		clock:     clock,
		observers: deps.Observers,
		light: lighting.NewState(lighting.Settings{
			Mode:           mode,
			Hue:            cfg.LED.DefaultHue,
			Sat:            cfg.LED.DefaultSat,
			ValMax:         cfg.LED.DefaultVal,
			ValMin:         cfg.LED.MinVal,
			ValStep:        cfg.LED.ValStep,
			WanderPeriodMs: cfg.Animation.WanderPeriodMs,
			IndicatorHold:  cfg.Animation.IndicatorHoldMs,
			DotHold:        cfg.Animation.DotHoldMs,
		}),
		renderer: lighting.NewRenderer(deps.Strip, lighting.Timing{
			FrameInterval: cfg.Animation.FrameIntervalMs,
			BreathPeriod:  cfg.Animation.BreathPeriodMs,
			RainbowStep:   cfg.Animation.RainbowStepMs,
		}),
		button:   input.NewButton(cfg.Encoder.DebounceMs),
		layers:   keymap.NewLayerStack(),
		held:     make(map[int]keymap.Keycode),
		bootHeld: make(map[int]bool),
		keyIndex: keyIndex,
		queue:    make(chan func(), queueSize),
	}

	if cfg.OLED.Enabled {
		v.status = oled.NewStatus(cfg.OLED.Title, cfg.OLED.TimeoutMs)
		if v.display == nil {
			v.display = discardDisplay{}
		}
	}

	return v, nil
}

func buildKeyIndex(codes []uint16, keys int) (map[uint16]int, error) {
	index := make(map[uint16]int, keys)
	if len(codes) == 0 {
		for i := 0; i < keys; i++ {
			index[uint16(firstKeyCode+i)] = i
		}
		return index, nil
	}
	if len(codes) != keys {
		return nil, fmt.Errorf("keymap has %d keys but %d key codes are configured", keys, len(codes))
	}
	for i, code := range codes {
		if _, dup := index[code]; dup {
			return nil, fmt.Errorf("key code %d configured twice", code)
		}
		index[code] = i
	}
	return index, nil
}

// usesSelector reports whether the board drives layers through the encoder
// selector state machine.
func (v *KeypadSystem) usesSelector() bool {
	return v.cfg.Profile == config.ProfileSilent3x3
}

func (v *KeypadSystem) Start(ctx context.Context) error {
	v.logger.Infof("Starting keypad system (profile %s)", v.cfg.Profile)

	if v.link != nil {
		v.link.SetCallbacks(messaging.Callbacks{
			CommandCallback: v.handleRemoteCommand,
			LayerCallback:   v.handleRemoteLayer,
			SettingCallback: v.handleSetting,
		})
		if err := v.link.Connect(); err != nil {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}

		settings, err := v.link.LoadSettings()
		if err != nil {
			v.logger.Warnf("Failed to load settings from Redis: %v", err)
		}
		for key, value := range settings {
			if err := v.handleSetting(key, value); err != nil {
				v.logger.Warnf("Ignoring setting %s=%q: %v", key, value, err)
			}
		}
	}

	v.io.RegisterKeyCallback(v.handleKeyInput)
	v.io.RegisterEncoderCallback(v.handleEncoderInput)
	if err := v.io.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize hardware: %w", err)
	}
	for _, code := range v.io.HeldKeys() {
		if idx, ok := v.keyIndex[code]; ok {
			v.logger.Infof("Key %d held at boot, ignoring until released", code)
			v.bootHeld[idx] = true
		}
	}

	if v.usesSelector() {
		if err := v.initFSM(ctx); err != nil {
			return fmt.Errorf("failed to start layer selector: %w", err)
		}
	}

	v.OnPostInit()

	if v.link != nil {
		if err := v.link.StartListening(); err != nil {
			return fmt.Errorf("failed to start Redis listeners: %w", err)
		}
		if err := v.link.PublishDevice(v.cfg.Device); err != nil {
			v.logger.Warnf("Failed to publish device descriptor: %v", err)
		}
		v.publishState(v.stateFields())
	}

	v.initialized = true
	v.logger.Infof("Keypad system started")
	return nil
}

// Run scans inputs and renders until ctx is cancelled.
func (v *KeypadSystem) Run(ctx context.Context) error {
	interval := time.Duration(v.cfg.ScanIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			v.Tick()
		}
	}
}

// Tick runs one scan cycle: queued input, the scan hook, a frame render and
// the display refresh.
func (v *KeypadSystem) Tick() {
	v.drainQueue()
	v.OnScanTick()
	v.render(false)
	v.OnOledRender()
}

func (v *KeypadSystem) drainQueue() {
	for {
		select {
		case fn := <-v.queue:
			fn()
		default:
			return
		}
	}
}

// post hands work to the scan loop. Input and remote callbacks run on their
// own goroutines and never touch keypad state directly.
func (v *KeypadSystem) post(fn func()) error {
	select {
	case v.queue <- fn:
		return nil
	default:
		return fmt.Errorf("input queue full")
	}
}

func (v *KeypadSystem) handleKeyInput(code uint16, pressed bool) {
	idx, ok := v.keyIndex[code]
	if !ok {
		v.logger.Debugf("Ignoring unmapped key code %d", code)
		return
	}
	row, col := idx/v.keymap.Cols, idx%v.keymap.Cols
	if err := v.post(func() { v.processKeyEvent(row, col, pressed) }); err != nil {
		v.logger.Warnf("Dropping key event %d: %v", code, err)
	}
}

func (v *KeypadSystem) handleEncoderInput(index int, clockwise bool) {
	if err := v.post(func() { v.OnEncoderTick(index, clockwise) }); err != nil {
		v.logger.Warnf("Dropping encoder step: %v", err)
	}
}

// render draws a frame, publishing a snapshot when one was written.
func (v *KeypadSystem) render(force bool) {
	frame, ok, err := v.renderer.Render(v.light, v.clock.Now(), force)
	if err != nil {
		v.logger.Warnf("Failed to flush LED frame: %v", err)
	}
	if ok {
		v.publishSnapshot(frame)
	}
}

func (v *KeypadSystem) publishSnapshot(frame lighting.Frame) {
	s := preview.Snapshot{
		Layer:        v.layers.Highest().String(),
		Mode:         v.light.Mode.String(),
		Enabled:      v.light.Enabled,
		Asleep:       v.light.Asleep,
		Hue:          v.light.Hue,
		Sat:          v.light.Sat,
		ValMax:       v.light.ValMax,
		WanderPeriod: v.light.WanderPeriod,
		LEDs:         make([]preview.Pixel, len(frame)),
		OLED:         v.oledLines,
	}
	for i, led := range frame {
		r, g, b := lighting.RGB(led.Limit(v.cfg.LED.LimitVal))
		s.LEDs[i] = preview.Pixel{R: r, G: g, B: b}
	}

	v.mu.Lock()
	v.snapshot = s
	v.mu.Unlock()

	for _, o := range v.observers {
		o.Publish(s)
	}
}

// Snapshot returns the state published with the last rendered frame.
func (v *KeypadSystem) Snapshot() preview.Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.snapshot
}

func (v *KeypadSystem) Shutdown() {
	v.logger.Infof("Shutting down keypad system")

	if err := v.strip.Disable(); err != nil {
		v.logger.Warnf("Failed to disable LED strip: %v", err)
	}
	if v.display != nil {
		if err := v.display.Blank(); err != nil {
			v.logger.Warnf("Failed to blank display: %v", err)
		}
	}
	if v.link != nil {
		if err := v.link.Close(); err != nil {
			v.logger.Warnf("Failed to close Redis connection: %v", err)
		}
	}
	v.io.Cleanup()
}

type discardDisplay struct{}

func (discardDisplay) Show([]string) error { return nil }
func (discardDisplay) Blank() error        { return nil }

// SystemClock counts milliseconds since it was created.
type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Now() types.Timestamp {
	return types.Timestamp(time.Since(c.start).Milliseconds())
}

var _ HardwareIO = (*hardware.LinuxHardwareIO)(nil)
var _ MessagingClient = (*messaging.RedisClient)(nil)
