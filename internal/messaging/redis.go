package messaging

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"keypad-service/internal/config"
	"keypad-service/internal/logger"
	"keypad-service/internal/types"

	"github.com/redis/go-redis/v9"
)

// Redis keys
const (
	StateHash      = "keypad"
	DeviceHash     = "keypad:device"
	OledHash       = "keypad:oled"
	HIDList        = "keypad:hid"
	CommandList    = "keypad:command"
	SettingsHash   = "settings"
	SettingsPrefix = "keypad."
)

type Callbacks struct {
	CommandCallback func(types.Command) error
	LayerCallback   func(types.Layer) error
	SettingCallback func(key, value string) error // key without the "keypad." prefix
}

// RemoteCommand is a parsed entry from the command list.
type RemoteCommand struct {
	Command types.Command
	Layer   types.Layer
	IsLayer bool
}

// ParseRemoteCommand accepts a command name such as "hue-up" or
// "layer:<name|index>".
func ParseRemoteCommand(value string) (RemoteCommand, error) {
	value = strings.TrimSpace(value)
	if rest, ok := strings.CutPrefix(value, "layer:"); ok {
		l, err := types.ParseLayer(rest)
		if err != nil {
			return RemoteCommand{}, err
		}
		return RemoteCommand{Layer: l, IsLayer: true}, nil
	}
	cmd, err := types.ParseCommand(value)
	if err != nil {
		return RemoteCommand{}, err
	}
	return RemoteCommand{Command: cmd}, nil
}

type RedisClient struct {
	client    *redis.Client
	callbacks Callbacks
	logger    *logger.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.RWMutex
}

func NewRedisClient(addr string, l *logger.Logger) *RedisClient {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   0,
		}),
		logger: l.WithTag("Redis"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetCallbacks installs the handlers used by the listeners.
func (r *RedisClient) SetCallbacks(callbacks Callbacks) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks = callbacks
}

func (r *RedisClient) getCallbacks() Callbacks {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.callbacks
}

func (r *RedisClient) Connect() error {
	r.logger.Infof("Attempting to connect to Redis at %s", r.client.Options().Addr)

	if err := r.client.Ping(r.ctx).Err(); err != nil {
		r.logger.Infof("Redis connection failed: %v", err)
		return fmt.Errorf("Redis connection failed: %w", err)
	}
	r.logger.Infof("Successfully connected to Redis")
	return nil
}

// StartListening starts all Redis listeners after system initialization is complete
func (r *RedisClient) StartListening() error {
	r.logger.Infof("Starting Redis listeners")

	pubsub := r.client.Subscribe(r.ctx, SettingsHash)
	r.logger.Infof("Subscribed to Redis channels: %s", SettingsHash)

	r.wg.Add(2)
	go r.redisListener(pubsub)
	go r.listCommandListener(CommandList, r.handleCommand)

	return nil
}

func (r *RedisClient) listCommandListener(key string, handler func(string) error) {
	defer r.wg.Done()
	r.logger.Infof("Starting list command listener for %s", key)

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting %s listener", key)
			return
		default:
			// Use BRPOP with a short timeout to allow periodic context cancellation checks
			result, err := r.client.BRPop(r.ctx, 5*time.Second, key).Result()
			if err != nil {
				if err == redis.Nil {
					continue
				}
				if err == context.Canceled {
					r.logger.Infof("Context cancelled, exiting %s listener", key)
					return
				}
				r.logger.Infof("Error reading from %s list: %v", key, err)
				time.Sleep(time.Second)
				continue
			}

			if len(result) >= 2 { // BRPOP returns [key, value]
				value := result[1]
				r.logger.Debugf("Received command from %s: %s", key, value)
				if err := handler(value); err != nil {
					r.logger.Warnf("Error handling %s command: %v", key, err)
				}
			}
		}
	}
}

func (r *RedisClient) handleCommand(value string) error {
	rc, err := ParseRemoteCommand(value)
	if err != nil {
		return err
	}

	cb := r.getCallbacks()
	if rc.IsLayer {
		if cb.LayerCallback == nil {
			return nil
		}
		return cb.LayerCallback(rc.Layer)
	}
	if cb.CommandCallback == nil {
		return nil
	}
	return cb.CommandCallback(rc.Command)
}

func (r *RedisClient) redisListener(pubsub *redis.PubSub) {
	defer r.wg.Done()
	defer pubsub.Close()

	r.logger.Infof("Starting Redis message listener")
	channel := pubsub.Channel()

	for {
		select {
		case <-r.ctx.Done():
			r.logger.Infof("Context cancelled, exiting listener")
			return
		case msg, ok := <-channel:
			if !ok || msg == nil {
				r.logger.Warnf("Redis channel closed, settings updates stopped")
				return
			}

			r.logger.Debugf("Received Redis message: channel=%s payload=%s", msg.Channel, msg.Payload)

			if msg.Channel == SettingsHash && strings.HasPrefix(msg.Payload, SettingsPrefix) {
				r.handleSettingUpdate(msg.Payload)
			}
		}
	}
}

func (r *RedisClient) handleSettingUpdate(field string) {
	cb := r.getCallbacks()
	if cb.SettingCallback == nil {
		return
	}
	value, err := r.client.HGet(r.ctx, SettingsHash, field).Result()
	if err != nil {
		r.logger.Warnf("Failed to read setting %s: %v", field, err)
		return
	}
	r.logger.Infof("Processing settings update: %s=%s", field, value)
	if err := cb.SettingCallback(strings.TrimPrefix(field, SettingsPrefix), value); err != nil {
		r.logger.Warnf("Failed to apply setting %s: %v", field, err)
	}
}

// LoadSettings reads every keypad.* field from the settings hash.
func (r *RedisClient) LoadSettings() (map[string]string, error) {
	all, err := r.client.HGetAll(r.ctx, SettingsHash).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	settings := make(map[string]string)
	for k, v := range all {
		if key, ok := strings.CutPrefix(k, SettingsPrefix); ok {
			settings[key] = v
		}
	}
	return settings, nil
}

// SendHostAction queues a key or scroll action for the host.
func (r *RedisClient) SendHostAction(action string) error {
	r.logger.Debugf("Host action: %s", action)
	if err := r.client.LPush(r.ctx, HIDList, action).Err(); err != nil {
		return fmt.Errorf("failed to push host action: %w", err)
	}
	return nil
}

// PublishState writes changed fields to the state hash and announces each
// on the state channel.
func (r *RedisClient) PublishState(fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	pipe := r.client.TxPipeline()
	for field, value := range fields {
		pipe.HSet(r.ctx, StateHash, field, value)
		pipe.Publish(r.ctx, StateHash, field)
	}
	if _, err := pipe.Exec(r.ctx); err != nil {
		r.logger.Warnf("Failed to publish keypad state: %v", err)
		return err
	}
	return nil
}

func (r *RedisClient) PublishOled(lines []string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(r.ctx, OledHash)
	values := make([]interface{}, 0, len(lines)*2)
	for i, line := range lines {
		values = append(values, "line"+strconv.Itoa(i), line)
	}
	if len(values) > 0 {
		pipe.HSet(r.ctx, OledHash, values...)
	}
	pipe.Publish(r.ctx, StateHash, "oled")
	if _, err := pipe.Exec(r.ctx); err != nil {
		return fmt.Errorf("failed to publish oled text: %w", err)
	}
	return nil
}

// PublishDevice records the configured USB identity.
func (r *RedisClient) PublishDevice(d config.Device) error {
	err := r.client.HSet(r.ctx, DeviceHash,
		"vendor-id", fmt.Sprintf("0x%04X", d.VendorID),
		"product-id", fmt.Sprintf("0x%04X", d.ProductID),
		"version", fmt.Sprintf("0x%04X", d.Version),
		"manufacturer", d.Manufacturer,
		"product", d.Product,
		"serial", d.Serial,
	).Err()
	if err != nil {
		return fmt.Errorf("failed to publish device identity: %w", err)
	}
	return nil
}

func (r *RedisClient) Close() error {
	r.cancel()
	r.wg.Wait()
	return r.client.Close()
}
