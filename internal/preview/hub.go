package preview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"keypad-service/internal/logger"
)

type Pixel struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Snapshot is the externally visible keypad state after a render.
type Snapshot struct {
	Layer        string   `json:"layer"`
	Mode         string   `json:"mode"`
	Enabled      bool     `json:"enabled"`
	Asleep       bool     `json:"asleep"`
	Hue          uint8    `json:"hue"`
	Sat          uint8    `json:"sat"`
	ValMax       uint8    `json:"val_max"`
	WanderPeriod uint32   `json:"wander_period_ms"`
	LEDs         []Pixel  `json:"leds"`
	OLED         []string `json:"oled,omitempty"`
}

// ControlFunc applies a command in the same syntax as the Redis command list.
type ControlFunc func(value string) error

// Hub streams snapshots to websocket clients and accepts control messages.
type Hub struct {
	mu        sync.RWMutex
	logger    *logger.Logger
	control   ControlFunc
	clients   map[*websocket.Conn]bool
	last      Snapshot
	frameID   uint64
	startTime time.Time
	pending   chan struct{}
	upgrader  websocket.Upgrader
}

func NewHub(l *logger.Logger, control ControlFunc) *Hub {
	return &Hub{
		logger:    l.WithTag("Preview"),
		control:   control,
		clients:   map[*websocket.Conn]bool{},
		startTime: time.Now(),
		pending:   make(chan struct{}, 1),
		upgrader:  websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// SetControl installs the handler for control messages.
func (h *Hub) SetControl(control ControlFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.control = control
}

// Publish stores a snapshot and wakes the broadcaster. It never blocks.
func (h *Hub) Publish(s Snapshot) {
	h.mu.Lock()
	h.last = s
	h.frameID++
	h.mu.Unlock()

	select {
	case h.pending <- struct{}{}:
	default:
	}
}

// Run broadcasts published snapshots until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				c.Close()
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return
		case <-h.pending:
			h.broadcast()
		}
	}
}

type frame struct {
	T       int64    `json:"t"`
	FrameID uint64   `json:"frame_id"`
	State   Snapshot `json:"state"`
}

func (h *Hub) encodeLast() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	b, _ := json.Marshal(frame{T: time.Now().UnixNano(), FrameID: h.frameID, State: h.last})
	return b
}

func (h *Hub) broadcast() {
	b := h.encodeLast()

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.logger.Debugf("Dropping preview client: %v", err)
			c.Close()
			delete(h.clients, c)
		}
	}
}

func (h *Hub) HandleFramesWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	b := h.encodeLast()
	h.mu.Lock()
	h.clients[conn] = true
	conn.SetWriteDeadline(time.Now().Add(200 * time.Millisecond))
	conn.WriteMessage(websocket.TextMessage, b)
	h.mu.Unlock()

	go func() {
		defer func() {
			h.mu.Lock()
			delete(h.clients, conn)
			h.mu.Unlock()
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

type controlMessage struct {
	Command string `json:"command"`
}

type controlReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

// HandleControlWS accepts {"command": "..."} messages and replies with the result.
func (h *Hub) HandleControlWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg controlMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		h.mu.RLock()
		control := h.control
		h.mu.RUnlock()

		reply := controlReply{OK: true}
		if control == nil {
			reply = controlReply{Error: "control disabled"}
		} else if err := control(msg.Command); err != nil {
			reply = controlReply{Error: err.Error()}
		}
		if err := conn.WriteJSON(reply); err != nil {
			return
		}
	}
}

func (h *Hub) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	resp := map[string]any{
		"frame_id": h.frameID,
		"uptime_s": time.Since(h.startTime).Seconds(),
		"clients":  len(h.clients),
		"layer":    h.last.Layer,
		"enabled":  h.last.Enabled,
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws/frames", h.HandleFramesWS)
	mux.HandleFunc("/ws/control", h.HandleControlWS)
	mux.HandleFunc("/health", h.HandleHealth)
	return mux
}

// Serve runs the preview HTTP server until ctx is done.
func (h *Hub) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: h.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	h.logger.Infof("Preview server listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
