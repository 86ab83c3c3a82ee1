package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	werrors "github.com/vango-dev/weave/internal/errors"
	"github.com/vango-dev/weave/pkg/protocol"
	"github.com/vango-dev/weave/pkg/reactive"
	"github.com/vango-dev/weave/pkg/render"
	"github.com/vango-dev/weave/pkg/vdom"
)

// Config configures a Hub.
type Config struct {
	// SendBuffer is the number of frames queued per client before it is
	// dropped as slow. Minimum 2 (hello and snapshot).
	SendBuffer int

	// HistorySize is the number of recent frames kept for resuming clients.
	HistorySize int

	// WriteTimeout bounds each frame write.
	WriteTimeout time.Duration

	// ReadTimeout is how long a client may stay silent, pongs included.
	ReadTimeout time.Duration

	// PingInterval is the WebSocket ping period. Must be below ReadTimeout.
	PingInterval time.Duration

	// MaxMessageSize bounds inbound messages.
	MaxMessageSize int64

	// CheckOrigin validates the Origin header. nil accepts same-origin only.
	CheckOrigin func(r *http.Request) bool
}

// DefaultConfig returns a Config with defaults.
func DefaultConfig() Config {
	return Config{
		SendBuffer:     64,
		HistorySize:    100,
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 64 * 1024,
	}
}

// Observer receives hub events. Methods may be called from any goroutine.
type Observer interface {
	ClientConnected(id string)
	ClientDisconnected(id, reason string)
	FrameSent(bytes int)
}

type nopObserver struct{}

func (nopObserver) ClientConnected(string)            {}
func (nopObserver) ClientDisconnected(string, string) {}
func (nopObserver) FrameSent(int)                     {}

// Option configures a Hub.
type Option func(*Hub)

// WithConfig replaces the hub configuration. Zero fields keep defaults.
func WithConfig(cfg Config) Option {
	return func(h *Hub) {
		d := DefaultConfig()
		if cfg.SendBuffer <= 0 {
			cfg.SendBuffer = d.SendBuffer
		}
		cfg.SendBuffer = max(cfg.SendBuffer, 2)
		if cfg.HistorySize <= 0 {
			cfg.HistorySize = d.HistorySize
		}
		if cfg.WriteTimeout <= 0 {
			cfg.WriteTimeout = d.WriteTimeout
		}
		if cfg.ReadTimeout <= 0 {
			cfg.ReadTimeout = d.ReadTimeout
		}
		if cfg.PingInterval <= 0 {
			cfg.PingInterval = d.PingInterval
		}
		if cfg.MaxMessageSize <= 0 {
			cfg.MaxMessageSize = d.MaxMessageSize
		}
		h.config = cfg
	}
}

// WithLogger sets the hub logger. Default: the runtime's logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Hub) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithObserver registers an Observer.
func WithObserver(o Observer) Option {
	return func(h *Hub) {
		if o != nil {
			h.observer = o
		}
	}
}

// WithLimits sets the decoding limits for inbound frames.
func WithLimits(l protocol.Limits) Option {
	return func(h *Hub) {
		h.limits = l
	}
}

// Hub broadcasts a render root's edit scripts to WebSocket clients.
type Hub struct {
	rt       *reactive.Runtime
	root     *render.Root
	config   Config
	limits   protocol.Limits
	upgrader websocket.Upgrader
	logger   *slog.Logger
	observer Observer
	history  *History
	removeFn func()

	mu      sync.Mutex
	clients map[string]*Client
	closed  bool

	latest atomic.Uint64
}

// NewHub creates a hub streaming root. It registers a sink on the root, so
// it must be called on the runtime's goroutine: before rt.Run starts or
// inside rt.Dispatch.
func NewHub(root *render.Root, opts ...Option) *Hub {
	rt := root.Runtime()
	h := &Hub{
		rt:       rt,
		root:     root,
		config:   DefaultConfig(),
		limits:   protocol.DefaultLimits(),
		logger:   rt.Logger(),
		observer: nopObserver{},
		clients:  make(map[string]*Client),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.history = NewHistory(h.config.HistorySize)
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.config.CheckOrigin,
	}
	h.latest.Store(root.Seq())
	h.removeFn = root.OnPatch(h.broadcast)
	return h
}

// encodeFrame encodes a render frame as a patches frame.
func encodeFrame(f render.Frame) []byte {
	var flags protocol.FrameFlags
	if len(f.Patches) == 1 && f.Patches[0].Op == vdom.PatchMount {
		flags |= protocol.FlagSnapshot
	}
	payload := protocol.EncodePatches(&protocol.PatchesFrame{Seq: f.Seq, Patches: f.Patches})
	return protocol.NewFrameWithFlags(protocol.FramePatches, flags, payload).Encode()
}

// broadcast runs on the runtime goroutine for every frame the root emits.
func (h *Hub) broadcast(f render.Frame) {
	data := encodeFrame(f)
	h.history.Add(f.Seq, data)
	h.latest.Store(f.Seq)

	var slow []*Client
	h.mu.Lock()
	for _, c := range h.clients {
		if !c.queue(data) {
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.unregister(c, "send buffer full")
	}
}

// register adds c. Runs on the runtime goroutine so no frame is emitted
// between the snapshot and registration.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c.ID] = c
	h.observer.ClientConnected(c.ID)
	return true
}

// unregister removes and closes c. Safe to call more than once.
func (h *Hub) unregister(c *Client, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c.ID]
	delete(h.clients, c.ID)
	h.mu.Unlock()

	c.close()
	if ok {
		c.logger.Info("client disconnected", "reason", reason, "acked", c.Acked())
		h.observer.ClientDisconnected(c.ID, reason)
	}
}

// catchUp queues what c needs to reach the root's current state: the
// frames after seq from history, or a snapshot. Runs on the runtime
// goroutine.
func (h *Hub) catchUp(c *Client, seq uint64, resume bool) bool {
	current := h.root.Seq()
	if resume {
		if frames, ok := h.history.Since(seq, current); ok {
			for _, f := range frames {
				if !c.queue(f) {
					return false
				}
			}
			c.logger.Debug("resumed", "from", seq, "frames", len(frames))
			return true
		}
	}
	return c.queue(encodeFrame(h.root.Snapshot()))
}

// resync answers a client's resync request.
func (h *Hub) resync(c *Client, seq uint64) {
	h.rt.Dispatch(func() {
		if !h.catchUp(c, seq, true) {
			h.unregister(c, "send buffer full")
		}
	})
}

// ServeWS upgrades the request and starts streaming. A "seq" query
// parameter resumes from that sequence number when history allows.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	var (
		since  uint64
		resume bool
	)
	if s := r.URL.Query().Get("seq"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			http.Error(w, "invalid seq", http.StatusBadRequest)
			return
		}
		since, resume = n, true
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	c := newClient(h, conn)

	registered := make(chan bool, 1)
	dispatched := h.rt.Dispatch(func() {
		hello := protocol.EncodeHello(&protocol.Hello{
			Version:  protocol.Version,
			ClientID: c.ID,
			Seq:      h.root.Seq(),
		})
		ok := c.queue(protocol.NewFrame(protocol.FrameHello, hello).Encode()) &&
			h.catchUp(c, since, resume) &&
			h.register(c)
		registered <- ok
	})
	if !dispatched || !h.await(registered) {
		err := werrors.New("E041").WithDetail("hub is not accepting clients")
		conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
		conn.WriteMessage(websocket.BinaryMessage, errorFrame(err, true))
		conn.Close()
		return
	}

	c.logger.Info("client connected", "remote", r.RemoteAddr, "resume", resume, "since", since)
	go c.writeLoop()
	go c.readLoop()
}

// await waits for a dispatched registration, giving up after WriteTimeout
// if the runtime loop has stopped.
func (h *Hub) await(ch <-chan bool) bool {
	select {
	case ok := <-ch:
		return ok
	case <-time.After(h.config.WriteTimeout):
		return false
	}
}

// HTML renders the live tree through the runtime loop.
func (h *Hub) HTML(ctx context.Context) (string, error) {
	out := make(chan string, 1)
	if !h.rt.Dispatch(func() {
		if live := h.root.Live(); live != nil {
			out <- live.HTML()
			return
		}
		out <- ""
	}) {
		return "", werrors.New("E041").WithDetail("runtime loop stopped")
	}
	select {
	case s := <-out:
		return s, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (h *Hub) serveHTML(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.config.WriteTimeout)
	defer cancel()
	html, err := h.HTML(ctx)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}

// Health is the /healthz response body.
type Health struct {
	Status  string `json:"status"`
	Clients int    `json:"clients"`
	Seq     uint64 `json:"seq"`
}

func (h *Hub) serveHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Health{Status: "ok", Clients: h.Clients(), Seq: h.latest.Load()})
}

// Router returns a chi router serving the stream endpoints. metrics is
// mounted at /metrics when non-nil.
func (h *Hub) Router(metrics http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", h.serveHTML)
	r.Get("/ws", h.ServeWS)
	r.Get("/healthz", h.serveHealth)
	if metrics != nil {
		r.Handle("/metrics", metrics)
	}
	return r
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// History returns the hub's frame history.
func (h *Hub) History() *History {
	return h.history
}

// Close disconnects every client and stops accepting new ones. The root
// sink is removed on the runtime loop.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	h.rt.Dispatch(h.removeFn)
	for _, c := range clients {
		h.unregister(c, "hub closed")
	}
}
