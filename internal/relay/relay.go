package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"roomhub/internal/logger"
)

// Control message types, inbound and outbound.
const (
	TypeRegisterProducer     = "register-producer"
	TypeSubscribeViewer      = "subscribe-viewer"
	TypeRegistered           = "registered"
	TypeSubscribed           = "subscribed"
	TypeProducerDisconnected = "producer-disconnected"
	TypeError                = "error"
)

// frameMarker prefixes every video frame (JPEG start of image).
var frameMarker = []byte{0xFF, 0xD8}

// ErrClosed is returned by Status once Run has returned.
var ErrClosed = errors.New("camera relay closed")

const (
	defaultViewerBuffer = 4
	defaultWriteTimeout = 5 * time.Second
	defaultPongWait     = 60 * time.Second
	defaultMaxMessage   = 1 << 20
)

// Config tunes per-connection limits.
type Config struct {
	ViewerBuffer    int
	WriteTimeout    time.Duration
	PongWait        time.Duration
	MaxMessageBytes int64
}

func (c *Config) defaults() {
	if c.ViewerBuffer <= 0 {
		c.ViewerBuffer = defaultViewerBuffer
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = defaultWriteTimeout
	}
	if c.PongWait <= 0 {
		c.PongWait = defaultPongWait
	}
	if c.MaxMessageBytes <= 0 {
		c.MaxMessageBytes = defaultMaxMessage
	}
}

// controlMessage is the JSON grammar shared by requests and replies.
type controlMessage struct {
	Type              string `json:"type"`
	CameraID          string `json:"cameraId,omitempty"`
	ProducerConnected *bool  `json:"producerConnected,omitempty"`
	Message           string `json:"message,omitempty"`
}

// Status describes one camera channel.
type Status struct {
	CameraID  string `json:"cameraId"`
	Connected bool   `json:"connected"`
	Viewers   int    `json:"viewers"`
}

// channel holds the bindings of one camera. Entries are never removed.
type channel struct {
	producer *client
	viewers  map[*client]struct{}
}

type inbound struct {
	c       *client
	msgType int
	data    []byte
}

type statusRequest struct {
	cameraID string
	reply    chan Status
}

// Relay fans frames from one producer per camera out to its viewers. All
// binding state is owned by the Run goroutine.
type Relay struct {
	cfg      Config
	log      *logger.Logger
	upgrader websocket.Upgrader

	joins    chan *client
	leaves   chan *client
	messages chan inbound
	status   chan statusRequest
	done     chan struct{}

	clients  map[*client]struct{}
	channels map[string]*channel
}

func New(cfg Config, log *logger.Logger) *Relay {
	cfg.defaults()
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{
		cfg: cfg,
		log: log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		joins:    make(chan *client),
		leaves:   make(chan *client),
		messages: make(chan inbound),
		status:   make(chan statusRequest),
		done:     make(chan struct{}),
		clients:  make(map[*client]struct{}),
		channels: make(map[string]*channel),
	}
}

// Run processes connection events until ctx is cancelled, then closes every connection.
func (r *Relay) Run(ctx context.Context) {
	defer close(r.done)
	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		case c := <-r.joins:
			r.clients[c] = struct{}{}
			r.log.Debugw("camera_conn_opened", "conn_id", c.id, "conns", len(r.clients))
		case c := <-r.leaves:
			r.leave(c)
		case m := <-r.messages:
			r.handle(m)
		case req := <-r.status:
			req.reply <- r.snapshot(req.cameraID)
		}
	}
}

// Status reports producer connectivity and viewer count for cameraID.
// Unknown cameras report disconnected with no viewers.
func (r *Relay) Status(ctx context.Context, cameraID string) (Status, error) {
	req := statusRequest{cameraID: cameraID, reply: make(chan Status, 1)}
	select {
	case r.status <- req:
	case <-r.done:
		return Status{}, ErrClosed
	case <-ctx.Done():
		return Status{}, ctx.Err()
	}
	return <-req.reply, nil
}

// ServeWS upgrades the request and serves the connection until it closes.
func (r *Relay) ServeWS(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.log.Warnw("camera_ws_upgrade_failed", "error", err)
		return
	}
	c := &client{
		id:      uuid.NewString(),
		conn:    conn,
		send:    make(chan outbound, r.cfg.ViewerBuffer),
		control: make(chan outbound, controlBuffer),
	}
	select {
	case r.joins <- c:
	case <-r.done:
		_ = conn.Close()
		return
	}
	go c.writePump(r.cfg.WriteTimeout, r.cfg.PongWait)
	r.readPump(c)
}

func (r *Relay) channel(cameraID string) *channel {
	ch, ok := r.channels[cameraID]
	if !ok {
		ch = &channel{viewers: make(map[*client]struct{})}
		r.channels[cameraID] = ch
	}
	return ch
}

func (r *Relay) snapshot(cameraID string) Status {
	st := Status{CameraID: cameraID}
	if ch, ok := r.channels[cameraID]; ok {
		st.Connected = ch.producer != nil
		st.Viewers = len(ch.viewers)
	}
	return st
}

func (r *Relay) handle(m inbound) {
	if m.msgType == websocket.BinaryMessage && bytes.HasPrefix(m.data, frameMarker) {
		r.broadcast(m.c, m.data)
		return
	}

	var msg controlMessage
	if err := json.Unmarshal(m.data, &msg); err != nil {
		r.log.Warnw("camera_bad_message", "conn_id", m.c.id, "error", err)
		r.replyError(m.c, "malformed control message")
		return
	}
	switch msg.Type {
	case TypeRegisterProducer, TypeSubscribeViewer:
	default:
		r.log.Warnw("camera_unknown_message", "conn_id", m.c.id, "type", msg.Type)
		r.replyError(m.c, "unknown message type")
		return
	}
	if msg.CameraID == "" {
		r.replyError(m.c, "cameraId is required")
		return
	}
	if m.c.role != roleUnbound {
		r.log.Warnw("camera_rebind_rejected", "conn_id", m.c.id, "camera_id", m.c.cameraID, "requested", msg.CameraID)
		r.replyError(m.c, "connection is already bound")
		return
	}

	ch := r.channel(msg.CameraID)
	m.c.cameraID = msg.CameraID
	if msg.Type == TypeRegisterProducer {
		if prev := ch.producer; prev != nil {
			r.log.Infow("camera_producer_replaced", "camera_id", msg.CameraID, "prev_conn_id", prev.id, "conn_id", m.c.id)
		}
		ch.producer = m.c
		m.c.role = roleProducer
		r.reply(m.c, controlMessage{Type: TypeRegistered, CameraID: msg.CameraID})
		r.log.Infow("camera_producer_registered", "camera_id", msg.CameraID, "conn_id", m.c.id)
		return
	}

	ch.viewers[m.c] = struct{}{}
	m.c.role = roleViewer
	connected := ch.producer != nil
	r.reply(m.c, controlMessage{Type: TypeSubscribed, CameraID: msg.CameraID, ProducerConnected: &connected})
	r.log.Infow("camera_viewer_subscribed", "camera_id", msg.CameraID, "conn_id", m.c.id, "viewers", len(ch.viewers))
}

// broadcast hands the frame to every viewer without waiting on any of them.
func (r *Relay) broadcast(from *client, frame []byte) {
	ch, ok := r.channels[from.cameraID]
	if from.role != roleProducer || !ok || ch.producer != from {
		r.log.Debugw("camera_frame_ignored", "conn_id", from.id)
		return
	}
	for v := range ch.viewers {
		v.trySend(outbound{msgType: websocket.BinaryMessage, data: frame})
	}
}

func (r *Relay) leave(c *client) {
	if _, ok := r.clients[c]; !ok {
		return
	}
	delete(r.clients, c)
	close(c.send)

	if ch, ok := r.channels[c.cameraID]; ok {
		switch {
		case c.role == roleProducer && ch.producer == c:
			ch.producer = nil
			for v := range ch.viewers {
				r.reply(v, controlMessage{Type: TypeProducerDisconnected, CameraID: c.cameraID})
			}
			r.log.Infow("camera_producer_disconnected", "camera_id", c.cameraID, "conn_id", c.id, "viewers", len(ch.viewers))
		case c.role == roleViewer:
			delete(ch.viewers, c)
		}
	}
	if c.dropped > 0 {
		r.log.Infow("camera_frames_dropped", "conn_id", c.id, "camera_id", c.cameraID, "dropped", c.dropped)
	}
	r.log.Debugw("camera_conn_closed", "conn_id", c.id, "conns", len(r.clients))
}

func (r *Relay) closeAll() {
	for c := range r.clients {
		close(c.send)
		delete(r.clients, c)
	}
	for _, ch := range r.channels {
		ch.producer = nil
		clear(ch.viewers)
	}
}

func (r *Relay) reply(c *client, msg controlMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		r.log.Errorw("camera_reply_marshal_failed", "error", err)
		return
	}
	if !c.queueControl(outbound{msgType: websocket.TextMessage, data: data}) {
		r.log.Warnw("camera_reply_dropped", "conn_id", c.id, "type", msg.Type)
	}
}

func (r *Relay) replyError(c *client, text string) {
	r.reply(c, controlMessage{Type: TypeError, Message: text})
}
