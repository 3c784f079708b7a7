package relay

import (
	"time"

	"github.com/gorilla/websocket"
)

type role int

const (
	roleUnbound role = iota
	roleProducer
	roleViewer
)

type outbound struct {
	msgType int
	data    []byte
}

// controlBuffer bounds queued control replies per connection.
const controlBuffer = 16

// client is one websocket connection. role, cameraID and dropped belong to the
// relay loop; conn writes belong to writePump. Closing send ends the connection.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan outbound
	control chan outbound

	role     role
	cameraID string
	dropped  int
}

// trySend queues a frame unless the connection is backed up, in which case the
// frame is dropped.
func (c *client) trySend(msg outbound) {
	select {
	case c.send <- msg:
	default:
		c.dropped++
	}
}

// queueControl queues a control reply. Replies bypass the frame buffer so a
// viewer that is behind on frames still hears about its producer. It reports
// false only when the peer has stopped reading replies altogether.
func (c *client) queueControl(msg outbound) bool {
	select {
	case c.control <- msg:
		return true
	default:
		return false
	}
}

func (r *Relay) readPump(c *client) {
	defer func() {
		select {
		case r.leaves <- c:
		case <-r.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(r.cfg.MaxMessageBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(r.cfg.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(r.cfg.PongWait))
	})

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				r.log.Debugw("camera_read_closed", "conn_id", c.id, "error", err)
			}
			return
		}
		// Any traffic proves the peer is alive.
		_ = c.conn.SetReadDeadline(time.Now().Add(r.cfg.PongWait))
		select {
		case r.messages <- inbound{c: c, msgType: msgType, data: data}:
		case <-r.done:
			return
		}
	}
}

func (c *client) writePump(writeWait, pongWait time.Duration) {
	ping := time.NewTicker(pongWait * 9 / 10)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		// pending control replies go out ahead of queued frames
		select {
		case msg := <-c.control:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(msg.msgType, msg.data); err != nil {
				return
			}
			continue
		default:
		}

		select {
		case msg := <-c.control:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(msg.msgType, msg.data); err != nil {
				return
			}
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(msg.msgType, msg.data); err != nil {
				return
			}
		case <-ping.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
