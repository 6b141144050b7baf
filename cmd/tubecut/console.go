package main

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mastercactapus/tubecut/machine"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 8192
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// consoleHub fans controller output out to websocket consoles.
type consoleHub struct {
	mx      sync.Mutex
	clients map[*consoleClient]struct{}
	log     *zap.Logger
}

type consoleClient struct {
	conn *websocket.Conn
	send chan string
}

func newConsoleHub(log *zap.Logger) *consoleHub {
	return &consoleHub{clients: make(map[*consoleClient]struct{}), log: log}
}

func (h *consoleHub) len() int {
	h.mx.Lock()
	defer h.mx.Unlock()
	return len(h.clients)
}

func (h *consoleHub) register(c *consoleClient) {
	h.mx.Lock()
	h.clients[c] = struct{}{}
	h.mx.Unlock()
}

func (h *consoleHub) unregister(c *consoleClient) {
	h.mx.Lock()
	defer h.mx.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

// broadcast never blocks; slow consoles miss lines.
func (h *consoleHub) broadcast(line string) {
	h.mx.Lock()
	defer h.mx.Unlock()
	for c := range h.clients {
		select {
		case c.send <- line:
		default:
			h.log.Debug("console send buffer full", zap.String("remote_addr", c.conn.RemoteAddr().String()))
		}
	}
}

func (h *consoleHub) closeAll() {
	h.mx.Lock()
	defer h.mx.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}

// serve upgrades the request and runs a console session. Every text line
// received is submitted to m.
func (h *consoleHub) serve(m *machine.Machine, w http.ResponseWriter, req *http.Request) {
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		h.log.Error("websocket upgrade", zap.Error(err), zap.String("remote_addr", req.RemoteAddr))
		return
	}

	c := &consoleClient{conn: conn, send: make(chan string, sendBufferSize)}
	h.register(c)
	h.log.Info("console connected", zap.String("remote_addr", req.RemoteAddr))

	go c.writePump()
	c.readPump(h, m)
}

func (c *consoleClient) readPump(h *consoleHub, m *machine.Machine) {
	defer func() {
		h.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read", zap.Error(err))
			}
			return
		}
		for _, line := range strings.FieldsFunc(string(data), isLineBreak) {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			m.Send(line)
		}
	}
}

func isLineBreak(r rune) bool { return r == '\r' || r == '\n' }

func (c *consoleClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case line, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			err := c.conn.WriteMessage(websocket.TextMessage, []byte(line))
			if err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			err := c.conn.WriteMessage(websocket.PingMessage, nil)
			if err != nil {
				return
			}
		}
	}
}
