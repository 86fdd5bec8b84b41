package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/shoeaxis/internal/beadroad"
	"github.com/lox/shoeaxis/internal/session"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096
)

var ErrConnectionClosed = websocket.ErrCloseSent

// Connection is one client and the session it drives.
type Connection struct {
	conn      *websocket.Conn
	send      chan *Message
	session   *session.Session
	clock     quartz.Clock
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, sess *session.Session, clock quartz.Clock, logger *log.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:    conn,
		send:    make(chan *Message, 64),
		session: sess,
		clock:   clock,
		logger:  logger.WithPrefix("conn").With("session", sess.ID()),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Done is closed once the connection has shut down.
func (c *Connection) Done() <-chan struct{} {
	return c.ctx.Done()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *Message) error {
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrConnectionClosed
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		_ = c.Close()
		return ErrConnectionClosed
	}
}

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }()

	// Deadlines are wall-clock instants for the socket, not clock-driven.
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, r, err := c.conn.NextReader()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}
		payload, err := io.ReadAll(r)
		if err != nil {
			c.logger.Warn("Failed to read frame", "error", err)
			return
		}

		var msg Message
		if err := json.Unmarshal(payload, &msg); err != nil {
			c.sendError(nil, ErrCodeInvalidMessage, "Malformed JSON: "+err.Error())
			continue
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := c.clock.NewTicker(pingPeriod, "ping")
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *Message) {
	c.logger.Debug("Received message", "type", msg.Type)

	switch msg.Type {
	case MessageTypeRecord:
		var data RecordData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError(msg, ErrCodeInvalidMessage, "Failed to parse record data: "+err.Error())
			return
		}
		c.handleRecord(msg, data)

	case MessageTypeUndo:
		c.handleUndo(msg)

	case MessageTypeReset:
		c.session.Reset()
		c.reply(msg, MessageTypeResetOK, nil)

	case MessageTypeStart:
		c.session.Start()
		c.sendSnapshot(msg, true, nil)

	case MessageTypeRefresh:
		c.sendSnapshot(msg, false, nil)

	default:
		c.sendError(msg, ErrCodeUnknownType, "Unknown message type: "+msg.Type.String())
	}
}

func (c *Connection) handleRecord(msg *Message, data RecordData) {
	round, err := c.session.Record(data.Outcome)
	switch {
	case errors.Is(err, session.ErrNotInitialized):
		c.sendError(msg, ErrCodeNotInitialized, "Session has been reset, send start first")
		return
	case err != nil:
		c.sendError(msg, ErrCodeInvalidArgument, err.Error())
		return
	}
	c.sendSnapshot(msg, true, &round)
}

func (c *Connection) handleUndo(msg *Message) {
	if !c.session.Initialized() {
		c.sendError(msg, ErrCodeNotInitialized, "Session has been reset, send start first")
		return
	}
	round, ok := c.session.Undo()
	if !ok {
		c.sendSnapshot(msg, false, nil)
		return
	}
	c.sendSnapshot(msg, true, &round)
}

// sendSnapshot refreshes the session and sends the result in reply to msg.
func (c *Connection) sendSnapshot(msg *Message, changed bool, round *session.Round) {
	snap, err := c.session.Refresh(c.ctx)
	switch {
	case errors.Is(err, session.ErrNotInitialized):
		c.sendError(msg, ErrCodeNotInitialized, "Session has been reset, send start first")
		return
	case err != nil:
		c.logger.Error("Refresh failed", "error", err)
		c.sendError(msg, ErrCodeRefreshFailed, err.Error())
		return
	}

	c.reply(msg, MessageTypeSnapshot, SnapshotData{
		Cause:    msg.Type,
		Changed:  changed,
		Round:    round,
		Columns:  slices.Collect(beadroad.Columns(snap.History, beadroad.DefaultHeight)),
		Snapshot: snap,
	})
}

// reply sends data carrying the request id of msg.
func (c *Connection) reply(msg *Message, messageType MessageType, data any) {
	out, err := NewMessage(messageType, data, c.clock.Now())
	if err != nil {
		c.logger.Error("Failed to create message", "type", messageType, "error", err)
		return
	}
	if msg != nil {
		out.RequestID = msg.RequestID
	}
	_ = c.SendMessage(out)
}

// sendError reports a failed request. msg is nil when the frame could not
// be decoded.
func (c *Connection) sendError(msg *Message, code, message string) {
	c.reply(msg, MessageTypeError, ErrorData{
		Code:    code,
		Message: message,
	})
}
