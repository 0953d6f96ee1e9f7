package session

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the minimal streaming connection the engine needs. Tests
// inject synthetic frames through a fake; production uses the WebSocket
// adapter below.
type Conn interface {
	ReadMessage() ([]byte, error)
	WriteMessage(data []byte) error
	Close() error
}

// Dialer opens a streaming connection to the given URL.
type Dialer interface {
	Dial(ctx context.Context, rawURL string) (Conn, error)
}

// WebsocketDialer adapts gorilla/websocket to the Dialer contract.
type WebsocketDialer struct {
	dialer *websocket.Dialer
}

func NewWebsocketDialer() *WebsocketDialer {
	return &WebsocketDialer{
		dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

func (d *WebsocketDialer) Dial(ctx context.Context, rawURL string) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return &wsConn{conn: conn}, nil
}

type wsConn struct {
	conn *websocket.Conn
}

func (c *wsConn) ReadMessage() ([]byte, error) {
	for {
		messageType, data, err := c.conn.ReadMessage()
		if err != nil {
			return nil, err
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return data, nil
		}
	}
}

func (c *wsConn) WriteMessage(data []byte) error {
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}
