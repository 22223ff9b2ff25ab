package websocket

import (
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту.
	writeWait = 10 * time.Second

	// Время, которое разрешено клиенту читать следующее сообщение.
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту.
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 512

	// Размер буфера канала отправки сообщений клиенту
	clientBufferSize = 64
)

// Client является посредником между WebSocket соединением и хабом.
type Client struct {
	// ID участника
	UserID string

	// Уникальный ID соединения (у участника может быть несколько вкладок)
	ConnectionID string

	hub  *Hub
	conn *websocket.Conn

	// Буферизованный канал для исходящих сообщений
	send chan []byte

	// Флаг закрытия канала send (для предотвращения panic при двойном закрытии)
	sendClosed atomic.Bool
}

// NewClient создает клиента и регистрирует его в хабе
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	client := &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		conn:         conn,
		send:         make(chan []byte, clientBufferSize),
	}
	hub.register <- client
	return client
}

// StartPumps запускает горутины чтения и записи
func (c *Client) StartPumps() {
	go c.writePump()
	go c.readPump()
}

// trySend кладет сообщение в буфер отправки без блокировки.
// Возвращает false, если буфер переполнен или канал уже закрыт.
func (c *Client) trySend(message []byte) bool {
	if c.sendClosed.Load() {
		return false
	}
	defer func() {
		// Канал мог закрыться между проверкой и отправкой
		recover()
	}()
	select {
	case c.send <- message:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	if c.sendClosed.CompareAndSwap(false, true) {
		close(c.send)
	}
}

// readPump читает сообщения из соединения. Клиент ничего не присылает
// по делу - чтение нужно для обработки pong и обнаружения разрыва.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WS Client] Неожиданное закрытие соединения %s участника %s: %v", c.ConnectionID, c.UserID, err)
			}
			return
		}
	}
}

// writePump пишет сообщения из канала send в соединение и шлет пинги
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
