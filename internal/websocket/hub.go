package websocket

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
)

// Event - сообщение, отправляемое клиенту
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Hub ведет реестр активных клиентов и рассылает им события.
// У одного участника может быть несколько соединений (несколько вкладок),
// событие доставляется во все.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{} // userID -> соединения

	register   chan *Client
	unregister chan *Client
	done       chan struct{}
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		done:       make(chan struct{}),
	}
}

// Run запускает цикл обработки регистраций. Вызывается в отдельной горутине.
func (h *Hub) Run() {
	log.Println("[WS Hub] Хаб запущен")
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			log.Println("[WS Hub] Хаб остановлен")
			return
		}
	}
}

// Close останавливает хаб и закрывает все соединения
func (h *Hub) Close() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, conns := range h.clients {
		for client := range conns {
			client.closeSend()
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
}

// SendEventToUser отправляет событие всем соединениям участника.
// Если участник не подключен, событие молча отбрасывается: доставка
// best-effort, состояние квеста от нее не зависит.
func (h *Hub) SendEventToUser(userID string, eventType string, data interface{}) error {
	payload, err := json.Marshal(Event{Type: eventType, Data: data})
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := h.clients[userID]
	targets := make([]*Client, 0, len(conns))
	for client := range conns {
		targets = append(targets, client)
	}
	h.mu.RUnlock()

	if len(targets) == 0 {
		return nil
	}

	var dropped int
	for _, client := range targets {
		if !client.trySend(payload) {
			dropped++
		}
	}
	if dropped > 0 {
		log.Printf("[WS Hub] Буфер переполнен: событие %s не доставлено в %d соединений участника %s", eventType, dropped, userID)
		return errors.New("send buffer full for some connections")
	}
	return nil
}

// ClientCount возвращает количество активных соединений (для диагностики)
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	log.Printf("[WS Hub] Участник %s подключен (conn=%s, всего соединений=%d)", client.UserID, client.ConnectionID, len(conns))
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client]; !ok {
		return
	}
	delete(conns, client)
	client.closeSend()
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	log.Printf("[WS Hub] Участник %s отключен (conn=%s)", client.UserID, client.ConnectionID)
}
