package handler

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/yourusername/hunt-api/internal/websocket"
	"github.com/yourusername/hunt-api/pkg/auth"
)

// WSHandler обрабатывает WebSocket соединения для событий прогресса
type WSHandler struct {
	hub        *websocket.Hub
	jwtService *auth.JWTService
	upgrader   gorillaws.Upgrader
}

// NewWSHandler создает новый обработчик WebSocket.
// allowedOrigins синхронизирован с CORS-конфигурацией в main.go.
func NewWSHandler(hub *websocket.Hub, jwtService *auth.JWTService, allowedOrigins []string) *WSHandler {
	originSet := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		originSet[origin] = struct{}{}
	}

	return &WSHandler{
		hub:        hub,
		jwtService: jwtService,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")

				// Пустой Origin - не браузерный клиент (мобильное приложение, curl)
				if origin == "" {
					return true
				}
				if _, ok := originSet[origin]; ok {
					return true
				}
				log.Printf("WebSocket: rejected unauthorized origin: %s", origin)
				return false
			},
			EnableCompression: true,
		},
	}
}

// HandleConnection обрабатывает входящее WebSocket соединение.
// Токен передается query-параметром, т.к. браузерный WebSocket API
// не поддерживает произвольные заголовки.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Missing authentication token parameter"})
		return
	}

	claims, err := h.jwtService.ParseToken(token)
	if err != nil {
		log.Printf("WebSocket: Invalid or expired token - %v", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Error upgrading connection: %v", err)
		return
	}

	log.Printf("WebSocket: Connection upgraded for UserID: %d", claims.UserID)

	client := websocket.NewClient(h.hub, conn, fmt.Sprintf("%d", claims.UserID))
	client.StartPumps()
}
