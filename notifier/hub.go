package notifier

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/restaurant-pos-terminal/utils"
)

// Message adalah payload yang dikirim ke setiap client websocket
type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung semua client front-end yang terhubung ke terminal dan
// menyiarkan update state order, peringatan drift, dan notifikasi kegagalan
// mutasi. Satu instance dibuat di main dan di-inject ke service.
type Hub struct {
	clients map[*websocket.Conn]bool
	mutex   sync.Mutex
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// terminal API hanya dilayani di loopback
		return true
	},
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]bool)}
}

// Register -> menambahkan connection ke set
func (h *Hub) Register(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = true
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	delete(h.clients, conn)
	conn.Close()
}

// Publish -> menyiarkan satu event ke semua client yang terhubung
func (h *Hub) Publish(event string, data interface{}) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	msg := Message{Event: event, Data: data}
	for conn := range h.clients {
		if err := conn.WriteJSON(msg); err != nil {
			utils.ErrorLogger.Printf("Error broadcasting %s: %v", event, err)
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// ServeWS -> handler gin untuk upgrade websocket dari front-end
func (h *Hub) ServeWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed: %v", err)
		return
	}
	h.Register(conn)

	go func() {
		defer h.Unregister(conn)
		for {
			// client tidak mengirim apa-apa; read loop hanya untuk deteksi close
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
