package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/platewise/platewise-api/middleware"
	"github.com/platewise/platewise-api/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// CORS is enforced at the HTTP layer
	CheckOrigin: func(r *http.Request) bool { return true },
}

const (
	// Clients only listen, so inbound frames stay tiny
	socketReadLimit = 512
	// A peer that misses two pings is considered gone
	socketPongWait   = 60 * time.Second
	socketPingPeriod = 25 * time.Second
	socketWriteWait  = 10 * time.Second
)

// ConnectSocket handles GET /api/v1/ws - upgrades the connection and joins
// the caller's own channel. Restaurants join their restaurant channel,
// everyone else their user channel. The connection receives every event
// published to that channel until it closes.
func ConnectSocket(c *gin.Context) {
	user, err := middleware.GetCurrentUser(c)
	if err != nil {
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return
	}

	hub := services.GetHub()
	if hub == nil {
		respondError(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Real-time dispatch is not running")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already written its own error response
		return
	}

	channel := services.UserChannel(user.ID)
	if user.IsRestaurant() {
		channel = services.RestaurantChannel(user.ID)
	}
	hub.Subscribe(conn, channel)

	conn.SetReadLimit(socketReadLimit)
	conn.SetReadDeadline(time.Now().Add(socketPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(socketPongWait))
	})

	// Ping the peer so silent connections time out instead of holding
	// their hub entry forever. WriteControl is safe alongside hub writes.
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(socketPingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deadline := time.Now().Add(socketWriteWait)
				if err := conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					return
				}
			case <-stop:
				return
			}
		}
	}()

	// Clients only listen; drain reads until the peer goes away so we see
	// close and pong frames.
	defer func() {
		close(stop)
		hub.Unsubscribe(conn)
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
