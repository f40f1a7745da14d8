package controllers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewise/platewise-api/services"
)

func TestConnectSocketEndpoint(t *testing.T) {
	db := setupControllerTestDB(t)
	restaurant := createRestaurant(t, db, "+914444444444", true)

	hub := services.InitHub(services.NewHub())
	bus := services.NewLocalDispatcher(hub)
	services.SetDispatcher(bus)
	t.Cleanup(func() { services.SetDispatcher(nil) })

	router := setupTestRouter()
	router.GET("/ws", mockAuthMiddleware(restaurant), ConnectSocket)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	channel := services.RestaurantChannel(restaurant.ID)
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(channel) == 1
	}, time.Second, 10*time.Millisecond, "socket should join its restaurant channel")

	require.NoError(t, bus.Publish(context.Background(), channel,
		services.EventNewNotification, map[string]string{"title": "Order incoming"}))

	conn.SetReadDeadline(time.Now().Add(time.Second))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, services.EventNewNotification, msg["event"])

	// Closing the client releases the hub entry
	conn.Close()
	require.Eventually(t, func() bool {
		return hub.SubscriberCount(channel) == 0
	}, time.Second, 10*time.Millisecond)
}
