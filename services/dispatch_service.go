package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Dispatch event names.
const (
	EventNewOrder                    = "new_order"
	EventOrderStatusUpdate           = "order_status_update"
	EventRestaurantOrderStatusUpdate = "restaurant_order_status_update"
	EventNewNotification             = "new_notification"
)

// UserChannel returns the dispatch channel for an ordering user.
func UserChannel(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// RestaurantChannel returns the dispatch channel for a restaurant.
func RestaurantChannel(restaurantID uint) string {
	return fmt.Sprintf("restaurant:%d", restaurantID)
}

// Dispatcher delivers real-time events to every socket subscribed to a
// channel, across all server processes. Delivery is at-most-once and
// best-effort; the notification store is the durable fallback.
type Dispatcher interface {
	Publish(ctx context.Context, channel, event string, payload interface{}) error
}

// envelope is the wire format relayed through the redis backbone.
type envelope struct {
	Channel string          `json:"channel"`
	Event   string          `json:"event"`
	Data    json.RawMessage `json:"data"`
}

// DispatchSocket is the hub's view of a connected client.
type DispatchSocket interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub tracks which locally connected sockets are subscribed to which
// channel. Safe for concurrent use; writes to any one socket are
// serialized because gorilla connections do not support concurrent
// writers.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[DispatchSocket]bool
	writers  map[DispatchSocket]*sync.Mutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		channels: make(map[string]map[DispatchSocket]bool),
		writers:  make(map[DispatchSocket]*sync.Mutex),
	}
}

// Subscribe joins a socket to a channel.
func (h *Hub) Subscribe(sock DispatchSocket, channel string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.channels[channel] == nil {
		h.channels[channel] = make(map[DispatchSocket]bool)
	}
	h.channels[channel][sock] = true
	if h.writers[sock] == nil {
		h.writers[sock] = &sync.Mutex{}
	}
}

// Unsubscribe removes a socket from every channel it joined.
func (h *Hub) Unsubscribe(sock DispatchSocket) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for channel, socks := range h.channels {
		delete(socks, sock)
		if len(socks) == 0 {
			delete(h.channels, channel)
		}
	}
	delete(h.writers, sock)
}

// Deliver writes the event to every local socket on the channel. Sockets
// that fail the write are dropped. Returns the number of sockets reached.
func (h *Hub) Deliver(channel, event string, data json.RawMessage) int {
	type target struct {
		sock  DispatchSocket
		write *sync.Mutex
	}
	h.mu.RLock()
	targets := make([]target, 0, len(h.channels[channel]))
	for sock := range h.channels[channel] {
		targets = append(targets, target{sock: sock, write: h.writers[sock]})
	}
	h.mu.RUnlock()

	delivered := 0
	for _, tgt := range targets {
		msg := map[string]interface{}{"event": event, "data": data}
		tgt.write.Lock()
		err := tgt.sock.WriteJSON(msg)
		tgt.write.Unlock()
		if err != nil {
			log.Printf("Dropping socket on %s after write error: %v", channel, err)
			h.Unsubscribe(tgt.sock)
			_ = tgt.sock.Close()
			continue
		}
		delivered++
	}
	return delivered
}

// SubscriberCount returns how many local sockets a channel currently has.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}

// RedisDispatcher relays events through a redis pub/sub topic so that a
// publish on any server instance reaches sockets connected to every
// instance.
type RedisDispatcher struct {
	rdb   *redis.Client
	topic string
	hub   *Hub
}

// DispatchTopic is the redis pub/sub topic shared by all instances.
const DispatchTopic = "dispatch"

// NewRedisDispatcher creates a dispatcher relaying over the given client.
func NewRedisDispatcher(rdb *redis.Client, hub *Hub) *RedisDispatcher {
	return &RedisDispatcher{rdb: rdb, topic: DispatchTopic, hub: hub}
}

// Publish marshals the payload and broadcasts it on the shared topic.
func (d *RedisDispatcher) Publish(ctx context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}
	raw, err := json.Marshal(envelope{Channel: channel, Event: event, Data: data})
	if err != nil {
		return err
	}
	return d.rdb.Publish(ctx, d.topic, raw).Err()
}

// Run consumes the shared topic and forwards matching envelopes to the
// local hub. Blocks until the context is cancelled.
func (d *RedisDispatcher) Run(ctx context.Context) {
	pubsub := d.rdb.Subscribe(ctx, d.topic)
	defer pubsub.Close()

	log.Println("Dispatch relay attached to redis backbone")
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				log.Printf("Dispatch relay: dropping malformed envelope: %v", err)
				continue
			}
			d.hub.Deliver(env.Channel, env.Event, env.Data)
		}
	}
}

// LocalDispatcher delivers straight to the local hub with no cross-process
// relay. Used in tests and when redis is unavailable at startup.
type LocalDispatcher struct {
	hub *Hub
}

// NewLocalDispatcher creates a hub-only dispatcher.
func NewLocalDispatcher(hub *Hub) *LocalDispatcher {
	return &LocalDispatcher{hub: hub}
}

// Publish delivers to local sockets only.
func (d *LocalDispatcher) Publish(_ context.Context, channel, event string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal dispatch payload: %w", err)
	}
	d.hub.Deliver(channel, event, data)
	return nil
}

var (
	dispatcherInstance Dispatcher
	hubInstance        *Hub
)

// InitHub installs the process-wide socket hub.
func InitHub(h *Hub) *Hub {
	hubInstance = h
	return hubInstance
}

// GetHub returns the installed hub, or nil before InitHub.
func GetHub() *Hub {
	return hubInstance
}

// InitDispatcher installs the process-wide dispatcher.
func InitDispatcher(d Dispatcher) Dispatcher {
	dispatcherInstance = d
	return dispatcherInstance
}

// GetDispatcher returns the installed dispatcher. It may be nil when no
// bus is available; callers must degrade to store-only delivery.
func GetDispatcher() Dispatcher {
	return dispatcherInstance
}

// SetDispatcher sets the dispatcher instance (primarily for testing)
func SetDispatcher(d Dispatcher) {
	dispatcherInstance = d
}
