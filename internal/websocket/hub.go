package websocket

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/ikkim/storefront-backend/internal/cart"
	"github.com/ikkim/storefront-backend/pkg/logger"
)

// CartSource is where the hub reads carts from and learns about changes.
type CartSource interface {
	Get(ctx context.Context, owner string) (cart.Snapshot, error)
	Subscribe(owner string, fn cart.Listener) func()
}

// CartMessage is pushed to clients after every change to their cart.
type CartMessage struct {
	Type      string      `json:"type"`
	Items     []cart.Line `json:"items"`
	ItemCount int         `json:"item_count"`
	Subtotal  string      `json:"subtotal"`
	Empty     bool        `json:"empty"`
}

func newCartMessage(snap cart.Snapshot) CartMessage {
	items := snap.Lines
	if items == nil {
		items = []cart.Line{}
	}
	return CartMessage{
		Type:      "cart",
		Items:     items,
		ItemCount: snap.ItemCount,
		Subtotal:  snap.Subtotal.String(),
		Empty:     snap.IsEmpty(),
	}
}

// Client is one websocket connection watching one cart.
type Client struct {
	Hub   *Hub
	Conn  *Conn
	Owner string
	Send  chan []byte
}

func NewClient(hub *Hub, conn *Conn, owner string) *Client {
	return &Client{Hub: hub, Conn: conn, Owner: owner, Send: make(chan []byte, sendBufferSize)}
}

type broadcastMessage struct {
	owner   string
	payload []byte
}

// Hub fans cart changes out to every connection watching that cart. It
// subscribes to an owner's cart while at least one client watches it.
type Hub struct {
	source CartSource

	clients map[string]map[*Client]struct{}
	cancels map[string]func()
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan *broadcastMessage
}

func NewHub(source CartSource) *Hub {
	return &Hub{
		source:     source,
		clients:    make(map[string]map[*Client]struct{}),
		cancels:    make(map[string]func()),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
		broadcast:  make(chan *broadcastMessage, 1024),
	}
}

// Run processes registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.add(client)
			h.sendInitial(ctx, client)

		case client := <-h.unregister:
			h.remove(client)

		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients[msg.owner] {
				offer(client, msg.payload)
			}
			h.mu.RUnlock()
		}
	}
}

func (h *Hub) add(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers, ok := h.clients[client.Owner]
	if !ok {
		watchers = make(map[*Client]struct{})
		h.clients[client.Owner] = watchers
		owner := client.Owner
		h.cancels[owner] = h.source.Subscribe(owner, func(snap cart.Snapshot) {
			h.Publish(owner, snap)
		})
	}
	watchers[client] = struct{}{}

	logger.Info("WebSocket client registered", map[string]interface{}{
		"owner":    client.Owner,
		"sessions": len(watchers),
	})
}

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	watchers, ok := h.clients[client.Owner]
	if !ok {
		return
	}
	if _, ok := watchers[client]; !ok {
		return
	}
	delete(watchers, client)
	close(client.Send)

	if len(watchers) == 0 {
		delete(h.clients, client.Owner)
		if cancel := h.cancels[client.Owner]; cancel != nil {
			cancel()
		}
		delete(h.cancels, client.Owner)
	}

	logger.Info("WebSocket client unregistered", map[string]interface{}{
		"owner":              client.Owner,
		"remaining_sessions": len(watchers),
	})
}

func (h *Hub) sendInitial(ctx context.Context, client *Client) {
	snap, err := h.source.Get(ctx, client.Owner)
	if err != nil {
		logger.Warn("Failed to load cart for new websocket client", map[string]interface{}{
			"owner": client.Owner,
			"error": err.Error(),
		})
		return
	}
	data, err := json.Marshal(newCartMessage(snap))
	if err != nil {
		return
	}
	offer(client, data)
}

// offer queues payload for client without blocking. A full buffer loses its
// oldest message: every message is a whole cart, so a slow client only needs
// the newest. Only the Run goroutine sends on client.Send.
func offer(client *Client, payload []byte) {
	for {
		select {
		case client.Send <- payload:
			return
		default:
		}
		select {
		case <-client.Send:
			logger.Debug("Dropped stale cart message for slow client", map[string]interface{}{
				"owner": client.Owner,
			})
		default:
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for owner, watchers := range h.clients {
		for client := range watchers {
			close(client.Send)
		}
		if cancel := h.cancels[owner]; cancel != nil {
			cancel()
		}
	}
	h.clients = make(map[string]map[*Client]struct{})
	h.cancels = make(map[string]func())
}

// Publish queues snap for every client watching owner. It never blocks, so it
// is safe to call from inside a cart mutation.
func (h *Hub) Publish(owner string, snap cart.Snapshot) {
	data, err := json.Marshal(newCartMessage(snap))
	if err != nil {
		logger.Error("Failed to marshal cart message", err)
		return
	}

	select {
	case h.broadcast <- &broadcastMessage{owner: owner, payload: data}:
	default:
		logger.Warn("Broadcast channel full, cart update dropped", map[string]interface{}{
			"owner": owner,
		})
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Watchers returns how many connections watch owner's cart.
func (h *Hub) Watchers(owner string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[owner])
}
