package websocket

import (
	"sync"

	"github.com/google/uuid"
	"github.com/notifeed/notifeed/internal/shared/logger"
	"github.com/sirupsen/logrus"
)

type UnicastMessage struct {
	UserID  uuid.UUID
	Message []byte
}

// Hub maintains the set of connected feed clients and pushes notification
// events to them. Broadcasts reach every client; unicasts reach every
// connection belonging to one user.
type Hub struct {
	clients map[*Client]bool

	broadcast chan []byte
	unicast   chan UnicastMessage

	register   chan *Client
	unregister chan *Client

	stop     chan struct{}
	stopOnce sync.Once

	log *logrus.Entry
}

func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan []byte),
		unicast:    make(chan UnicastMessage),
		register:   make(chan *Client),
		unregister: make(chan *Client),

		clients: make(map[*Client]bool),
		stop:    make(chan struct{}),
		log:     logger.New("websocket-hub"),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.log.WithFields(logrus.Fields{
				"addr":    client.remoteAddr(),
				"user_id": client.userID,
			}).Info("client registered")
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.log.WithFields(logrus.Fields{
					"addr":    client.remoteAddr(),
					"user_id": client.userID,
				}).Info("client unregistered")
			}
		case message := <-h.broadcast:
			h.log.WithField("clients", len(h.clients)).Debug("broadcasting message")
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		case msg := <-h.unicast:
			h.log.WithField("user_id", msg.UserID).Debug("sending unicast")
			for client := range h.clients {
				if client.userID == msg.UserID {
					select {
					case client.send <- msg.Message:
					default:
						close(client.send)
						delete(h.clients, client)
					}
				}
			}
		case <-h.stop:
			h.log.Info("stopping hub")
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return
		}
	}
}

func (h *Hub) BroadcastMessage(message []byte) {
	select {
	case h.broadcast <- message:
	case <-h.stop:
	}
}

func (h *Hub) SendToUser(userID uuid.UUID, message []byte) {
	select {
	case h.unicast <- UnicastMessage{UserID: userID, Message: message}:
	case <-h.stop:
	}
}

func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}
