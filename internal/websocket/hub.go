package websocket

import (
	"encoding/json"
	"sync"

	"github.com/EngineerSamet/document-management-system-sub000/internal/service"
	"github.com/sirupsen/logrus"
)

// Hub 管理所有 WebSocket 连接
// 实现 service.FlowEventPublisher,审批流事件按接收人推送
type Hub struct {
	// 已注册的客户端
	clients map[*Client]bool

	// 广播消息到所有客户端
	Broadcast chan []byte

	// 注册新客户端
	Register chan *Client

	// 注销客户端
	Unregister chan *Client

	// 互斥锁，保护 clients map
	mu sync.RWMutex
}

// NewHub 创建新的 Hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Broadcast:  make(chan []byte),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run 运行 Hub
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()

		case message := <-h.Broadcast:
			h.mu.Lock()
			for client := range h.clients {
				h.deliver(client, message)
			}
			h.mu.Unlock()
		}
	}
}

// deliver 尝试投递消息,发送缓冲已满的客户端直接断开
// 调用方必须持有写锁
func (h *Hub) deliver(client *Client, message []byte) {
	select {
	case client.Send <- message:
	default:
		close(client.Send)
		delete(h.clients, client)
	}
}

// PublishFlowEvent 推送审批流事件
// Recipients 为空时向全部在线客户端广播
func (h *Hub) PublishFlowEvent(event *service.FlowEvent) {
	message, err := json.Marshal(event)
	if err != nil {
		logrus.WithError(err).Error("Failed to marshal flow event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(event.Recipients) == 0 {
		for client := range h.clients {
			h.deliver(client, message)
		}
		return
	}

	recipients := make(map[string]struct{}, len(event.Recipients))
	for _, id := range event.Recipients {
		recipients[id] = struct{}{}
	}
	for client := range h.clients {
		if _, ok := recipients[client.UserID]; ok {
			h.deliver(client, message)
		}
	}
}

// BroadcastToUser 向特定用户广播消息
func (h *Hub) BroadcastToUser(userID string, message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		if client.UserID == userID {
			h.deliver(client, message)
		}
	}
}

// HasClient 检查客户端是否存在
func (h *Hub) HasClient(clientID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.ID == clientID {
			return true
		}
	}
	return false
}

// GetClientCount 获取客户端数量
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}
