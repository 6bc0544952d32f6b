package handlers

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/gofiber/websocket/v2"

	"github.com/saksham310/CommunityNest-sub000/internal/cache"
	"github.com/saksham310/CommunityNest-sub000/internal/errs"
	"github.com/saksham310/CommunityNest-sub000/internal/handlers/ws"
	"github.com/saksham310/CommunityNest-sub000/internal/service"
)

type WebSocketHandler struct {
	hub                 *ws.Hub
	secret              string
	messageService      *service.MessageService
	userService         *service.UserService
	groupService        *service.GroupService
	conversationService *service.ConversationService
	notificationService *service.NotificationService
	conversationCache   *cache.ConversationCache
}

func NewWebSocketHandler(
	hub *ws.Hub,
	secret string,
	messageService *service.MessageService,
	userService *service.UserService,
	groupService *service.GroupService,
	conversationService *service.ConversationService,
	notificationService *service.NotificationService,
	conversationCache *cache.ConversationCache,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:                 hub,
		secret:              secret,
		messageService:      messageService,
		userService:         userService,
		groupService:        groupService,
		conversationService: conversationService,
		notificationService: notificationService,
		conversationCache:   conversationCache,
	}
}

// GetHub exposes the hub so REST handlers can fan out over live connections.
func (h *WebSocketHandler) GetHub() *ws.Hub {
	return h.hub
}

// HandleWebSocket runs one connection. The first event must be a successful
// authenticate; everything else on an unauthenticated connection is rejected
// without binding any state.
func (h *WebSocketHandler) HandleWebSocket(c *websocket.Conn) {
	wsDebug := os.Getenv("WS_DEBUG") == "true"

	ctx := &ws.EventContext{
		Conn:                c,
		Hub:                 h.hub,
		Secret:              h.secret,
		MessageService:      h.messageService,
		UserService:         h.userService,
		GroupService:        h.groupService,
		ConversationService: h.conversationService,
		NotificationService: h.notificationService,
		ConversationCache:   h.conversationCache,
	}

	defer func() {
		if ctx.Session == nil {
			return
		}
		// A stale disconnect must not take a newer session offline; Unbind
		// reports whether this session was still the current one.
		if h.hub.Unbind(ctx.Session) {
			h.hub.BroadcastPresence()
			go func(userID uint) {
				if err := h.userService.SetUserOffline(context.Background(), userID); err != nil {
					log.Printf("Failed to set user %d offline: %v", userID, err)
				}
			}(ctx.UserID)
		}
	}()

	for {
		frameType, messageBytes, err := c.ReadMessage()
		if err != nil {
			if ctx.Session != nil {
				log.Printf("Read error for user %d: %v", ctx.UserID, err)
			}
			return
		}

		if wsDebug {
			log.Printf("ws_recv user_id=%d frame_type=%d size=%d", ctx.UserID, frameType, len(messageBytes))
		}

		event, err := ws.Deserialize(messageBytes)
		if err != nil {
			ws.SendError(ctx, errs.Validation("invalid event format"))
			continue
		}

		if err := event.Process(ctx); err != nil {
			if errors.Is(err, ws.ErrCloseConnection) {
				return
			}
			log.Printf("Error processing %s from user %d: %v", event.GetType(), ctx.UserID, err)
			ws.SendError(ctx, err)
		}
	}
}
