package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/akunmarket/platform/claims-service/internal/notifier"
)

// EventsHandler bridges the Redis claim channels onto SSE streams. Members
// get their own filtered channel, admins the unfiltered one. Subscriptions
// last for the life of the request; reconnection is the client's business.
type EventsHandler struct {
	redisClient *redis.Client
}

func NewEventsHandler(redisClient *redis.Client) *EventsHandler {
	return &EventsHandler{redisClient: redisClient}
}

func (h *EventsHandler) StreamUser(c *gin.Context) {
	h.stream(c, notifier.UserChannel(currentUserID(c)))
}

func (h *EventsHandler) StreamAdmin(c *gin.Context) {
	h.stream(c, notifier.AdminChannel)
}

func (h *EventsHandler) stream(c *gin.Context, channel string) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	sub := h.redisClient.Subscribe(c.Request.Context(), channel)
	defer sub.Close()
	events := sub.Channel()

	c.Stream(func(w io.Writer) bool {
		select {
		case msg, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("claim", msg.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
