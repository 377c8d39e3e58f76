package websocket

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"voxarena/internal/debate"
	"voxarena/services"
)

const writeWait = 10 * time.Second

var errRunFinished = errors.New("generation run finished")

// streamIDPattern matches a Redis stream id: milliseconds with an optional
// sequence number.
var streamIDPattern = regexp.MustCompile(`^[0-9]+(-[0-9]+)?$`)

type EventSource interface {
	History(ctx context.Context, debateID string) ([]debate.Event, error)
	Tail(ctx context.Context, debateID, fromID string, fn func(debate.Event) error) error
}

// GenerationRelay streams a debate's generation events to a websocket client.
type GenerationRelay struct {
	events   EventSource
	upgrader websocket.Upgrader
	log      logrus.FieldLogger
}

// NewGenerationRelay accepts any origin when allowedOrigins is empty or "*".
func NewGenerationRelay(events EventSource, allowedOrigins []string, log logrus.FieldLogger) *GenerationRelay {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}
	return &GenerationRelay{
		events: events,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || allowed["*"] || origin == "" || allowed[origin]
			},
		},
	}
}

// client serialises writes from the relay and the ping handler.
type client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (c *client) SafeWriteJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(v)
}

// Handle serves GET /api/debates/:id/events. The optional lastEventId query
// parameter resumes after a stream id; otherwise the latest run is replayed.
func (h *GenerationRelay) Handle(c *gin.Context) {
	id := c.Param("id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid debate ID"})
		return
	}
	lastEventID := c.Query("lastEventId")
	if lastEventID != "" && !streamIDPattern.MatchString(lastEventID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid lastEventId"})
		return
	}

	if h.events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Generation events are unavailable"})
		return
	}

	history, err := h.events.History(c.Request.Context(), id)
	if err != nil {
		h.log.WithError(err).WithField("debate", id).Error("Failed to read generation history")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read generation events"})
		return
	}
	fromID := StartID(history, lastEventID)

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.WithError(err).Warn("WebSocket upgrade failed")
		return
	}
	defer conn.Close()
	cl := &client{conn: conn}

	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	go func() {
		defer cancel()
		for {
			var msg debate.ClientMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "ping" {
				if err := cl.SafeWriteJSON(gin.H{"type": "pong"}); err != nil {
					return
				}
			}
		}
	}()

	err = h.events.Tail(ctx, id, fromID, func(event debate.Event) error {
		if err := cl.SafeWriteJSON(event); err != nil {
			return err
		}
		if event.Type == services.EventGenerationCompleted || event.Type == services.EventGenerationFailed {
			return errRunFinished
		}
		return nil
	})

	if errors.Is(err, errRunFinished) {
		cl.writeMu.Lock()
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "generation finished"),
			time.Now().Add(writeWait))
		cl.writeMu.Unlock()
		return
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		h.log.WithError(err).WithField("debate", id).Debug("Generation relay stopped")
	}
}

// StartID picks the stream id to tail from. An explicit lastEventId wins.
// Otherwise relaying starts just before the most recent generation.started
// event, or after the last event when no run was started.
func StartID(history []debate.Event, lastEventID string) string {
	if lastEventID != "" {
		return lastEventID
	}
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Type != services.EventGenerationStarted {
			continue
		}
		if i == 0 {
			return "0"
		}
		return history[i-1].ID
	}
	if len(history) > 0 {
		return history[len(history)-1].ID
	}
	return "0"
}
