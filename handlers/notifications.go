package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/notify"
	"github.com/ourstory/scrapbook/pkg/metrics"
	"github.com/ourstory/scrapbook/pkg/middleware"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Frame is one websocket message sent to a subscriber.
type Frame struct {
	Type         string               `json:"type"` // hello|notification
	User         string               `json:"user,omitempty"`
	Notification *entity.Notification `json:"notification,omitempty"`
}

type NotificationHandler struct {
	notes    *notify.Service
	upgrader websocket.Upgrader
}

func NewNotificationHandler(notes *notify.Service) *NotificationHandler {
	return &NotificationHandler{
		notes: notes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Register mounts the notification routes. All of them act on the caller's
// own notifications only.
func (h *NotificationHandler) Register(rg *gin.RouterGroup) {
	g := rg.Group("/" + entity.TableNotifications)
	g.GET("", h.List)
	g.GET("/ws", h.Stream)
	g.POST("/read-all", h.MarkAllRead)
	g.POST("/:id/read", h.MarkRead)
	g.DELETE("/:id", h.Delete)
}

// List returns the caller's notifications, newest first. ?unread=true keeps
// only the unread ones.
func (h *NotificationHandler) List(c *gin.Context) {
	role, _ := middleware.IdentityFrom(c)
	var (
		list []entity.Notification
		err  error
	)
	if c.Query("unread") == "true" {
		list, err = h.notes.GetUnread(c.Request.Context(), role)
	} else {
		list, err = h.notes.GetAll(c.Request.Context(), role)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	role, _ := middleware.IdentityFrom(c)
	if err := h.notes.MarkRead(c.Request.Context(), role, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	role, _ := middleware.IdentityFrom(c)
	if err := h.notes.MarkAllRead(c.Request.Context(), role); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	role, _ := middleware.IdentityFrom(c)
	if err := h.notes.Delete(c.Request.Context(), role, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Stream upgrades to a websocket and pushes the caller's new notifications.
// The hello frame is written once the subscription is live.
func (h *NotificationHandler) Stream(c *gin.Context) {
	role, _ := middleware.IdentityFrom(c)
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warnf("websocket upgrade: %v", err)
		return
	}
	defer conn.Close()
	metrics.PushConnections.Inc()
	defer metrics.PushConnections.Dec()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := make(chan entity.Notification, 16)
	sub, err := h.notes.Subscribe(ctx, role, func(n entity.Notification) {
		select {
		case out <- n:
		case <-ctx.Done():
		}
	})
	if err != nil {
		log.Errorf("subscribe %s: %v", role, err)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"), time.Now().Add(writeWait))
		return
	}
	defer sub.Close()

	// reader: keeps the read deadline fresh and notices the client going away
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error { return conn.SetReadDeadline(time.Now().Add(pongWait)) })
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := h.write(conn, Frame{Type: "hello", User: role.String()}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-out:
			if err := h.write(conn, Frame{Type: "notification", Notification: &n}); err != nil {
				log.Debugf("push to %s: %v", role, err)
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func (h *NotificationHandler) write(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}
