package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ourstory/scrapbook/internal/entity"
	"github.com/ourstory/scrapbook/internal/identity"
)

func TestNotificationRoutes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	mine := f.login(t, "me")
	theirs := f.login(t, "boyfriend")

	_, err := f.app.Milestones.CreateAs(ctx, identity.User2, entity.Milestone{Title: "First date", Date: "2023-05-01"})
	require.NoError(t, err)
	_, err = f.app.Memories.CreateAs(ctx, identity.User2, entity.Memory{Title: "Beach", Date: "2023-07-01"})
	require.NoError(t, err)

	w := f.do(http.MethodGet, "/api/v1/notifications", mine, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decodeBody[[]entity.Notification](t, w)
	require.Len(t, list, 2)
	assert.Equal(t, "New Memory Added", list[0].Title)

	w = f.do(http.MethodGet, "/api/v1/notifications", theirs, nil)
	assert.Empty(t, decodeBody[[]entity.Notification](t, w))

	// the partner cannot mark my notification read
	assert.Equal(t, http.StatusNotFound, f.do(http.MethodPost, "/api/v1/notifications/"+list[0].ID+"/read", theirs, nil).Code)
	require.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/notifications/"+list[0].ID+"/read", mine, nil).Code)

	w = f.do(http.MethodGet, "/api/v1/notifications?unread=true", mine, nil)
	unread := decodeBody[[]entity.Notification](t, w)
	require.Len(t, unread, 1)
	assert.Equal(t, list[1].ID, unread[0].ID)

	require.Equal(t, http.StatusNoContent, f.do(http.MethodPost, "/api/v1/notifications/read-all", mine, nil).Code)
	w = f.do(http.MethodGet, "/api/v1/notifications?unread=true", mine, nil)
	assert.Empty(t, decodeBody[[]entity.Notification](t, w))

	require.Equal(t, http.StatusNoContent, f.do(http.MethodDelete, "/api/v1/notifications/"+list[1].ID, mine, nil).Code)
	w = f.do(http.MethodGet, "/api/v1/notifications", mine, nil)
	assert.Len(t, decodeBody[[]entity.Notification](t, w), 1)
}

func TestNotificationStream(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.r)
	defer srv.Close()

	mine := f.login(t, "me")
	theirs := f.login(t, "boyfriend")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notifications/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Authorization": {"Bearer " + theirs}})
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, Frame{Type: "hello", User: "user2"}, hello)

	// subscription is live once hello arrives
	w := f.do(http.MethodPost, "/api/v1/recipes", mine, map[string]any{
		"title": "Lasagna", "ingredients": []string{"pasta"}, "instructions": []string{"bake"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	require.Equal(t, "notification", got.Type)
	require.NotNil(t, got.Notification)
	assert.Equal(t, identity.User2, got.Notification.UserID)
	assert.Equal(t, `Me added a new recipe: "Lasagna"`, got.Notification.Message)
}

func TestNotificationStreamQueryToken(t *testing.T) {
	f := newFixture(t)
	srv := httptest.NewServer(f.r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/notifications/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token="+f.login(t, "me"), nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()
	var hello Frame
	require.NoError(t, conn.ReadJSON(&hello))
	assert.Equal(t, "user1", hello.User)
}
