package socket

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/jacobpatterson1549/swipe-words/game/grid"
	"github.com/jacobpatterson1549/swipe-words/game/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpgrader(t *testing.T) {
	u := NewUpgrader(1024, 1024)
	conns := make(chan Conn, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := u.Upgrade(w, r)
		if err != nil {
			return
		}
		conns <- c
	}))
	defer srv.Close()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()
	c := <-conns
	defer c.Close()

	m := message.Message{Type: message.Tap, Coord: &grid.Coord{Row: 1, Col: 2}}
	require.NoError(t, client.WriteJSON(m))
	var got message.Message
	require.NoError(t, c.ReadMessage(&got))
	assert.Equal(t, m, got)

	m2 := message.Message{Type: message.SocketInfo, Info: "hello"}
	require.NoError(t, c.WriteMessage(m2))
	var got2 message.Message
	require.NoError(t, client.ReadJSON(&got2))
	assert.Equal(t, m2, got2)

	require.NoError(t, c.WritePing())
	require.NoError(t, c.WriteClose("bye"))
	_, _, err = client.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "wanted normal close, got %v", err)
	assert.True(t, c.IsNormalClose(err))
	assert.False(t, c.IsNormalClose(fmt.Errorf("connection reset")))
	assert.False(t, c.IsNormalClose(&websocket.CloseError{Code: websocket.CloseAbnormalClosure}))
}

func TestUpgraderRejectsHTTP(t *testing.T) {
	u := NewUpgrader(1024, 1024)
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	_, err := u.Upgrade(w, r)
	assert.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
