package websocket

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mavedefi/whitelist-dapp/internal/core/infrastructure/event"
	"github.com/mavedefi/whitelist-dapp/internal/page"
)

type staticSnapshot struct {
	state page.State
}

func (s staticSnapshot) Snapshot() page.State { return s.state }

func newTestWS(t *testing.T, initial page.State) (*Server, *event.EventBus, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := event.New()
	srv := NewServer(nil, bus, staticSnapshot{state: initial})
	require.NoError(t, srv.Start())
	t.Cleanup(func() { _ = srv.Stop() })

	router := gin.New()
	router.GET("/ws", srv.HandleWebSocket)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)

	return srv, bus, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readState(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_InitialSnapshot(t *testing.T) {
	initial := page.State{
		Phase:  page.PhaseDisconnected,
		Button: page.Button{Label: page.LabelConnect, Action: page.ActionConnect},
	}
	_, _, url := newTestWS(t, initial)

	conn := dial(t, url)
	msg := readState(t, conn)
	assert.Equal(t, MessageTypeState, msg.Type)
	assert.Equal(t, initial, msg.Data)
}

func TestServer_BroadcastsPageEvents(t *testing.T) {
	srv, bus, url := newTestWS(t, page.State{Phase: page.PhaseDisconnected})

	a := dial(t, url)
	b := dial(t, url)
	readState(t, a)
	readState(t, b)

	require.Eventually(t, func() bool {
		return srv.Subscriptions().ClientCount() == 2
	}, 2*time.Second, 10*time.Millisecond)

	pending := page.State{
		Phase:     page.PhaseConnectedPending,
		Connected: true,
		Loading:   true,
		Count:     3,
		Button:    page.Button{Label: page.LabelLoading, Disabled: true},
	}
	bus.Publish(event.PageStateChanged, pending)

	assert.Equal(t, pending, readState(t, a).Data)
	assert.Equal(t, pending, readState(t, b).Data)
}

func TestServer_ClientDisconnectRemoved(t *testing.T) {
	srv, _, url := newTestWS(t, page.State{})

	conn := dial(t, url)
	readState(t, conn)
	require.Eventually(t, func() bool {
		return srv.Subscriptions().ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return srv.Subscriptions().ClientCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestServer_StopClosesClients(t *testing.T) {
	srv, bus, url := newTestWS(t, page.State{})

	conn := dial(t, url)
	readState(t, conn)
	require.Eventually(t, func() bool {
		return srv.Subscriptions().ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, srv.Stop())
	assert.Equal(t, 0, srv.Subscriptions().ClientCount())
	assert.False(t, bus.HasCallback(event.PageStateChanged))
	assert.False(t, bus.HasCallback(event.WalletAlert))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestServer_BroadcastsWalletAlert(t *testing.T) {
	srv, bus, url := newTestWS(t, page.State{Phase: page.PhaseDisconnected})

	conn := dial(t, url)
	readState(t, conn)
	require.Eventually(t, func() bool {
		return srv.Subscriptions().ClientCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	bus.Publish(event.WalletAlert, "Change the network to Rinkeby.")
	bus.WaitAsync()

	msg := readState(t, conn)
	assert.Equal(t, MessageTypeAlert, msg.Type)
	assert.Equal(t, "Change the network to Rinkeby.", msg.Alert)
}
