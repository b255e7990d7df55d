package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"portfolio/internal/logger"
	"portfolio/internal/rotor"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type envelope struct {
	Type  string            `json:"type"`
	Angle float64           `json:"angle"`
	Mode  rotor.Mode        `json:"mode"`
	Items []json.RawMessage `json:"items"`
}

type testRig struct {
	hub     *HubService
	server  *httptest.Server
	viewers chan *Viewer
	cancel  context.CancelFunc
}

func newRig(t *testing.T, items []rotor.Item) *testRig {
	t.Helper()

	log, err := logger.NewLogger(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHubService(log)
	go hub.Run(ctx)

	rig := &testRig{hub: hub, viewers: make(chan *Viewer, 4), cancel: cancel}
	upgrader := websocket.Upgrader{}
	rig.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		v := NewViewer(conn, log)
		v.Start(context.Background(), rotor.New(items, rotor.DefaultConfig()), time.Hour)
		hub.Register(v)
		rig.viewers <- v
		v.ReadPump()
		hub.Unregister(v)
	}))

	t.Cleanup(func() {
		cancel()
		<-hub.Done()
		rig.server.Close()
	})
	return rig
}

func (rig *testRig) dial(t *testing.T) (*websocket.Conn, *Viewer) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(rig.server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	select {
	case v := <-rig.viewers:
		return conn, v
	case <-time.After(2 * time.Second):
		t.Fatal("viewer not created")
		return nil, nil
	}
}

func readUntil(t *testing.T, conn *websocket.Conn, typ string) envelope {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var env envelope
		require.NoError(t, json.Unmarshal(data, &env))
		if env.Type == typ {
			return env
		}
	}
}

func TestViewer_FirstFrameAndPointer(t *testing.T) {
	rig := newRig(t, []rotor.Item{{ImageURL: "a"}, {ImageURL: "b"}, {ImageURL: "c"}})
	conn, _ := rig.dial(t)

	first := readUntil(t, conn, "frame")
	assert.Len(t, first.Items, 3)
	assert.Equal(t, rotor.ModeAuto, first.Mode)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pointerdown","x":0,"y":0}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"bogus"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"pointermove","x":-225,"y":0}`)))

	var f envelope
	for i := 0; i < 5; i++ {
		f = readUntil(t, conn, "frame")
		if f.Angle != 0 {
			break
		}
	}
	assert.Equal(t, rotor.ModeDragging, f.Mode)
	assert.InDelta(t, 90.0, f.Angle, 1e-9)
}

func TestHub_BroadcastDataAndEvent(t *testing.T) {
	rig := newRig(t, nil)
	conn, _ := rig.dial(t)
	readUntil(t, conn, "frame")

	require.Eventually(t, func() bool { return rig.hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	rig.hub.Broadcast([]byte(`{"type":"items","items":[]}`), &rotor.Event{
		Kind:  rotor.EventItems,
		Items: []rotor.Item{{ImageURL: "only"}},
	})

	readUntil(t, conn, "items")
	f := readUntil(t, conn, "frame")
	assert.Len(t, f.Items, 1)
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	rig := newRig(t, nil)
	conn, v := rig.dial(t)
	readUntil(t, conn, "frame")
	require.Eventually(t, func() bool { return rig.hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	conn.Close()

	select {
	case <-v.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("viewer not closed after disconnect")
	}
	assert.Eventually(t, func() bool { return rig.hub.GetClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_ShutdownClosesViewers(t *testing.T) {
	rig := newRig(t, nil)
	conn, v := rig.dial(t)
	readUntil(t, conn, "frame")
	require.Eventually(t, func() bool { return rig.hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	rig.cancel()

	select {
	case <-v.Done():
	case <-time.After(3 * time.Second):
		t.Fatal("viewer not closed on shutdown")
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	assert.False(t, v.Dispatch(rotor.Event{Kind: rotor.EventPointerUp}))
	assert.False(t, v.Enqueue([]byte("late")))
}

func TestHub_StuckViewerCloseDoesNotStallHub(t *testing.T) {
	rig := newRig(t, nil)

	log, err := logger.NewLogger(t.TempDir())
	require.NoError(t, err)
	defer log.Close()

	// no write pump: Close blocks until writerDone is closed below
	stuck := NewViewer(nil, log)
	stuck.runner = rotor.Start(context.Background(), rotor.New(nil, rotor.DefaultConfig()), time.Hour, func(rotor.Frame) {})

	rig.hub.Register(stuck)
	require.Eventually(t, func() bool { return rig.hub.GetClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	rig.hub.Unregister(stuck)

	broadcast := make(chan struct{})
	go func() {
		rig.hub.Broadcast([]byte(`{"type":"items","items":[]}`), nil)
		close(broadcast)
	}()
	select {
	case <-broadcast:
	case <-time.After(2 * time.Second):
		t.Fatal("hub stalled while closing a viewer")
	}
	assert.Equal(t, 0, rig.hub.GetClientCount())

	close(stuck.writerDone)
	<-stuck.Done()
}
