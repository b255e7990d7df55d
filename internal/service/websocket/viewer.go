package websocket

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"portfolio/internal/dto"
	"portfolio/internal/logger"
	"portfolio/internal/rotor"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	controlBuffer  = 16
	frameBuffer    = 4
)

// Viewer is one connected gallery viewer with its own rotor. The write pump
// is the only goroutine writing to the connection. Control messages and
// frames are queued separately so a frame backlog never blocks a control
// message.
type Viewer struct {
	id      string
	conn    *websocket.Conn
	control chan []byte
	frames  chan []byte
	runner  *rotor.Runner
	logger  *logger.Logger

	done       chan struct{}
	writerDone chan struct{}
	closeOnce  sync.Once
}

// NewViewer wraps conn. Nothing runs until Start.
func NewViewer(conn *websocket.Conn, logger *logger.Logger) *Viewer {
	return &Viewer{
		id:         uuid.NewString(),
		conn:       conn,
		control:    make(chan []byte, controlBuffer),
		frames:     make(chan []byte, frameBuffer),
		logger:     logger,
		done:       make(chan struct{}),
		writerDone: make(chan struct{}),
	}
}

// ID identifies the viewer in logs and the hello message.
func (v *Viewer) ID() string {
	return v.id
}

// Start launches the write pump and the viewer's rotor frame loop.
func (v *Viewer) Start(ctx context.Context, r *rotor.Rotor, interval time.Duration) {
	go v.writePump()
	v.runner = rotor.Start(ctx, r, interval, v.sendFrame)
}

// Enqueue queues a control message. It reports false when the viewer is
// closed or too slow to accept it.
func (v *Viewer) Enqueue(msg []byte) bool {
	select {
	case <-v.done:
		return false
	default:
	}

	select {
	case v.control <- msg:
		return true
	case <-v.done:
		return false
	default:
		return false
	}
}

// Dispatch forwards an event to the viewer's rotor.
func (v *Viewer) Dispatch(ev rotor.Event) bool {
	if v.runner == nil {
		return false
	}
	return v.runner.Send(ev)
}

// sendFrame runs on the rotor loop, the only producer of frames. When the
// frame queue is full the oldest frame is discarded for the new one.
func (v *Viewer) sendFrame(f rotor.Frame) {
	data, err := dto.NewFrame(f)
	if err != nil {
		v.logger.Error("Viewer %s: failed to encode frame: %v", v.id, err)
		return
	}

	select {
	case <-v.done:
		return
	case v.frames <- data:
		return
	default:
	}

	select {
	case <-v.frames:
	default:
	}
	select {
	case v.frames <- data:
	default:
	}
}

// ReadPump reads pointer events until the connection fails or the viewer is
// closed. Malformed messages are logged and skipped.
func (v *Viewer) ReadPump() {
	v.conn.SetReadLimit(maxMessageSize)
	v.conn.SetReadDeadline(time.Now().Add(pongWait))
	v.conn.SetPongHandler(func(string) error {
		return v.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := v.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				v.logger.Warning("Viewer %s disconnected with error: %v", v.id, err)
			}
			return
		}

		ev, err := dto.ParsePointer(data)
		if err != nil {
			v.logger.Warning("Viewer %s: %v", v.id, err)
			continue
		}
		if !v.Dispatch(ev) {
			return
		}
	}
}

func (v *Viewer) writePump() {
	defer close(v.writerDone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		// pending control messages go out ahead of any queued frame
		select {
		case msg := <-v.control:
			if !v.write(msg) {
				return
			}
			continue
		default:
		}

		select {
		case <-v.done:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			v.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			v.conn.Close()
			return
		case msg := <-v.control:
			if !v.write(msg) {
				return
			}
		case msg := <-v.frames:
			if !v.write(msg) {
				return
			}
		case <-ticker.C:
			v.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := v.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				v.conn.Close()
				return
			}
		}
	}
}

func (v *Viewer) write(msg []byte) bool {
	v.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := v.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
		v.logger.Warning("Viewer %s: write failed: %v", v.id, err)
		v.conn.Close()
		return false
	}
	return true
}

// Close stops the rotor loop and the write pump. The write pump closes the
// connection on its way out, which unblocks ReadPump.
func (v *Viewer) Close() {
	v.closeOnce.Do(func() {
		if v.runner != nil {
			v.runner.Stop()
		}
		close(v.done)
		if v.runner != nil {
			<-v.writerDone
		} else {
			v.conn.Close()
		}
	})
}

// Done is closed once Close has been called.
func (v *Viewer) Done() <-chan struct{} {
	return v.done
}
