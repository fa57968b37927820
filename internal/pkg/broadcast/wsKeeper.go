package broadcast

import (
	"strings"
	"sync"
	"time"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/airenas/scribe/internal/pkg/jobs"
	"github.com/gorilla/websocket"
)

// WsConn is interface for websocket handling
type WsConn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteJSON(v interface{}) error
	Close() error
}

type connState struct {
	writeLock sync.Mutex
}

// WSConnKeeper implements observer connection management and job snapshot
// fan-out. Delivery is fire-and-forget, a dead connection is dropped.
type WSConnKeeper struct {
	connections map[WsConn]*connState
	mapLock     *sync.Mutex
	timeOut     time.Duration
}

// NewWSConnKeeper creates manager
func NewWSConnKeeper() *WSConnKeeper {
	res := &WSConnKeeper{}
	res.connections = make(map[WsConn]*connState)
	res.mapLock = &sync.Mutex{}
	res.timeOut = time.Minute * 30 // max time limit for connection - if longer so sorry
	return res
}

// HandleConnection registers the connection and loops until it dies.
// A "ping" text message gets a "pong" reply, anything else is ignored.
func (kp *WSConnKeeper) HandleConnection(conn WsConn) error {
	st := kp.saveConnection(conn)
	defer kp.deleteConnection(conn)
	defer conn.Close()

	readCh := make(chan string)
	go func() {
		defer close(readCh)
		defer goapp.Log.Debug().Msg("read routine ended")
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				goapp.Log.Debug().Err(err).Msg("ws read ended")
				return
			}
			readCh <- strings.TrimSpace(string(message))
		}
	}()

	ta := time.After(kp.timeOut)
loop:
	for {
		select {
		case <-ta:
			goapp.Log.Debug().Msg("conn timeouted")
			break loop
		case msg, ok := <-readCh:
			if !ok {
				goapp.Log.Debug().Msg("conn read closed?")
				break loop
			}
			if msg == "ping" {
				if err := writeMsg(conn, st, websocket.TextMessage, []byte("pong")); err != nil {
					goapp.Log.Debug().Err(err).Msg("can't write pong")
					break loop
				}
			}
			ta = time.After(kp.timeOut)
		}
	}
	goapp.Log.Info().Msg("handleConnection finish")
	return nil
}

// Broadcast sends the job snapshot to every connected observer
func (kp *WSConnKeeper) Broadcast(j *jobs.Job) {
	kp.mapLock.Lock()
	conns := make(map[WsConn]*connState, len(kp.connections))
	for c, st := range kp.connections {
		conns[c] = st
	}
	kp.mapLock.Unlock()

	for c, st := range conns {
		if err := writeJSON(c, st, j); err != nil {
			goapp.Log.Debug().Err(err).Msg("drop dead ws connection")
			kp.deleteConnection(c)
			_ = c.Close()
		}
	}
}

// ConnectionCount returns active observer count
func (kp *WSConnKeeper) ConnectionCount() int {
	kp.mapLock.Lock()
	defer kp.mapLock.Unlock()
	return len(kp.connections)
}

func writeMsg(conn WsConn, st *connState, tp int, data []byte) error {
	st.writeLock.Lock()
	defer st.writeLock.Unlock()
	return conn.WriteMessage(tp, data)
}

func writeJSON(conn WsConn, st *connState, v interface{}) error {
	st.writeLock.Lock()
	defer st.writeLock.Unlock()
	return conn.WriteJSON(v)
}

func (kp *WSConnKeeper) saveConnection(conn WsConn) *connState {
	kp.mapLock.Lock()
	defer kp.mapLock.Unlock()
	st := &connState{}
	kp.connections[conn] = st
	goapp.Log.Info().Int("active", len(kp.connections)).Msg("saveConnection")
	return st
}

func (kp *WSConnKeeper) deleteConnection(conn WsConn) {
	kp.mapLock.Lock()
	defer kp.mapLock.Unlock()
	delete(kp.connections, conn)
	goapp.Log.Info().Int("active", len(kp.connections)).Msg("deleteConnection")
}
