package wsgrader

import (
	"context"
	"net/http"
	"time"

	"github.com/criyle/go-nbjudge/cmd/nbjudge/model"
	"github.com/criyle/go-nbjudge/store"
	"github.com/criyle/go-nbjudge/worker"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Register registers web socket handle /ws
type Register interface {
	Register(*gin.Engine)
}

// New creates new websocket handle
func New(worker worker.Worker, specs store.SpecStore, logger *zap.Logger) Register {
	return &wsHandle{
		worker: worker,
		specs:  specs,
		logger: logger,
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

type wsHandle struct {
	worker worker.Worker
	specs  store.SpecStore
	logger *zap.Logger
}

func (h *wsHandle) Register(r *gin.Engine) {
	r.GET("/ws", h.handleWS)
}

// handleWS grades every request message and writes back responses as they
// finish, which may be out of order. Invalid requests get an error response
// with their request id.
func (h *wsHandle) handleWS(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.Error(err)
		return
	}
	resultCh := make(chan model.Response, 128)
	ctx, cancel := context.WithCancel(context.Background())

	// read request
	go func() {
		defer cancel()
		defer conn.Close()
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(pongWait))
			return nil
		})

		for {
			req := new(model.Request)
			if err := conn.ReadJSON(req); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					h.logger.Warn("ws read error", zap.Error(err))
				}
				return
			}
			r, err := model.ConvertRequest(req, h.specs)
			if err != nil {
				h.logger.Debug("ws convert error", zap.String("requestId", req.RequestID), zap.Error(err))
				h.send(ctx, resultCh, model.Response{RequestID: req.RequestID, ErrorMsg: err.Error()})
				continue
			}
			go func() {
				select {
				case ret := <-h.worker.Submit(ctx, r):
					h.send(ctx, resultCh, model.ConvertResponse(ret))
				case <-ctx.Done():
				}
			}()
		}
	}()

	// write result
	go func() {
		defer conn.Close()
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case r := <-resultCh:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(r); err != nil {
					h.logger.Warn("ws write error", zap.Error(err))
					return
				}
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
}

func (h *wsHandle) send(ctx context.Context, ch chan<- model.Response, r model.Response) {
	select {
	case ch <- r:
	case <-ctx.Done():
	}
}
