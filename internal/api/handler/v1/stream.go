package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1/request"
	"github.com/vietanh2810/camp-animal-economy/internal/api/handler/v1/response"
	"github.com/vietanh2810/camp-animal-economy/internal/domain"
	"github.com/vietanh2810/camp-animal-economy/internal/view"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 16
)

type StreamHandler struct {
	svc      MarketService
	upgrader websocket.Upgrader
}

// NewStreamHandler accepts upgrades from allowedOrigins, or from any origin
// when the list is empty.
func NewStreamHandler(svc MarketService, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if len(allowedOrigins) == 0 {
					return true
				}
				return slices.Contains(allowedOrigins, r.Header.Get("Origin"))
			},
		},
	}
}

// session is one websocket connection and the market view mounted for it.
type session struct {
	id    string
	conn  *websocket.Conn
	view  *view.MarketView
	send  chan any
	dirty chan struct{}
	log   *zap.Logger
}

// HandleStream godoc
// @Summary      Live market session
// @Description  Upgrades to a websocket. The server pushes {"event":"market"} snapshots and answers
// @Description  {"action":"collect","type":"..."} with a receipt and {"action":"receipts"} with the session's receipts.
// @Tags         market
// @Success      101  {string}  string  "Switching Protocols"
// @Router       /market/stream [get]
func (h *StreamHandler) HandleStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	id := uuid.NewString()
	s := &session{
		id:    id,
		conn:  conn,
		send:  make(chan any, sendBuffer),
		dirty: make(chan struct{}, 1),
		log:   zap.L().With(zap.String("session", id)),
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s.view = view.Mount(ctx, h.svc, view.WithOnChange(func([]domain.MarketItem) {
		// Coalesce: the writer always sends the latest snapshot.
		select {
		case s.dirty <- struct{}{}:
		default:
		}
	}))
	defer s.view.Close()

	s.log.Info("market session opened")

	done := make(chan struct{})
	go s.writePump(done)

	s.readPump(ctx)

	close(done)
	s.log.Info("market session closed")
}

func (s *session) writePump(done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.conn.Close()
	}()

	for {
		select {
		case <-done:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			s.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-s.dirty:
			if err := s.write(response.NewMarketEvent(s.view.Items())); err != nil {
				return
			}

		case msg := <-s.send:
			if err := s.write(msg); err != nil {
				return
			}

		case <-ticker.C:
			s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *session) write(msg any) error {
	s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := s.conn.WriteJSON(msg); err != nil {
		s.log.Debug("websocket write failed", zap.Error(err))
		return err
	}

	return nil
}

func (s *session) readPump(ctx context.Context) {
	s.conn.SetReadLimit(maxMessageSize)
	s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.log.Warn("websocket read failed", zap.Error(err))
			}
			return
		}

		var req request.StreamRequest
		if err := json.Unmarshal(message, &req); err != nil {
			s.log.Debug("ignoring malformed message", zap.Error(err))
			continue
		}

		if err := req.Validate(); err != nil {
			s.log.Debug("ignoring invalid message", zap.String("action", req.Action), zap.Error(err))
			continue
		}

		switch req.Action {
		case request.ActionCollect:
			s.collect(ctx, req.Type)
		case request.ActionReceipts:
			s.enqueue(response.NewReceiptsEvent(s.view.Receipts()))
		}
	}
}

// collect failures are logged by the view and not reported to the client.
func (s *session) collect(ctx context.Context, itemType string) {
	receipt, ok, err := s.view.Collect(ctx, itemType)
	if err != nil || !ok {
		s.log.Debug("collect skipped", zap.String("type", itemType), zap.Bool("known", ok), zap.Error(err))
		return
	}

	s.enqueue(response.NewReceiptEvent(receipt))
}

func (s *session) enqueue(msg any) {
	select {
	case s.send <- msg:
	default:
		s.log.Warn("dropping message for slow client")
	}
}
