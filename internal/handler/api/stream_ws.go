package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	xhttp "CryptoBrain/pkg/http"
	"CryptoBrain/pkg/http/middleware"
	"CryptoBrain/pkg/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// StreamHandler pushes the confluence analysis of one symbol over a
// websocket every interval until the client goes away.
type StreamHandler struct {
	analysis Analyzer
	interval time.Duration
	log      *logger.Logger
	upgrader websocket.Upgrader
}

// NewStreamHandler accepts browser upgrades from origins only; clients that
// send no Origin header are always accepted.
func NewStreamHandler(analysis Analyzer, interval time.Duration, origins []string, log *logger.Logger) *StreamHandler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &StreamHandler{
		analysis: analysis,
		interval: interval,
		log:      log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || middleware.OriginAllowed(origins, origin)
			},
		},
	}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/ws/confluence", h.Confluence)
}

type streamMessage struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

func (h *StreamHandler) Confluence(c echo.Context) error {
	symbol := c.QueryParam("symbol")
	if symbol == "" {
		return xhttp.BadRequestErrorf("symbol is required")
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.log.Warn("websocket upgrade failed", logger.Error(err))
		return nil
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()
	go h.readPump(conn, cancel)

	log := h.log.With(logger.String("symbol", symbol), logger.String("remote", c.RealIP()))
	log.Info("confluence stream opened")
	defer log.Info("confluence stream closed")

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	if err := h.push(ctx, conn, symbol); err != nil {
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-ticker.C:
			if err := h.push(ctx, conn, symbol); err != nil {
				log.Debug("stream write failed", logger.Error(err))
				return nil
			}
		}
	}
}

// push writes one analysis frame. Analysis failures are sent to the client
// as error frames; only write failures end the stream.
func (h *StreamHandler) push(ctx context.Context, conn *websocket.Conn, symbol string) error {
	msg := streamMessage{Type: "confluence"}
	res, err := h.analysis.AnalyzeAllTimeframes(ctx, symbol, false)
	if err != nil {
		msg = streamMessage{Type: "error", Error: err.Error()}
	} else {
		msg.Data = res
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump drains client frames so control messages are processed, and
// cancels the stream when the client disconnects.
func (h *StreamHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
