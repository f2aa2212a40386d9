// internal/handlers/query_ws.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/jason-s-yu/baccarat/internal/middleware"
	"github.com/jason-s-yu/baccarat/internal/protocol"
	"github.com/sirupsen/logrus"
)

// QuerySubprotocol must be offered by WebSocket clients.
const QuerySubprotocol = "baccarat"

const wsTransport = "ws"

// QueryWSHandler serves the query protocol over WebSocket with the same
// contract as the TCP server: one text message in, one text message out, then
// the connection is closed. Messages over protocol.MaxQueryBytes are refused.
func QueryWSHandler(logger *logrus.Logger, d *Dispatcher, timeout time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{QuerySubprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != QuerySubprotocol {
			logger.Warnf("Client %s connected with invalid subprotocol: %q", r.RemoteAddr, c.Subprotocol())
			c.Close(BadSubprotocolError, "Client must use the '"+QuerySubprotocol+"' subprotocol.")
			return
		}
		middleware.LogConnect(logger, r.RemoteAddr, wsTransport)
		c.SetReadLimit(protocol.MaxQueryBytes)

		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		start := time.Now()
		typ, data, err := c.Read(ctx)
		if err != nil {
			middleware.LogDisconnect(logger, r.RemoteAddr, wsTransport, err)
			return
		}
		if typ != websocket.MessageText {
			c.Close(NonTextQueryError, "Queries must be text messages.")
			return
		}

		resp := d.Handle(ctx, string(data))
		if err := c.Write(ctx, websocket.MessageText, []byte(resp)); err != nil {
			middleware.LogDisconnect(logger, r.RemoteAddr, wsTransport, err)
			return
		}
		middleware.LogQuery(logger, r.RemoteAddr, wsTransport, len(data), len(resp), time.Since(start))
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// NewMux routes the WebSocket gateway under /query and a liveness probe under /ping.
func NewMux(logger *logrus.Logger, d *Dispatcher, timeout time.Duration) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", PingHandler)
	mux.Handle("/query", middleware.LogMiddleware(logger)(QueryWSHandler(logger, d, timeout)))
	return mux
}

// PingHandler answers liveness probes.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
