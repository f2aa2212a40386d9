// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the query gateway.
const (
	BadSubprotocolError = 3000 // Client connected without the query subprotocol.
	NonTextQueryError   = 3001 // Query arrived as a binary message.
)
