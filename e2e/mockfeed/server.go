// Package mockfeed provides a mock chart-platform quote server for testing.
// It serves the JSON tick-frame websocket stream that tickfeed.WebSocketSource
// consumes, plus a small REST surface for inspecting the last published price.
package mockfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rxtech-lab/ladder-trading/internal/types"
)

// tickFrame mirrors the wire shape emitted by the chart platform's quote
// stream.
type tickFrame struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	Timestamp time.Time `json:"timestamp"`
}

// MockQuoteServer is an in-process quote server. Tests publish ticks through
// PushTick or ServeTicks and connect a WebSocketSource to WebSocketURL().
type MockQuoteServer struct {
	mu sync.RWMutex

	httpServer *http.Server
	listener   net.Listener

	upgrader websocket.Upgrader

	lastPrices map[string]float64

	wsMu          sync.RWMutex
	wsConnections map[*websocket.Conn]bool
}

// NewMockQuoteServer creates a stopped server; call Start before connecting.
func NewMockQuoteServer() *MockQuoteServer {
	return &MockQuoteServer{
		mu:         sync.RWMutex{},
		httpServer: nil,
		listener:   nil,
		upgrader: websocket.Upgrader{ //nolint:exhaustruct
			CheckOrigin: func(_ *http.Request) bool { return true },
		},
		lastPrices:    make(map[string]float64),
		wsMu:          sync.RWMutex{},
		wsConnections: make(map[*websocket.Conn]bool),
	}
}

// Start begins serving on the given address. If address is empty or ":0", a
// random available port is used.
func (s *MockQuoteServer) Start(address string) error {
	if address == "" {
		address = ":0"
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}

	s.listener = listener

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/quote/{symbol}", s.handleQuote).Methods("GET")
	router.HandleFunc("/ws/quotes", s.handleWebSocket)

	s.httpServer = &http.Server{ //nolint:exhaustruct
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != http.ErrServerClosed {
			fmt.Printf("HTTP server error: %v\n", err)
		}
	}()

	return nil
}

// Stop closes all websocket connections and shuts the server down.
func (s *MockQuoteServer) Stop() error {
	s.wsMu.Lock()
	for conn := range s.wsConnections {
		conn.Close()
	}

	s.wsConnections = make(map[*websocket.Conn]bool)
	s.wsMu.Unlock()

	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return s.httpServer.Shutdown(ctx)
	}

	return nil
}

// Address returns the address the server is listening on.
func (s *MockQuoteServer) Address() string {
	if s.listener == nil {
		return ""
	}

	return s.listener.Addr().String()
}

// WebSocketURL returns the quote-stream endpoint for WebSocketSource.
func (s *MockQuoteServer) WebSocketURL() string {
	return "ws://" + s.Address() + "/ws/quotes"
}

// PushTick publishes one tick to every connected stream client.
func (s *MockQuoteServer) PushTick(tick types.PriceTick) {
	s.mu.Lock()
	s.lastPrices[tick.Symbol] = tick.Price
	s.mu.Unlock()

	frame := tickFrame{
		Symbol:    tick.Symbol,
		Price:     tick.Price,
		Timestamp: tick.Timestamp,
	}

	s.wsMu.RLock()
	defer s.wsMu.RUnlock()

	for conn := range s.wsConnections {
		// A write error means the client went away; the read loop in
		// handleWebSocket cleans the connection up.
		_ = conn.WriteJSON(frame)
	}
}

// ServeTicks publishes a tick series at the given pace until the series ends
// or the context is cancelled.
func (s *MockQuoteServer) ServeTicks(ctx context.Context, ticks []types.PriceTick, pace time.Duration) {
	for _, tick := range ticks {
		select {
		case <-ctx.Done():
			return
		case <-time.After(pace):
		}

		s.PushTick(tick)
	}
}

// ConnectionCount returns the number of connected stream clients.
func (s *MockQuoteServer) ConnectionCount() int {
	s.wsMu.RLock()
	defer s.wsMu.RUnlock()

	return len(s.wsConnections)
}

// LastPrice returns the most recently published price for a symbol.
func (s *MockQuoteServer) LastPrice(symbol string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.lastPrices[symbol]
}

// handleQuote handles GET /api/v1/quote/{symbol}.
func (s *MockQuoteServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol := mux.Vars(r)["symbol"]

	s.mu.RLock()
	price, ok := s.lastPrices[symbol]
	s.mu.RUnlock()

	if !ok {
		http.Error(w, "Unknown symbol", http.StatusNotFound)

		return
	}

	response := map[string]string{
		"symbol": symbol,
		"price":  strconv.FormatFloat(price, 'f', 8, 64),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response) //nolint:errcheck
}

// handleWebSocket upgrades the connection and registers it for broadcasts.
func (s *MockQuoteServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	s.wsMu.Lock()
	s.wsConnections[conn] = true
	s.wsMu.Unlock()

	defer func() {
		s.wsMu.Lock()
		delete(s.wsConnections, conn)
		s.wsMu.Unlock()
		conn.Close()
	}()

	// The stream is write-only from the server's side; the read loop only
	// exists to detect the client closing.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
