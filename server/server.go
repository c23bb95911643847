package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

const (
	errTitleParse         = "Parse error"
	errTitleInvalidReq    = "Invalid Request"
	errTitleNotFound      = "Method not found"
	errTitleServer        = "Server error"
	errMsgParse           = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC  = "'jsonrpc' must be '2.0'"
	errMsgIDRequired      = "'id' field is required"
	errMsgMethodRequired  = "'method' is required"
	errMsgTextOnly        = "only text messages accepted for requests"
	shutdownGraceDuration = 5 * time.Second
)

// Server timeouts
const (
	ReadTimeout  = 10 * time.Second
	WriteTimeout = 10 * time.Second
	IdleTimeout  = 120 * time.Second
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Toggle is a flag flipped by the Ctrl-Alt-Del combo.
type Toggle struct {
	on atomic.Bool
}

// Flip inverts the flag.
func (t *Toggle) Flip() {
	for {
		old := t.on.Load()
		if t.on.CompareAndSwap(old, !old) {
			utils.Info("Orientation workaround %s", map[bool]string{true: "enabled", false: "disabled"}[!old])
			return
		}
	}
}

func (t *Toggle) Enabled() bool {
	return t.on.Load()
}

// Options configures a Server.
type Options struct {
	EnableCORS bool
	// Token, when set, is required as a bearer token on /rpc and /ws.
	Token  string
	Toggle *Toggle
}

// Server exposes one bridge over JSON-RPC. Event methods are serialized so
// the bridge only ever sees one caller.
type Server struct {
	bridge  *bridge.Bridge
	opts    Options
	eventMu sync.Mutex

	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// New creates a server around b.
func New(b *bridge.Bridge, opts Options) *Server {
	if opts.Toggle == nil {
		opts.Toggle = &Toggle{}
	}
	return &Server{
		bridge:     b,
		opts:       opts,
		shutdownCh: make(chan struct{}),
	}
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// authMiddleware requires the configured bearer token. With allowQuery the
// token may also come from the token query parameter, for browser WebSocket
// clients that cannot set headers on the upgrade request.
func authMiddleware(token string, allowQuery bool, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		provided := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if provided == "" && allowQuery {
			provided = r.URL.Query().Get("token")
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler with every route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	var rpc http.Handler = http.HandlerFunc(s.handleJSONRPC)
	var ws http.Handler = http.HandlerFunc(s.handleWebSocket)
	if s.opts.Token != "" {
		rpc = authMiddleware(s.opts.Token, false, rpc)
		ws = authMiddleware(s.opts.Token, true, ws)
	}

	mux.HandleFunc("/", sendBanner)
	mux.Handle("/rpc", rpc)
	mux.Handle("/ws", ws)

	var handler http.Handler = mux
	if s.opts.EnableCORS {
		handler = corsMiddleware(mux)
	}
	return handler
}

// NormalizeAddr turns a bare port into ":port".
func NormalizeAddr(addr string) (string, error) {
	// if host is missing, default to all interfaces
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

// ListenAndServe serves until the server.shutdown method is called or the
// listener fails.
func (s *Server) ListenAndServe(addr string) error {
	addr, err := NormalizeAddr(addr)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	go func() {
		<-s.shutdownCh
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGraceDuration)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			utils.Warn("Server shutdown: %v", err)
		}
	}()

	utils.Info("Starting server on http://%s...", httpServer.Addr)
	err = httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		utils.Info("Server stopped")
		return nil
	}
	return err
}

// Shutdown asks ListenAndServe to stop. It is safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdownCh)
	})
}

// Done is closed once shutdown has been requested.
func (s *Server) Done() <-chan struct{} {
	return s.shutdownCh
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParse, errMsgParse)
		return
	}

	if req.JSONRPC != "2.0" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgInvalidJSONRPC)
		return
	}

	if req.ID == nil {
		sendJSONRPCError(w, nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgIDRequired)
		return
	}

	if req.Method == "" {
		sendJSONRPCError(w, req.ID, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgMethodRequired)
		return
	}

	utils.Verbose("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	handler, exists := s.methods()[req.Method]
	if !exists {
		sendJSONRPCError(w, req.ID, ErrCodeMethodNotFound, errTitleNotFound, fmt.Sprintf("Method '%s' not found", req.Method))
		return
	}

	// commands outlive the request so a disconnecting client cannot kill a
	// half-finished gesture
	result, err := handler(context.WithoutCancel(r.Context()), req.Params)
	if err != nil {
		utils.Warn("Error executing method %s: %v", req.Method, err)
		sendJSONRPCError(w, req.ID, ErrCodeServerError, errTitleServer, err.Error())
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}
