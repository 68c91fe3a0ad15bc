package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// ErrUnsupportedPlatform is returned when browser opening is not supported.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

//go:embed static/*
var staticFiles embed.FS

// ResamplerController is the subset of engine behavior the web UI needs: the
// current and in-progress-ramp ratio, a way to request a new ratio, and a
// snapshot of live stats for the meters view.
type ResamplerController interface {
	Ratio() float64
	TargetRatio() float64
	SetRatio(ratio float64) error
	NbrChannels() int
	Mode() string
	Interpolation() string
	Snapshot() StatsSnapshot
}

// StatsSnapshot is the engine-agnostic shape of a live stats read; the
// concrete engine's Stats type is converted into this before being handed to
// the web package, keeping this package free of a dependency on package main.
type StatsSnapshot struct {
	InputFramesNext    int
	OutputFramesNext   int
	BufferFillFraction float64
	OutputDelay        int
	FramesTotal        int64
	InPeak             []float64
	OutPeak            []float64
}

// Message represents a WebSocket message.
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// StatePayload represents the resampler's configuration and current ratio.
type StatePayload struct {
	Ratio         float64 `json:"ratio"`
	TargetRatio   float64 `json:"targetRatio"`
	Channels      int     `json:"channels"`
	Mode          string  `json:"mode"`
	Interpolation string  `json:"interpolation"`
}

// MetersPayload represents a live stats snapshot for display.
type MetersPayload struct {
	InputFramesNext  int       `json:"inputFramesNext"`
	OutputFramesNext int       `json:"outputFramesNext"`
	BufferFillPct    float64   `json:"bufferFillPct"`
	OutputDelay      int       `json:"outputDelay"`
	FramesTotal      int64     `json:"framesTotal"`
	InPeakDB         []float64 `json:"inPeakDb"`
	OutPeakDB        []float64 `json:"outPeakDb"`
}

// Server is the web server for the resampler monitor.
type Server struct {
	engine ResamplerController
	port   int
	hub    *Hub

	mu         sync.RWMutex
	httpServer *http.Server
}

// NewServer creates a new web server around an engine.
func NewServer(engine ResamplerController, port int) *Server {
	return &Server{
		engine: engine,
		port:   port,
		hub:    NewHub(),
	}
}

// Start starts the web server. Blocks until Shutdown is called or the
// listener errors.
func (s *Server) Start() error {
	go s.hub.Run()
	go s.meterBroadcastLoop()

	staticFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to create static file system: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/state", s.handleAPIState)
	mux.HandleFunc("/api/meters", s.handleAPIMeters)

	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv := s.httpServer
	s.mu.Unlock()

	slog.Info("Web server starting", "port", s.port, "url", fmt.Sprintf("http://localhost:%d", s.port))
	return srv.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.httpServer
	s.mu.RUnlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data, err := staticFiles.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

//nolint:gochecknoglobals // WebSocket upgrader configuration
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		return true // Allow all origins for local development
	},
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}
	s.hub.register <- client

	s.sendState(client)

	go client.writePump()
	client.readPump(func(msg []byte) {
		s.handleClientMessage(msg)
	})
}

func (s *Server) sendState(client *Client) {
	msg := Message{Type: "state", Payload: s.statePayload()}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal state", "error", err)
		return
	}
	client.send <- data
}

func (s *Server) statePayload() StatePayload {
	return StatePayload{
		Ratio:         s.engine.Ratio(),
		TargetRatio:   s.engine.TargetRatio(),
		Channels:      s.engine.NbrChannels(),
		Mode:          s.engine.Mode(),
		Interpolation: s.engine.Interpolation(),
	}
}

func (s *Server) handleClientMessage(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Error("Failed to parse WebSocket message", "error", err)
		return
	}

	if msg.Type != "set_ratio" {
		return
	}
	payload, ok := msg.Payload.(map[string]interface{})
	if !ok {
		return
	}
	value, ok := payload["value"].(float64)
	if !ok {
		return
	}
	if err := s.engine.SetRatio(value); err != nil {
		slog.Error("Failed to set ratio", "requested", value, "error", err)
		return
	}
	s.broadcastState()
}

func (s *Server) broadcastState() {
	msg := Message{Type: "state", Payload: s.statePayload()}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("Failed to marshal state", "error", err)
		return
	}
	s.hub.Broadcast(data)
}

// meterBroadcastLoop broadcasts live stats at 50ms intervals.
func (s *Server) meterBroadcastLoop() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		if s.hub.ClientCount() == 0 {
			continue
		}

		snap := s.engine.Snapshot()
		meters := MetersPayload{
			InputFramesNext:  snap.InputFramesNext,
			OutputFramesNext: snap.OutputFramesNext,
			BufferFillPct:    snap.BufferFillFraction * 100,
			OutputDelay:      snap.OutputDelay,
			FramesTotal:      snap.FramesTotal,
			InPeakDB:         linToDBAll(snap.InPeak),
			OutPeakDB:        linToDBAll(snap.OutPeak),
		}

		msg := Message{Type: "meters", Payload: meters}
		data, err := json.Marshal(msg)
		if err != nil {
			continue
		}
		s.hub.Broadcast(data)
	}
}

func linToDBAll(levels []float64) []float64 {
	out := make([]float64, len(levels))
	for i, l := range levels {
		out[i] = linToDB(l)
	}
	return out
}

func linToDB(l float64) float64 {
	if l <= 1e-9 {
		return -96.0
	}
	db := 20 * math.Log10(l)
	if db < -96.0 {
		return -96.0
	}
	if db > 6.0 {
		return 6.0
	}
	return db
}

func (s *Server) handleAPIState(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	//nolint:errchkjson // StatePayload is a well-defined struct
	_ = json.NewEncoder(w).Encode(s.statePayload())
}

func (s *Server) handleAPIMeters(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	meters := MetersPayload{
		InputFramesNext:  snap.InputFramesNext,
		OutputFramesNext: snap.OutputFramesNext,
		BufferFillPct:    snap.BufferFillFraction * 100,
		OutputDelay:      snap.OutputDelay,
		FramesTotal:      snap.FramesTotal,
		InPeakDB:         linToDBAll(snap.InPeak),
		OutPeakDB:        linToDBAll(snap.OutPeak),
	}
	w.Header().Set("Content-Type", "application/json")
	//nolint:errchkjson // MetersPayload is a well-defined struct
	_ = json.NewEncoder(w).Encode(meters)
}

// OpenBrowser opens the default browser to the specified URL.
func OpenBrowser(url string) error {
	ctx := context.Background()
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "linux":
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "cmd", "/c", "start", url)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedPlatform, runtime.GOOS)
	}

	return cmd.Start()
}
