// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/gps_speedometer/internal/config"
	"github.com/relabs-tech/gps_speedometer/internal/geo"
	"github.com/relabs-tech/gps_speedometer/internal/track"
)

const wsWriteTimeout = 5 * time.Second

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// fixView is what the web API serves: the report plus its grid reference.
type fixView struct {
	track.Report
	Grid *geo.GridRef `json:"grid,omitempty"`
}

func newFixView(r track.Report) fixView {
	v := fixView{Report: r}
	if ref, err := geo.Grid(r.Fix.Latitude, r.Fix.Longitude); err == nil {
		v.Grid = &ref
	}
	return v
}

// webServer holds the latest report and fans it out to websocket clients.
type webServer struct {
	mu   sync.RWMutex
	last fixView
	have bool

	hub       *wsHub
	staticDir string
	log       *log.Logger
}

func newWebServer(staticDir string, logger *log.Logger) *webServer {
	return &webServer{
		hub:       newWSHub(),
		staticDir: staticDir,
		log:       logger,
	}
}

// update stores r and pushes it to every connected client.
func (s *webServer) update(r track.Report) {
	v := newFixView(r)
	payload, err := json.Marshal(v)
	if err != nil {
		s.log.Error("json encode error", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = v
	s.have = true
	s.hub.broadcast(payload)
}

func (s *webServer) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/fix", s.handleFix)
	mux.HandleFunc("/ws", s.handleWS)
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	return mux
}

// handleFix serves the latest report.
func (s *webServer) handleFix(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.have {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.last); err != nil {
		s.log.Error("json encode error", "err", err)
	}
}

// handleWS streams every report to the client, starting with the latest.
func (s *webServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade error", "err", err)
		return
	}
	defer conn.Close()

	s.mu.RLock()
	c := s.hub.add(conn)
	if s.have {
		if payload, err := json.Marshal(s.last); err == nil {
			c.send <- payload
		}
	}
	s.mu.RUnlock()

	go c.writeLoop()

	// Incoming messages are ignored; reading detects the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	s.hub.remove(c)
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

func (c *wsClient) writeLoop() {
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
}

type wsHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[*wsClient]struct{})}
}

func (h *wsHub) add(conn *websocket.Conn) *wsClient {
	c := &wsClient{conn: conn, send: make(chan []byte, 16)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *wsHub) remove(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// broadcast queues msg for every client. A client whose queue is full
// misses the message.
func (h *wsHub) broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
		}
	}
}

func (h *wsHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// RunWeb serves the latest report over HTTP and a websocket stream.
func RunWeb(ctx context.Context, cfg *config.Config, logger *log.Logger) error {
	s := newWebServer("web", logger)

	// 1) Connect to MQTT broker
	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb, logger)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)

	// 2) Subscribe to reports and update the latest on each message
	if err := subscribeReports(client, cfg.TopicGPS, logger, s.update); err != nil {
		return err
	}

	// 3) HTTP: /api/fix, /ws and static files from ./web
	srv := &http.Server{Addr: fmt.Sprintf(":%d", cfg.WebServerPort), Handler: s.routes()}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	logger.Info("web server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
