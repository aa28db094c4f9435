package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"kartrush/internal/shared/logger"
	"kartrush/internal/shared/types"
	"kartrush/internal/simulation"
	"kartrush/internal/telemetry"
	"kartrush/internal/track"
)

type client struct {
	playerID string
	conn     *websocket.Conn
	send     chan []byte
}

type server struct {
	log       *logger.Logger
	world     *simulation.World
	forwarder *telemetry.Forwarder
	tickHz    int
	upgrader  websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
}

func main() {
	log := logger.New("gameserver")
	addr := getEnv("GAME_ADDR", ":9003")
	raceID := getEnv("RACE_ID", fmt.Sprintf("local_%d", time.Now().UTC().Unix()))
	tickHz := getEnvInt("TICK_HZ", 120)
	if tickHz <= 0 {
		tickHz = 120
	}

	tr := track.Default()
	if path := os.Getenv("TRACK_FILE"); path != "" {
		loaded, err := track.LoadFile(path)
		if err != nil {
			log.Fatalf("load track: %v", err)
		}
		tr = loaded
	}

	s := &server{
		log:    log,
		world:  simulation.NewWorld(raceID, tr, nil, log),
		tickHz: tickHz,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		clients: make(map[string]*client),
	}

	if url := os.Getenv("TELEMETRY_URL"); url != "" {
		s.forwarder = telemetry.NewForwarder(url, raceID, log)
		go s.forwarder.Run(context.Background())
		log.Printf("forwarding race events to %s", url)
	}

	go s.runSimulationLoop()
	go s.runReplicationLoop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ws", s.handleWS)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("race server listening on %s (race=%s track=%q objects=%d tick=%dHz)",
		addr, raceID, tr.Name, tr.Scene.Len(), tickHz)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"karts":  s.world.KartCount(),
	})
}

func (s *server) handleWS(w http.ResponseWriter, r *http.Request) {
	playerID := r.URL.Query().Get("player_id")
	if playerID == "" {
		playerID = "guest_" + uuid.NewString()
	}
	displayName := r.URL.Query().Get("display_name")
	if displayName == "" {
		displayName = playerID
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Printf("websocket upgrade error: %v", err)
		return
	}

	slot := s.world.EnsurePlayer(playerID, displayName)
	c := &client{playerID: playerID, conn: conn, send: make(chan []byte, 64)}
	s.register(c)

	s.log.Printf("client connected player=%s slot=%d remote=%s", playerID, slot, r.RemoteAddr)
	welcome := types.ServerEnvelope{
		Type:     "welcome",
		State:    ptrState(s.world.Snapshot()),
		ServerMS: time.Now().UTC().UnixMilli(),
		Message:  "connected",
	}
	s.enqueue(c, welcome)

	go s.writePump(c)
	s.readPump(c)
}

func (s *server) readPump(c *client) {
	defer func() {
		s.unregister(c.playerID)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(90 * time.Second))
		return nil
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Printf("client disconnected player=%s", c.playerID)
				return
			}
			s.log.Printf("read error player=%s err=%v", c.playerID, err)
			return
		}

		var in types.ClientEnvelope
		if err := json.Unmarshal(msg, &in); err != nil {
			s.sendError(c, "bad_payload")
			continue
		}

		switch in.Type {
		case "input":
			if in.Input == nil {
				s.sendError(c, "missing_input")
				continue
			}
			in.Input.PlayerID = c.playerID
			s.world.ApplyInput(*in.Input)
			s.enqueue(c, types.ServerEnvelope{Type: "ack", AckSeq: in.Input.Sequence})
		case "destroy_barrier":
			if !s.world.RemoveBarrier(in.ObjectID) {
				s.sendError(c, "unknown_barrier")
			}
		case "ping":
			s.enqueue(c, types.ServerEnvelope{Type: "pong", ServerMS: time.Now().UTC().UnixMilli()})
		default:
			s.sendError(c, "unsupported_message_type")
		}
	}
}

func (s *server) writePump(c *client) {
	ticker := time.NewTicker(20 * time.Second)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				return
			}
		}
	}
}

func (s *server) register(c *client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.playerID] = c
}

func (s *server) unregister(playerID string) {
	s.mu.Lock()
	if c, ok := s.clients[playerID]; ok {
		close(c.send)
		delete(s.clients, playerID)
	}
	s.mu.Unlock()

	s.world.RemovePlayer(playerID)
}

func (s *server) enqueue(c *client, env types.ServerEnvelope) {
	payload, err := json.Marshal(env)
	if err != nil {
		s.log.Printf("marshal %s failed: %v", env.Type, err)
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

func (s *server) sendError(c *client, message string) {
	s.enqueue(c, types.ServerEnvelope{Type: "error", Message: message})
}

func (s *server) runSimulationLoop() {
	ticker := time.NewTicker(time.Second / time.Duration(s.tickHz))
	defer ticker.Stop()
	dt := 1.0 / float64(s.tickHz)

	var cursor uint64
	for range ticker.C {
		s.world.Tick(dt)
		if s.forwarder == nil {
			continue
		}
		var events []types.GameplayEvent
		events, cursor = s.world.EventsSince(cursor)
		if len(events) > 0 {
			if dropped := s.forwarder.Publish(events); dropped > 0 {
				s.log.Printf("telemetry queue full, dropped=%d", dropped)
			}
		}
	}
}

func (s *server) runReplicationLoop() {
	ticker := time.NewTicker(time.Second / 60)
	defer ticker.Stop()

	var cursor uint64
	for range ticker.C {
		state := s.world.Snapshot()
		state.Events, cursor = s.world.EventsSince(cursor)
		env := types.ServerEnvelope{
			Type:     "state",
			Tick:     state.Tick,
			State:    &state,
			ServerMS: time.Now().UTC().UnixMilli(),
		}
		payload, err := json.Marshal(env)
		if err != nil {
			s.log.Printf("marshal state failed: %v", err)
			continue
		}

		s.mu.RLock()
		for _, c := range s.clients {
			select {
			case c.send <- payload:
			default:
			}
		}
		s.mu.RUnlock()
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func ptrState(s types.RaceState) *types.RaceState {
	return &s
}
