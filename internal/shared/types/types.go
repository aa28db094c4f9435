package types

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec3 represents a position or vector in world space. Y is up.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Mgl converts to the math type used by the collision core.
func (v Vec3) Mgl() mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

// FromMgl converts a core vector back to its wire form.
func FromMgl(v mgl64.Vec3) Vec3 {
	return Vec3{X: v[0], Y: v[1], Z: v[2]}
}

// WheelState is the per-wheel contact state. Only the ground contact
// resolver writes it.
type WheelState struct {
	Y      float64 `json:"y"`
	OnDirt bool    `json:"on_dirt"`
}

// Wheel order inside KartState.Wheels.
const (
	WheelFrontLeft = iota
	WheelFrontRight
	WheelRearLeft
	WheelRearRight
	WheelCount
)

// KartInput is the per-tick player control input.
type KartInput struct {
	PlayerID string  `json:"player_id"`
	Sequence uint64  `json:"sequence"`
	Throttle float64 `json:"throttle"` // -1..1
	Steer    float64 `json:"steer"`    // -1..1
	Brake    bool    `json:"brake"`
	ClientMS int64   `json:"client_ms"`
}

// ProximityWarning tells the client which probed heading saw a boundary.
type ProximityWarning struct {
	Direction int     `json:"direction"` // 0 forward, 1 +45°, 2 -45°
	Kind      string  `json:"kind"`
	Distance  float64 `json:"distance"`
}

// KartState is the authoritative replicated state for a kart.
type KartState struct {
	PlayerID    string                 `json:"player_id"`
	DisplayName string                 `json:"display_name"`
	Position    Vec3                   `json:"position"`
	Velocity    Vec3                   `json:"velocity"`
	Heading     float64                `json:"heading"` // degrees about +Y
	Wheels      [WheelCount]WheelState `json:"wheels"`
	IsGrounded  bool                   `json:"is_grounded"`
	OnDirt      bool                   `json:"on_dirt"`
	OnTrack     bool                   `json:"on_track"`
	Warning     *ProximityWarning      `json:"warning,omitempty"`
	Respawns    int                    `json:"respawns"`
	LastInput   KartInput              `json:"last_input"`
}

// RaceState is replicated to all clients.
type RaceState struct {
	RaceID    string               `json:"race_id"`
	Track     string               `json:"track"`
	Tick      uint64               `json:"tick"`
	CreatedAt time.Time            `json:"created_at"`
	Karts     map[string]KartState `json:"karts"`
	Events    []GameplayEvent      `json:"events"`
}

// GameplayEvent tracks state changes worth UI/audio feedback.
type GameplayEvent struct {
	Type       string  `json:"type"` // wall_hit|track_edge|dirt_enter|dirt_exit|respawn|player_join|player_leave|barrier_destroyed
	PlayerID   string  `json:"player_id,omitempty"`
	Surface    string  `json:"surface,omitempty"`
	Force      float64 `json:"force,omitempty"`
	OccurredMS int64   `json:"occurred_ms"`
}

// ClientEnvelope is sent from client to server.
type ClientEnvelope struct {
	Type     string     `json:"type"` // input|ping|destroy_barrier
	Input    *KartInput `json:"input,omitempty"`
	ObjectID string     `json:"object_id,omitempty"`
}

// ServerEnvelope is sent from server to client.
type ServerEnvelope struct {
	Type     string     `json:"type"` // welcome|state|pong|error
	Tick     uint64     `json:"tick,omitempty"`
	State    *RaceState `json:"state,omitempty"`
	ServerMS int64      `json:"server_ms,omitempty"`
	Message  string     `json:"message,omitempty"`
	AckSeq   uint64     `json:"ack_seq,omitempty"`
}

// TelemetryEvent represents a gameplay/platform event.
type TelemetryEvent struct {
	EventID   string                 `json:"event_id"`
	EventType string                 `json:"event_type"`
	RaceID    string                 `json:"race_id,omitempty"`
	PlayerID  string                 `json:"player_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Payload   map[string]interface{} `json:"payload"`
}
