package simulation

import (
	"math"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"kartrush/internal/collision"
	"kartrush/internal/scene"
	"kartrush/internal/shared/logger"
	"kartrush/internal/shared/types"
	"kartrush/internal/track"
)

const (
	MaxDriveSpeed = 14.0
	ThrottleAccel = 12.0
	BrakeAccel    = 30.0
	TurnRate      = 2.2 // rad/s baseline

	CoastFriction = 0.985
	LateralGrip   = 0.80
	DirtDrag      = 0.985
	DirtMaxSpeed  = 8.0

	Gravity       = -20.0
	RespawnBelowY = -10.0

	// Events kept for readers that fall behind.
	MaxEventBacklog = 4096

	// Wheel mounts relative to the kart origin, kart facing +X.
	MountHeight = 0.6
	HalfBase    = 0.7
	HalfTrack   = 0.5
)

var wheelOffsets = [types.WheelCount]mgl64.Vec3{
	types.WheelFrontLeft:  {HalfBase, MountHeight, -HalfTrack},
	types.WheelFrontRight: {HalfBase, MountHeight, HalfTrack},
	types.WheelRearLeft:   {-HalfBase, MountHeight, -HalfTrack},
	types.WheelRearRight:  {-HalfBase, MountHeight, HalfTrack},
}

// PlayerSpawn defines initial player details at race creation.
type PlayerSpawn struct {
	PlayerID    string
	DisplayName string
}

type kartContext struct {
	slot     int
	nearEdge bool
}

// World is the authoritative race simulation. All collision queries of a
// tick run under mu with the world's single Prober.
//
// state.Events holds what happened since the last tick began. Every event
// is also appended to a journal that readers consume with EventsSince, so
// events raised between ticks are not lost to the next reset.
type World struct {
	mu       sync.RWMutex
	state    types.RaceState
	input    map[string]types.KartInput
	karts    map[string]*kartContext
	track    *track.Track
	prober   *collision.Prober
	log      *logger.Logger
	nextSlot int

	journal     []types.GameplayEvent
	journalBase uint64 // cursor of journal[0]
}

// NewWorld creates a race on tr with karts on the starting grid.
func NewWorld(raceID string, tr *track.Track, players []PlayerSpawn, log *logger.Logger) *World {
	if log == nil {
		log = logger.Discard()
	}
	now := time.Now().UTC()
	w := &World{
		state: types.RaceState{
			RaceID:    raceID,
			Track:     tr.Name,
			CreatedAt: now,
			Karts:     make(map[string]types.KartState, len(players)),
		},
		input:  make(map[string]types.KartInput, len(players)),
		karts:  make(map[string]*kartContext, len(players)),
		track:  tr,
		prober: collision.NewProber(collision.DefaultConfig()),
		log:    log,
	}
	for _, p := range players {
		w.addKart(p.PlayerID, p.DisplayName)
	}
	return w
}

// ApplyInput stores latest client input for the player.
func (w *World) ApplyInput(in types.KartInput) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.input[in.PlayerID] = clampInput(in)
}

// Tick advances the race by dt seconds.
func (w *World) Tick(dt float64) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Tick++
	w.state.Events = w.state.Events[:0]

	for id, kart := range w.state.Karts {
		in := w.input[id]
		kc := w.karts[id]
		if kc == nil {
			kc = &kartContext{}
			w.karts[id] = kc
		}
		w.stepKart(&kart, kc, in, dt)
		kart.LastInput = in
		w.state.Karts[id] = kart
	}
}

// Snapshot returns a deep copy of state for safe replication.
func (w *World) Snapshot() types.RaceState {
	w.mu.RLock()
	defer w.mu.RUnlock()

	copyKarts := make(map[string]types.KartState, len(w.state.Karts))
	for k, v := range w.state.Karts {
		if v.Warning != nil {
			warn := *v.Warning
			v.Warning = &warn
		}
		copyKarts[k] = v
	}

	events := make([]types.GameplayEvent, len(w.state.Events))
	copy(events, w.state.Events)

	out := w.state
	out.Karts = copyKarts
	out.Events = events
	return out
}

// EventsSince returns the events recorded from cursor on, in order, and
// the cursor to pass on the next call. Start from zero. A reader more than
// MaxEventBacklog events behind may miss the oldest ones.
func (w *World) EventsSince(cursor uint64) ([]types.GameplayEvent, uint64) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	end := w.journalBase + uint64(len(w.journal))
	if cursor < w.journalBase {
		cursor = w.journalBase
	}
	if cursor >= end {
		return nil, end
	}
	pending := w.journal[cursor-w.journalBase:]
	out := make([]types.GameplayEvent, len(pending))
	copy(out, pending)
	return out, end
}

// EnsurePlayer inserts a kart for the player if not present and returns
// its grid slot.
func (w *World) EnsurePlayer(playerID, displayName string) int {
	w.mu.Lock()
	defer w.mu.Unlock()

	if k, ok := w.state.Karts[playerID]; ok {
		if displayName != "" {
			k.DisplayName = displayName
			w.state.Karts[playerID] = k
		}
		return w.karts[playerID].slot
	}

	slot := w.addKart(playerID, displayName)
	w.emit("player_join", playerID, "", 0)
	w.log.Printf("kart joined player=%s slot=%d", playerID, slot)
	return slot
}

// KartCount returns number of karts in the race.
func (w *World) KartCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.state.Karts)
}

// RemovePlayer removes player from simulation state.
func (w *World) RemovePlayer(playerID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.state.Karts[playerID]; !ok {
		return
	}
	delete(w.state.Karts, playerID)
	delete(w.input, playerID)
	delete(w.karts, playerID)
	w.emit("player_leave", playerID, "", 0)
}

// RemoveBarrier takes a destructible wall out of the track. Later ticks
// probe against the reduced scene.
func (w *World) RemoveBarrier(objectID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	obj, ok := w.track.Scene.Object(objectID)
	if !ok || !obj.Destructible || obj.Kind != scene.SurfaceWall {
		return false
	}
	w.track.Scene.Remove(objectID)
	w.emit("barrier_destroyed", "", obj.Name, 0)
	return true
}

func (w *World) addKart(playerID, displayName string) int {
	slot := w.nextSlot
	w.nextSlot++

	k := types.KartState{
		PlayerID:    playerID,
		DisplayName: displayName,
	}
	w.placeOnGrid(&k, slot)
	w.state.Karts[playerID] = k
	w.karts[playerID] = &kartContext{slot: slot}
	return slot
}

func (w *World) placeOnGrid(k *types.KartState, slot int) {
	sp := w.track.Spawn(slot)
	k.Position = types.FromMgl(sp.Position)
	k.Velocity = types.Vec3{}
	k.Heading = sp.Heading
	k.Warning = nil
	w.resolveWheels(k)
	k.OnTrack = w.prober.IsPositionOnTrack(w.track.Scene, sp.Position)
}

func (w *World) stepKart(k *types.KartState, kc *kartContext, in types.KartInput, dt float64) {
	driveKart(k, in, dt)

	sc := w.track.Scene
	pos := k.Position.Mgl()
	vel := k.Velocity.Mgl()
	flat := mgl64.Vec3{vel[0], 0, vel[2]}

	k.Warning = nil
	if k.IsGrounded {
		w.handleBoundary(k, kc, pos, &flat, dt)

		if mh, ok := w.prober.CheckMultiDirectionalCollision(sc, pos, flat); ok && mh.Kind != collision.HitTrackSurface {
			k.Warning = &types.ProximityWarning{
				Direction: mh.DirectionIndex,
				Kind:      mh.Kind.String(),
				Distance:  mh.Distance,
			}
		}
	}

	pos[0] += flat[0] * dt
	pos[2] += flat[2] * dt
	k.Position = types.FromMgl(pos)
	k.Velocity.X = flat[0]
	k.Velocity.Z = flat[2]

	wasOnDirt := k.OnDirt
	if w.resolveWheels(k) {
		k.Velocity.Y = 0
	} else {
		k.Velocity.Y += Gravity * dt
		k.Position.Y += k.Velocity.Y * dt
	}

	if k.OnDirt != wasOnDirt {
		typ := "dirt_exit"
		if k.OnDirt {
			typ = "dirt_enter"
		}
		w.emit(typ, k.PlayerID, "", 0)
	}

	k.OnTrack = w.prober.IsPositionOnTrack(sc, k.Position.Mgl())
	if !k.OnTrack && k.Position.Y < RespawnBelowY {
		w.respawn(k, kc)
	}
}

// handleBoundary probes along the flat velocity and bounces off walls. A
// track edge only raises an event; the kart is free to drive off it.
func (w *World) handleBoundary(k *types.KartState, kc *kartContext, pos mgl64.Vec3, flat *mgl64.Vec3, dt float64) {
	lookAhead := math.Max(w.prober.Config().LookAhead, flat.Len()*dt)
	hit, ok := w.prober.CheckBoundaryCollisionWithin(w.track.Scene, pos, *flat, lookAhead)
	edge := ok && hit.Kind == collision.HitTrackEdge
	if edge && !kc.nearEdge {
		w.emit("track_edge", k.PlayerID, "", 0)
	}
	kc.nearEdge = edge

	if !ok || hit.Kind != collision.HitWall || flat.Dot(hit.Normal) >= 0 {
		return
	}
	resp := w.prober.CalculateBounceResponse(hit.Point, hit.Normal, *flat)
	*flat = mgl64.Vec3{resp.Velocity[0], 0, resp.Velocity[2]}
	w.emit("wall_hit", k.PlayerID, hit.Surface, resp.Force)
}

// resolveWheels runs the ground contact resolver for every wheel and
// derives the kart's ride height and surface flags from the wheels. It
// reports whether any wheel touched a surface.
func (w *World) resolveWheels(k *types.KartState) bool {
	pos := k.Position.Mgl()
	rot := mgl64.Rotate3DY(mgl64.DegToRad(k.Heading))

	grounded := false
	onDirt := false
	sumY := 0.0
	for i, off := range wheelOffsets {
		mount := pos.Add(rot.Mul3x1(off))
		y, hit := w.prober.ResolveWheelContact(w.track.Scene, mount, &k.Wheels[i])
		grounded = grounded || hit
		onDirt = onDirt || k.Wheels[i].OnDirt
		sumY += y
	}

	k.IsGrounded = grounded
	k.OnDirt = onDirt
	if grounded {
		k.Position.Y = sumY / float64(types.WheelCount)
	}
	return grounded
}

func (w *World) respawn(k *types.KartState, kc *kartContext) {
	w.placeOnGrid(k, kc.slot)
	kc.nearEdge = false
	k.Respawns++
	w.emit("respawn", k.PlayerID, "", 0)
	w.log.Printf("kart respawned player=%s slot=%d respawns=%d", k.PlayerID, kc.slot, k.Respawns)
}

// emit must be called with mu held.
func (w *World) emit(typ, playerID, surface string, force float64) {
	ev := types.GameplayEvent{
		Type:       typ,
		PlayerID:   playerID,
		Surface:    surface,
		Force:      force,
		OccurredMS: time.Now().UTC().UnixMilli(),
	}
	w.state.Events = append(w.state.Events, ev)
	w.journal = append(w.journal, ev)
	if len(w.journal) >= 2*MaxEventBacklog {
		over := len(w.journal) - MaxEventBacklog
		w.journal = append(w.journal[:0:0], w.journal[over:]...)
		w.journalBase += uint64(over)
	}
}

func clampInput(in types.KartInput) types.KartInput {
	in.Throttle = clamp(in.Throttle, -1, 1)
	in.Steer = clamp(in.Steer, -1, 1)
	return in
}

// driveKart applies steering, throttle and grip to the horizontal velocity.
// Vertical motion is left to the wheels.
func driveKart(k *types.KartState, in types.KartInput, dt float64) {
	speed2D := math.Hypot(k.Velocity.X, k.Velocity.Z)
	if k.IsGrounded {
		turnScale := 1.0 - math.Min(speed2D/MaxDriveSpeed, 0.6)
		k.Heading -= in.Steer * TurnRate * turnScale * dt * 180 / math.Pi
		k.Heading = normalizeDeg(k.Heading)
	}

	rot := mgl64.Rotate3DY(mgl64.DegToRad(k.Heading))
	forward := rot.Mul3x1(mgl64.Vec3{1, 0, 0})
	right := rot.Mul3x1(mgl64.Vec3{0, 0, 1})

	vel := mgl64.Vec3{k.Velocity.X, 0, k.Velocity.Z}
	forwardSpeed := vel.Dot(forward)
	lateralSpeed := vel.Dot(right)

	if k.IsGrounded {
		accel := in.Throttle * ThrottleAccel
		if in.Brake || in.Throttle*forwardSpeed < 0 {
			accel = -math.Copysign(BrakeAccel, forwardSpeed)
			if math.Abs(forwardSpeed) < BrakeAccel*dt {
				accel = -forwardSpeed / dt
			}
		}
		forwardSpeed += accel * dt

		if math.Abs(in.Throttle) < 0.05 {
			forwardSpeed *= CoastFriction
		}
		lateralSpeed *= LateralGrip

		maxSpeed := MaxDriveSpeed
		if k.OnDirt {
			forwardSpeed *= DirtDrag
			maxSpeed = DirtMaxSpeed
		}
		forwardSpeed = clamp(forwardSpeed, -maxSpeed, maxSpeed)
	}

	vel = forward.Mul(forwardSpeed).Add(right.Mul(lateralSpeed))
	k.Velocity.X = vel[0]
	k.Velocity.Z = vel[2]
}

func normalizeDeg(d float64) float64 {
	for d >= 360 {
		d -= 360
	}
	for d < 0 {
		d += 360
	}
	return d
}

func clamp(v, minV, maxV float64) float64 {
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}
