package telemetry

import (
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"kartrush/internal/shared/types"
)

const defaultCapacity = 1000

// Store keeps the most recent events and running counters by event type
// and by the surface involved.
type Store struct {
	mu        sync.RWMutex
	recent    []types.TelemetryEvent
	capacity  int
	total     int64
	byType    map[string]int64
	bySurface map[string]int64
}

// Summary is a point-in-time copy of the store counters.
type Summary struct {
	Total     int64            `json:"total"`
	ByType    map[string]int64 `json:"by_type"`
	BySurface map[string]int64 `json:"by_surface"`
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Store{
		recent:    make([]types.TelemetryEvent, 0, capacity),
		capacity:  capacity,
		byType:    make(map[string]int64),
		bySurface: make(map[string]int64),
	}
}

// Ingest records ev, filling in a missing id and timestamp. It returns the
// stored event.
func (s *Store) Ingest(ev types.TelemetryEvent) types.TelemetryEvent {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UTC().UnixMilli()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.total++
	s.byType[ev.EventType]++
	if surface, ok := ev.Payload["surface"].(string); ok && surface != "" {
		s.bySurface[surface]++
	}
	s.recent = append(s.recent, ev)
	if len(s.recent) > s.capacity {
		s.recent = s.recent[len(s.recent)-s.capacity:]
	}
	return ev
}

// Recent returns up to limit of the newest events, oldest first.
func (s *Store) Recent(limit int) []types.TelemetryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]types.TelemetryEvent, limit)
	copy(out, s.recent[len(s.recent)-limit:])
	return out
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Summary{
		Total:     s.total,
		ByType:    copyCounts(s.byType),
		BySurface: copyCounts(s.bySurface),
	}
}

// WriteMetrics writes the counters in Prometheus text format.
func (s *Store) WriteMetrics(w io.Writer) error {
	sum := s.Summary()
	lines := []string{
		"# HELP kartrush_telemetry_events_total Total telemetry events ingested",
		"# TYPE kartrush_telemetry_events_total counter",
		fmt.Sprintf("kartrush_telemetry_events_total %d", sum.Total),
	}
	for _, typ := range sortedKeys(sum.ByType) {
		lines = append(lines, fmt.Sprintf("kartrush_telemetry_events_by_type{event_type=%q} %d", typ, sum.ByType[typ]))
	}
	for _, surface := range sortedKeys(sum.BySurface) {
		lines = append(lines, fmt.Sprintf("kartrush_telemetry_events_by_surface{surface=%q} %d", surface, sum.BySurface[surface]))
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]int64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
