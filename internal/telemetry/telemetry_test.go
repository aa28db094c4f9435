package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kartrush/internal/shared/types"
)

func TestStoreCountsBySurface(t *testing.T) {
	s := NewStore(2)
	s.Ingest(FromGameplay("r1", types.GameplayEvent{Type: "wall_hit", PlayerID: "p1", Surface: "barrier block", Force: 3}))
	s.Ingest(FromGameplay("r1", types.GameplayEvent{Type: "wall_hit", PlayerID: "p1", Surface: "wall east", Force: 2}))
	s.Ingest(FromGameplay("r1", types.GameplayEvent{Type: "respawn", PlayerID: "p1"}))

	sum := s.Summary()
	assert.Equal(t, int64(3), sum.Total)
	assert.Equal(t, int64(2), sum.ByType["wall_hit"])
	assert.Equal(t, int64(1), sum.BySurface["barrier block"])
	assert.Equal(t, int64(1), sum.BySurface["wall east"])

	recent := s.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "respawn", recent[1].EventType)
	assert.NotEmpty(t, recent[1].EventID)
	assert.NotZero(t, recent[1].Timestamp)
}

func TestWriteMetricsIsSorted(t *testing.T) {
	s := NewStore(0)
	s.Ingest(types.TelemetryEvent{EventType: "track_edge"})
	s.Ingest(types.TelemetryEvent{EventType: "dirt_enter"})

	var buf bytes.Buffer
	require.NoError(t, s.WriteMetrics(&buf))
	out := buf.String()
	assert.Contains(t, out, "kartrush_telemetry_events_total 2")
	assert.Less(t, strings.Index(out, `event_type="dirt_enter"`), strings.Index(out, `event_type="track_edge"`))
}

func TestHandlerRejectsMissingType(t *testing.T) {
	srv := httptest.NewServer(NewHandler(NewStore(0)))
	defer srv.Close()

	resp, err := http.Post(srv.URL+eventsPath, "application/json", strings.NewReader(`{"race_id":"r1"}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestForwarderDeliversToHandler(t *testing.T) {
	store := NewStore(0)
	srv := httptest.NewServer(NewHandler(store))
	defer srv.Close()

	f := NewForwarder(srv.URL+"/", "r1", nil)
	dropped := f.Publish([]types.GameplayEvent{
		{Type: "wall_hit", PlayerID: "p1", Surface: "wall north", Force: 4.5, OccurredMS: 42},
	})
	assert.Zero(t, dropped)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go f.Run(ctx)

	require.Eventually(t, func() bool {
		return store.Summary().Total == 1
	}, 2*time.Second, 10*time.Millisecond)

	ev := store.Recent(1)[0]
	assert.Equal(t, "wall_hit", ev.EventType)
	assert.Equal(t, "r1", ev.RaceID)
	assert.Equal(t, int64(42), ev.Timestamp)
	assert.Equal(t, "wall north", ev.Payload["surface"])

	resp, err := http.Get(srv.URL + "/v1/summary")
	require.NoError(t, err)
	defer resp.Body.Close()
	var sum Summary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sum))
	assert.Equal(t, int64(1), sum.BySurface["wall north"])
}

func TestPublishDropsWhenFull(t *testing.T) {
	f := NewForwarder("http://127.0.0.1:0", "r1", nil)
	f.queue = make(chan types.TelemetryEvent, 1)
	dropped := f.Publish([]types.GameplayEvent{{Type: "a"}, {Type: "b"}, {Type: "c"}})
	assert.Equal(t, 2, dropped)
}
