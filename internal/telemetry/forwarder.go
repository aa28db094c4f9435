package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"kartrush/internal/shared/logger"
	"kartrush/internal/shared/types"
)

const eventsPath = "/v1/events"

// Forwarder ships gameplay events to the telemetry service. Publish never
// blocks the simulation; events are dropped when the queue is full.
type Forwarder struct {
	endpoint string
	raceID   string
	client   *http.Client
	queue    chan types.TelemetryEvent
	log      *logger.Logger
}

func NewForwarder(baseURL, raceID string, log *logger.Logger) *Forwarder {
	if log == nil {
		log = logger.Discard()
	}
	return &Forwarder{
		endpoint: strings.TrimRight(baseURL, "/") + eventsPath,
		raceID:   raceID,
		client:   &http.Client{Timeout: 2 * time.Second},
		queue:    make(chan types.TelemetryEvent, 1024),
		log:      log,
	}
}

// FromGameplay converts a simulation event into its telemetry form.
func FromGameplay(raceID string, ev types.GameplayEvent) types.TelemetryEvent {
	payload := map[string]interface{}{}
	if ev.Surface != "" {
		payload["surface"] = ev.Surface
	}
	if ev.Force != 0 {
		payload["force"] = ev.Force
	}
	return types.TelemetryEvent{
		EventType: ev.Type,
		RaceID:    raceID,
		PlayerID:  ev.PlayerID,
		Timestamp: ev.OccurredMS,
		Payload:   payload,
	}
}

// Publish queues events for delivery and reports how many were dropped.
func (f *Forwarder) Publish(events []types.GameplayEvent) int {
	dropped := 0
	for _, ev := range events {
		select {
		case f.queue <- FromGameplay(f.raceID, ev):
		default:
			dropped++
		}
	}
	return dropped
}

// Run delivers queued events until ctx is done.
func (f *Forwarder) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-f.queue:
			if err := f.post(ctx, ev); err != nil {
				f.log.Printf("telemetry forward failed type=%s err=%v", ev.EventType, err)
			}
		}
	}
}

func (f *Forwarder) post(ctx context.Context, ev types.TelemetryEvent) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "post event")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return errors.Errorf("telemetry returned status %d", resp.StatusCode)
	}
	return nil
}
