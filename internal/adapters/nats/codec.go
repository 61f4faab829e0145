package natsadapter

import (
	"encoding/json"
	"fmt"

	"github.com/samirrijal/ndfdanim/internal/core/domain"
)

// EncodeJobEvent serialises a job event.
func EncodeJobEvent(ev *domain.JobEvent) ([]byte, error) {
	if ev == nil || ev.JobID == "" {
		return nil, fmt.Errorf("%w: job event without job_id", domain.ErrInvalidRequest)
	}
	return json.Marshal(ev)
}

// DecodeJobEvent parses a job event.
func DecodeJobEvent(data []byte) (*domain.JobEvent, error) {
	var ev domain.JobEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode job event: %w", err)
	}
	if ev.JobID == "" {
		return nil, fmt.Errorf("%w: job event without job_id", domain.ErrInvalidRequest)
	}
	return &ev, nil
}

// MessageID is the JetStream de-duplication id of an event.
func MessageID(ev *domain.JobEvent) string {
	return ev.JobID + "." + string(ev.Stage) + "." + string(ev.Status)
}
