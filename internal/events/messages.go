package events

import (
	"encoding/json"
	"time"
)

const (
	KindCreated = "created"
	KindUpdated = "updated"
	KindDeleted = "deleted"
)

// MovementEvent is a lightweight notification that a movement changed.
// It carries only the id and period key; consumers fetch whatever else they
// need from the store.
type MovementEvent struct {
	Kind      string    `json:"kind"`
	ID        int64     `json:"id"`
	PeriodKey string    `json:"period_key"`
	Timestamp time.Time `json:"timestamp"`
}

func NewMovementEvent(kind string, id int64, periodKey string) *MovementEvent {
	return &MovementEvent{
		Kind:      kind,
		ID:        id,
		PeriodKey: periodKey,
		Timestamp: time.Now().UTC(),
	}
}

func (e *MovementEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func MovementEventFromJSON(data []byte) (*MovementEvent, error) {
	var ev MovementEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
