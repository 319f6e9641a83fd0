package models

import (
	"encoding/json"
	"time"
)

// SessionStatus is a charging session lifecycle state.
type SessionStatus string

// Lifecycle states, in the only order they may occur.
const (
	SessionReserved  SessionStatus = "Reserved"
	SessionCharging  SessionStatus = "Charging"
	SessionCompleted SessionStatus = "Completed"
)

// ChargingSession represents a client's use of one connector.
type ChargingSession struct {
	ID           string
	StationID    string
	ConnectorID  string
	Status       SessionStatus
	StartTime    *time.Time
	KWhDelivered float64
	Duration     float64
}

type sessionJSON struct {
	SessionID    string        `json:"session_id"`
	StationID    string        `json:"station_id"`
	ConnectorID  string        `json:"connector_id"`
	Status       SessionStatus `json:"status"`
	StartTime    *float64      `json:"start_time"`
	KWhDelivered float64       `json:"kwh_delivered"`
	Duration     float64       `json:"duration"`
}

// MarshalJSON renders start_time as Unix epoch seconds, or null before charging.
func (s ChargingSession) MarshalJSON() ([]byte, error) {
	out := sessionJSON{
		SessionID:    s.ID,
		StationID:    s.StationID,
		ConnectorID:  s.ConnectorID,
		Status:       s.Status,
		KWhDelivered: s.KWhDelivered,
		Duration:     s.Duration,
	}
	if s.StartTime != nil {
		epoch := float64(s.StartTime.UnixNano()) / float64(time.Second)
		out.StartTime = &epoch
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *ChargingSession) UnmarshalJSON(data []byte) error {
	var in sessionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = ChargingSession{
		ID:           in.SessionID,
		StationID:    in.StationID,
		ConnectorID:  in.ConnectorID,
		Status:       in.Status,
		KWhDelivered: in.KWhDelivered,
		Duration:     in.Duration,
	}
	if in.StartTime != nil {
		sec := int64(*in.StartTime)
		nsec := int64((*in.StartTime - float64(sec)) * float64(time.Second))
		t := time.Unix(sec, nsec).UTC()
		s.StartTime = &t
	}
	return nil
}

// Clone returns a copy that shares no pointers with s.
func (s ChargingSession) Clone() ChargingSession {
	if s.StartTime != nil {
		t := *s.StartTime
		s.StartTime = &t
	}
	return s
}
