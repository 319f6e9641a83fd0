package models

import "encoding/json"

// ConnectorStatus is the simulated availability of a connector at one instant.
type ConnectorStatus string

// Connector availability values.
const (
	ConnectorAvailable    ConnectorStatus = "Available"
	ConnectorOccupied     ConnectorStatus = "Occupied"
	ConnectorOutOfService ConnectorStatus = "OutOfService"
)

// ConnectorStatuses lists every value the simulator may produce.
var ConnectorStatuses = []ConnectorStatus{ConnectorAvailable, ConnectorOccupied, ConnectorOutOfService}

// Station is a charging site from the static catalog. Everything except the
// id and connector list is kept verbatim in Attributes.
type Station struct {
	ID         string                 `yaml:"id"`
	Connectors []Connector            `yaml:"connectors"`
	Attributes map[string]interface{} `yaml:",inline"`
}

// Connector is one charge point of a station. It never carries a status.
type Connector struct {
	ID         string                 `yaml:"id"`
	Attributes map[string]interface{} `yaml:",inline"`
}

// Fields returns a fresh map with the connector's catalog fields.
func (c Connector) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(c.Attributes)+2)
	for k, v := range c.Attributes {
		out[k] = v
	}
	out["id"] = c.ID
	return out
}

// MarshalJSON flattens attributes next to the id.
func (c Connector) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Fields())
}

// Fields returns a fresh map with the station's catalog fields; connectors are
// expanded to their own field maps so callers may annotate them.
func (s Station) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(s.Attributes)+4)
	for k, v := range s.Attributes {
		out[k] = v
	}
	connectors := make([]map[string]interface{}, 0, len(s.Connectors))
	for _, c := range s.Connectors {
		connectors = append(connectors, c.Fields())
	}
	out["id"] = s.ID
	out["connectors"] = connectors
	return out
}

// MarshalJSON flattens attributes next to id and connectors.
func (s Station) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Fields())
}
