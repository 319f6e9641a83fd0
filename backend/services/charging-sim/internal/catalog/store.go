// Package catalog holds the immutable station inventory loaded at startup.
package catalog

import "chargesim/backend/services/charging-sim/internal/models"

// Store is a read-only view over the station catalog. It is safe for
// concurrent use because nothing mutates it after construction.
type Store struct {
	stations []models.Station
	index    map[string]int
}

// NewStore validates stations and builds the lookup index.
func NewStore(stations []models.Station) (*Store, error) {
	if err := Validate(stations); err != nil {
		return nil, err
	}
	s := &Store{
		stations: stations,
		index:    make(map[string]int, len(stations)),
	}
	for i, st := range stations {
		s.index[st.ID] = i
	}
	return s, nil
}

// Stations returns the catalog in load order.
func (s *Store) Stations() []models.Station {
	out := make([]models.Station, len(s.stations))
	copy(out, s.stations)
	return out
}

// FindStation looks a station up by id.
func (s *Store) FindStation(stationID string) (models.Station, bool) {
	i, ok := s.index[stationID]
	if !ok {
		return models.Station{}, false
	}
	return s.stations[i], true
}

// FindConnector looks a connector up within station.
func (s *Store) FindConnector(station models.Station, connectorID string) (models.Connector, bool) {
	for _, c := range station.Connectors {
		if c.ID == connectorID {
			return c, true
		}
	}
	return models.Connector{}, false
}
