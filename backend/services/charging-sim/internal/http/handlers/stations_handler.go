package handlers

import (
	"net/http"

	"chargesim/backend/services/charging-sim/internal/catalog"
	"chargesim/backend/services/charging-sim/internal/models"
	"chargesim/backend/services/charging-sim/internal/service"
)

// StationsHandler serves the catalog annotated with simulated availability.
// Every response draws fresh samples; nothing is cached between requests.
type StationsHandler struct {
	catalog *catalog.Store
	sampler service.Sampler
}

// NewStationsHandler builds handler set.
func NewStationsHandler(store *catalog.Store, sampler service.Sampler) *StationsHandler {
	return &StationsHandler{catalog: store, sampler: sampler}
}

// List handles GET /stations.
func (h *StationsHandler) List(w http.ResponseWriter, r *http.Request) {
	stations := h.catalog.Stations()
	out := make([]map[string]interface{}, 0, len(stations))
	for _, st := range stations {
		available := 0
		for range st.Connectors {
			if h.sampler.Sample() == models.ConnectorAvailable {
				available++
			}
		}
		fields := st.Fields()
		fields["available_connectors"] = available
		fields["total_connectors"] = len(st.Connectors)
		out = append(out, fields)
	}
	writeJSON(w, http.StatusOK, out)
}

// Get handles GET /stations/{stationID}.
func (h *StationsHandler) Get(w http.ResponseWriter, r *http.Request) {
	station, ok := h.catalog.FindStation(r.PathValue("stationID"))
	if !ok {
		writeError(w, http.StatusNotFound, "Station not found")
		return
	}

	fields := station.Fields()
	connectors := fields["connectors"].([]map[string]interface{})
	for _, c := range connectors {
		c["status"] = h.sampler.Sample()
	}
	writeJSON(w, http.StatusOK, fields)
}
