// SPDX-License-Identifier: MIT

package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ManuGH/albumplay/internal/playback"
	"github.com/ManuGH/albumplay/internal/settings"
)

// settingsPatch holds the fields of a PUT; absent fields keep their value.
type settingsPatch struct {
	Orientation *settings.Orientation `json:"orientation"`
	Sort        *playback.SortPolicy  `json:"sort"`
}

// GET /api/settings
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Settings.Current())
}

// PUT /api/settings
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var patch settingsPatch
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	// Each branch is a single read-modify-write inside the manager.
	var err error
	switch {
	case patch.Orientation != nil && patch.Sort != nil:
		err = s.deps.Settings.Patch(r.Context(), settings.KeyAll, func(cur *settings.Settings) {
			cur.Orientation = *patch.Orientation
			cur.Sort = *patch.Sort
		})
	case patch.Orientation != nil:
		err = s.deps.Settings.StoreOrientation(r.Context(), *patch.Orientation)
	case patch.Sort != nil:
		err = s.deps.Settings.StoreSort(r.Context(), *patch.Sort)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Settings.Current())
}
