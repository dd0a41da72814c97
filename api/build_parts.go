package api

import (
	"net/http"

	"bikebuild/apperr"
	"bikebuild/buildparts"
	"bikebuild/models"
)

// routeBuildParts serves /api/builds/{id}/parts[/{rowId}].
func (s *Server) routeBuildParts(w http.ResponseWriter, r *http.Request, build *models.Build, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			rows, err := s.buildParts.List(r.Context(), build.ID)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			respondWithJSON(w, http.StatusOK, rows)
		case http.MethodPost:
			var in buildparts.AddInput
			if err := decodeBody(r, &in); err != nil {
				s.fail(w, r, err)
				return
			}
			row, err := s.buildParts.Add(r.Context(), build.ID, in)
			if err != nil {
				s.fail(w, r, err)
				return
			}
			respondWithJSON(w, http.StatusCreated, row)
		default:
			methodNotAllowed(w)
		}
		return
	}

	rowID := rest[0]
	switch r.Method {
	case http.MethodPatch:
		var patch models.BuildPartPatch
		if err := decodeBody(r, &patch); err != nil {
			s.fail(w, r, err)
			return
		}
		row, err := s.buildParts.Update(r.Context(), build.ID, rowID, patch)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, row)
	case http.MethodDelete:
		removed, err := s.buildParts.Remove(r.Context(), build.ID, rowID)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if !removed {
			s.fail(w, r, apperr.NotFound("Build part"))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
	default:
		methodNotAllowed(w)
	}
}
