package api

import (
	"net/http"

	"bikebuild/apperr"
	"bikebuild/models"
)

type createGroupRequest struct {
	Name    string   `json:"name"`
	SlotIDs []string `json:"slotIds"`
}

type reorderSlotsRequest struct {
	SlotIDs []string `json:"slotIds"`
}

type addSlotRequest struct {
	ComponentKey string `json:"componentKey"`
}

func (s *Server) routeScaffold(w http.ResponseWriter, r *http.Request, build *models.Build) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	sc, err := s.builder.GetScaffold(r.Context(), build.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sc)
}

func (s *Server) routeGroups(w http.ResponseWriter, r *http.Request, build *models.Build) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req createGroupRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	g, err := s.mutator.CreateGroup(r.Context(), build.ID, req.Name, req.SlotIDs)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"id": g.ID, "name": g.Name})
}

// routeCategorySlots serves /categories/{categoryId}/slots[/reorder].
func (s *Server) routeCategorySlots(w http.ResponseWriter, r *http.Request, build *models.Build, categoryID string, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req addSlotRequest
		if err := decodeBody(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if req.ComponentKey == "" {
			s.fail(w, r, apperr.Invalid("componentKey is required"))
			return
		}
		sl, err := s.mutator.AddSlot(r.Context(), build.ID, categoryID, req.ComponentKey)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusCreated, map[string]any{
			"id":           sl.ID,
			"componentKey": sl.ComponentKey,
			"sortOrder":    sl.SortOrder,
		})
	case len(rest) == 1 && rest[0] == "reorder":
		if r.Method != http.MethodPut {
			methodNotAllowed(w)
			return
		}
		var req reorderSlotsRequest
		if err := decodeBody(r, &req); err != nil {
			s.fail(w, r, err)
			return
		}
		if err := s.mutator.ReorderSlots(r.Context(), build.ID, categoryID, req.SlotIDs); err != nil {
			s.fail(w, r, err)
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"ok": true})
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

func (s *Server) routeSlot(w http.ResponseWriter, r *http.Request, build *models.Build, slotID string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	removed, err := s.mutator.RemoveSlot(r.Context(), build.ID, slotID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !removed {
		s.fail(w, r, apperr.NotFound("Slot"))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
