package api

import (
	"net/http"
	"strings"

	"bikebuild/apperr"
	"bikebuild/models"
	"bikebuild/taxonomy"
)

// handleParts routes the catalog part endpoints. Writes keep the part
// cache in step with the store.
func (s *Server) handleParts(w http.ResponseWriter, r *http.Request, rest []string) {
	switch len(rest) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			s.listParts(w, r)
		case http.MethodPost:
			s.createPart(w, r)
		default:
			methodNotAllowed(w)
		}
	case 1:
		switch r.Method {
		case http.MethodGet:
			s.getPart(w, r, rest[0])
		case http.MethodPatch:
			s.updatePart(w, r, rest[0])
		case http.MethodDelete:
			s.deletePart(w, r, rest[0])
		default:
			methodNotAllowed(w)
		}
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

// listParts answers from the part cache once it has been warmed and falls
// back to the store otherwise.
func (s *Server) listParts(w http.ResponseWriter, r *http.Request) {
	component := r.URL.Query().Get("component")
	if parts, complete := s.parts.List(component); complete {
		respondWithJSON(w, http.StatusOK, parts)
		return
	}
	parts, err := s.repo.ListParts(r.Context(), component)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, parts)
}

func (s *Server) createPart(w http.ResponseWriter, r *http.Request) {
	var p models.Part
	if err := decodeBody(r, &p); err != nil {
		s.fail(w, r, err)
		return
	}
	p.ID = ""
	if err := validatePart(&p); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.repo.CreatePart(r.Context(), &p); err != nil {
		s.fail(w, r, err)
		return
	}
	s.parts.Set(&p)
	respondWithJSON(w, http.StatusCreated, p)
}

func (s *Server) getPart(w http.ResponseWriter, r *http.Request, id string) {
	if p, ok := s.parts.GetByID(id); ok {
		respondWithJSON(w, http.StatusOK, p)
		return
	}
	p, err := s.repo.GetPart(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.parts.Set(p)
	respondWithJSON(w, http.StatusOK, p)
}

// updatePart decodes the body over the stored part, so absent fields keep
// their value and explicit nulls clear them.
func (s *Server) updatePart(w http.ResponseWriter, r *http.Request, id string) {
	p, err := s.repo.GetPart(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	createdAt := p.CreatedAt
	if err := decodeBody(r, p); err != nil {
		s.fail(w, r, err)
		return
	}
	p.ID, p.CreatedAt = id, createdAt
	if p.CompatibilityTags == nil {
		p.CompatibilityTags = []string{}
	}
	if err := validatePart(p); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.repo.UpdatePart(r.Context(), p); err != nil {
		s.fail(w, r, err)
		return
	}
	s.parts.Set(p)
	respondWithJSON(w, http.StatusOK, p)
}

func (s *Server) deletePart(w http.ResponseWriter, r *http.Request, id string) {
	deleted, err := s.repo.DeletePart(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.parts.Delete(id)
	if !deleted {
		s.fail(w, r, apperr.NotFound("Part"))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func validatePart(p *models.Part) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return apperr.Invalid("Part name is required")
	}
	if !taxonomy.IsComponentKey(p.Component) {
		return apperr.Invalid("Invalid component %q", p.Component)
	}
	if p.WeightG != nil && *p.WeightG < 0 {
		return apperr.Invalid("weightG must not be negative")
	}
	if p.Price != nil && *p.Price < 0 {
		return apperr.Invalid("price must not be negative")
	}
	if t := p.CranksetComponentType; t != nil && !taxonomy.ValidCranksetType(p.Component, *t) {
		return apperr.Invalid("Invalid cranksetComponentType %q for %s", *t, p.Component)
	}
	if t := p.HandlebarsStemComponentType; t != nil && !taxonomy.ValidHandlebarsStemType(p.Component, *t) {
		return apperr.Invalid("Invalid handlebarsStemComponentType %q for %s", *t, p.Component)
	}
	return nil
}
