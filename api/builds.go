package api

import (
	"net/http"
	"strings"

	"bikebuild/apperr"
	"bikebuild/auth"
	"bikebuild/models"
)

const (
	defaultBuildName = "Untitled Build"
	defaultBikeType  = "road"
)

type buildRequest struct {
	Name     *string `json:"name"`
	BikeType *string `json:"bikeType"`
}

// handleBuilds routes /api/builds and everything nested under a build.
func (s *Server) handleBuilds(w http.ResponseWriter, r *http.Request, rest []string) {
	if len(rest) == 0 {
		switch r.Method {
		case http.MethodGet:
			s.listBuilds(w, r)
		case http.MethodPost:
			s.createBuild(w, r)
		default:
			methodNotAllowed(w)
		}
		return
	}

	build, ok := s.loadBuild(w, r, rest[0])
	if !ok {
		return
	}
	sub := rest[1:]
	switch {
	case len(sub) == 0:
		switch r.Method {
		case http.MethodGet:
			respondWithJSON(w, http.StatusOK, build)
		case http.MethodPatch:
			s.updateBuild(w, r, build)
		case http.MethodDelete:
			s.deleteBuild(w, r, build)
		default:
			methodNotAllowed(w)
		}
	case sub[0] == "scaffold" && len(sub) == 1:
		s.routeScaffold(w, r, build)
	case sub[0] == "groups" && len(sub) == 1:
		s.routeGroups(w, r, build)
	case sub[0] == "categories" && len(sub) >= 3 && sub[2] == "slots":
		s.routeCategorySlots(w, r, build, sub[1], sub[3:])
	case sub[0] == "slots" && len(sub) == 2:
		s.routeSlot(w, r, build, sub[1])
	case sub[0] == "parts" && len(sub) <= 2:
		s.routeBuildParts(w, r, build, sub[1:])
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

// loadBuild fetches a build and checks the caller may use it. Builds the
// caller cannot see are reported as missing on reads and as forbidden on
// writes.
func (s *Server) loadBuild(w http.ResponseWriter, r *http.Request, id string) (*models.Build, bool) {
	b, err := s.repo.GetBuild(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if !auth.CanMutateBuild(auth.FromRequest(r, s.userHeader), b) {
		if r.Method == http.MethodGet {
			s.fail(w, r, apperr.NotFound("Build"))
		} else {
			s.fail(w, r, apperr.Unauthorized("build"))
		}
		return nil, false
	}
	return b, true
}

func (s *Server) listBuilds(w http.ResponseWriter, r *http.Request) {
	builds, err := s.repo.ListBuilds(r.Context(), auth.FromRequest(r, s.userHeader))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, builds)
}

func (s *Server) createBuild(w http.ResponseWriter, r *http.Request) {
	var req buildRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	b := &models.Build{
		UserID:   auth.FromRequest(r, s.userHeader),
		Name:     defaultBuildName,
		BikeType: defaultBikeType,
	}
	if v := trimmed(req.Name); v != "" {
		b.Name = v
	}
	if v := trimmed(req.BikeType); v != "" {
		b.BikeType = v
	}
	if err := s.repo.CreateBuild(r.Context(), b); err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, b)
}

func (s *Server) updateBuild(w http.ResponseWriter, r *http.Request, build *models.Build) {
	var req buildRequest
	if err := decodeBody(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Name != nil && trimmed(req.Name) == "" {
		s.fail(w, r, apperr.Invalid("Build name must not be empty"))
		return
	}
	if req.BikeType != nil && trimmed(req.BikeType) == "" {
		s.fail(w, r, apperr.Invalid("Bike type must not be empty"))
		return
	}
	name, bikeType := trimmedPtr(req.Name), trimmedPtr(req.BikeType)
	updated, err := s.repo.UpdateBuild(r.Context(), build.ID, name, bikeType)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, updated)
}

func (s *Server) deleteBuild(w http.ResponseWriter, r *http.Request, build *models.Build) {
	deleted, err := s.repo.DeleteBuild(r.Context(), build.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !deleted {
		s.fail(w, r, apperr.NotFound("Build"))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
