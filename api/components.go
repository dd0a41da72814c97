package api

import (
	"net/http"

	"bikebuild/taxonomy"
)

type groupView struct {
	Name         string   `json:"name"`
	CustomBucket string   `json:"customBucket"`
	Components   []string `json:"components"`
}

// handleComponents serves the read-only component taxonomy.
func (s *Server) handleComponents(w http.ResponseWriter, r *http.Request, rest []string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	switch {
	case len(rest) == 0:
		respondWithJSON(w, http.StatusOK, taxonomy.Components())
	case len(rest) == 1 && rest[0] == "clusters":
		respondWithJSON(w, http.StatusOK, taxonomy.Clusters(taxonomy.Components()))
	case len(rest) == 1 && rest[0] == "groups":
		groups := taxonomy.Groups()
		out := make([]groupView, 0, len(groups))
		for _, g := range groups {
			bucket, _ := taxonomy.CustomBucketKey(g)
			out = append(out, groupView{Name: g, CustomBucket: bucket, Components: taxonomy.KeysInGroup(g)})
		}
		respondWithJSON(w, http.StatusOK, out)
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}
