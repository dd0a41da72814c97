package taxonomy

// Cluster is one display unit of a group: either a single component or a run
// of consecutive components that share a composite group tag.
type Cluster struct {
	Group          string         `json:"group"`
	CompositeGroup string         `json:"compositeGroup,omitempty"`
	Label          string         `json:"label"`
	Components     []ComponentDef `json:"components"`
}

// Clusters folds defs into display clusters. Only neighbours are merged, so a
// composite tag that reappears after an unrelated component starts a new
// cluster. Nothing here is persisted; slots and attachments never see it.
func Clusters(defs []ComponentDef) []Cluster {
	var out []Cluster
	for _, d := range defs {
		if n := len(out); n > 0 && d.CompositeGroup != "" {
			last := &out[n-1]
			if last.CompositeGroup == d.CompositeGroup && last.Group == d.Group {
				last.Components = append(last.Components, d)
				continue
			}
		}
		c := Cluster{
			Group:          d.Group,
			CompositeGroup: d.CompositeGroup,
			Label:          d.Label,
			Components:     []ComponentDef{d},
		}
		if d.CompositeGroup != "" {
			c.Label = CompositeLabel(d.CompositeGroup)
		}
		out = append(out, c)
	}
	return out
}
