package proposal

// StatusInfo carries display metadata for a proposal lifecycle status:
// a short emoji prefix, a badge color, and a one-line description.
type StatusInfo struct {
	Prefix      string
	Color       string // #RRGGBB
	Description string
}

// Statuses maps the upstream lifecycle states to display metadata. Unknown
// statuses fall back to DefaultStatus.
var Statuses = map[string]StatusInfo{
	"Living":    {Prefix: "🌱", Color: "#2F855A", Description: "Continually updated and never final"},
	"Final":     {Prefix: "✅", Color: "#276749", Description: "Accepted standard, only errata allowed"},
	"Last Call": {Prefix: "🔔", Color: "#B7791F", Description: "Final review window before Final"},
	"Review":    {Prefix: "👀", Color: "#2B6CB0", Description: "Under peer review"},
	"Draft":     {Prefix: "✏️", Color: "#4A5568", Description: "First formal stage, still changing"},
	"Stagnant":  {Prefix: "💤", Color: "#718096", Description: "Inactive for six months or more"},
	"Withdrawn": {Prefix: "🚫", Color: "#C53030", Description: "Withdrawn by its authors"},
	"Idea":      {Prefix: "💡", Color: "#6B46C1", Description: "Pre-draft, not yet tracked"},
}

// DefaultStatus is used when a document carries no status or an
// unrecognized one.
var DefaultStatus = StatusInfo{Prefix: "✏️", Color: "#00B5D8", Description: "Status unknown"}

// StatusFor returns display metadata for a status string.
func StatusFor(status string) StatusInfo {
	if info, ok := Statuses[status]; ok {
		return info
	}
	return DefaultStatus
}
