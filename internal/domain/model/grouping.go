package model

// Round tags the deliberation round a group belongs to.
type Round string

// Rounds, in the order they run.
const (
	Homogeneous   Round = "homogeneous"
	Heterogeneous Round = "heterogeneous"
)

// Projection places one participant in the 2D opinion space.
type Projection struct {
	ParticipantID string  `json:"participant_id"`
	PC1           float64 `json:"pc1"`
	PC2           float64 `json:"pc2"`
	Angle         float64 `json:"angle"`  // radians in [0, 2π)
	Radius        float64 `json:"radius"` // distance from the centroid
}

// Sector is a contiguous angular slice of the opinion space. End < Start
// means the sector wraps past 2π; Start == End covers the whole circle.
type Sector struct {
	Index   int      `json:"index"`
	Start   float64  `json:"start"`
	End     float64  `json:"end"`
	Members []string `json:"members"`
}

// Size returns the number of members.
func (s Sector) Size() int { return len(s.Members) }

// Group is a labeled deliberation group for one round.
type Group struct {
	Round   Round    `json:"round"`
	Label   string   `json:"label"`
	Sector  int      `json:"sector"` // source sector, -1 for heterogeneous groups
	Members []string `json:"members"`
}

// Size returns the number of members.
func (g Group) Size() int { return len(g.Members) }

// Assignment is the per-participant output row handed to export and plotting
// collaborators.
type Assignment struct {
	ParticipantID      string  `json:"participant_id"`
	Angle              float64 `json:"angle"`
	Radius             float64 `json:"radius"`
	PC1                float64 `json:"pc1"`
	PC2                float64 `json:"pc2"`
	HomogeneousSector  int     `json:"homogeneous_sector"`
	HomogeneousLabel   string  `json:"homogeneous_label"`
	HeterogeneousLabel string  `json:"heterogeneous_label,omitempty"` // empty when absent in round two
}
