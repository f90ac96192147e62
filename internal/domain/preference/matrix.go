// Package preference holds the participants × projects approval matrix.
//
// A Matrix is read-only once built. Rows correspond 1:1 to participants and
// every row shares the same project column order.
package preference

import (
	"strings"

	"github.com/okian/radial/internal/domain/grouperr"
	"github.com/okian/radial/internal/domain/model"
)

// DefaultAbstainValue is the numeric encoding of an abstention, halfway
// between reject (0) and approve (1).
const DefaultAbstainValue = 0.5

// Matrix is an immutable approval matrix.
type Matrix struct {
	participants []model.Participant
	projects     []string
	index        map[string]int
}

// New validates participants against the project list and builds a Matrix.
// IDs and project names must be unique and non-empty, and every participant
// must carry exactly one vote per project.
func New(projects []string, participants []model.Participant) (*Matrix, error) {
	if len(projects) == 0 {
		return nil, grouperr.Invalid("projects", "at least one project is required")
	}
	seenProjects := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		if strings.TrimSpace(p) == "" {
			return nil, grouperr.Invalid("projects", "empty project name")
		}
		if _, dup := seenProjects[p]; dup {
			return nil, grouperr.Invalid("projects", "duplicate project %q", p)
		}
		seenProjects[p] = struct{}{}
	}

	m := &Matrix{
		participants: make([]model.Participant, len(participants)),
		projects:     append([]string(nil), projects...),
		index:        make(map[string]int, len(participants)),
	}
	for i, p := range participants {
		if strings.TrimSpace(p.ID) == "" {
			return nil, grouperr.Invalid("participants", "row %d has an empty id", i)
		}
		if _, dup := m.index[p.ID]; dup {
			return nil, grouperr.Invalid("participants", "duplicate id %q", p.ID)
		}
		if len(p.Votes) != len(projects) {
			return nil, grouperr.Invalid("participants", "%q has %d votes for %d projects", p.ID, len(p.Votes), len(projects))
		}
		m.index[p.ID] = i
		m.participants[i] = model.Participant{ID: p.ID, Votes: append([]model.Vote(nil), p.Votes...)}
	}
	return m, nil
}

// Rows returns the number of participants.
func (m *Matrix) Rows() int { return len(m.participants) }

// Cols returns the number of projects.
func (m *Matrix) Cols() int { return len(m.projects) }

// Projects returns a copy of the project column order.
func (m *Matrix) Projects() []string { return append([]string(nil), m.projects...) }

// IDs returns participant ids in row order.
func (m *Matrix) IDs() []string {
	ids := make([]string, len(m.participants))
	for i, p := range m.participants {
		ids[i] = p.ID
	}
	return ids
}

// Participant returns the participant stored at row i.
func (m *Matrix) Participant(i int) model.Participant {
	p := m.participants[i]
	return model.Participant{ID: p.ID, Votes: append([]model.Vote(nil), p.Votes...)}
}

// Has reports whether id is a row of the matrix.
func (m *Matrix) Has(id string) bool {
	_, ok := m.index[id]
	return ok
}

// Encode returns the matrix as row-major float64 values with approve = 1,
// reject = 0 and abstain = abstain.
func (m *Matrix) Encode(abstain float64) []float64 {
	cols := len(m.projects)
	out := make([]float64, len(m.participants)*cols)
	for i, p := range m.participants {
		row := out[i*cols : (i+1)*cols]
		for j, v := range p.Votes {
			switch v {
			case model.Approve:
				row[j] = 1
			case model.Abstain:
				row[j] = abstain
			default:
				row[j] = 0
			}
		}
	}
	return out
}

// Subset returns a matrix restricted to ids, keeping the original row order.
// Unknown ids are an InvalidInputError.
func (m *Matrix) Subset(ids []string) (*Matrix, error) {
	keep := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !m.Has(id) {
			return nil, grouperr.Invalid("attendance", "unknown participant %q", id)
		}
		keep[id] = struct{}{}
	}
	rows := make([]model.Participant, 0, len(keep))
	for _, p := range m.participants {
		if _, ok := keep[p.ID]; ok {
			rows = append(rows, p)
		}
	}
	return New(m.projects, rows)
}
