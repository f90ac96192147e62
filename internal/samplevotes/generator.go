package samplevotes

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
	"github.com/okian/radial/internal/domain/seed"
)

// Camp approval probabilities. A camp either likes or dislikes a project.
const (
	likeProbability    = 0.85
	dislikeProbability = 0.15
)

// Generate builds a ballot matrix for cfg. The same config always yields the
// same matrix.
func Generate(cfg Config) (*preference.Matrix, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := seed.New(cfg.Seed)

	projects := make([]string, cfg.Projects)
	for j := range projects {
		projects[j] = fmt.Sprintf("P%02d", j+1)
	}

	profiles := make([][]float64, cfg.Camps)
	for c := range profiles {
		profiles[c] = make([]float64, cfg.Projects)
		for j := range profiles[c] {
			if rng.Intn(2) == 0 {
				profiles[c][j] = likeProbability
			} else {
				profiles[c][j] = dislikeProbability
			}
		}
	}

	participants := make([]model.Participant, cfg.Participants)
	for i := range participants {
		id, err := participantID(cfg, rng, i)
		if err != nil {
			return nil, err
		}
		profile := profiles[i%cfg.Camps]
		votes := make([]model.Vote, cfg.Projects)
		for j := range votes {
			votes[j] = draw(rng, profile[j], cfg)
		}
		participants[i] = model.Participant{ID: id, Votes: votes}
	}
	return preference.New(projects, participants)
}

// Camp returns the camp index Generate assigned to row i.
func Camp(cfg Config, i int) int {
	if cfg.Camps < 1 {
		return 0
	}
	return i % cfg.Camps
}

func participantID(cfg Config, rng *rand.Rand, i int) (string, error) {
	if !cfg.UUIDs {
		return fmt.Sprintf("p%03d", i+1), nil
	}
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return "", fmt.Errorf("participant id %d: %w", i, err)
	}
	return id.String(), nil
}

func draw(rng *rand.Rand, approve float64, cfg Config) model.Vote {
	if rng.Float64() < cfg.AbstainRate {
		return model.Abstain
	}
	if rng.Float64() < cfg.Noise {
		approve = 0.5
	}
	if rng.Float64() < approve {
		return model.Approve
	}
	return model.Reject
}
