// Package votes loads approval ballots and attendance lists from CSV.
//
// The ballot layout is one header row, "pid,<project>,<project>...", followed
// by one row per participant. Cells are parsed with model.ParseVote, so blank
// cells count as abstentions.
package votes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
)

// Read parses a ballot CSV into a preference matrix.
func Read(r io.Reader) (*preference.Matrix, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrMissingHeader
	}
	if err != nil {
		return nil, fmt.Errorf("votes: header: %w", err)
	}
	if len(header) < 2 || !isIDColumn(header[0]) {
		return nil, ErrBadHeader
	}
	projects := header[1:]

	var participants []model.Participant
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("votes: line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		if len(rec) != len(header) {
			return nil, fmt.Errorf("votes: line %d: %d cells for %d columns", line, len(rec), len(header))
		}
		p := model.Participant{ID: strings.TrimSpace(rec[0]), Votes: make([]model.Vote, len(projects))}
		for j, cell := range rec[1:] {
			v, err := model.ParseVote(cell)
			if err != nil {
				return nil, fmt.Errorf("votes: line %d, project %q: %w", line, projects[j], err)
			}
			p.Votes[j] = v
		}
		participants = append(participants, p)
	}

	m, err := preference.New(projects, participants)
	if err != nil {
		return nil, fmt.Errorf("votes: %w", err)
	}
	return m, nil
}

// ReadAttendance parses a header row followed by one participant id per row.
func ReadAttendance(r io.Reader) ([]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrMissingHeader
		}
		return nil, fmt.Errorf("attendance: header: %w", err)
	}

	ids := []string{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return ids, nil
		}
		if err != nil {
			return nil, fmt.Errorf("attendance: line %d: %w", line, err)
		}
		if blank(rec) {
			continue
		}
		ids = append(ids, strings.TrimSpace(rec[0]))
	}
}

// Load reads a ballot file from disk.
func Load(path string) (*preference.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("votes: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Read(f)
}

// LoadAttendance reads an attendance file from disk.
func LoadAttendance(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("attendance: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadAttendance(f)
}

func isIDColumn(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pid", "id", "participant", "participant_id":
		return true
	}
	return false
}

func blank(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
