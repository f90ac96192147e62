package samplevotes

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/okian/radial/internal/domain/model"
	"github.com/okian/radial/internal/domain/preference"
)

// WriteCSV writes m in the ballot layout read by the votes loader. Abstentions
// are written as blank cells.
func WriteCSV(w io.Writer, m *preference.Matrix) error {
	cw := csv.NewWriter(w)
	header := append([]string{"pid"}, m.Projects()...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := 0; i < m.Rows(); i++ {
		p := m.Participant(i)
		rec := make([]string, 0, len(p.Votes)+1)
		rec = append(rec, p.ID)
		for _, v := range p.Votes {
			rec = append(rec, cell(v))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func cell(v model.Vote) string {
	switch v {
	case model.Approve:
		return "yes"
	case model.Reject:
		return "no"
	default:
		return ""
	}
}
