// Package export writes grouping results for downstream tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/okian/radial/internal/domain/model"
)

// Header is the column layout of an assignment file.
var Header = []string{"pid", "angle", "radius", "pc1", "pc2", "sector", "homogeneous", "heterogeneous"} //nolint:gochecknoglobals // fixed column layout

// WriteAssignments writes one row per assignment, in the order given.
func WriteAssignments(w io.Writer, rows []model.Assignment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("export: header: %w", err)
	}
	for _, a := range rows {
		rec := []string{
			a.ParticipantID,
			formatFloat(a.Angle),
			formatFloat(a.Radius),
			formatFloat(a.PC1),
			formatFloat(a.PC2),
			strconv.Itoa(a.HomogeneousSector),
			a.HomogeneousLabel,
			a.HeterogeneousLabel,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("export: %s: %w", a.ParticipantID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("export: flush: %w", err)
	}
	return nil
}

// WriteFile writes assignments to path, or to stdout when path is "-".
func WriteFile(path string, rows []model.Assignment) (err error) {
	if path == "-" {
		return WriteAssignments(os.Stdout, rows)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("export: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("export: close: %w", cerr)
		}
	}()
	return WriteAssignments(f, rows)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
