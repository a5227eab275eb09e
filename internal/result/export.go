package result

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"taskstate/internal/state"
)

type Exporter struct{}

func NewExporter() *Exporter { return &Exporter{} }

// Export renders the snapshot in the requested format. json and table are the
// two canonical views; csv and pdf are report formats built from the same
// filtered rows.
func (e *Exporter) Export(st *state.UserTaskState, version int, format string, filter state.Filter) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json":
		s, err := st.JSONString(version, filter)
		if err != nil {
			return nil, err
		}
		return []byte(s), nil
	case "table":
		var buf bytes.Buffer
		st.WriteTable(&buf, filter)
		return buf.Bytes(), nil
	case "csv":
		var b strings.Builder
		w := csv.NewWriter(&b)
		_ = w.Write([]string{"user_task_id", "client_address", "start_ms", "start_time", "status", "request_url"})
		for _, r := range st.FilteredRows(filter) {
			_ = w.Write([]string{
				r.Info.ID.String(),
				r.Info.ClientIdentity,
				strconv.FormatInt(r.Info.StartMs, 10),
				state.FormatStartTime(r.Info.StartMs),
				r.Status,
				r.Info.RequestURL,
			})
		}
		w.Flush()
		return []byte(b.String()), nil
	case "pdf":
		pdf := gofpdf.New("P", "mm", "A4", "")
		pdf.AddPage()
		pdf.SetFont("Arial", "B", 14)
		pdf.Cell(40, 10, "User Task Report")
		pdf.Ln(12)
		pdf.SetFont("Arial", "", 10)
		for _, r := range st.FilteredRows(filter) {
			line := fmt.Sprintf("[%s] %s %s %s %s", r.Status, r.Info.ID, r.Info.ClientIdentity,
				state.FormatStartTime(r.Info.StartMs), r.Info.RequestURL)
			pdf.MultiCell(0, 6, line, "0", "L", false)
		}
		var buf bytes.Buffer
		if err := pdf.Output(io.Writer(&buf)); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unknown format %s", format)
	}
}
