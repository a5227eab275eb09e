package state

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"taskstate/internal/task"
)

// startTimeLayout matches the historical report format: 12-hour clock with no
// AM/PM marker, underscore between date and time, trailing zone abbreviation.
// Ambiguous on purpose; consumers depend on the exact bytes.
const startTimeLayout = "2006-01-02_03:04:05 MST"

const (
	tablePadding       = 2
	minTaskIDWidth     = 20
	minClientWidth     = 20
	minStartTimeWidth  = 20
	minStatusWidth     = 10
	minRequestURLWidth = 20
)

// FormatStartTime renders a start timestamp in UTC using the fixed table
// layout.
func FormatStartTime(startMs int64) string {
	return time.UnixMilli(startMs).UTC().Format(startTimeLayout)
}

type tableBucket struct {
	label string
	tasks []task.Info
}

// WriteTable writes the filtered snapshot to w as an aligned table. Buckets
// are emitted in lexicographic label order. Column widths are computed over
// the full unfiltered snapshot, so alignment does not shift with the filter.
// Every line, the header included, starts with a newline. A write failure is
// logged and swallowed; this is a best-effort diagnostic view.
func (s *UserTaskState) WriteTable(w io.Writer, requested Filter) {
	buckets := []tableBucket{
		{label: StatusActive, tasks: s.active},
		{label: StatusCompleted, tasks: s.completed},
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].label < buckets[j].label })

	idW := minTaskIDWidth
	clientW := minClientWidth
	startW := minStartTimeWidth
	statusW := minStatusWidth
	requestW := minRequestURLWidth
	for _, b := range buckets {
		statusW = max(statusW, len(b.label))
		for _, t := range b.tasks {
			idW = max(idW, len(t.ID.String()))
			clientW = max(clientW, len(t.ClientIdentity))
			startW = max(startW, len(FormatStartTime(t.StartMs)))
			requestW = max(requestW, len(t.RequestURL))
		}
	}

	var sb strings.Builder
	writeLine := func(id, client, start, status, request string) {
		fmt.Fprintf(&sb, "\n%-*s%-*s%-*s%-*s%-*s",
			idW+tablePadding, id,
			clientW+tablePadding, client,
			startW+tablePadding, start,
			statusW+tablePadding, status,
			requestW+tablePadding, request)
	}

	writeLine("USER TASK ID", "CLIENT ADDRESS", "START TIME", "STATUS", "REQUEST URL")
	for _, b := range buckets {
		for _, t := range b.tasks {
			if !requested.Match(t.ID) {
				continue
			}
			writeLine(t.ID.String(), t.ClientIdentity, FormatStartTime(t.StartMs), b.label, t.RequestURL)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		s.log.Error("failed to write user task table: %v", err)
	}
}
