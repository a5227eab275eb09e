package state

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

type taskJSON struct {
	UserTaskID     string `json:"UserTaskId"`
	RequestURL     string `json:"RequestURL"`
	ClientIdentity string `json:"ClientIdentity"`
	StartMs        string `json:"StartMs"`
	Status         string `json:"Status"`
}

type stateJSON struct {
	UserTasks []taskJSON `json:"userTasks"`
	Version   int        `json:"version"`
}

// JSONString renders the filtered snapshot as a JSON document:
//
//	{"userTasks":[{"UserTaskId":...,"RequestURL":...,"ClientIdentity":...,
//	 "StartMs":...,"Status":"Active"|"Completed"},...],"version":N}
//
// Active rows precede completed rows, each group in snapshot order. StartMs
// is a decimal string, not a number. An empty snapshot yields an empty
// userTasks list, never null.
func (s *UserTaskState) JSONString(version int, requested Filter) (string, error) {
	rows := s.FilteredRows(requested)
	tasks := make([]taskJSON, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, taskJSON{
			UserTaskID:     r.Info.ID.String(),
			RequestURL:     r.Info.RequestURL,
			ClientIdentity: r.Info.ClientIdentity,
			StartMs:        strconv.FormatInt(r.Info.StartMs, 10),
			Status:         r.Status,
		})
	}
	// Request URLs carry query separators; they must come through verbatim,
	// not HTML-escaped to &.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(stateJSON{UserTasks: tasks, Version: version}); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}
