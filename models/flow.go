package models

import (
	"fmt"
	"time"
)

// FlowStatus is the terminal state the execution engine reports for a run.
type FlowStatus string

const (
	FlowSucceeded   FlowStatus = "SUCCEEDED"
	FlowFailed      FlowStatus = "FAILED"
	FlowFailedFirst FlowStatus = "FAILED_FINISHING"
	FlowKilled      FlowStatus = "KILLED"
)

// ExecutableFlow describes one run of a flow as handed to alerters.
// Alerters read it and never mutate it.
type ExecutableFlow struct {
	FlowID      string     `json:"flow_id"`
	ExecutionID int        `json:"execution_id"`
	ProjectName string     `json:"project_name,omitempty"`
	Status      FlowStatus `json:"status,omitempty"`
	StartTime   time.Time  `json:"start_time,omitzero"`
	EndTime     time.Time  `json:"end_time,omitzero"`
}

// String renders "project/flow#execid", dropping the project when unset.
func (f *ExecutableFlow) String() string {
	if f.ProjectName == "" {
		return fmt.Sprintf("%s#%d", f.FlowID, f.ExecutionID)
	}
	return fmt.Sprintf("%s/%s#%d", f.ProjectName, f.FlowID, f.ExecutionID)
}

// Duration is EndTime-StartTime, or zero while either bound is unknown.
func (f *ExecutableFlow) Duration() time.Duration {
	if f.StartTime.IsZero() || f.EndTime.IsZero() {
		return 0
	}
	return f.EndTime.Sub(f.StartTime)
}
