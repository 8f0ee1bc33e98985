package models

import "time"

// SlaType names what an SLA rule measures.
type SlaType string

const (
	SlaFlowFinish  SlaType = "FLOW_FINISH"
	SlaFlowSucceed SlaType = "FLOW_SUCCEED"
	SlaJobFinish   SlaType = "JOB_FINISH"
	SlaJobSucceed  SlaType = "JOB_SUCCEED"
)

// SlaOption is the rule whose violation triggered an SLA alert.
type SlaOption struct {
	Type     SlaType       `json:"type"`
	FlowID   string        `json:"flow_id"`
	JobID    string        `json:"job_id,omitempty"`
	Duration time.Duration `json:"duration"`
	// Actions lists what the engine does on violation, e.g. "alert", "kill".
	Actions []string `json:"actions,omitempty"`
}
