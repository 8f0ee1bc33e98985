package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExecutableFlowString(t *testing.T) {
	f := &ExecutableFlow{FlowID: "etl_daily", ExecutionID: 42}
	assert.Equal(t, "etl_daily#42", f.String())

	f.ProjectName = "warehouse"
	assert.Equal(t, "warehouse/etl_daily#42", f.String())
}

func TestExecutableFlowDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	f := &ExecutableFlow{StartTime: start}
	assert.Zero(t, f.Duration())

	f.EndTime = start.Add(90 * time.Second)
	assert.Equal(t, 90*time.Second, f.Duration())
}
