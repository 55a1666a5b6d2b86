package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectStatus_UnknownValueFallsBack(t *testing.T) {
	var p Project
	err := json.Unmarshal([]byte(`{"id":"1","name":"x","status":"ARCHIVED"}`), &p)
	require.NoError(t, err)

	assert.False(t, p.Status.Valid())
	assert.Equal(t, "Unknown", p.Status.Label())
	assert.Equal(t, ProjectActive, p.Status.Next())
}

func TestTaskStatus_Labels(t *testing.T) {
	assert.Equal(t, "Todo", TaskTodo.Label())
	assert.Equal(t, "In Progress", TaskInProgress.Label())
	assert.Equal(t, "Done", TaskDone.Label())
	assert.Equal(t, "Unknown", TaskStatus("BLOCKED").Label())
}

func TestTaskStatus_NextWraps(t *testing.T) {
	assert.Equal(t, TaskInProgress, TaskTodo.Next())
	assert.Equal(t, TaskDone, TaskInProgress.Next())
	assert.Equal(t, TaskTodo, TaskDone.Next())
}

func TestParseStatus(t *testing.T) {
	ps, ok := ParseProjectStatus("on hold")
	assert.True(t, ok)
	assert.Equal(t, ProjectOnHold, ps)

	ts, ok := ParseTaskStatus("in-progress")
	assert.True(t, ok)
	assert.Equal(t, TaskInProgress, ts)

	_, ok = ParseTaskStatus("blocked")
	assert.False(t, ok)
}

func TestDate_JSON(t *testing.T) {
	var p Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","dueDate":"2025-06-30"}`), &p))
	require.NotNil(t, p.DueDate)
	assert.Equal(t, "2025-06-30", p.DueDate.String())

	var none Project
	require.NoError(t, json.Unmarshal([]byte(`{"id":"1","dueDate":null}`), &none))
	assert.Nil(t, none.DueDate)

	out, err := json.Marshal(p.DueDate)
	require.NoError(t, err)
	assert.JSONEq(t, `"2025-06-30"`, string(out))
}
