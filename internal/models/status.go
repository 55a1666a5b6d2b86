package models

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
)

// ProjectStatuses lists every known project status in display order
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold}

// Valid reports whether s is one of the known project statuses
func (s ProjectStatus) Valid() bool {
	for _, v := range ProjectStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns a human readable name, "Unknown" for values the server
// added after this client was built
func (s ProjectStatus) Label() string {
	switch s {
	case ProjectActive:
		return "Active"
	case ProjectCompleted:
		return "Completed"
	case ProjectOnHold:
		return "On Hold"
	}
	return "Unknown"
}

// Next cycles to the following status, wrapping around
func (s ProjectStatus) Next() ProjectStatus {
	for i, v := range ProjectStatuses {
		if s == v {
			return ProjectStatuses[(i+1)%len(ProjectStatuses)]
		}
	}
	return ProjectStatuses[0]
}

// TaskStatus is the workflow state of a task
type TaskStatus string

const (
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskDone       TaskStatus = "DONE"
)

// TaskStatuses lists every known task status in workflow order
var TaskStatuses = []TaskStatus{TaskTodo, TaskInProgress, TaskDone}

// Valid reports whether s is one of the known task statuses
func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Label returns a human readable name, "Unknown" for unrecognized values
func (s TaskStatus) Label() string {
	switch s {
	case TaskTodo:
		return "Todo"
	case TaskInProgress:
		return "In Progress"
	case TaskDone:
		return "Done"
	}
	return "Unknown"
}

// Next cycles to the following status, wrapping around
func (s TaskStatus) Next() TaskStatus {
	for i, v := range TaskStatuses {
		if s == v {
			return TaskStatuses[(i+1)%len(TaskStatuses)]
		}
	}
	return TaskStatuses[0]
}

// ParseProjectStatus accepts labels or wire values in any case
func ParseProjectStatus(s string) (ProjectStatus, bool) {
	n := normalizeEnum(s)
	for _, v := range ProjectStatuses {
		if string(v) == n {
			return v, true
		}
	}
	return "", false
}

// ParseTaskStatus accepts labels or wire values in any case
func ParseTaskStatus(s string) (TaskStatus, bool) {
	n := normalizeEnum(s)
	for _, v := range TaskStatuses {
		if string(v) == n {
			return v, true
		}
	}
	return "", false
}

func normalizeEnum(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
			out = append(out, c-'a'+'A')
		case c == ' ' || c == '-':
			out = append(out, '_')
		default:
			out = append(out, c)
		}
	}
	return string(out)
}
