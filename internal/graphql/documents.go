package graphql

// Operation names. The dev server dispatches on these, so they double as the
// persisted operation identifiers.
const (
	OpGetProjects          = "getProjects"
	OpGetProjectsWithTasks = "getProjectsWithTasks"
	OpGetTasks             = "getTasks"
	OpGetTaskComments      = "getTaskComments"
	OpGetProjectStats      = "getProjectStats"
	OpCreateProject        = "createProject"
	OpUpdateProject        = "updateProject"
	OpCreateTask           = "createTask"
	OpUpdateTask           = "updateTask"
	OpAddTaskComment       = "addTaskComment"
)

const projectFields = `
      id
      name
      description
      status
      dueDate
      createdAt`

const taskFields = `
      id
      title
      description
      status
      assigneeEmail
      dueDate
      createdAt`

const commentFields = `
      id
      content
      authorEmail
      createdAt`

// Documents maps each operation name to its query text.
var Documents = map[string]string{
	OpGetProjects: `query getProjects {
  projects {` + projectFields + `
  }
}`,

	OpGetProjectsWithTasks: `query getProjectsWithTasks {
  projects {` + projectFields + `
    tasks {` + taskFields + `
    }
  }
}`,

	OpGetTasks: `query getTasks($projectId: ID!) {
  tasks(projectId: $projectId) {` + taskFields + `
  }
}`,

	OpGetTaskComments: `query getTaskComments($taskId: ID!) {
  taskComments(taskId: $taskId) {` + commentFields + `
  }
}`,

	OpGetProjectStats: `query getProjectStats($projectId: ID!) {
  projectStats(projectId: $projectId) {
    totalTasks
    completedTasks
    completionRate
  }
}`,

	OpCreateProject: `mutation createProject($name: String!, $description: String, $status: String!, $dueDate: Date) {
  createProject(name: $name, description: $description, status: $status, dueDate: $dueDate) {
    project {` + projectFields + `
    }
  }
}`,

	OpUpdateProject: `mutation updateProject($projectId: ID!, $name: String, $description: String, $status: String, $dueDate: Date) {
  updateProject(projectId: $projectId, name: $name, description: $description, status: $status, dueDate: $dueDate) {
    project {` + projectFields + `
    }
  }
}`,

	OpCreateTask: `mutation createTask($projectId: ID!, $title: String!, $description: String, $status: String!, $assigneeEmail: String) {
  createTask(projectId: $projectId, title: $title, description: $description, status: $status, assigneeEmail: $assigneeEmail) {
    task {` + taskFields + `
    }
  }
}`,

	OpUpdateTask: `mutation updateTask($taskId: ID!, $title: String, $description: String, $status: String, $assigneeEmail: String) {
  updateTask(taskId: $taskId, title: $title, description: $description, status: $status, assigneeEmail: $assigneeEmail) {
    task {` + taskFields + `
    }
  }
}`,

	OpAddTaskComment: `mutation addTaskComment($taskId: ID!, $content: String!, $authorEmail: String!) {
  addTaskComment(taskId: $taskId, content: $content, authorEmail: $authorEmail) {
    comment {` + commentFields + `
    }
  }
}`,
}

// NewRequest builds a Request for a known operation.
func NewRequest(op string, vars map[string]any) Request {
	return Request{
		OperationName: op,
		Query:         Documents[op],
		Variables:     vars,
	}
}
