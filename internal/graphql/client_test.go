package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestClient_Do_SendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "acme", r.Header.Get(OrgHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, OpGetTasks, req.OperationName)
		assert.Contains(t, req.Query, "tasks(projectId: $projectId)")
		assert.Equal(t, "p1", req.Variables["projectId"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"tasks":[]}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, OrgSlug: "acme"}, testLogger())
	data, err := c.Do(context.Background(), NewRequest(OpGetTasks, map[string]any{"projectId": "p1"}))

	require.NoError(t, err)
	assert.JSONEq(t, `{"tasks":[]}`, string(data))
}

func TestClient_Do_ServerErrorVerbatim(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null,"errors":[{"message":"X-ORG-SLUG header missing"}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, testLogger())
	_, err := c.Do(context.Background(), NewRequest(OpGetProjects, nil))

	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "X-ORG-SLUG header missing", err.Error())
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_Do_ErrorsOnBadRequestStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"errors":[{"message":"Variable \"$name\" of required type \"String!\" was not provided."}]}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, testLogger())
	_, err := c.Do(context.Background(), NewRequest(OpCreateProject, nil))

	var serr *ServerError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, serr.Messages[0], "$name")
}

func TestClient_Do_NonJSONStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL}, testLogger())
	_, err := c.Do(context.Background(), NewRequest(OpGetProjects, nil))

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadGateway, terr.StatusCode)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_Do_Unreachable(t *testing.T) {
	c := NewClient(Config{Endpoint: "http://127.0.0.1:1/graphql/"}, testLogger())
	_, err := c.Do(context.Background(), NewRequest(OpGetProjects, nil))

	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := NewClient(Config{Endpoint: srv.URL, Timeout: 50 * time.Millisecond}, testLogger())
	_, err := c.Do(context.Background(), NewRequest(OpGetProjects, nil))

	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_Do_Canceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	c := NewClient(Config{Endpoint: srv.URL}, testLogger())
	_, err := c.Do(ctx, NewRequest(OpGetProjects, nil))

	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, errors.Is(err, ErrRequestFailed))
}

func TestDocuments_CoverEveryOperation(t *testing.T) {
	ops := []string{
		OpGetProjects, OpGetProjectsWithTasks, OpGetTasks, OpGetTaskComments, OpGetProjectStats,
		OpCreateProject, OpUpdateProject, OpCreateTask, OpUpdateTask, OpAddTaskComment,
	}
	for _, op := range ops {
		assert.Contains(t, Documents[op], op, "document for %s", op)
	}
}
