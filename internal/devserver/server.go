// Package devserver is a local stand-in for the project tracking GraphQL
// API. It answers the fixed operation documents the client sends, keyed by
// operation name, from a sqlite database.
package devserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/tgienger/ptrack/internal/db"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/models"
)

const (
	// Path is where the GraphQL endpoint is mounted
	Path = "/graphql/"

	orgContextKey = "organization"

	msgOrgMissing = "X-ORG-SLUG header missing"
)

// Server serves the GraphQL endpoint
type Server struct {
	db        *db.DB
	log       *logrus.Entry
	resolvers map[string]resolver
}

// New creates a Server backed by store
func New(store *db.DB, log *logrus.Entry) *Server {
	s := &Server{
		db:  store,
		log: log.WithField("component", "devserver"),
	}
	s.resolvers = map[string]resolver{
		graphql.OpGetProjects:          s.resolveProjects,
		graphql.OpGetProjectsWithTasks: s.resolveProjectsWithTasks,
		graphql.OpGetTasks:             s.resolveTasks,
		graphql.OpGetTaskComments:      s.resolveTaskComments,
		graphql.OpGetProjectStats:      s.resolveProjectStats,
		graphql.OpCreateProject:        s.createProject,
		graphql.OpUpdateProject:        s.updateProject,
		graphql.OpCreateTask:           s.createTask,
		graphql.OpUpdateTask:           s.updateTask,
		graphql.OpAddTaskComment:       s.addTaskComment,
	}
	return s
}

// Handler builds the gin engine with all routes attached
func (s *Server) Handler() http.Handler {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())
	s.EnrichRoutes(router)
	return router
}

// EnrichRoutes mounts the endpoint on router
func (s *Server) EnrichRoutes(router *gin.Engine) {
	router.POST(Path, s.organization(), s.graphqlAction)
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("dev server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetHeader(graphql.RequestIDHeader),
		}).Debug("request")
	}
}

// organization resolves the tenant from the X-ORG-SLUG header. A missing or
// unknown slug leaves the request without an organization; resolvers reject
// it.
func (s *Server) organization() gin.HandlerFunc {
	return func(c *gin.Context) {
		slug := c.GetHeader(graphql.OrgHeader)
		if slug == "" {
			c.Next()
			return
		}
		org, err := s.db.GetOrganizationBySlug(slug)
		switch {
		case err == nil:
			c.Set(orgContextKey, org)
		case errors.Is(err, db.ErrNotFound):
			s.log.WithField("slug", slug).Debug("unknown organization")
		default:
			s.log.WithError(err).Error("failed to look up organization")
		}
		c.Next()
	}
}

type requestBody struct {
	OperationName string         `json:"operationName"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables"`
}

type gqlError struct {
	Message string `json:"message"`
}

func (s *Server) graphqlAction(c *gin.Context) {
	const op = "devserver.Server.graphqlAction"

	var body requestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gqlError{{Message: "Must provide a valid JSON body"}}})
		return
	}
	log := s.log.WithFields(logrus.Fields{
		"operation":     op,
		"operationName": body.OperationName,
	})

	resolve, ok := s.resolvers[body.OperationName]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"errors": []gqlError{{Message: "Unknown operation named \"" + body.OperationName + "\"."}}})
		return
	}

	value, _ := c.Get(orgContextKey)
	org, _ := value.(*models.Organization)
	if org == nil {
		c.JSON(http.StatusOK, gin.H{"data": nil, "errors": []gqlError{{Message: msgOrgMissing}}})
		return
	}

	vars := body.Variables
	if vars == nil {
		vars = map[string]any{}
	}
	data, err := resolve(org, vars)
	if err != nil {
		log.WithError(err).Debug("resolver failed")
		c.JSON(http.StatusOK, gin.H{"data": nil, "errors": []gqlError{{Message: publicMessage(err)}}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}
