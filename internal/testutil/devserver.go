package testutil

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/ptrack/internal/db"
	"github.com/tgienger/ptrack/internal/devserver"
	"github.com/tgienger/ptrack/internal/graphql"
	"github.com/tgienger/ptrack/internal/logging"
)

// DevServer is a running dev GraphQL server over an in-memory database
type DevServer struct {
	URL string
	DB  *db.DB
}

// NewDevServer starts a seeded dev server that is shut down with the test
func NewDevServer(t *testing.T) *DevServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := db.Open(db.MemoryPath)
	require.NoError(t, err)
	require.NoError(t, store.SeedOrganizations())

	srv := httptest.NewServer(devserver.New(store, logging.Discard()).Handler())
	t.Cleanup(func() {
		srv.Close()
		store.Close()
	})

	return &DevServer{URL: srv.URL + devserver.Path, DB: store}
}

// Client returns a transport for the given organization
func (s *DevServer) Client(slug string) *graphql.Client {
	return graphql.NewClient(graphql.Config{
		Endpoint: s.URL,
		OrgSlug:  slug,
		Timeout:  5 * time.Second,
	}, logging.Discard())
}
