// Package client keeps a normalized cache of projects, tasks and comments in
// sync with the GraphQL API. Queries are served from the cache while fresh;
// mutations merge their returned payload and invalidate or refetch the
// queries they affect, as declared in the effects table.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/tgienger/ptrack/internal/cache"
	"github.com/tgienger/ptrack/internal/graphql"
)

// Query names
const (
	QueryProjects          = "projects"
	QueryProjectsWithTasks = "projectsWithTasks"
	QueryTasks             = "tasks"
	QueryTaskComments      = "taskComments"
	QueryProjectStats      = "projectStats"
)

func ProjectsKey() cache.QueryKey          { return cache.Key(QueryProjects) }
func ProjectsWithTasksKey() cache.QueryKey { return cache.Key(QueryProjectsWithTasks) }

func TasksKey(projectID string) cache.QueryKey {
	return cache.Key(QueryTasks, "projectId", projectID)
}

func TaskCommentsKey(taskID string) cache.QueryKey {
	return cache.Key(QueryTaskComments, "taskId", taskID)
}

func ProjectStatsKey(projectID string) cache.QueryKey {
	return cache.Key(QueryProjectStats, "projectId", projectID)
}

// Client is the cache-synchronized query/mutation layer.
type Client struct {
	gql   graphql.Doer
	store *cache.Store
	log   *logrus.Entry
}

// New creates a Client. A nil store gets a fresh empty one.
func New(gql graphql.Doer, store *cache.Store, log *logrus.Entry) *Client {
	if store == nil {
		store = cache.NewStore()
	}
	return &Client{
		gql:   gql,
		store: store,
		log:   log.WithField("component", "client"),
	}
}

// Store exposes the underlying cache
func (c *Client) Store() *cache.Store {
	return c.store
}

// Watch marks key as actively displayed. Active queries are refetched
// eagerly by mutations with the refetch policy, and the subscription signals
// every change so the consumer can re-read. Close it when the consumer goes
// away.
func (c *Client) Watch(key cache.QueryKey) *cache.Subscription {
	return c.store.Subscribe(key)
}

// Refresh re-issues a query regardless of its cached state.
func (c *Client) Refresh(ctx context.Context, key cache.QueryKey) error {
	return c.refresh(ctx, key)
}

// State reports the cached state of a query without touching the network.
func (c *Client) State(key cache.QueryKey) (cache.Result, bool) {
	return c.store.Read(key)
}

// load serves key from the cache when fresh, otherwise from the network.
func (c *Client) load(ctx context.Context, key cache.QueryKey) ([]map[string]any, error) {
	if res, ok := c.store.Read(key); ok && res.Fresh() {
		return c.store.Resolve(res.Refs), nil
	}
	if err := c.refresh(ctx, key); err != nil {
		return nil, err
	}
	// An overlapping fetch of the same key may have landed after ours,
	// successfully or not. The key's state wins over our own response.
	res, ok := c.store.Read(key)
	switch {
	case ok && res.Err != nil:
		return nil, res.Err
	case !ok || !res.Fetched:
		return nil, fmt.Errorf("%s: no data after refresh", key)
	}
	return c.store.Resolve(res.Refs), nil
}

func (c *Client) refresh(ctx context.Context, key cache.QueryKey) error {
	def, ok := queryDefs[key.Name]
	if !ok {
		return fmt.Errorf("unknown query %q", key.Name)
	}
	log := c.log.WithField("query", key.String())

	seq := c.store.Next()
	data, err := c.gql.Do(ctx, graphql.NewRequest(def.op, def.vars(key)))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("query abandoned")
			return err
		}
		c.store.FailQuery(key, seq, err)
		return err
	}

	b := batch{}
	refs, err := def.normalize(data, key, b)
	if err != nil {
		err = &graphql.TransportError{Op: def.op, Err: err}
		c.store.FailQuery(key, seq, err)
		return err
	}
	if !c.store.ApplyQuery(key, seq, refs, b) {
		log.Debug("response superseded by a newer one")
	}
	return nil
}

func decodeAll[T any](items []map[string]any) ([]T, error) {
	out := make([]T, 0, len(items))
	for _, item := range items {
		var v T
		if err := decodeOne(item, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func decodeOne(item map[string]any, v any) error {
	raw, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encoding cached entity: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding cached entity: %w", err)
	}
	return nil
}
