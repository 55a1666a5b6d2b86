package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/tgienger/ptrack/internal/cache"
)

var errMalformed = errors.New("malformed response")

// batch collects the records of one response before they are written to
// the store in a single step.
type batch map[cache.Ref]cache.Record

func (b batch) add(ref cache.Ref, rec cache.Record) {
	existing, ok := b[ref]
	if !ok {
		b[ref] = rec
		return
	}
	for k, v := range rec {
		existing[k] = v
	}
}

func (b batch) project(obj map[string]any) (cache.Ref, error) {
	id, err := entityID(obj)
	if err != nil {
		return cache.Ref{}, err
	}
	ref := cache.Ref{Type: cache.TypeProject, ID: id}
	rec := make(cache.Record, len(obj))
	for k, v := range obj {
		if k != "tasks" {
			rec[k] = v
			continue
		}
		tasks, err := b.list(v, func(o map[string]any) (cache.Ref, error) { return b.task(o, id) })
		if err != nil {
			return cache.Ref{}, err
		}
		rec[k] = tasks
	}
	b.add(ref, rec)
	return ref, nil
}

func (b batch) task(obj map[string]any, projectID string) (cache.Ref, error) {
	id, err := entityID(obj)
	if err != nil {
		return cache.Ref{}, err
	}
	ref := cache.Ref{Type: cache.TypeTask, ID: id}
	rec := make(cache.Record, len(obj)+1)
	for k, v := range obj {
		if k != "comments" {
			rec[k] = v
			continue
		}
		comments, err := b.list(v, func(o map[string]any) (cache.Ref, error) { return b.comment(o, id) })
		if err != nil {
			return cache.Ref{}, err
		}
		rec[k] = comments
	}
	if projectID != "" {
		rec["projectId"] = projectID
	}
	b.add(ref, rec)
	return ref, nil
}

func (b batch) comment(obj map[string]any, taskID string) (cache.Ref, error) {
	id, err := entityID(obj)
	if err != nil {
		return cache.Ref{}, err
	}
	ref := cache.Ref{Type: cache.TypeComment, ID: id}
	rec := make(cache.Record, len(obj)+1)
	for k, v := range obj {
		rec[k] = v
	}
	if taskID != "" {
		rec["taskId"] = taskID
	}
	b.add(ref, rec)
	return ref, nil
}

func (b batch) list(v any, each func(map[string]any) (cache.Ref, error)) ([]cache.Ref, error) {
	if v == nil {
		return []cache.Ref{}, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected a list, got %T", errMalformed, v)
	}
	refs := make([]cache.Ref, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: expected an object, got %T", errMalformed, item)
		}
		ref, err := each(obj)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

func entityID(obj map[string]any) (string, error) {
	switch id := obj["id"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		return fmt.Sprintf("%.0f", id), nil
	}
	return "", fmt.Errorf("%w: entity without id", errMalformed)
}

// field digs a value out of the decoded data object by path.
func field(data json.RawMessage, path ...string) (any, error) {
	var root any
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	cur := root
	for _, p := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", errMalformed, p)
		}
		cur, ok = obj[p]
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", errMalformed, p)
		}
	}
	return cur, nil
}

func object(v any) (map[string]any, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: expected an object, got %T", errMalformed, v)
	}
	return obj, nil
}
