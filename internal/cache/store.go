package cache

import (
	"encoding/json"
	"sort"
	"sync"
)

// Record is the field map of one normalized entity. Nested entity lists are
// stored as []Ref.
type Record map[string]any

// Result is the cached state of one query instance.
type Result struct {
	Refs    []Ref
	Fetched bool  // a response has been written at least once
	Stale   bool  // invalidated since the data was fetched
	Err     error // the most recent response was an error
}

// Fresh reports whether the result can be served without a network call.
func (r Result) Fresh() bool {
	return r.Fetched && !r.Stale && r.Err == nil
}

type queryEntry struct {
	refs          []Ref
	fetched       bool
	stale         bool
	err           error
	lastSeq       uint64 // issue sequence of the newest applied response
	invalidatedAt uint64
}

// Store is the normalized client cache. Every write is stamped with a
// sequence number: query results carry the sequence taken when the request
// was issued, mutation payloads the sequence taken when the response
// arrived. A field is only overwritten by a write with an equal or newer
// stamp, and a query result is only applied if it was issued after the
// result currently held.
type Store struct {
	mu      sync.RWMutex
	seq     uint64
	records map[Ref]Record
	stamps  map[Ref]map[string]uint64
	queries map[QueryKey]*queryEntry
	subs    map[QueryKey]map[*Subscription]struct{}
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		records: make(map[Ref]Record),
		stamps:  make(map[Ref]map[string]uint64),
		queries: make(map[QueryKey]*queryEntry),
		subs:    make(map[QueryKey]map[*Subscription]struct{}),
	}
}

// Next returns a new sequence number. Callers take one immediately before
// issuing a query.
func (s *Store) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next()
}

func (s *Store) next() uint64 {
	s.seq++
	return s.seq
}

// ApplyQuery writes a query response issued at seq. It returns false when a
// response issued later has already been applied, in which case nothing is
// written.
func (s *Store) ApplyQuery(key QueryKey, seq uint64, refs []Ref, records map[Ref]Record) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(key)
	if seq <= e.lastSeq {
		return false
	}
	for ref, rec := range records {
		s.merge(ref, rec, seq)
	}
	e.refs = append([]Ref(nil), refs...)
	e.fetched = true
	e.err = nil
	e.lastSeq = seq
	e.stale = seq < e.invalidatedAt
	s.notify(key)
	return true
}

// FailQuery records a failed response issued at seq. Data already held for
// the key is kept but flagged with the error.
func (s *Store) FailQuery(key QueryKey, seq uint64, err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := s.entry(key)
	if seq <= e.lastSeq {
		return false
	}
	e.err = err
	e.lastSeq = seq
	s.notify(key)
	return true
}

// ApplyPayload merges a mutation's returned entities, stamped with a fresh
// sequence so they win over any query issued before the response arrived.
func (s *Store) ApplyPayload(records map[Ref]Record) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.next()
	for ref, rec := range records {
		s.merge(ref, rec, seq)
	}
	for key, e := range s.queries {
		if e.fetched && s.reaches(e.refs, records, 0) {
			s.notify(key)
		}
	}
}

// Merge writes fields into one entity as a mutation payload would.
func (s *Store) Merge(ref Ref, fields Record) {
	s.ApplyPayload(map[Ref]Record{ref: fields})
}

func (s *Store) merge(ref Ref, fields Record, seq uint64) {
	rec, ok := s.records[ref]
	if !ok {
		rec = make(Record, len(fields))
		s.records[ref] = rec
		s.stamps[ref] = make(map[string]uint64, len(fields))
	}
	stamps := s.stamps[ref]
	for name, v := range fields {
		if seq < stamps[name] {
			continue
		}
		rec[name] = v
		stamps[name] = seq
	}
}

// Invalidate marks every query matching keys as stale. Wildcard keys from
// AnyArgs expand to all cached instances of that query.
func (s *Store) Invalidate(keys ...QueryKey) []QueryKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.next()
	var hit []QueryKey
	for _, k := range s.expand(keys) {
		e := s.entry(k)
		e.stale = true
		e.invalidatedAt = seq
		hit = append(hit, k)
		s.notify(k)
	}
	return hit
}

// expand resolves wildcard keys against known queries and subscriptions.
func (s *Store) expand(keys []QueryKey) []QueryKey {
	seen := make(map[QueryKey]bool)
	var out []QueryKey
	add := func(k QueryKey) {
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	for _, k := range keys {
		if k.Args != wildcardArgs {
			add(k)
			continue
		}
		for known := range s.queries {
			if k.Matches(known) {
				add(known)
			}
		}
		for known := range s.subs {
			if k.Matches(known) {
				add(known)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Read returns the cached state of a query
func (s *Store) Read(key QueryKey) (Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.queries[key]
	if !ok {
		return Result{}, false
	}
	return Result{
		Refs:    append([]Ref(nil), e.refs...),
		Fetched: e.fetched,
		Stale:   e.stale,
		Err:     e.err,
	}, true
}

// Entity returns a copy of one record's fields
func (s *Store) Entity(ref Ref) (Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[ref]
	if !ok {
		return nil, false
	}
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out, true
}

// Resolve returns the records behind refs with nested ref lists expanded
// into plain maps, ready to be decoded into model structs. Dangling refs are
// skipped.
func (s *Store) Resolve(refs []Ref) []map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.resolveList(refs, 0)
}

const maxResolveDepth = 4

func (s *Store) resolveList(refs []Ref, depth int) []map[string]any {
	out := make([]map[string]any, 0, len(refs))
	for _, ref := range refs {
		if m := s.resolve(ref, depth); m != nil {
			out = append(out, m)
		}
	}
	return out
}

func (s *Store) resolve(ref Ref, depth int) map[string]any {
	rec, ok := s.records[ref]
	if !ok {
		return nil
	}
	m := make(map[string]any, len(rec))
	for k, v := range rec {
		if nested, ok := v.([]Ref); ok {
			if depth >= maxResolveDepth {
				continue
			}
			m[k] = s.resolveList(nested, depth+1)
			continue
		}
		m[k] = v
	}
	return m
}

// Active reports whether any subscriber is watching key
func (s *Store) Active(key QueryKey) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs[key]) > 0
}

// ActiveKeys returns the watched queries among keys, expanding wildcards.
func (s *Store) ActiveKeys(keys ...QueryKey) []QueryKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []QueryKey
	for _, k := range s.expand(keys) {
		if len(s.subs[k]) > 0 {
			out = append(out, k)
		}
	}
	return out
}

func (s *Store) entry(key QueryKey) *queryEntry {
	e, ok := s.queries[key]
	if !ok {
		e = &queryEntry{}
		s.queries[key] = e
	}
	return e
}

// reaches reports whether any of refs, or an entity nested below them, is
// among records.
func (s *Store) reaches(refs []Ref, records map[Ref]Record, depth int) bool {
	for _, r := range refs {
		if _, ok := records[r]; ok {
			return true
		}
		if depth >= maxResolveDepth {
			continue
		}
		for _, v := range s.records[r] {
			if nested, ok := v.([]Ref); ok && s.reaches(nested, records, depth+1) {
				return true
			}
		}
	}
	return false
}

type snapshotQuery struct {
	Refs          []Ref  `json:"refs"`
	Fetched       bool   `json:"fetched"`
	Stale         bool   `json:"stale"`
	Err           string `json:"err,omitempty"`
	LastSeq       uint64 `json:"lastSeq"`
	InvalidatedAt uint64 `json:"invalidatedAt"`
}

// Snapshot serializes the complete store state deterministically. Two
// snapshots are byte-equal exactly when the stores hold the same data.
func (s *Store) Snapshot() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make(map[string]Record, len(s.records))
	for ref, rec := range s.records {
		records[ref.String()] = rec
	}
	stamps := make(map[string]map[string]uint64, len(s.stamps))
	for ref, st := range s.stamps {
		stamps[ref.String()] = st
	}
	queries := make(map[string]snapshotQuery, len(s.queries))
	for key, e := range s.queries {
		q := snapshotQuery{
			Refs:          e.refs,
			Fetched:       e.fetched,
			Stale:         e.stale,
			LastSeq:       e.lastSeq,
			InvalidatedAt: e.invalidatedAt,
		}
		if e.err != nil {
			q.Err = e.err.Error()
		}
		queries[key.String()] = q
	}

	out, err := json.Marshal(struct {
		Seq     uint64                       `json:"seq"`
		Records map[string]Record            `json:"records"`
		Stamps  map[string]map[string]uint64 `json:"stamps"`
		Queries map[string]snapshotQuery     `json:"queries"`
	}{s.seq, records, stamps, queries})
	if err != nil {
		// records only hold values decoded from JSON, so this is unreachable
		panic(err)
	}
	return out
}
