package cache

import (
	"net/url"
	"strings"
)

// Entity type names used in refs
const (
	TypeProject      = "Project"
	TypeTask         = "Task"
	TypeComment      = "TaskComment"
	TypeProjectStats = "ProjectStats"
)

// Ref identifies a normalized entity
type Ref struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func (r Ref) String() string {
	return r.Type + ":" + r.ID
}

// wildcardArgs matches every argument set of a query name
const wildcardArgs = "*"

// QueryKey identifies one query instance: the query name plus its
// canonically encoded arguments.
type QueryKey struct {
	Name string
	Args string
}

// Key builds a QueryKey from name/value argument pairs. Arguments are sorted
// so the same logical query always maps to the same key.
func Key(name string, args ...string) QueryKey {
	v := url.Values{}
	for i := 0; i+1 < len(args); i += 2 {
		v.Set(args[i], args[i+1])
	}
	return QueryKey{Name: name, Args: v.Encode()}
}

// AnyArgs matches every instance of a query regardless of arguments.
func AnyArgs(name string) QueryKey {
	return QueryKey{Name: name, Args: wildcardArgs}
}

// Arg returns the value of a single argument
func (k QueryKey) Arg(name string) string {
	if k.Args == wildcardArgs {
		return ""
	}
	v, err := url.ParseQuery(k.Args)
	if err != nil {
		return ""
	}
	return v.Get(name)
}

// Matches reports whether k selects other. Wildcard keys match by name only.
func (k QueryKey) Matches(other QueryKey) bool {
	if k.Name != other.Name {
		return false
	}
	return k.Args == wildcardArgs || k.Args == other.Args
}

func (k QueryKey) String() string {
	if k.Args == "" {
		return k.Name
	}
	return k.Name + "(" + strings.ReplaceAll(k.Args, "&", ",") + ")"
}
