package repository

import (
	_ "embed"
	"sync"

	"github.com/festy23/datajpa/internal/persistence/query"
)

// Logical names of the member queries in named_queries.yaml.
const (
	QueryFindByUsername = "Member.findByUsername"
	QueryFindUser       = "Member.findUser"
	QueryFindByNames    = "Member.findByNames"
)

//go:embed named_queries.yaml
var namedQueries []byte

var loadRegistry = sync.OnceValues(func() (*query.Registry, error) {
	return query.LoadRegistry(namedQueries)
})

// DefaultRegistry returns the member query catalog. It is parsed once.
func DefaultRegistry() (*query.Registry, error) {
	return loadRegistry()
}
