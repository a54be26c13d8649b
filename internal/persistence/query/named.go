package query

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/jinzhu/inflection"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var (
	// ErrNamedQueryNotFound indicates no named query is registered under a name.
	ErrNamedQueryNotFound = errors.New("named query not found")
	// ErrInvalidNamedQuery indicates a malformed named query definition or binding.
	ErrInvalidNamedQuery = errors.New("invalid named query")
)

var (
	namedQueryName = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*\.[a-z][A-Za-z0-9]*$`)
	namedParam     = regexp.MustCompile(`@([A-Za-z_][A-Za-z0-9_]*)`)
)

// NamedQuery is a predeclared filter bound to a logical name of the form "Entity.method".
// Where and Order are SQL fragments over the entity's table; parameters are written @name.
type NamedQuery struct {
	Name   string   `yaml:"name"`
	Where  string   `yaml:"where"`
	Order  string   `yaml:"order"`
	Params []string `yaml:"params"`
}

// Entity returns the entity part of the name.
func (q NamedQuery) Entity() string {
	entity, _, _ := strings.Cut(q.Name, ".")
	return entity
}

// Table returns the conventional table of the entity: lower-case plural.
func (q NamedQuery) Table() string {
	return inflection.Plural(strings.ToLower(q.Entity()))
}

// Validate checks the name format and that declared and referenced parameters agree.
func (q NamedQuery) Validate() error {
	if !namedQueryName.MatchString(q.Name) {
		return fmt.Errorf("%w: name %q must look like Entity.method", ErrInvalidNamedQuery, q.Name)
	}
	if strings.TrimSpace(q.Where) == "" {
		return fmt.Errorf("%w: %s has an empty where clause", ErrInvalidNamedQuery, q.Name)
	}

	used := make(map[string]bool)
	for _, m := range namedParam.FindAllStringSubmatch(q.Where, -1) {
		used[m[1]] = true
	}
	declared := make(map[string]bool, len(q.Params))
	for _, p := range q.Params {
		declared[p] = true
		if !used[p] {
			return fmt.Errorf("%w: %s declares @%s but does not use it", ErrInvalidNamedQuery, q.Name, p)
		}
	}
	for p := range used {
		if !declared[p] {
			return fmt.Errorf("%w: %s uses undeclared @%s", ErrInvalidNamedQuery, q.Name, p)
		}
	}
	return nil
}

// Bind applies the query's filter and order to db. Every declared parameter must be in args.
func (q NamedQuery) Bind(db *gorm.DB, args map[string]any) (*gorm.DB, error) {
	for _, p := range q.Params {
		if _, ok := args[p]; !ok {
			return nil, fmt.Errorf("%w: %s missing argument @%s", ErrInvalidNamedQuery, q.Name, p)
		}
	}
	named := make(map[string]any, len(args))
	for k, v := range args {
		named[k] = v
	}
	db = db.Where(q.Where, named)
	if q.Order != "" {
		db = db.Order(q.Order)
	}
	return db, nil
}

// Registry holds named queries by name. It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	queries map[string]NamedQuery
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{queries: make(map[string]NamedQuery)}
}

type catalog struct {
	Queries []NamedQuery `yaml:"queries"`
}

// LoadRegistry parses a YAML catalog:
//
//	queries:
//	  - name: Member.findByUsername
//	    where: username = @username
//	    params: [username]
func LoadRegistry(data []byte) (*Registry, error) {
	var c catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: failed to parse catalog: %v", ErrInvalidNamedQuery, err)
	}
	r := NewRegistry()
	for _, q := range c.Queries {
		if err := r.Register(q); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register validates and adds q. Names are unique.
func (r *Registry) Register(q NamedQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.queries[q.Name]; exists {
		return fmt.Errorf("%w: duplicate name %s", ErrInvalidNamedQuery, q.Name)
	}
	r.queries[q.Name] = q
	return nil
}

// Lookup returns the query registered under name.
func (r *Registry) Lookup(name string) (NamedQuery, bool) {
	if r == nil {
		return NamedQuery{}, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.queries[name]
	return q, ok
}

// Get is Lookup returning ErrNamedQueryNotFound for unknown names.
func (r *Registry) Get(name string) (NamedQuery, error) {
	q, ok := r.Lookup(name)
	if !ok {
		return NamedQuery{}, fmt.Errorf("%w: %s", ErrNamedQueryNotFound, name)
	}
	return q, nil
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.queries))
	for name := range r.queries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate runs every query against db with LIMIT 0 so that references to
// missing tables or columns fail at startup instead of on first use.
func (r *Registry) Validate(ctx context.Context, db *gorm.DB) error {
	for _, name := range r.Names() {
		q, _ := r.Lookup(name)
		// (NULL) is valid both as a scalar operand and as an IN list.
		args := make(map[string]any, len(q.Params))
		for _, p := range q.Params {
			args[p] = []any{nil}
		}
		tx, err := q.Bind(db.WithContext(ctx).Table(q.Table()), args)
		if err != nil {
			return err
		}
		var rows []map[string]any
		if err := tx.Limit(0).Find(&rows).Error; err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidNamedQuery, name, err)
		}
	}
	return nil
}
