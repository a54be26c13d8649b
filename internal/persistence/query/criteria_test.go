package query

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

type person struct {
	ID       int64
	Username string
	Age      int
}

func parseSchema(t *testing.T, model any) *schema.Schema {
	t.Helper()
	sch, err := schema.Parse(model, &sync.Map{}, schema.NamingStrategy{})
	require.NoError(t, err)
	return sch
}

func setupPeople(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&person{}))
	require.NoError(t, db.Create([]person{
		{Username: "AAA", Age: 10},
		{Username: "BBB", Age: 20},
		{Username: "CCC", Age: 30},
	}).Error)
	return db
}

func findPeople(t *testing.T, db *gorm.DB, c Criteria, s Sort) []person {
	t.Helper()
	sch := parseSchema(t, &person{})
	exprs, err := c.Build(sch)
	require.NoError(t, err)
	orders, err := s.Build(sch)
	require.NoError(t, err)

	tx := db.Model(&person{})
	if len(exprs) > 0 {
		tx = tx.Clauses(clause.Where{Exprs: exprs})
	}
	for _, o := range orders {
		tx = tx.Order(o)
	}
	var out []person
	require.NoError(t, tx.Find(&out).Error)
	return out
}

func usernames(people []person) []string {
	names := make([]string, 0, len(people))
	for _, p := range people {
		names = append(names, p.Username)
	}
	return names
}

func TestCriteria_Builder(t *testing.T) {
	base := Where("username").Eq("AAA")
	extended := base.And("age").Gt(15)

	assert.Len(t, base.Predicates(), 1)
	require.Len(t, extended.Predicates(), 2)
	assert.Equal(t, Predicate{Field: "age", Operator: OpGt, Value: 15}, extended.Predicates()[1])
	assert.Equal(t, "username = AAA AND age > 15", extended.String())
	assert.True(t, Criteria{}.IsEmpty())
	assert.False(t, base.IsEmpty())
}

func TestCriteria_Filtering(t *testing.T) {
	db := setupPeople(t)

	tests := []struct {
		name     string
		criteria Criteria
		want     []string
	}{
		{
			name:     "equals and greater than with no match",
			criteria: Where("username").Eq("BBB").And("age").Gt(25),
			want:     []string{},
		},
		{
			name:     "equals and greater than",
			criteria: Where("username").Eq("BBB").And("age").Gt(15),
			want:     []string{"BBB"},
		},
		{
			name:     "greater than only",
			criteria: Where("age").Gt(15),
			want:     []string{"BBB", "CCC"},
		},
		{
			name:     "greater or equal",
			criteria: Where("age").Ge(20),
			want:     []string{"BBB", "CCC"},
		},
		{
			name:     "less than",
			criteria: Where("age").Lt(20),
			want:     []string{"AAA"},
		},
		{
			name:     "in",
			criteria: Where("username").In("AAA", "CCC"),
			want:     []string{"AAA", "CCC"},
		},
		{
			name:     "empty in matches nothing",
			criteria: Where("username").In(),
			want:     []string{},
		},
		{
			name:     "go field name",
			criteria: Where("Username").Eq("CCC"),
			want:     []string{"CCC"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := findPeople(t, db, tt.criteria, By(Asc("username")))
			assert.Equal(t, tt.want, usernames(got))
		})
	}
}

func TestCriteria_UnknownField(t *testing.T) {
	_, err := Where("nickname").Eq("x").Build(parseSchema(t, &person{}))
	assert.ErrorIs(t, err, ErrUnknownField)
	assert.Contains(t, err.Error(), "nickname")
}

func TestResolveField(t *testing.T) {
	sch := parseSchema(t, &person{})

	for _, name := range []string{"username", "Username", "USERNAME"} {
		f, err := ResolveField(sch, name)
		require.NoError(t, err, name)
		assert.Equal(t, "username", f.DBName)
	}

	_, err := ResolveField(nil, "username")
	assert.ErrorIs(t, err, ErrUnknownField)
}
