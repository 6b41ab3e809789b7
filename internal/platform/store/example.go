package store

import (
	"fmt"
	"strings"
)

// Placeholder renders the n-th (1-based) bind parameter for a SQL dialect.
type Placeholder func(n int) string

// Dollar renders Postgres-style "$n" parameters.
func Dollar(n int) string { return fmt.Sprintf("$%d", n) }

// Question renders SQLite-style "?" parameters.
func Question(int) string { return "?" }

// ExampleQuery builds a SELECT whose WHERE clause holds one equality test
// per populated example field. Absent fields add nothing, so an empty
// example selects the whole table.
type ExampleQuery struct {
	table string
	cols  string
	ph    Placeholder
	where []string
	args  []interface{}
}

func NewExampleQuery(table, cols string, ph Placeholder) *ExampleQuery {
	return &ExampleQuery{table: table, cols: cols, ph: ph}
}

// Eq appends "column = <param>".
func (q *ExampleQuery) Eq(column string, value interface{}) {
	q.args = append(q.args, value)
	q.where = append(q.where, column+" = "+q.ph(len(q.args)))
}

// EqIfSet appends an equality test when v is non-nil.
func EqIfSet[V any](q *ExampleQuery, column string, v *V) {
	if v == nil {
		return
	}
	q.Eq(column, *v)
}

// Empty reports whether no field has been added.
func (q *ExampleQuery) Empty() bool { return len(q.where) == 0 }

// SQL returns the SELECT statement ordered by id.
func (q *ExampleQuery) SQL() string {
	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(q.cols)
	b.WriteString(" FROM ")
	b.WriteString(q.table)
	if len(q.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(q.where, " AND "))
	}
	b.WriteString(" ORDER BY id")
	return b.String()
}

// Args returns the bind values in placeholder order.
func (q *ExampleQuery) Args() []interface{} { return q.args }

// Match reports whether got satisfies an example field. A nil want is a
// wildcard.
func Match[V comparable](want *V, got V) bool {
	return want == nil || *want == got
}

// MatchPtr is Match for optional record fields. A present example value
// never matches an absent record value.
func MatchPtr[V comparable](want, got *V) bool {
	if want == nil {
		return true
	}
	return got != nil && *want == *got
}
