package repository

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// SortDirection represents the sort direction
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// Ordering is a single (column, direction) sort instruction. A List call
// applies orderings in the order they are given.
type Ordering struct {
	Column    string
	Direction SortDirection
}

// ProductListQuery selects which products a List call returns. With a nil
// CategoryID every product matches; with a non-nil one only products
// associated with that category through product_categories match, and no
// other filtering applies.
type ProductListQuery struct {
	CategoryID *uuid.UUID
}

// orderClause renders a validated ORDER BY clause. Columns outside the
// allowed set are skipped rather than interpolated into SQL.
func orderClause(orderings []Ordering, allowed map[string]bool) string {
	clauses := make([]string, 0, len(orderings))
	for _, o := range orderings {
		if !allowed[o.Column] {
			continue
		}
		dir := o.Direction
		if dir != SortAsc && dir != SortDesc {
			dir = SortAsc
		}
		clauses = append(clauses, fmt.Sprintf("%s %s", o.Column, dir))
	}

	if len(clauses) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(clauses, ", ")
}

// placeholders renders $start..$start+n-1 for IN clauses
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = fmt.Sprintf("$%d", start+i)
	}
	return strings.Join(parts, ", ")
}
