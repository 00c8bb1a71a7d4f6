// Package docstore defines the generic document-collection contract the
// engines are written against. Implementations live under internal/infra.
package docstore

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no document has the requested id.
var ErrNotFound = errors.New("document not found")

// Document is one record in a collection. Data never contains the id; it is
// carried separately so backends are free to generate ids their own way.
type Document struct {
	ID   string
	Data map[string]any
}

// Comparison operators accepted by Where constraints.
const (
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpLess         = "<"
	OpLessOrEqual  = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
)

// Constraint narrows, orders, or caps a Query. Exactly one of the three
// concrete types below is passed per constraint value.
type Constraint interface {
	constraint()
}

// Where filters documents whose field compares to Value under Op.
type Where struct {
	Field string
	Op    string
	Value any
}

// OrderBy sorts results on a field, ascending unless Desc is set.
type OrderBy struct {
	Field string
	Desc  bool
}

// Limit caps the number of returned documents.
type Limit struct {
	N int
}

func (Where) constraint()   {}
func (OrderBy) constraint() {}
func (Limit) constraint()   {}

// Store is the document-collection collaborator. All write paths strip
// nil-valued fields and stamp updatedAt (plus createdAt on creation).
type Store interface {
	Get(ctx context.Context, collection, id string) (Document, error)
	Query(ctx context.Context, collection string, constraints ...Constraint) ([]Document, error)
	Add(ctx context.Context, collection string, data map[string]any) (Document, error)
	Set(ctx context.Context, collection, id string, data map[string]any) (Document, error)
	Update(ctx context.Context, collection, id string, partial map[string]any) error
	Delete(ctx context.Context, collection, id string) (bool, error)
}
