// Package index owns the full-text search index: a SQLite database with an
// FTS5 table over normalised entity documents.
//
// The index is a derived artefact. It can be cleared and rebuilt from the
// content store at any time, so writes trade durability for throughput (WAL
// with synchronous=NORMAL). At most one document exists per (kind, entity)
// pair; Upsert deletes before it inserts inside one transaction and the
// schema backs that with a UNIQUE constraint.
package index

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jpl-au/smartbar/internal/content"
)

var (
	// ErrUnavailable wraps every failure of the underlying store, so callers
	// can tell "store down" apart from "no results".
	ErrUnavailable = errors.New("search index unavailable")
	// ErrNotFound is returned when a document id is not in the index.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidID is returned for document ids not of the form kind_id.
	ErrInvalidID = errors.New("invalid document id")
)

// Field names, in FTS column order after the unindexed id column.
const (
	FieldTitle    = "title"
	FieldContent  = "content"
	FieldExcerpt  = "excerpt"
	FieldTags     = "tags"
	FieldCategory = "category"
)

// Fields lists the indexed fields in column order.
var Fields = []string{FieldTitle, FieldContent, FieldExcerpt, FieldTags, FieldCategory}

// Weights are the static relevance multipliers per field.
var Weights = map[string]float64{
	FieldTitle:    10.0,
	FieldTags:     5.0,
	FieldCategory: 4.0,
	FieldExcerpt:  2.0,
	FieldContent:  1.0,
}

// Metadata keys every document carries.
const (
	MetaType     = "type"
	MetaStatus   = "status"
	MetaEntityID = "entity_id"
)

// Document is the normalised, weighted-field form of an entity.
type Document struct {
	ID       string            `json:"id"`
	Kind     content.Kind      `json:"kind"`
	EntityID int64             `json:"entity_id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Excerpt  string            `json:"excerpt"`
	Tags     string            `json:"tags"`
	Category string            `json:"category"`
	Metadata map[string]string `json:"metadata"`
}

// FieldMap returns the five indexed fields keyed by name.
func (d Document) FieldMap() map[string]string {
	return map[string]string{
		FieldTitle:    d.Title,
		FieldContent:  d.Content,
		FieldExcerpt:  d.Excerpt,
		FieldTags:     d.Tags,
		FieldCategory: d.Category,
	}
}

// Status returns the lifecycle state recorded at index time.
func (d Document) Status() string {
	return d.Metadata[MetaStatus]
}

// DocID builds the document id for an entity.
func DocID(kind content.Kind, entityID int64) string {
	return string(kind) + "_" + strconv.FormatInt(entityID, 10)
}

// ParseDocID splits a document id back into kind and entity id.
func ParseDocID(id string) (content.Kind, int64, error) {
	i := strings.LastIndexByte(id, '_')
	if i <= 0 {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	n, err := strconv.ParseInt(id[i+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return content.Kind(id[:i]), n, nil
}

// rankExpr is the bm25 call with the per-column weights baked in.
var rankExpr = func() string {
	parts := []string{"bm25(documents_fts", "0"}
	for _, f := range Fields {
		parts = append(parts, strconv.FormatFloat(Weights[f], 'f', 1, 64))
	}
	return strings.Join(parts, ", ") + ")"
}()

func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
