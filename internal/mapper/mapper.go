// Package mapper turns content entities into index documents.
package mapper

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jpl-au/smartbar/internal/content"
	"github.com/jpl-au/smartbar/internal/extract"
	"github.com/jpl-au/smartbar/internal/index"
)

// ErrUnsupportedKind is returned for entities that have no index form.
var ErrUnsupportedKind = errors.New("unsupported entity kind")

// Extractor is the builder-text source the mapper prefers over the body.
type Extractor interface {
	Extract(ctx context.Context, id int64) extract.Result
}

// Mapper builds index documents.
type Mapper struct {
	x   Extractor
	log *zap.Logger
}

// New creates a Mapper. A nil extractor means bodies are always used as is.
func New(x Extractor, log *zap.Logger) *Mapper {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mapper{x: x, log: log}
}

// Build maps e to its index document. Attachments carry no taxonomy and are
// always recorded with status inherit.
func (m *Mapper) Build(ctx context.Context, e *content.Entity) (index.Document, error) {
	if e == nil || !e.Kind.Valid() {
		kind := content.Kind("")
		if e != nil {
			kind = e.Kind
		}
		return index.Document{}, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	doc := index.Document{
		Kind:     e.Kind,
		EntityID: e.ID,
		Title:    e.Title,
		Excerpt:  e.Excerpt,
		Content:  m.body(ctx, e),
		Metadata: map[string]string{index.MetaStatus: e.Status},
	}

	if e.Kind == content.KindAttachment {
		doc.Metadata[index.MetaStatus] = content.StatusInherit
	} else {
		doc.Tags = strings.Join(e.Tags, " ")
		doc.Category = strings.Join(e.Categories, " ")
	}
	doc.ID = index.DocID(doc.Kind, doc.EntityID)
	return doc, nil
}

// body returns builder text when a builder is active and produced some,
// otherwise the body with markup stripped.
func (m *Mapper) body(ctx context.Context, e *content.Entity) string {
	if m.x != nil && e.Kind != content.KindAttachment {
		res := m.x.Extract(ctx, e.ID)
		if len(res.Active) > 0 && res.Text != "" {
			m.log.Debug("using builder content",
				zap.Int64("entity_id", e.ID),
				zap.Strings("builders", res.Active))
			return res.Text
		}
	}
	return extract.CollapseSpace(extract.StripTags(e.Body))
}
