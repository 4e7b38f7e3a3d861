// Package extract pulls indexable plain text out of entity bodies and out of
// page-builder payloads stored in entity meta.
//
// Every payload, whatever its wire format, is decoded into a Node tree and
// walked the same way. Builders are independent: a payload that fails to
// decode contributes nothing and is reported in Result.Failures, and the
// remaining builders still run.
package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Source is the part of the content store the extractor reads.
type Source interface {
	Meta(ctx context.Context, id int64, key string) (any, error)
	Body(ctx context.Context, id int64) (string, error)
}

// Extractor extracts builder text for entities read from a Source.
type Extractor struct {
	src      Source
	builders []Builder
	h        Heuristics
	log      *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithHeuristics replaces the content filter thresholds.
func WithHeuristics(h Heuristics) Option {
	return func(x *Extractor) { x.h = h }
}

// WithBuilders replaces the builder table.
func WithBuilders(b []Builder) Option {
	return func(x *Extractor) { x.builders = b }
}

// WithLogger sets the logger used to report builder failures.
func WithLogger(l *zap.Logger) Option {
	return func(x *Extractor) { x.log = l }
}

// New creates an Extractor over src.
func New(src Source, opts ...Option) *Extractor {
	x := &Extractor{
		src:      src,
		builders: Builders,
		h:        DefaultHeuristics(),
		log:      zap.NewNop(),
	}
	for _, o := range opts {
		o(x)
	}
	return x
}

// Failure records a builder whose payload could not be extracted.
type Failure struct {
	Builder string
	Err     error
}

func (f Failure) Error() string {
	return f.Builder + ": " + f.Err.Error()
}

// Result is the outcome of extracting one entity.
type Result struct {
	Text     string    // space-joined text from every active builder
	Active   []string  // builders switched on for the entity
	Failures []Failure // builders that were active but failed
}

// Extract runs every builder over the entity in declared order.
func (x *Extractor) Extract(ctx context.Context, id int64) Result {
	var res Result
	var parts []string

	for _, b := range x.builders {
		text, active, err := x.run(ctx, id, b)
		if active {
			res.Active = append(res.Active, b.Name)
		}
		if err != nil {
			res.Failures = append(res.Failures, Failure{Builder: b.Name, Err: err})
			x.log.Warn("builder extraction failed",
				zap.Int64("entity_id", id),
				zap.String("builder", b.Name),
				zap.Error(err))
			continue
		}
		if text != "" {
			parts = append(parts, text)
		}
	}

	res.Text = strings.TrimSpace(strings.Join(parts, " "))
	return res
}

// run extracts one builder. It recovers from panics so a hostile payload
// cannot take down the caller.
func (x *Extractor) run(ctx context.Context, id int64, b Builder) (text string, active bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("%w: panic: %v", ErrMalformed, r)
		}
	}()

	flag, err := x.src.Meta(ctx, id, b.ActivationKey)
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", b.ActivationKey, err)
	}
	if !isActive(flag) {
		return "", false, nil
	}

	data := flag
	if b.DataKey != b.ActivationKey {
		data, err = x.src.Meta(ctx, id, b.DataKey)
		if err != nil {
			return "", true, fmt.Errorf("read %s: %w", b.DataKey, err)
		}
	}
	if isEmpty(data) {
		return "", true, nil
	}

	switch b.Format {
	case FormatJSON:
		text, err = x.structured(data, ParseJSON)
	case FormatSerialized:
		text, err = x.structured(data, Unserialize)
	case FormatShortcode:
		text, err = x.shortcode(ctx, id, data)
	case FormatCustom:
		text, err = x.custom(ctx, id, b)
	}
	return text, true, err
}

func (x *Extractor) structured(data any, decode func(string) (Node, error)) (string, error) {
	var n Node
	if s, ok := data.(string); ok {
		var err error
		if n, err = decode(s); err != nil {
			return "", err
		}
	} else {
		n = FromValue(data)
	}
	if !n.IsContainer() {
		return "", nil
	}
	return x.Walk(n), nil
}

func (x *Extractor) shortcode(ctx context.Context, id int64, data any) (string, error) {
	s, ok := scalar(data)
	if !ok {
		return "", nil
	}
	if flagValues[s] {
		body, err := x.src.Body(ctx, id)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		s = body
	}
	return CleanShortcodeMarkup(s), nil
}

func (x *Extractor) custom(ctx context.Context, id int64, b Builder) (string, error) {
	switch b.Name {
	case "thrive_architect":
		body, err := x.src.Body(ctx, id)
		if err != nil {
			return "", fmt.Errorf("read body: %w", err)
		}
		return CollapseSpace(StripTags(body)), nil
	}
	return "", nil
}

// Walk collects text from a decoded payload tree. Containers are walked
// recursively; strings under a known text key are always kept; other
// strings are kept only when long enough and when they pass the
// heuristics.
func (x *Extractor) Walk(n Node) string {
	var parts []string
	n.Each(func(key string, v Node) {
		switch {
		case v.IsContainer():
			if s := x.Walk(v); s != "" {
				parts = append(parts, s)
			}
		case v.Kind != KindString:
		case textKeys[key]:
			if s := Clean(v.Str); s != "" {
				parts = append(parts, s)
			}
		case x.h.candidate(v.Str):
			if s := Clean(v.Str); s != "" && x.h.LooksLikeContent(s) {
				parts = append(parts, s)
			}
		}
	})
	return strings.Join(parts, " ")
}

// isActive treats absent, empty, "0", false and "off" as switched off.
func isActive(v any) bool {
	if isEmpty(v) {
		return false
	}
	s, ok := scalar(v)
	return !ok || s != "off"
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == "" || t == "0"
	case []byte:
		return len(t) == 0 || string(t) == "0"
	case bool:
		return !t
	case int:
		return t == 0
	case int64:
		return t == 0
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Node:
		switch t.Kind {
		case KindNull:
			return true
		case KindList:
			return len(t.Items) == 0
		case KindMap:
			return len(t.Fields) == 0
		}
	}
	return false
}

// scalar returns the string form of a scalar meta value.
func scalar(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case []byte:
		return string(t), true
	case bool:
		if t {
			return "1", true
		}
		return "", true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64), true
	}
	return "", false
}
