// node.go defines the generic tree that every page-builder payload is
// decoded into before text is pulled out of it.

package extract

import (
	"fmt"
	"sort"
	"strconv"
)

// NodeKind discriminates the variants of Node.
type NodeKind int

// Node variants.
const (
	KindNull NodeKind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

func (k NodeKind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	}
	return "unknown"
}

// Field is one key/value pair of a map node. Map fields keep source order.
type Field struct {
	Key   string
	Value Node
}

// Node is a scalar, list or ordered map decoded from JSON or a PHP
// serialized payload. Numbers keep their source text in Str.
type Node struct {
	Kind   NodeKind
	Str    string
	Bool   bool
	Items  []Node
	Fields []Field
}

// Str returns a string node.
func Str(s string) Node { return Node{Kind: KindString, Str: s} }

// List returns a list node.
func List(items ...Node) Node { return Node{Kind: KindList, Items: items} }

// Map returns a map node with fields in the given order.
func Map(fields ...Field) Node { return Node{Kind: KindMap, Fields: fields} }

// IsContainer reports whether n is a list or map.
func (n Node) IsContainer() bool {
	return n.Kind == KindList || n.Kind == KindMap
}

// Each calls fn for every child of a container in order. List children are
// passed with an empty key.
func (n Node) Each(fn func(key string, v Node)) {
	switch n.Kind {
	case KindList:
		for _, it := range n.Items {
			fn("", it)
		}
	case KindMap:
		for _, f := range n.Fields {
			fn(f.Key, f.Value)
		}
	}
}

// Get returns the value stored under key in a map node.
func (n Node) Get(key string) (Node, bool) {
	for _, f := range n.Fields {
		if f.Key == key {
			return f.Value, true
		}
	}
	return Node{}, false
}

// FromValue converts an already-decoded Go value into a Node. Go maps have
// no order so their keys are sorted to keep output deterministic.
func FromValue(v any) Node {
	switch t := v.(type) {
	case nil:
		return Node{}
	case Node:
		return t
	case string:
		return Str(t)
	case []byte:
		return Str(string(t))
	case bool:
		return Node{Kind: KindBool, Bool: t}
	case int:
		return Node{Kind: KindNumber, Str: strconv.Itoa(t)}
	case int64:
		return Node{Kind: KindNumber, Str: strconv.FormatInt(t, 10)}
	case float64:
		return Node{Kind: KindNumber, Str: strconv.FormatFloat(t, 'g', -1, 64)}
	case []any:
		items := make([]Node, len(t))
		for i, it := range t {
			items[i] = FromValue(it)
		}
		return List(items...)
	case []string:
		items := make([]Node, len(t))
		for i, it := range t {
			items[i] = Str(it)
		}
		return List(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: FromValue(t[k])}
		}
		return Map(fields...)
	case map[string]string:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make([]Field, len(keys))
		for i, k := range keys {
			fields[i] = Field{Key: k, Value: Str(t[k])}
		}
		return Map(fields...)
	}
	return Str(fmt.Sprint(v))
}
