package extract

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
)

// ErrMalformed is returned when a payload cannot be decoded.
var ErrMalformed = errors.New("malformed payload")

// ParseJSON decodes a JSON document into a Node, keeping object keys in
// document order.
func ParseJSON(s string) (Node, error) {
	if !gjson.Valid(s) {
		return Node{}, fmt.Errorf("%w: invalid json", ErrMalformed)
	}
	return fromResult(gjson.Parse(s)), nil
}

func fromResult(r gjson.Result) Node {
	switch r.Type {
	case gjson.Null:
		return Node{}
	case gjson.False:
		return Node{Kind: KindBool}
	case gjson.True:
		return Node{Kind: KindBool, Bool: true}
	case gjson.Number:
		return Node{Kind: KindNumber, Str: r.Raw}
	case gjson.String:
		return Str(r.Str)
	}

	if r.IsArray() {
		var items []Node
		r.ForEach(func(_, v gjson.Result) bool {
			items = append(items, fromResult(v))
			return true
		})
		return List(items...)
	}

	var fields []Field
	r.ForEach(func(k, v gjson.Result) bool {
		fields = append(fields, Field{Key: k.String(), Value: fromResult(v)})
		return true
	})
	return Map(fields...)
}
