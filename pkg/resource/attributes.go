package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/matzehuels/popgraph/pkg/errors"
)

// Attributes is the key/value bag behind every entity. Values are kept
// exactly as decoded: strings stay strings, numbers stay json.Number (or
// whatever numeric type the caller supplied).
//
// Attributes is written only during ingestion; reads afterwards need no
// synchronization.
type Attributes struct {
	kind   Kind
	values map[string]any
	order  []string
}

func newAttributes(kind Kind) *Attributes {
	return &Attributes{kind: kind, values: make(map[string]any)}
}

// Set stores value under name, overwriting any previous value.
func (a *Attributes) Set(name string, value any) {
	if _, ok := a.values[name]; !ok {
		a.order = append(a.order, name)
	}
	a.values[name] = value
}

// Get returns the raw value stored under name, or an ATTRIBUTE_NOT_FOUND
// error naming both the attribute and the entity kind.
func (a *Attributes) Get(name string) (any, error) {
	v, ok := a.values[name]
	if !ok {
		return nil, errors.New(errors.ErrCodeAttributeNotFound, "%s has no attribute %q", a.kind.Singular(), name)
	}
	return v, nil
}

// String returns the string form of the value stored under name.
// Numbers are rendered in their shortest decimal form.
func (a *Attributes) String(name string) (string, bool) {
	v, ok := a.values[name]
	if !ok {
		return "", false
	}
	return Normalize(v), true
}

// Names returns attribute names in the order they were first set.
func (a *Attributes) Names() []string {
	return append([]string(nil), a.order...)
}

// Len returns the number of attributes.
func (a *Attributes) Len() int { return len(a.values) }

// IsScalar reports whether v may live in an attribute bag: strings and
// numbers only. Objects, lists, booleans and nulls are rejected.
func IsScalar(v any) bool {
	switch v.(type) {
	case string, json.Number,
		float64, float32,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

// Normalize renders an id-like value as a string so that ids compare equal
// regardless of whether one section sent 10 and another "10".
func Normalize(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := x.Float64(); err == nil {
			return formatFloat(f)
		}
		return x.String()
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int16:
		return strconv.FormatInt(int64(x), 10)
	case int8:
		return strconv.FormatInt(int64(x), 10)
	case uint:
		return strconv.FormatUint(uint64(x), 10)
	case uint64:
		return strconv.FormatUint(x, 10)
	case uint32:
		return strconv.FormatUint(uint64(x), 10)
	case uint16:
		return strconv.FormatUint(uint64(x), 10)
	case uint8:
		return strconv.FormatUint(uint64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
