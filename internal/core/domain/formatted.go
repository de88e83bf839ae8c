package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Reserved keys of a formatted property object.
const (
	formattedUnitKey  = "_unit"
	formattedValueKey = "value"
)

// Formatted is a structured dose/onset/duration/after-effects value.
//
// It is either a scalar (a single shared Value) or keyed by route of
// administration (Routes), optionally with a shared Value used as the
// default for routes without their own entry.
type Formatted struct {
	// Unit is the unit of measure, e.g. "hours".
	Unit string

	// Value is the shared value. Nil when the upstream object has no "value" key.
	Value json.RawMessage

	// Routes maps a route of administration to its value.
	Routes map[string]json.RawMessage

	// scalar is set when upstream sent a bare value instead of an object.
	scalar bool
}

// Scalar returns a formatted value holding a single shared value.
func Scalar(v json.RawMessage) *Formatted {
	return &Formatted{Value: v, scalar: true}
}

// IsScalar reports whether upstream sent a bare value rather than an object.
func (f *Formatted) IsScalar() bool {
	return f != nil && f.scalar
}

// IsByRoute reports whether the value is keyed by route of administration.
func (f *Formatted) IsByRoute() bool {
	return f != nil && len(f.Routes) > 0
}

// Size returns the number of keys the upstream object carried.
func (f *Formatted) Size() int {
	if f == nil {
		return 0
	}
	n := len(f.Routes)
	if f.Unit != "" {
		n++
	}
	if f.Value != nil {
		n++
	}
	return n
}

// RouteNames returns the routes in sorted order.
func (f *Formatted) RouteNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Routes))
	for r := range f.Routes {
		names = append(names, r)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy of f. A nil receiver yields nil.
func (f *Formatted) Clone() *Formatted {
	if f == nil {
		return nil
	}
	c := &Formatted{Unit: f.Unit, scalar: f.scalar}
	if f.Value != nil {
		c.Value = append(json.RawMessage(nil), f.Value...)
	}
	if f.Routes != nil {
		c.Routes = make(map[string]json.RawMessage, len(f.Routes))
		for k, v := range f.Routes {
			c.Routes[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// UnmarshalJSON decodes either the upstream object form or a bare scalar.
func (f *Formatted) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		if !json.Valid(trimmed) {
			return fmt.Errorf("formatted value: %w", ErrMalformedRecord)
		}
		*f = Formatted{Value: append(json.RawMessage(nil), trimmed...), scalar: true}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*f = Formatted{}
	for k, v := range raw {
		switch k {
		case formattedUnitKey:
			var unit string
			if err := json.Unmarshal(v, &unit); err == nil {
				f.Unit = unit
			}
		case formattedValueKey:
			f.Value = v
		default:
			if f.Routes == nil {
				f.Routes = make(map[string]json.RawMessage)
			}
			f.Routes[k] = v
		}
	}
	return nil
}

// MarshalJSON encodes back to the upstream form. A scalar that gained no
// routes stays a bare value.
func (f Formatted) MarshalJSON() ([]byte, error) {
	if f.scalar && f.Unit == "" && len(f.Routes) == 0 && f.Value != nil {
		return f.Value, nil
	}
	out := make(map[string]json.RawMessage, len(f.Routes)+2)
	for k, v := range f.Routes {
		out[k] = v
	}
	if f.Unit != "" {
		unit, err := json.Marshal(f.Unit)
		if err != nil {
			return nil, err
		}
		out[formattedUnitKey] = unit
	}
	if f.Value != nil {
		out[formattedValueKey] = f.Value
	}
	return json.Marshal(out)
}

// Display renders a raw value for humans: strings verbatim, objects as
// "key: value" pairs in key order, anything else as compact JSON.
func Display(v json.RawMessage) string {
	if len(v) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}

	var obj map[string]any
	if err := json.Unmarshal(v, &obj); err == nil {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+Display(rawOf(obj[k])))
		}
		return strings.Join(parts, ", ")
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, v); err != nil {
		return string(v)
	}
	return buf.String()
}

func rawOf(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// NormaliseRoutes cross-fills per-route entries of onset, duration and
// after-effects so every present field lists the same routes.
//
// It applies only when at least one of the three is present and at least
// one has more than one key. The union of routes across the three fields
// is computed; each present field then gets every missing route set to its
// own shared Value. Fields without a shared Value are left as they are.
// The substance is modified in place; callers pass a clone.
func NormaliseRoutes(s *Substance) {
	fields := []*Formatted{s.FormattedOnset, s.FormattedDuration, s.FormattedAftereffects}

	present, multi := false, false
	for _, f := range fields {
		if f == nil {
			continue
		}
		present = true
		if f.Size() > 1 {
			multi = true
		}
	}
	if !present || !multi {
		return
	}

	routes := make(map[string]struct{})
	for _, f := range fields {
		if f == nil {
			continue
		}
		for r := range f.Routes {
			routes[r] = struct{}{}
		}
	}

	for _, f := range fields {
		if f == nil || f.Value == nil {
			continue
		}
		for r := range routes {
			if _, ok := f.Routes[r]; ok {
				continue
			}
			if f.Routes == nil {
				f.Routes = make(map[string]json.RawMessage, len(routes))
			}
			f.Routes[r] = f.Value
		}
	}
}
