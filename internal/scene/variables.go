package scene

import (
	"math"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// Variables is a named collection of number or text values.
type Variables struct {
	values map[string]cty.Value
}

// NewVariables returns an empty collection.
func NewVariables() *Variables {
	return &Variables{values: make(map[string]cty.Value)}
}

// Get returns the raw value of a variable. Missing variables are reported as
// not found.
func (v *Variables) Get(name string) (cty.Value, bool) {
	val, ok := v.values[name]
	return val, ok
}

// Set stores a value. Only known, non-null numbers, strings and bools are
// kept; bools are stored as 1 or 0.
func (v *Variables) Set(name string, val cty.Value) bool {
	if val.IsNull() || !val.IsKnown() {
		return false
	}
	switch val.Type() {
	case cty.Number, cty.String:
		v.values[name] = val
	case cty.Bool:
		if val.True() {
			v.values[name] = cty.NumberIntVal(1)
		} else {
			v.values[name] = cty.NumberIntVal(0)
		}
	default:
		return false
	}
	return true
}

// Number returns the numeric value of a variable, converting text when
// possible. Missing or unconvertible variables read as 0.
func (v *Variables) Number(name string) float64 {
	val, ok := v.values[name]
	if !ok {
		return 0
	}
	num, err := convert.Convert(val, cty.Number)
	if err != nil || num.IsNull() {
		return 0
	}
	f, _ := num.AsBigFloat().Float64()
	return f
}

// Text returns the textual value of a variable. Missing variables read as "".
func (v *Variables) Text(name string) string {
	val, ok := v.values[name]
	if !ok {
		return ""
	}
	str, err := convert.Convert(val, cty.String)
	if err != nil || str.IsNull() {
		return ""
	}
	return str.AsString()
}

// SetNumber stores a numeric value. NaN is stored as 0.
func (v *Variables) SetNumber(name string, f float64) {
	if math.IsNaN(f) {
		f = 0
	}
	v.values[name] = cty.NumberFloatVal(f)
}

// SetText stores a textual value.
func (v *Variables) SetText(name, s string) {
	v.values[name] = cty.StringVal(s)
}

// Names returns the variable names in sorted order.
func (v *Variables) Names() []string {
	names := make([]string, 0, len(v.values))
	for name := range v.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of variables.
func (v *Variables) Len() int {
	return len(v.values)
}

// Value returns the collection as a cty object, suitable for an expression
// evaluation scope.
func (v *Variables) Value() cty.Value {
	if len(v.values) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(v.values))
	for name, val := range v.values {
		attrs[name] = val
	}
	return cty.ObjectVal(attrs)
}
