package domain

import (
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// Axis is one named dimension of a job matrix.
type Axis struct {
	Name   string
	Values []string
}

// Binding assigns a value to a matrix key.
type Binding struct {
	Key   string
	Value string
}

// Combination is an ordered set of matrix bindings describing one job instance.
type Combination []Binding

// Get returns the value bound to key.
func (c Combination) Get(key string) (string, bool) {
	for _, b := range c {
		if b.Key == key {
			return b.Value, true
		}
	}
	return "", false
}

var keyEscaper = strings.NewReplacer(`\`, `\\`, `,`, `\,`, `=`, `\=`)

// Key returns the canonical "k=v,k=v" form of the combination in binding order.
// Backslashes, commas and equal signs inside keys and values are escaped with a
// backslash, so distinct combinations never share a key.
func (c Combination) Key() string {
	var sb strings.Builder
	for i, b := range c {
		if i > 0 {
			sb.WriteByte(',')
		}
		_, _ = keyEscaper.WriteString(&sb, b.Key)
		sb.WriteByte('=')
		_, _ = keyEscaper.WriteString(&sb, b.Value)
	}
	return sb.String()
}

// Values returns the bound values in binding order.
func (c Combination) Values() []string {
	values := make([]string, len(c))
	for i, b := range c {
		values[i] = b.Value
	}
	return values
}

// Map returns the combination as a plain map.
func (c Combination) Map() map[string]string {
	m := make(map[string]string, len(c))
	for _, b := range c {
		m[b.Key] = b.Value
	}
	return m
}

// matches reports whether every binding of partial is present in c with the same value.
func (c Combination) matches(partial Combination) bool {
	for _, b := range partial {
		v, ok := c.Get(b.Key)
		if !ok || v != b.Value {
			return false
		}
	}
	return true
}

// set returns a copy of c with key bound to value, replacing an existing binding.
func (c Combination) set(b Binding) Combination {
	out := slices.Clone(c)
	for i := range out {
		if out[i].Key == b.Key {
			out[i].Value = b.Value
			return out
		}
	}
	return append(out, b)
}

// Matrix declares the axes of a job group together with include and exclude entries.
type Matrix struct {
	Axes    []Axis
	Include []Combination
	Exclude []Combination
}

// IsEmpty reports whether the matrix declares nothing at all.
func (m Matrix) IsEmpty() bool {
	return len(m.Axes) == 0 && len(m.Include) == 0
}

// Axis returns the axis with the given name.
func (m Matrix) Axis(name string) (Axis, bool) {
	for _, a := range m.Axes {
		if a.Name == name {
			return a, true
		}
	}
	return Axis{}, false
}

// Keys returns every key a combination of this matrix may bind: axis names
// first, then keys introduced by include entries.
func (m Matrix) Keys() []string {
	keys := make([]string, 0, len(m.Axes))
	for _, a := range m.Axes {
		keys = append(keys, a.Name)
	}
	for _, inc := range m.Include {
		for _, b := range inc {
			if !slices.Contains(keys, b.Key) {
				keys = append(keys, b.Key)
			}
		}
	}
	return keys
}

// Expand materializes every combination of the matrix.
//
// The cross product varies the first axis slowest. Exclude entries then drop
// every combination they match. Each include entry extends the combinations
// whose axis values it matches with its remaining keys, or is appended as a
// combination of its own when it matches none. Include entries only match
// combinations of the cross product, never ones added by an earlier include,
// so a matrix without axes yields one combination per include entry. A matrix
// with no axes and no include entries expands to a single empty combination.
func (m Matrix) Expand() ([]Combination, error) {
	if err := m.validateAxes(); err != nil {
		return nil, err
	}

	combos := []Combination{nil}
	for _, axis := range m.Axes {
		next := make([]Combination, 0, len(combos)*len(axis.Values))
		for _, c := range combos {
			for _, v := range axis.Values {
				next = append(next, c.set(Binding{Key: axis.Name, Value: v}))
			}
		}
		combos = next
	}

	if len(m.Exclude) > 0 {
		combos = slices.DeleteFunc(combos, func(c Combination) bool {
			return slices.ContainsFunc(m.Exclude, func(ex Combination) bool {
				return len(ex) > 0 && c.matches(ex)
			})
		})
	}

	if len(m.Axes) == 0 && len(m.Include) > 0 {
		combos = nil
	}

	base := len(combos)
	for _, inc := range m.Include {
		combos = m.applyInclude(combos, base, inc)
	}

	seen := make(map[string]struct{}, len(combos))
	for _, c := range combos {
		key := c.Key()
		if _, dup := seen[key]; dup {
			return nil, zerr.With(ErrDuplicateCombination, "combination", key)
		}
		seen[key] = struct{}{}
	}

	return combos, nil
}

// applyInclude merges inc into the first base combinations, which come from the
// cross product, or appends it when none of them match.
func (m Matrix) applyInclude(combos []Combination, base int, inc Combination) []Combination {
	var axisPart, extra Combination
	for _, b := range inc {
		if _, ok := m.Axis(b.Key); ok {
			axisPart = append(axisPart, b)
		} else {
			extra = append(extra, b)
		}
	}

	matched := false
	if len(extra) > 0 {
		for i, c := range combos[:base] {
			if !c.matches(axisPart) {
				continue
			}
			matched = true
			for _, b := range extra {
				combos[i] = combos[i].set(b)
			}
		}
	} else {
		matched = slices.ContainsFunc(combos[:base], func(c Combination) bool { return c.matches(axisPart) })
	}

	if !matched {
		combos = append(combos, slices.Clone(inc))
	}
	return combos
}

func (m Matrix) validateAxes() error {
	for _, axis := range m.Axes {
		if len(axis.Values) == 0 {
			return zerr.With(ErrEmptyAxis, "axis", axis.Name)
		}
		seen := make(map[string]struct{}, len(axis.Values))
		for _, v := range axis.Values {
			if _, dup := seen[v]; dup {
				return zerr.With(zerr.With(ErrDuplicateAxisValue, "axis", axis.Name), "value", v)
			}
			seen[v] = struct{}{}
		}
	}
	return nil
}
