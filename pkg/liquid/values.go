package liquid

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Values flowing through templates are plain Go values: nil, bool, the integer
// and float kinds, string, []any, map[string]any, Range, Drop, or anything a
// Liquidizer converts into one of those. Other slices and string-keyed maps are
// read through reflection.

// Liquidizer is implemented by host values that want to present a different
// value to templates.
type Liquidizer interface {
	ToLiquid() any
}

// Range is the value of a (a..b) expression. Both ends are inclusive.
type Range struct {
	From, To int
}

// Len returns the number of integers in the range, saturating at
// math.MaxInt.
func (r Range) Len() int {
	if r.To < r.From {
		return 0
	}
	d := uint64(r.To) - uint64(r.From)
	if d >= math.MaxInt {
		return math.MaxInt
	}
	return int(d) + 1
}

// At returns the i-th integer of the range.
func (r Range) At(i int) any { return r.From + i }

// Contains reports whether v is a number equal to one of the range's
// integers, without expanding the range.
func (r Range) Contains(v any) bool {
	n, ok := toNumber(liquidize(v))
	if !ok {
		return false
	}
	switch t := n.(type) {
	case int:
		return t >= r.From && t <= r.To
	case float64:
		return t == math.Trunc(t) && t >= float64(r.From) && t <= float64(r.To)
	}
	return false
}

// Items expands the range. Callers bound the length first; loops walk a
// range through At instead.
func (r Range) Items() []any {
	out := make([]any, 0, r.Len())
	for i := r.From; i <= r.To; i++ {
		out = append(out, i)
	}
	return out
}

func (r Range) String() string { return fmt.Sprintf("%d..%d", r.From, r.To) }

func liquidize(v any) any {
	if l, ok := v.(Liquidizer); ok {
		return l.ToLiquid()
	}
	return v
}

// IsTruthy applies Liquid truthiness: only nil and false are falsy.
func IsTruthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case MethodLiteral:
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		if rv.IsNil() && rv.Kind() == reflect.Pointer {
			return false
		}
	}
	return true
}

// ToString renders a value the way {{ }} outputs it.
func ToString(v any) string {
	switch t := liquidize(v).(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return formatFloat(t)
	case float32:
		return formatFloat(float64(t))
	case MethodLiteral:
		return ""
	case []any:
		var b strings.Builder
		for _, item := range t {
			b.WriteString(ToString(item))
		}
		return b.String()
	case fmt.Stringer:
		return t.String()
	case Drop:
		return ""
	}
	if items, ok := reflectSlice(v); ok {
		return ToString(items)
	}
	if n, ok := toNumber(v); ok {
		return ToString(n)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// toNumber normalises every integer kind to int and every float kind to float64.
func toNumber(v any) (any, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case float64:
		return t, true
	case float32:
		return float64(t), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return nil, false
}

func toFloat(n any) float64 {
	switch t := n.(type) {
	case int:
		return float64(t)
	case float64:
		return t
	}
	return 0
}

// ToInteger converts numbers and numeric strings to int, as range endpoints
// and loop attributes require.
func ToInteger(v any) (int, error) {
	return toInteger(v, defaultLocale)
}

func toInteger(v any, loc *Locale) (int, error) {
	v = liquidize(v)
	if v == nil {
		return 0, nil
	}
	if n, ok := toNumber(v); ok {
		if f, isFloat := n.(float64); isFloat {
			return int(f), nil
		}
		return n.(int), nil
	}
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if i, err := strconv.Atoi(s); err == nil {
			return i, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), nil
		}
	}
	return 0, ArgumentError("%s", loc.T("errors.argument.invalid_integer"))
}

// compareValues orders two values. ok is false when they are not comparable.
func compareValues(a, b any) (int, bool) {
	a, b = liquidize(a), liquidize(b)
	na, aNum := toNumber(a)
	nb, bNum := toNumber(b)
	if aNum && bNum {
		ia, aInt := na.(int)
		ib, bInt := nb.(int)
		if aInt && bInt {
			return cmpOrdered(ia, ib), true
		}
		return cmpOrdered(toFloat(na), toFloat(nb)), true
	}
	sa, aStr := a.(string)
	sb, bStr := b.(string)
	if aStr && bStr {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

func cmpOrdered[T int | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// valuesEqual implements ==.
func valuesEqual(a, b any) bool {
	a, b = liquidize(a), liquidize(b)
	if ma, ok := a.(MethodLiteral); ok {
		return ma.matches(b)
	}
	if mb, ok := b.(MethodLiteral); ok {
		return mb.matches(a)
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if c, ok := compareValues(a, b); ok {
		_, aNum := toNumber(a)
		_, bNum := toNumber(b)
		_, aStr := a.(string)
		_, bStr := b.(string)
		if (aNum && bNum) || (aStr && bStr) {
			return c == 0
		}
	}
	if ra, ok := a.(Range); ok {
		rb, ok := b.(Range)
		return ok && ra == rb
	}
	if _, ok := b.(Range); ok {
		return false
	}
	if ia, ok := toSlice(a); ok {
		ib, ok := toSlice(b)
		if !ok || len(ia) != len(ib) {
			return false
		}
		for i := range ia {
			if !valuesEqual(ia[i], ib[i]) {
				return false
			}
		}
		return true
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return reflect.DeepEqual(a, b)
	}
	return a == b
}

// toSlice returns the elements of list-like values. Maps and strings are not
// lists here; iteration over them is decided by the loop tags.
func toSlice(v any) ([]any, bool) {
	switch t := liquidize(v).(type) {
	case []any:
		return t, true
	case Range:
		return t.Items(), true
	case Enumerable:
		return t.Items(), true
	case string, nil:
		return nil, false
	}
	return reflectSlice(v)
}

func reflectSlice(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// toMap returns string-keyed maps as map[string]any.
func toMap(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	it := rv.MapRange()
	for it.Next() {
		out[it.Key().String()] = it.Value().Interface()
	}
	return out, true
}

// sortedKeys keeps map iteration deterministic.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Iterate returns the items a for loop walks over. Maps yield [key, value]
// pairs in key order, strings and other scalars yield themselves once.
func Iterate(v any) []any {
	v = liquidize(v)
	if v == nil {
		return nil
	}
	if items, ok := toSlice(v); ok {
		return items
	}
	if m, ok := toMap(v); ok {
		out := make([]any, 0, len(m))
		for _, k := range sortedKeys(m) {
			out = append(out, []any{k, m[k]})
		}
		return out
	}
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return []any{v}
}

// sequence is the indexed view loop tags walk. Ranges stay unexpanded, so
// a loop allocates nothing beyond the items it actually visits.
type sequence interface {
	Len() int
	At(i int) any
}

type listSequence []any

func (l listSequence) Len() int     { return len(l) }
func (l listSequence) At(i int) any { return l[i] }

type reversedSequence struct{ sequence }

func (r reversedSequence) At(i int) any { return r.sequence.At(r.Len() - 1 - i) }

// iterSequence is Iterate without expanding ranges.
func iterSequence(v any) sequence {
	if r, ok := liquidize(v).(Range); ok {
		return r
	}
	return listSequence(Iterate(v))
}

// listSequenceOf returns list-like values as a sequence. Maps and scalars
// are not lists.
func listSequenceOf(v any) (sequence, bool) {
	if r, ok := liquidize(v).(Range); ok {
		return r, true
	}
	items, ok := toSlice(v)
	return listSequence(items), ok
}

// window returns s[from:to], clamped to the sequence.
func window(s sequence, from, to int) sequence {
	n := s.Len()
	from = max(from, 0)
	to = min(to, n)
	if from >= to {
		return listSequence(nil)
	}
	switch t := s.(type) {
	case Range:
		end := t.To
		if to < n {
			end = t.From + to - 1
		}
		return Range{From: t.From + from, To: end}
	case listSequence:
		return t[from:to]
	}
	items := make(listSequence, 0, to-from)
	for i := from; i < to; i++ {
		items = append(items, s.At(i))
	}
	return items
}

// Size implements the size command and filter.
func Size(v any) (int, bool) {
	v = liquidize(v)
	switch t := v.(type) {
	case string:
		return len([]rune(t)), true
	case Range:
		return t.Len(), true
	}
	if items, ok := toSlice(v); ok {
		return len(items), true
	}
	if m, ok := toMap(v); ok {
		return len(m), true
	}
	return 0, false
}

// isEmptyValue backs the `empty` literal.
func isEmptyValue(v any) bool {
	switch t := liquidize(v).(type) {
	case string:
		return t == ""
	case nil:
		return false
	}
	if n, ok := Size(v); ok {
		if _, isStr := v.(string); !isStr {
			return n == 0
		}
	}
	return false
}

// isBlankValue backs the `blank` literal.
func isBlankValue(v any) bool {
	switch t := liquidize(v).(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return strings.TrimSpace(t) == ""
	}
	if n, ok := Size(v); ok {
		return n == 0
	}
	return false
}

// assignScore measures how much budget storing v costs.
func assignScore(v any) int {
	v = liquidize(v)
	switch t := v.(type) {
	case string:
		return len(t)
	case nil:
		return 1
	case Range:
		return t.Len()
	}
	if items, ok := toSlice(v); ok {
		sum := 1
		for _, item := range items {
			sum += assignScore(item)
		}
		return sum
	}
	if m, ok := toMap(v); ok {
		sum := 1
		for k, item := range m {
			sum += len(k) + assignScore(item)
		}
		return sum
	}
	return 1
}
