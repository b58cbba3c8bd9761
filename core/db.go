package core

import "reflect"

// Op is a predicate operator understood by every storage backend.
type Op string

const (
	OpEq     Op = "eq"
	OpIn     Op = "in"
	OpIsNull Op = "is_null"
)

// Field names a filterable attribute. Storage backends map fields to their own columns.
type Field string

// Predicate is a single typed query condition.
type Predicate struct {
	Field Field
	Op    Op
	Value interface{}
}

// Predicates are ANDed together.
type Predicates []Predicate

func Eq(field Field, value interface{}) Predicate {
	return Predicate{Field: field, Op: OpEq, Value: value}
}

func In(field Field, values ...interface{}) Predicate {
	return Predicate{Field: field, Op: OpIn, Value: values}
}

func IsNull(field Field) Predicate {
	return Predicate{Field: field, Op: OpIsNull}
}

// Where starts a new predicate list.
func Where(preds ...Predicate) Predicates {
	return append(make(Predicates, 0, len(preds)+2), preds...)
}

// And returns a copy of ps extended with preds; ps is never mutated.
func (ps Predicates) And(preds ...Predicate) Predicates {
	out := make(Predicates, 0, len(ps)+len(preds))
	out = append(out, ps...)
	return append(out, preds...)
}

// Lookup returns the first predicate on field.
func (ps Predicates) Lookup(field Field) (Predicate, bool) {
	for _, p := range ps {
		if p.Field == field {
			return p, true
		}
	}
	return Predicate{}, false
}

// Match evaluates ps in memory. get returns a field's value and whether the field is known;
// unknown fields never match.
func (ps Predicates) Match(get func(Field) (interface{}, bool)) bool {
	for _, p := range ps {
		val, ok := get(p.Field)
		if !ok {
			return false
		}
		switch p.Op {
		case OpEq:
			if !valuesEqual(val, p.Value) {
				return false
			}
		case OpIn:
			values, _ := p.Value.([]interface{})
			found := false
			for _, v := range values {
				if valuesEqual(val, v) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case OpIsNull:
			if !isNil(val) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func valuesEqual(a, b interface{}) bool {
	if isNil(a) || isNil(b) {
		return isNil(a) && isNil(b)
	}
	return reflect.DeepEqual(a, b)
}

func isNil(v interface{}) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
