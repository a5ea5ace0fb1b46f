// Package validate checks request payloads against `validate` struct tags.
//
// Rules, comma-separated and applied in order until one fails:
//
//	required            not zero/empty
//	nullable            an empty value skips the remaining rules
//	objectid            24-character hex document id
//	date                YYYY-MM-DD
//	alpha_dash          letters, digits, hyphens, underscores
//	min=N / max=N       length for strings and slices, value for numbers
//	gte=N / lte=N       numeric bounds
//	in=a|b|c            one of the listed values
//	dive                validate every element of a slice of structs
//
// Pointer fields are dereferenced; a nil pointer counts as empty. Errors are
// keyed by the field's JSON name, nested ones as "items.1.f_id".
package validate

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Struct validates v and returns field → message. An empty map means valid.
func Struct(v interface{}) map[string]string {
	errs := make(map[string]string)
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}

	for _, f := range planFor(rv.Type()) {
		value := rv.Field(f.index)
		if f.nullable && isEmpty(value) {
			continue
		}
		value = deref(value)
		for _, r := range f.rules {
			if r.name == "dive" {
				dive(errs, f.name, value)
				continue
			}
			if msg := r.check(f.name, value); msg != "" {
				errs[f.name] = msg
				break
			}
		}
	}
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs map[string]string) bool { return len(errs) > 0 }

// ObjectID reports whether s is a well-formed document id.
func ObjectID(s string) bool { return primitive.IsValidObjectID(s) }

type rule struct {
	name  string
	param string
}

type field struct {
	index    int
	name     string
	nullable bool
	rules    []rule
}

var plans sync.Map // reflect.Type → []field

func planFor(t reflect.Type) []field {
	if p, ok := plans.Load(t); ok {
		return p.([]field)
	}
	var fields []field
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		tag := sf.Tag.Get("validate")
		if !sf.IsExported() || tag == "" {
			continue
		}
		f := field{index: i, name: jsonName(sf)}
		for _, part := range strings.Split(tag, ",") {
			name, param, _ := strings.Cut(strings.TrimSpace(part), "=")
			switch name {
			case "":
			case "nullable":
				f.nullable = true
			default:
				f.rules = append(f.rules, rule{name: name, param: param})
			}
		}
		fields = append(fields, f)
	}
	p, _ := plans.LoadOrStore(t, fields)
	return p.([]field)
}

func dive(errs map[string]string, name string, v reflect.Value) {
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		return
	}
	for i := 0; i < v.Len(); i++ {
		for k, msg := range Struct(v.Index(i).Interface()) {
			errs[fmt.Sprintf("%s.%d.%s", name, i, k)] = msg
		}
	}
}

func (r rule) check(field string, v reflect.Value) string {
	if r.name == "required" {
		if !v.IsValid() || isEmpty(v) {
			return fmt.Sprintf("The %s field is required.", field)
		}
		return ""
	}
	if !v.IsValid() {
		return ""
	}
	raw := fmt.Sprint(v.Interface())
	limit, _ := strconv.ParseFloat(strings.TrimSpace(r.param), 64)

	switch r.name {
	case "objectid":
		if !ObjectID(raw) {
			return fmt.Sprintf("The %s must be a valid id.", field)
		}
	case "date":
		if _, err := time.Parse(time.DateOnly, raw); err != nil {
			return fmt.Sprintf("The %s must be a date in YYYY-MM-DD form.", field)
		}
	case "alpha_dash":
		if strings.IndexFunc(raw, func(c rune) bool {
			return !unicode.IsLetter(c) && !unicode.IsDigit(c) && c != '-' && c != '_'
		}) >= 0 {
			return fmt.Sprintf("The %s field may only contain letters, numbers, dashes, and underscores.", field)
		}
	case "min":
		if n, numeric := number(v); numeric && n < limit {
			return fmt.Sprintf("The %s must be at least %s.", field, r.param)
		} else if !numeric && float64(size(v, raw)) < limit {
			return fmt.Sprintf("The %s must be at least %s characters.", field, r.param)
		}
	case "max":
		if n, numeric := number(v); numeric && n > limit {
			return fmt.Sprintf("The %s must not be greater than %s.", field, r.param)
		} else if !numeric && float64(size(v, raw)) > limit {
			return fmt.Sprintf("The %s must not exceed %s characters.", field, r.param)
		}
	case "gte":
		if n, _ := number(v); n < limit {
			return fmt.Sprintf("The %s must be greater than or equal to %s.", field, r.param)
		}
	case "lte":
		if n, _ := number(v); n > limit {
			return fmt.Sprintf("The %s must be less than or equal to %s.", field, r.param)
		}
	case "in":
		for _, allowed := range strings.Split(r.param, "|") {
			if raw == strings.TrimSpace(allowed) {
				return ""
			}
		}
		return fmt.Sprintf("The selected %s is invalid.", field)
	}
	return ""
}

func deref(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// isEmpty treats false as a value, not as absence.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Bool:
		return false
	}
	if n, numeric := number(v); numeric {
		return n == 0
	}
	return false
}

func size(v reflect.Value, raw string) int {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return len([]rune(raw))
}

// number returns v as a float and whether v has a numeric kind. Strings are
// parsed leniently so gte/lte still work on form values.
func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	f, _ := strconv.ParseFloat(fmt.Sprint(v.Interface()), 64)
	return f, false
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}
