package document

import (
	"html/template"
	"reflect"
	"strconv"
	"strings"
	"time"
)

func funcMap() template.FuncMap {
	return template.FuncMap{
		"money":      money,
		"day":        day,
		"safeGetOr":  safeGetOr,
		"monthsFrom": monthsBetween,
	}
}

// money formats an amount with two decimals and thousands separators
func money(amount float64) string {
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String() + "." + frac
	if neg {
		return "-" + out
	}
	return out
}

func day(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// monthsBetween counts whole months from start to end, at least one
func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() >= start.Day() {
		months++
	}
	if months < 1 {
		return 1
	}
	return months
}

// safeGet returns the value at a dot-separated path of struct fields and map keys,
// or nil when any step is missing.
//
//	{{ safeGetOr "Student.Phone" . "n/a" }}
func safeGet(path string, data any) any {
	val := reflect.ValueOf(data)
	for _, p := range strings.Split(path, ".") {
		val = indirect(val)
		if !val.IsValid() {
			return nil
		}
		switch val.Kind() {
		case reflect.Struct:
			val = val.FieldByName(p)
		case reflect.Map:
			val = val.MapIndex(reflect.ValueOf(p))
		default:
			return nil
		}
		if !val.IsValid() {
			return nil
		}
	}
	val = indirect(val)
	if !val.IsValid() {
		return nil
	}
	return val.Interface()
}

func safeGetOr(path string, data any, def any) any {
	v := safeGet(path, data)
	if v == nil || v == "" {
		return def
	}
	return v
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}
