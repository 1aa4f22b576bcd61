package dispatch

import (
	"math"
	"unicode/utf8"
)

// Args holds argument values bound and checked against a descriptor.
// Accessors return the zero value for names that were never declared.
type Args struct {
	values map[string]any
}

// Bind validates raw transport values against params. Every mismatch is a
// CallerError naming the offending option.
func Bind(params []Param, raw map[string]any) (Args, error) {
	declared := make(map[string]struct{}, len(params))
	for _, p := range params {
		declared[p.Name] = struct{}{}
	}
	for name := range raw {
		if _, ok := declared[name]; !ok {
			return Args{}, Callerf("Unknown option `%s`.", name)
		}
	}

	out := make(map[string]any, len(params))
	for _, p := range params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			if p.Required {
				return Args{}, Callerf("Missing required option `%s`.", p.Name)
			}
			if p.Default != nil {
				out[p.Name] = p.Default
			}
			continue
		}
		bound, err := bindOne(p, v)
		if err != nil {
			return Args{}, err
		}
		out[p.Name] = bound
	}
	return Args{values: out}, nil
}

func bindOne(p Param, v any) (any, error) {
	switch p.Type {
	case ParamString, ParamUser:
		s, ok := v.(string)
		if !ok {
			return nil, Callerf("Option `%s` must be a %s.", p.Name, p.Type)
		}
		if p.Type == ParamUser && s == "" {
			return nil, Callerf("Option `%s` must name a member.", p.Name)
		}
		if p.MaxLength > 0 && utf8.RuneCountInString(s) > p.MaxLength {
			return nil, Callerf("Option `%s` is longer than %d characters.", p.Name, p.MaxLength)
		}
		return s, nil

	case ParamInteger:
		n, ok := toInt64(v)
		if !ok {
			return nil, Callerf("Option `%s` must be a whole number.", p.Name)
		}
		if p.MinValue != nil && n < *p.MinValue {
			return nil, Callerf("Option `%s` must be at least %d.", p.Name, *p.MinValue)
		}
		if p.MaxValue != nil && n > *p.MaxValue {
			return nil, Callerf("Option `%s` must be at most %d.", p.Name, *p.MaxValue)
		}
		return n, nil

	case ParamBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, Callerf("Option `%s` must be true or false.", p.Name)
		}
		return b, nil
	}
	return nil, Callerf("Option `%s` has an unsupported type.", p.Name)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || n > math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// Int64 is a helper for Param bounds.
func Int64(n int64) *int64 { return &n }

func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// User returns the member ID bound to a user option.
func (a Args) User(name string) string { return a.String(name) }

func (a Args) Int(name string) int64 {
	switch n := a.values[name].(type) {
	case int64:
		return n
	case int:
		return int64(n)
	}
	return 0
}

// Bool returns a bound boolean option, false when absent.
func (a Args) Bool(name string) bool {
	b, _ := a.values[name].(bool)
	return b
}

// Has reports whether name was supplied or defaulted.
func (a Args) Has(name string) bool {
	_, ok := a.values[name]
	return ok
}
