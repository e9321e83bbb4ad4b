// FILE: lixenwraith/hparams/schema.go
package hparams

import (
	"fmt"
	"sort"
	"strings"
)

// ArgSpec describes the command-line override flag of one top-level key.
type ArgSpec struct {
	Key     string
	Kind    Kind
	Elem    Kind // element kind, only meaningful for KindList
	Default any
}

// Flag returns the flag name, e.g. "--lr".
func (a ArgSpec) Flag() string {
	return "--" + a.Key
}

// metavar is the placeholder shown for the flag value in usage text.
func (a ArgSpec) metavar() string {
	return strings.ToUpper(strings.ReplaceAll(a.Key, "-", "_"))
}

// Schema is the ordered set of override flags derived from a document.
type Schema []ArgSpec

// BuildSchema classifies every top-level value of doc once and returns one
// ArgSpec per key, sorted by key. List element kinds come from the first
// element; empty lists parse their elements as strings.
func BuildSchema(doc map[string]any) Schema {
	keys := make([]string, 0, len(doc))
	for key := range doc {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	schema := make(Schema, 0, len(keys))
	for _, key := range keys {
		value := doc[key]
		spec := ArgSpec{Key: key, Kind: kindOf(value), Default: value}
		if list, ok := value.([]any); ok {
			spec.Elem = KindString
			if len(list) > 0 {
				spec.Elem = scalarKindOf(list[0])
			}
		}
		schema = append(schema, spec)
	}
	return schema
}

// Lookup returns the spec for key.
func (s Schema) Lookup(key string) (ArgSpec, bool) {
	for _, spec := range s {
		if spec.Key == key {
			return spec, true
		}
	}
	return ArgSpec{}, false
}

// Defaults returns a flat mapping of every key to its default.
func (s Schema) Defaults() map[string]any {
	out := make(map[string]any, len(s))
	for _, spec := range s {
		out[spec.Key] = spec.Default
	}
	return out
}

// Parse applies args to the schema and returns a flat mapping covering every
// key: the command-line value if the flag was supplied, the default otherwise.
// All failures wrap ErrArgumentParse, except -h/--help which returns ErrHelp.
func (s Schema) Parse(args []string) (map[string]any, error) {
	result, _, err := s.parse(args)
	return result, err
}

// parse is Parse that also reports which keys were set on the command line.
func (s Schema) parse(args []string) (map[string]any, map[string]bool, error) {
	result := s.Defaults()
	supplied := make(map[string]bool)

	i := 0
	for i < len(args) {
		arg := args[i]

		if arg == "-h" || arg == "--help" {
			return nil, nil, ErrHelp
		}

		if arg == "--" {
			if i+1 < len(args) {
				return nil, nil, argError("unrecognized arguments: %s", strings.Join(args[i+1:], " "))
			}
			break
		}

		if !isOptionToken(arg) {
			return nil, nil, argError("unrecognized arguments: %s", strings.Join(strayTokens(args[i:]), " "))
		}

		if !strings.HasPrefix(arg, "--") {
			return nil, nil, argError("unrecognized arguments: %s", arg)
		}

		name := strings.TrimPrefix(arg, "--")
		var inline *string
		if before, after, found := strings.Cut(name, "="); found {
			name = before
			inline = &after
		}

		spec, err := s.resolve(name)
		if err != nil {
			return nil, nil, err
		}
		i++

		switch spec.Kind {
		case KindBool:
			if inline != nil {
				return nil, nil, argError("argument %s: ignored explicit argument %q", spec.Flag(), *inline)
			}
			result[spec.Key] = true

		case KindList:
			var tokens []string
			if inline != nil {
				tokens = append(tokens, *inline)
			}
			for i < len(args) && !isOptionToken(args[i]) && args[i] != "--" {
				tokens = append(tokens, args[i])
				i++
			}
			if len(tokens) == 0 {
				return nil, nil, argError("argument %s: expected at least one argument", spec.Flag())
			}
			list := make([]any, 0, len(tokens))
			for _, token := range tokens {
				value, err := coerce(token, spec.Elem)
				if err != nil {
					return nil, nil, argError("argument %s: %v", spec.Flag(), err)
				}
				list = append(list, value)
			}
			result[spec.Key] = list

		default:
			var token string
			switch {
			case inline != nil:
				token = *inline
			case i < len(args) && !isOptionToken(args[i]) && args[i] != "--":
				token = args[i]
				i++
			default:
				return nil, nil, argError("argument %s: expected one argument", spec.Flag())
			}
			value, err := coerce(token, spec.Kind)
			if err != nil {
				return nil, nil, argError("argument %s: %v", spec.Flag(), err)
			}
			result[spec.Key] = value
		}

		supplied[spec.Key] = true
	}

	return result, supplied, nil
}

// resolve finds the spec for a flag name, accepting unique prefixes.
func (s Schema) resolve(name string) (ArgSpec, error) {
	if name == "" {
		return ArgSpec{}, argError("unrecognized arguments: --")
	}
	if spec, ok := s.Lookup(name); ok {
		return spec, nil
	}

	var matches []ArgSpec
	for _, spec := range s {
		if strings.HasPrefix(spec.Key, name) {
			matches = append(matches, spec)
		}
	}

	switch len(matches) {
	case 0:
		return ArgSpec{}, argError("unrecognized arguments: --%s", name)
	case 1:
		return matches[0], nil
	default:
		flags := make([]string, len(matches))
		for i, m := range matches {
			flags[i] = m.Flag()
		}
		return ArgSpec{}, argError("ambiguous option: --%s could match %s", name, strings.Join(flags, ", "))
	}
}

// Usage renders an argparse-style usage line followed by one line per flag.
func (s Schema) Usage(prog string) string {
	var b strings.Builder
	b.WriteString(s.UsageLine(prog))
	b.WriteString("\n\noptions:\n  -h, --help")
	for _, spec := range s {
		b.WriteString("\n  ")
		b.WriteString(spec.invocation())
		b.WriteString(fmt.Sprintf("\n        %s (default: %v)", spec.Kind, formatDefault(spec.Default)))
	}
	b.WriteString("\n")
	return b.String()
}

// UsageLine renders the single "usage: ..." line.
func (s Schema) UsageLine(prog string) string {
	parts := []string{"usage:", prog, "[-h]"}
	for _, spec := range s {
		parts = append(parts, "["+spec.invocation()+"]")
	}
	return strings.Join(parts, " ")
}

func (a ArgSpec) invocation() string {
	switch a.Kind {
	case KindBool:
		return a.Flag()
	case KindList:
		mv := a.metavar()
		return fmt.Sprintf("%s %s [%s ...]", a.Flag(), mv, mv)
	default:
		return a.Flag() + " " + a.metavar()
	}
}

func formatDefault(v any) string {
	if list, ok := v.([]any); ok {
		items := make([]string, len(list))
		for i, item := range list {
			items[i] = fmt.Sprintf("%v", item)
		}
		return "[" + strings.Join(items, " ") + "]"
	}
	return fmt.Sprintf("%v", v)
}

// isOptionToken reports whether a token names a flag. Negative numbers are
// values, so "-0.5" is not an option.
func isOptionToken(token string) bool {
	if len(token) < 2 || token[0] != '-' {
		return false
	}
	if token == "--" {
		return false
	}
	if looksNegativeNumber(token) {
		return false
	}
	return true
}

func looksNegativeNumber(token string) bool {
	if len(token) < 2 || token[0] != '-' {
		return false
	}
	switch NormalizeValue(token[1:]).(type) {
	case int64, float64:
		return true
	default:
		return false
	}
}

// strayTokens collects the leading run of non-option tokens for error text.
func strayTokens(args []string) []string {
	var out []string
	for _, a := range args {
		if isOptionToken(a) {
			break
		}
		out = append(out, a)
	}
	return out
}

func argError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrArgumentParse, fmt.Sprintf(format, args...))
}
