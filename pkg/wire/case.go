// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package wire

import (
	"encoding/json"
	"strings"

	"github.com/iancoleman/strcase"
)

// ToSnake returns a copy of v with every object key converted to
// snake_case, recursing through nested objects and arrays. Values are
// never changed.
func ToSnake(v any) any {
	return rekey(v, snakeKey)
}

// ToCamel returns a copy of v with every object key converted to
// lowerCamelCase, recursing through nested objects and arrays.
func ToCamel(v any) any {
	return rekey(v, camelKey)
}

// CamelType camelCases each dot-separated segment of an error type, so
// "authentication.session_expired" becomes "authentication.sessionExpired".
func CamelType(t string) string {
	segments := strings.Split(t, ".")
	for i, s := range segments {
		segments[i] = camelKey(s)
	}
	return strings.Join(segments, ".")
}

// snakeKey converts one key. Leading and trailing underscores are kept as
// they are; interior runs of underscores collapse to one.
func snakeKey(k string) string {
	prefix, words, suffix := splitSnake(k)
	return prefix + strings.Join(words, "_") + suffix
}

// camelKey converts one key by way of its snake form, so snakeKey(camelKey(k))
// equals snakeKey(k). An underscore is kept between words where joining
// them would read back as an acronym or lose a word boundary.
func camelKey(k string) string {
	prefix, words, suffix := splitSnake(k)

	var b strings.Builder
	b.WriteString(prefix)
	prevUpper := false
	for i, w := range words {
		first := w[0]
		isLower := first >= 'a' && first <= 'z'
		isDigit := first >= '0' && first <= '9'
		switch {
		case i == 0:
			b.WriteString(w)
		case isLower && !prevUpper:
			b.WriteByte(first - 'a' + 'A')
			b.WriteString(w[1:])
		case isDigit:
			b.WriteString(w)
		default:
			b.WriteByte('_')
			b.WriteString(w)
		}
		last := b.String()[b.Len()-1]
		prevUpper = last >= 'A' && last <= 'Z'
	}
	b.WriteString(suffix)
	return b.String()
}

func splitSnake(k string) (prefix string, words []string, suffix string) {
	s := strcase.ToSnake(k)
	core := strings.Trim(s, "_")
	if core == "" {
		return s, nil, ""
	}
	start := strings.Index(s, core)
	prefix, suffix = s[:start], s[start+len(core):]
	for _, w := range strings.Split(core, "_") {
		if w != "" {
			words = append(words, w)
		}
	}
	return prefix, words, suffix
}

func rekey(v any, convert func(string) string) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[convert(k)] = rekey(inner, convert)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = rekey(inner, convert)
		}
		return out
	case []map[string]any:
		out := make([]any, len(val))
		for i, inner := range val {
			out[i] = rekey(inner, convert)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(val))
		for k, inner := range val {
			out[convert(k)] = inner
		}
		return out
	default:
		return v
	}
}

// normalize turns typed values (structs, typed maps and slices) into the
// generic shapes rekey walks. Scalars, strings and raw bytes are returned
// unchanged.
func normalize(v any) (any, error) {
	switch v.(type) {
	case nil, string, []byte, json.RawMessage, bool, float64, int, int64,
		map[string]any, []any:
		return v, nil
	}

	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
