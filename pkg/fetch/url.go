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

package fetch

import (
	"fmt"
	"maps"
	"net/url"
	"reflect"
	"regexp"
	"slices"
	"strings"

	fwerrors "github.com/tombee/fetchwire/pkg/errors"
)

// wildcardPattern matches ":name" placeholders. Port numbers never match
// since a name cannot start with a digit.
var wildcardPattern = regexp.MustCompile(`:([A-Za-z_][A-Za-z0-9_]*)`)

// BuildURL substitutes wildcards into raw and appends params as a query
// string. A placeholder with no substitution yields a *errors.WildcardError.
func BuildURL(raw string, wildcards map[string]string, params map[string]any) (string, error) {
	prefix, rest := splitAuthority(raw)

	var missing string
	rest = wildcardPattern.ReplaceAllStringFunc(rest, func(m string) string {
		name := m[1:]
		value, ok := wildcards[name]
		if !ok {
			if missing == "" {
				missing = name
			}
			return m
		}
		return url.PathEscape(value)
	})
	if missing != "" {
		return "", &fwerrors.WildcardError{
			Wildcard:   missing,
			URL:        raw,
			Candidates: slices.Sorted(maps.Keys(wildcards)),
		}
	}

	built := prefix + rest
	if query := encodeParams(params); query != "" {
		sep := "?"
		if strings.Contains(built, "?") {
			sep = "&"
		}
		built += sep + query
	}
	return built, nil
}

// splitAuthority separates "scheme://host[:port]" from the path so that
// userinfo and ports are never read as placeholders.
func splitAuthority(raw string) (string, string) {
	i := strings.Index(raw, "://")
	if i < 0 {
		return "", raw
	}
	slash := strings.IndexByte(raw[i+3:], '/')
	if slash < 0 {
		return raw, ""
	}
	cut := i + 3 + slash
	return raw[:cut], raw[cut:]
}

func encodeParams(params map[string]any) string {
	if len(params) == 0 {
		return ""
	}
	values := make(url.Values, len(params))
	for key, v := range params {
		for _, s := range paramValues(v) {
			values.Add(key, s)
		}
	}
	return values.Encode()
}

// paramValues renders a param value as one or more strings. Nil is
// omitted and slices repeat the key.
func paramValues(v any) []string {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return []string{val}
	case []string:
		return val
	case fmt.Stringer:
		return []string{val.String()}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return []string{string(rv.Bytes())}
		}
		out := make([]string, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out = append(out, paramValues(rv.Index(i).Interface())...)
		}
		return out
	}
	return []string{fmt.Sprint(v)}
}
