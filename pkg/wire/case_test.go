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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSnake_Nested(t *testing.T) {
	in := map[string]any{
		"firstName": "Alan",
		"homeAddress": map[string]any{
			"streetName": "mainStreet",
		},
		"pastJobs": []any{
			map[string]any{"jobTitle": "codeBreaker"},
			"plainString",
			float64(3),
		},
	}

	got := ToSnake(in)

	assert.Equal(t, map[string]any{
		"first_name": "Alan",
		"home_address": map[string]any{
			"street_name": "mainStreet",
		},
		"past_jobs": []any{
			map[string]any{"job_title": "codeBreaker"},
			"plainString",
			float64(3),
		},
	}, got)
}

func TestToCamel_Nested(t *testing.T) {
	in := map[string]any{
		"current_user": map[string]any{"first_name": "Alan"},
		"tags":         []any{"snake_value"},
	}

	assert.Equal(t, map[string]any{
		"currentUser": map[string]any{"firstName": "Alan"},
		"tags":        []any{"snake_value"},
	}, ToCamel(in))
}

func TestCasing_DoesNotMutateInput(t *testing.T) {
	in := map[string]any{"firstName": "Alan"}
	_ = ToSnake(in)
	assert.Equal(t, map[string]any{"firstName": "Alan"}, in)
}

func TestCasing_RoundTripIdempotence(t *testing.T) {
	inputs := []any{
		map[string]any{"firstName": "Alan", "last_name": "Turing"},
		map[string]any{"outer_key": map[string]any{"innerKey": []any{map[string]any{"deepKey": true}}}},
		[]any{map[string]any{"someKey": nil}},
		map[string]any{"_id": 1, "__typename": "User", "a__b": 2, "trailing_": 3},
		map[string]any{"HTTPStatus": 500, "URLPath": "/", "userID": 7, "address1": "x"},
		map[string]any{"a_b_c": 1, "x_1_y": 2, "$ref": "#", "a_$b": 3, "kebab-key": 4},
		map[string]any{},
		"scalar",
		nil,
	}

	for _, x := range inputs {
		assert.Equal(t, ToSnake(x), ToSnake(ToCamel(x)))
		assert.Equal(t, ToCamel(x), ToCamel(ToSnake(x)))
	}
}

func TestCasing_Keys(t *testing.T) {
	tests := []struct {
		in, snake, camel string
	}{
		{in: "_id", snake: "_id", camel: "_id"},
		{in: "__typename", snake: "__typename", camel: "__typename"},
		{in: "HTTPStatus", snake: "http_status", camel: "httpStatus"},
		{in: "URLPath", snake: "url_path", camel: "urlPath"},
		{in: "a__b", snake: "a_b", camel: "aB"},
		{in: "first_name", snake: "first_name", camel: "firstName"},
		{in: "firstName", snake: "first_name", camel: "firstName"},
		{in: "", snake: "", camel: ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.snake, snakeKey(tt.in))
			assert.Equal(t, tt.camel, camelKey(tt.in))
			assert.Equal(t, snakeKey(tt.in), snakeKey(camelKey(tt.in)))
		})
	}
}

func TestCamelType(t *testing.T) {
	tests := map[string]string{
		"authentication.session_expired": "authentication.sessionExpired",
		"authentication.sessionExpired":  "authentication.sessionExpired",
		"record.not_found":               "record.notFound",
		"simple":                         "simple",
	}
	for in, want := range tests {
		assert.Equal(t, want, CamelType(in), in)
	}
}

func TestNormalize_Struct(t *testing.T) {
	type person struct {
		FirstName string `json:"firstName"`
	}

	got, err := normalize(person{FirstName: "Alan"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"firstName": "Alan"}, got)
}
