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
	fwerrors "github.com/tombee/fetchwire/pkg/errors"
	"github.com/tombee/fetchwire/pkg/response"
)

// Envelope is the parsed shape of a reply payload. It is one of Success,
// Failure, Ambiguous or Unrecognized.
type Envelope interface {
	envelope()
}

// Success is {"ok": true, "data": ...}.
type Success struct {
	Data any
}

// Failure is {"ok": false, "error": ..., "data"?: ...}.
type Failure struct {
	Error   any
	Data    any
	HasData bool
}

// Ambiguous carries both success and failure indicators, or a failure
// flag with data and no error.
type Ambiguous struct {
	Reason string
}

// Unrecognized is anything without a boolean "ok" and a data or error key.
type Unrecognized struct{}

func (Success) envelope()      {}
func (Failure) envelope()      {}
func (Ambiguous) envelope()    {}
func (Unrecognized) envelope() {}

// ParseEnvelope classifies a decoded payload. A key holding JSON null is
// treated as absent.
func ParseEnvelope(payload any) Envelope {
	obj, ok := payload.(map[string]any)
	if !ok {
		return Unrecognized{}
	}
	flag, ok := obj["ok"].(bool)
	if !ok {
		return Unrecognized{}
	}

	data, hasData := present(obj, "data")
	errVal, hasError := present(obj, "error")

	switch {
	case flag && hasError:
		return Ambiguous{Reason: `envelope has "ok": true and an error`}
	case flag && hasData:
		return Success{Data: data}
	case !flag && hasError:
		return Failure{Error: errVal, Data: data, HasData: hasData}
	case !flag && hasData:
		return Ambiguous{Reason: `envelope has "ok": false and data but no error`}
	default:
		return Unrecognized{}
	}
}

func present(obj map[string]any, key string) (any, bool) {
	v, ok := obj[key]
	return v, ok && v != nil
}

// ExtractError converts a raw envelope error into an APIError. Anything
// other than an object with string "type" and "message" fields is wrapped
// as a client error carrying the raw value.
func ExtractError(raw any) *response.APIError {
	obj, ok := raw.(map[string]any)
	if !ok {
		return malformed(raw)
	}
	typ, typOK := obj["type"].(string)
	msg, msgOK := obj["message"].(string)
	if !typOK || !msgOK {
		return malformed(raw)
	}

	return &response.APIError{
		Type:    CamelType(typ),
		Message: msg,
		Data:    ToCamel(obj["data"]),
	}
}

func malformed(raw any) *response.APIError {
	return &response.APIError{
		Type:    fwerrors.TypeClient,
		Message: "malformed error payload",
		Data:    raw,
	}
}
