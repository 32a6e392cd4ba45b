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

package alert

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/fetchwire/internal/testing/mock"
	"github.com/tombee/fetchwire/pkg/fetch"
	"github.com/tombee/fetchwire/pkg/response"
)

func run(t *testing.T, reply mock.Reply, directives ...Directive) (*mock.AlertSink, *response.Response) {
	t.Helper()

	mw, err := New(directives...)
	require.NoError(t, err)

	sink := &mock.AlertSink{}
	transport := mock.NewTransport(reply)
	composed := fetch.Compose(transport.Perform, fetch.Env{Alerts: sink}, mw)

	resp, _ := composed(context.Background(), "/x", fetch.Options{})
	return sink, resp
}

func TestAlert_FirstMatchWins(t *testing.T) {
	x := fetch.Alert{Message: "X", Type: "success", Context: "form"}
	y := fetch.Alert{Message: "Y", Type: "success", Context: "form"}

	sink, _ := run(t, mock.Success(nil),
		Directive{Match: Match{Status: response.StatusSuccess}, Display: &x},
		Directive{Match: Match{Status: response.StatusSuccess}, Display: &y},
	)

	assert.Equal(t, []fetch.Alert{x}, sink.Displayed())
	assert.Empty(t, sink.Dismissed())
}

func TestAlert_SkipsNonMatching(t *testing.T) {
	y := fetch.Alert{Message: "Y"}

	sink, _ := run(t, mock.Failure("record.notFound", "missing"),
		Directive{Match: Match{Status: response.StatusSuccess}, Dismiss: "form"},
		Directive{Match: Match{ErrorType: "record.notFound"}, Display: &y},
	)

	assert.Equal(t, []fetch.Alert{y}, sink.Displayed())
	assert.Empty(t, sink.Dismissed())
}

func TestAlert_Dismiss(t *testing.T) {
	sink, _ := run(t, mock.Success(nil),
		Directive{Match: Match{Status: response.StatusSuccess}, Dismiss: "form"},
	)

	assert.Equal(t, []string{"form"}, sink.Dismissed())
	assert.Empty(t, sink.Displayed())
}

func TestAlert_NoMatchNoEffect(t *testing.T) {
	sink, _ := run(t, mock.Success(nil),
		Directive{Match: Match{Status: response.StatusFailure}, Dismiss: "form"},
	)

	assert.Empty(t, sink.Events())
}

func TestAlert_DoesNotModifyResponse(t *testing.T) {
	reply := mock.Success(map[string]any{"a": 1})
	before := *reply.Response

	_, resp := run(t, reply,
		Directive{Match: Match{Status: response.StatusSuccess}, Dismiss: "form"},
	)

	assert.Same(t, reply.Response, resp)
	assert.Equal(t, before, *resp)
}

func TestAlert_SkipsAlertedResponses(t *testing.T) {
	reply := mock.Failure("authentication.sessionExpired", "expired")
	reply.Response.Meta.Alerted = true

	sink, _ := run(t, reply,
		Directive{Match: Match{ErrorType: "authentication.sessionExpired"}, Dismiss: "ctx"},
	)

	assert.Empty(t, sink.Events())
}

func TestAlert_SkipsUnsettled(t *testing.T) {
	loading := response.WithError(&response.APIError{Type: "record.invalid", Message: "bad"},
		response.WithStatus(response.StatusLoading, nil))
	sink, _ := run(t, mock.Reply{Response: loading},
		Directive{Match: Match{ErrorType: "record.invalid"}, Dismiss: "form"},
	)

	assert.Empty(t, sink.Events())
}

func TestAlert_When(t *testing.T) {
	notFound := mock.Failure("record.notFound", "missing")
	notFound.Response.Meta.HTTPStatus = 404

	first := fetch.Alert{Message: "gone"}
	second := fetch.Alert{Message: "other"}

	sink, _ := run(t, notFound,
		Directive{Match: Match{ErrorType: "record.notFound", When: "httpStatus == 410"}, Display: &first},
		Directive{Match: Match{ErrorType: "record.notFound", When: `httpStatus == 404 && message == "missing"`}, Display: &second},
	)

	assert.Equal(t, []fetch.Alert{second}, sink.Displayed())
}

func TestAlert_WhenOverData(t *testing.T) {
	shown := fetch.Alert{Message: "saved draft"}

	sink, _ := run(t, mock.Success(map[string]any{"draft": true}),
		Directive{Match: Match{Status: response.StatusSuccess, When: "data.draft == true"}, Display: &shown},
	)

	assert.Equal(t, []fetch.Alert{shown}, sink.Displayed())
}

func TestNew_Validation(t *testing.T) {
	display := &fetch.Alert{Message: "m"}

	tests := []struct {
		name      string
		directive Directive
	}{
		{"no match", Directive{Display: display}},
		{"both matches", Directive{Match: Match{Status: response.StatusSuccess, ErrorType: "x"}, Display: display}},
		{"unknown status", Directive{Match: Match{Status: "done"}, Display: display}},
		{"loading status", Directive{Match: Match{Status: response.StatusLoading}, Display: display}},
		{"uninitialized status", Directive{Match: Match{Status: response.StatusUninitialized}, Display: display}},
		{"unknown-state status", Directive{Match: Match{Status: response.StatusUnknown}, Display: display}},
		{"no action", Directive{Match: Match{Status: response.StatusSuccess}}},
		{"both actions", Directive{Match: Match{Status: response.StatusSuccess}, Display: display, Dismiss: "c"}},
		{"display without message", Directive{Match: Match{Status: response.StatusSuccess}, Display: &fetch.Alert{}}},
		{"bad when", Directive{Match: Match{Status: response.StatusSuccess, When: "status =="}, Dismiss: "c"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.directive)
			assert.Error(t, err)
		})
	}
}
