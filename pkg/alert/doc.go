/*
Package alert shows or dismisses user-facing alerts based on how a request
settled.

A Directive pairs a Match with exactly one action. Directives are evaluated
in declaration order and only the first match fires:

	mw, err := alert.New(
		alert.Directive{
			Match:   alert.Match{Status: response.StatusSuccess},
			Dismiss: "form",
		},
		alert.Directive{
			Match:   alert.Match{ErrorType: "record.notFound", When: `httpStatus == 404`},
			Display: &fetch.Alert{Message: "Not found", Type: "error", Context: "form"},
		},
	)

Directives can also be read from YAML:

	alerts:
	  - match: {status: success}
	    dismiss: form
	  - match:
	      error_type: record.notFound
	      when: httpStatus == 404
	    display:
	      message: Not found
	      type: error
	      context: form

The optional When expression is evaluated with expr
(https://expr-lang.org) against status, errorType, message, data and
httpStatus, and must return a boolean.

Responses already marked alerted by an inner layer are skipped.
*/
package alert
