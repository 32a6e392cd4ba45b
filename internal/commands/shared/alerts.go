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

package shared

import (
	"fmt"
	"io"
	"maps"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/tombee/fetchwire/internal/cli/format"
	"github.com/tombee/fetchwire/pkg/fetch"
)

// TerminalAlerts is a fetch.AlertSink that prints alerts as they are shown
// and dismissed. At most one alert is held per context; a new alert for a
// context replaces the old one.
type TerminalAlerts struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool
	title  cases.Caser
	active map[string]fetch.Alert
}

// NewTerminalAlerts returns a sink writing to out. When styled is set
// alerts are colored by type.
func NewTerminalAlerts(out io.Writer, styled bool) *TerminalAlerts {
	return &TerminalAlerts{
		out:    out,
		styled: styled,
		title:  cases.Title(language.English),
		active: make(map[string]fetch.Alert),
	}
}

// DisplayAlert implements fetch.AlertSink.
func (t *TerminalAlerts) DisplayAlert(alert fetch.Alert) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.active[alert.Context] = alert
	fmt.Fprintln(t.out, t.render(alert))
}

// DismissAlert implements fetch.AlertSink. Dismissing a context with no
// alert prints nothing.
func (t *TerminalAlerts) DismissAlert(context string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.active[context]; !ok {
		return
	}
	delete(t.active, context)

	msg := fmt.Sprintf("%s alert cleared", context)
	if t.styled {
		msg = Muted.Render(msg)
	}
	fmt.Fprintln(t.out, msg)
}

// Active returns the alerts currently shown, keyed by context.
func (t *TerminalAlerts) Active() map[string]fetch.Alert {
	t.mu.Lock()
	defer t.mu.Unlock()

	return maps.Clone(t.active)
}

func (t *TerminalAlerts) render(alert fetch.Alert) string {
	label := t.title.String(alert.Type)
	if label == "" {
		label = "Notice"
	}
	text := fmt.Sprintf("%s: %s", label, format.StripANSI(alert.Message))
	if alert.Context != "" {
		text += fmt.Sprintf(" [%s]", format.StripANSI(alert.Context))
	}

	if !t.styled {
		return text
	}
	return renderAlert(alert.Type, text)
}
