package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/bcforge/pkg/checkpoint"
	"github.com/arthur-debert/bcforge/pkg/errors"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"
)

// RenderStatus writes the stage flags in format. FormatAuto must already be
// resolved.
func RenderStatus(w io.Writer, p checkpoint.Progress, format Format) error {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode status")
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case FormatYAML:
		data, err := yaml.Marshal(p)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode status")
		}
		_, err = w.Write(data)
		return err
	}

	styled := format == FormatTerminal
	if styled {
		pterm.EnableStyling()
	} else {
		pterm.DisableStyling()
	}

	data := pterm.TableData{{"Stage", "Status"}}
	for _, stage := range checkpoint.Stages() {
		state := "pending"
		style := GetStyle("Pending")
		if p.Done(stage) {
			state = "done"
			style = GetStyle("Done")
		}
		if styled {
			state = style.Render(state)
		}
		data = append(data, []string{string(stage), state})
	}

	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render status table")
	}
	_, err = fmt.Fprintln(w, table)
	return err
}

// FormatError renders err for the terminal: the message in the error style,
// then any details sorted by key. Plain output is returned when styled is
// false.
func FormatError(err error, styled bool) string {
	render := func(style, s string) string {
		if !styled {
			return s
		}
		return GetStyle(style).Render(s)
	}

	var b strings.Builder
	b.WriteString(render("Error", "Error: "+err.Error()))

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString("\n")
		line := fmt.Sprintf("%s: %v", k, details[k])
		if !styled {
			line = "  " + line
		}
		b.WriteString(render("Detail", line))
	}
	return b.String()
}
