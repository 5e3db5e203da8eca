package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/mvp-joe/doclint/internal/diag"
)

type palette struct {
	pos, rule, failure *color.Color
	severity           map[diag.Severity]*color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		pos:     color.New(color.Bold),
		rule:    color.New(color.Faint),
		failure: color.New(color.FgRed, color.Bold),
		severity: map[diag.Severity]*color.Color{
			diag.SevInfo:    color.New(color.FgCyan),
			diag.SevWarning: color.New(color.FgYellow),
			diag.SevError:   color.New(color.FgRed, color.Bold),
		},
	}
	all := []*color.Color{p.pos, p.rule, p.failure}
	for _, c := range p.severity {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Text writes one line per diagnostic in report order,
//
//	path:line:col: severity: message [rule]
//
// then the failed files and a summary line.
func Text(w io.Writer, report *diag.Report, opts TextOpts) error {
	p := newPalette(opts.Color)
	for _, d := range report.Diagnostics() {
		sev := p.severity[d.Severity]
		if sev == nil {
			sev = p.rule
		}
		if _, err := fmt.Fprintf(w, "%s: %s: %s %s\n",
			p.pos.Sprint(d.Pos), sev.Sprint(d.Severity), d.Message, p.rule.Sprintf("[%s]", d.Rule)); err != nil {
			return err
		}
	}
	for _, f := range report.Failures {
		if _, err := fmt.Fprintf(w, "%s: %s %v\n", p.pos.Sprint(f.Path), p.failure.Sprint("failed:"), f.Err); err != nil {
			return err
		}
	}

	if opts.Quiet && len(report.Diagnostics()) == 0 && !report.Failed() {
		return nil
	}
	_, err := fmt.Fprintln(w, Summary(report))
	return err
}

// Summary describes the report in one line, e.g.
// "3 problems (1 error, 2 warnings) in 4 files".
func Summary(report *diag.Report) string {
	counts := map[diag.Severity]int{}
	total := 0
	for _, d := range report.Diagnostics() {
		counts[d.Severity]++
		total++
	}

	var b strings.Builder
	if total == 0 {
		b.WriteString("no problems")
	} else {
		b.WriteString(plural(total, "problem"))
		var parts []string
		for _, sev := range []diag.Severity{diag.SevError, diag.SevWarning, diag.SevInfo} {
			if n := counts[sev]; n > 0 {
				if sev == diag.SevInfo {
					parts = append(parts, fmt.Sprintf("%d info", n))
				} else {
					parts = append(parts, plural(n, sev.String()))
				}
			}
		}
		fmt.Fprintf(&b, " (%s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, " in %s", plural(len(report.Files)+len(report.Failures), "file"))
	if n := len(report.Failures); n > 0 {
		fmt.Fprintf(&b, ", %d failed", n)
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
