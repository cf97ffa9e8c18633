package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"actled/internal/preflight"
)

// tone classifies a status line or check result.
type tone int

const (
	toneInfo tone = iota
	toneOK
	toneWarn
	toneFail
)

const ansiReset = "\x1b[0m"

var toneStyles = map[tone]struct{ label, color string }{
	toneInfo: {"INFO", "\x1b[34m"},
	toneOK:   {"OK", "\x1b[32m"},
	toneWarn: {"WARN", "\x1b[33m"},
	toneFail: {"FAIL", "\x1b[31m"},
}

const labelWidth = 14

// printer writes the status and check reports, colouring them only when the
// destination is a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func newPrinter(w io.Writer) printer {
	return printer{w: w, color: shouldColorize(w)}
}

func (p printer) paint(t tone, s string) string {
	if !p.color {
		return s
	}
	return toneStyles[t].color + s + ansiReset
}

// header writes a title-cased section title and its rule.
func (p printer) header(title string) {
	line := fmt.Sprintf("== %s ==", titleCase(strings.TrimSpace(title)))
	rule := strings.Repeat("-", len(line))
	fmt.Fprintln(p.w, p.paint(toneInfo, line))
	fmt.Fprintln(p.w, p.paint(toneInfo, rule))
}

// line writes "  Label:  [TONE] message".
func (p printer) line(label string, t tone, message string) {
	entry := fmt.Sprintf("  %-*s [%s]", labelWidth, label+":", toneStyles[t].label)
	if message != "" {
		entry += " " + message
	}
	fmt.Fprintln(p.w, p.paint(t, entry))
}

// checks writes preflight results as a table and returns how many failed.
func (p printer) checks(results []preflight.Result) int {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Status", Align: text.AlignCenter, AlignHeader: text.AlignCenter},
	})

	failed := 0
	for _, r := range results {
		t := toneOK
		if !r.Passed {
			t = toneFail
			failed++
		}
		tw.AppendRow(table.Row{r.Name, p.paint(t, toneStyles[t].label), r.Detail})
	}
	fmt.Fprintln(p.w, tw.Render())
	return failed
}

func titleCase(value string) string {
	return cases.Title(language.Und).String(value)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
