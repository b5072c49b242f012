// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ux renders selectorlint diagnostics in the terminal.
//
// A Printer writes to any io.Writer at one of three levels. LevelFull uses
// the lipgloss palette below, LevelMinimal keeps icons and layout but no
// escape codes, and LevelMachine prints one parseable line per record.
package ux

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/muesli/termenv"
)

// Color palette. Deep ocean teals with standard semantic colors.
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7")
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E")
	ColorSlate       = lipgloss.Color("#2C4A54")

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorInfo    = lipgloss.Color("#20B9B4")
	ColorMuted   = lipgloss.Color("#2C4A54")
)

// Icon provides themed status icons
type Icon string

const (
	IconSuccess Icon = "✓"
	IconWarning Icon = "⚠"
	IconError   Icon = "✗"
	IconInfo    Icon = "•"
	IconArrow   Icon = "→"
)

// Styles holds the lipgloss styles bound to one renderer.
type Styles struct {
	Title     lipgloss.Style
	Bold      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Info      lipgloss.Style
	Highlight lipgloss.Style
	Location  lipgloss.Style
	Box       lipgloss.Style
}

// NewStyles builds the palette styles on r.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:     r.NewStyle().Bold(true).Foreground(ColorTealBright),
		Bold:      r.NewStyle().Bold(true),
		Muted:     r.NewStyle().Foreground(ColorMuted),
		Success:   r.NewStyle().Foreground(ColorSuccess),
		Warning:   r.NewStyle().Foreground(ColorWarning),
		Error:     r.NewStyle().Foreground(ColorError),
		Info:      r.NewStyle().Foreground(ColorInfo),
		Highlight: r.NewStyle().Foreground(ColorTealBright).Bold(true),
		Location:  r.NewStyle().Foreground(ColorTealPrimary).Underline(true),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorTealDeep).
			Padding(0, 1),
	}
}

// Diagnostic is one reported offense, flattened for display.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity string
	Rule     string
	Message  string
	Fixable  bool
}

// Summary is the closing line of a check run.
type Summary struct {
	Files     int
	Issues    int
	Fixable   int
	Corrected int
}

// Printer writes styled output to a writer.
//
// Thread Safety: Not safe for concurrent use. Serialize calls per writer.
type Printer struct {
	w      io.Writer
	level  Level
	r      *lipgloss.Renderer
	styles Styles
}

// NewPrinter creates a Printer for w at level.
//
// Description:
//
//	LevelFull lets lipgloss detect the color profile of w. The other
//	levels force the ASCII profile so no escape codes are written.
func NewPrinter(w io.Writer, level Level) *Printer {
	r := lipgloss.NewRenderer(w)
	if level != LevelFull {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{w: w, level: level, r: r, styles: NewStyles(r)}
}

// Level returns the printer's output level.
func (p *Printer) Level() Level {
	return p.level
}

// Writer returns the underlying writer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// severityStyle maps a severity name to its icon and style.
func (p *Printer) severityStyle(severity string) (Icon, lipgloss.Style) {
	switch severity {
	case "error":
		return IconError, p.styles.Error
	case "warning":
		return IconWarning, p.styles.Warning
	default:
		return IconInfo, p.styles.Info
	}
}

// Diagnostic prints one offense.
//
// Machine lines look like "spec/a_spec.rb:3:7: warning: ChainedFind: msg".
func (p *Printer) Diagnostic(d Diagnostic) {
	loc := fmt.Sprintf("%s:%d:%d", d.File, d.Line, d.Column)
	if p.level == LevelMachine {
		fmt.Fprintf(p.w, "%s: %s: %s: %s\n", loc, d.Severity, d.Rule, d.Message)
		return
	}

	icon, style := p.severityStyle(d.Severity)
	line := fmt.Sprintf("%s %s %s %s",
		style.Render(string(icon)),
		p.styles.Location.Render(loc),
		p.styles.Bold.Render(d.Rule),
		d.Message,
	)
	if d.Fixable {
		line += " " + p.styles.Muted.Render("(fixable)")
	}
	fmt.Fprintln(p.w, line)
}

// Success prints a success message with checkmark
func (p *Printer) Success(text string) {
	p.notice("OK", IconSuccess, p.styles.Success, text)
}

// Warning prints a warning message
func (p *Printer) Warning(text string) {
	p.notice("WARN", IconWarning, p.styles.Warning, text)
}

// Error prints an error message
func (p *Printer) Error(text string) {
	p.notice("ERROR", IconError, p.styles.Error, text)
}

func (p *Printer) notice(tag string, icon Icon, style lipgloss.Style, text string) {
	switch p.level {
	case LevelMachine:
		fmt.Fprintf(p.w, "%s: %s\n", tag, text)
	case LevelMinimal:
		fmt.Fprintf(p.w, "%s %s\n", icon, text)
	default:
		fmt.Fprintf(p.w, "%s %s\n", style.Render(string(icon)), style.Render(text))
	}
}

// Summary prints the totals of a run.
func (p *Printer) Summary(s Summary) {
	if p.level == LevelMachine {
		fmt.Fprintf(p.w, "SUMMARY: files=%d issues=%d fixable=%d corrected=%d\n",
			s.Files, s.Issues, s.Fixable, s.Corrected)
		return
	}

	issues := p.styles.Success
	if s.Issues > 0 {
		issues = p.styles.Warning
	}
	line := fmt.Sprintf("%s %s  %s %s",
		p.styles.Bold.Render(strconv.Itoa(s.Files)), p.styles.Muted.Render(plural(s.Files, "file", "files")+" inspected"),
		issues.Render(strconv.Itoa(s.Issues)), p.styles.Muted.Render(plural(s.Issues, "offense", "offenses")),
	)
	if s.Fixable > 0 {
		line += fmt.Sprintf("  %s %s", p.styles.Highlight.Render(strconv.Itoa(s.Fixable)), p.styles.Muted.Render("fixable"))
	}
	if s.Corrected > 0 {
		line += fmt.Sprintf("  %s %s", p.styles.Success.Render(strconv.Itoa(s.Corrected)), p.styles.Muted.Render("corrected"))
	}
	fmt.Fprintln(p.w, "\n"+line)
}

// Diff prints a unified diff, coloring added and removed lines.
func (p *Printer) Diff(diff []byte) {
	if len(diff) == 0 {
		return
	}
	if p.level != LevelFull {
		_, _ = p.w.Write(diff)
		return
	}

	sc := bufio.NewScanner(bytes.NewReader(diff))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			line = p.styles.Bold.Render(line)
		case strings.HasPrefix(line, "@@"):
			line = p.styles.Title.Render(line)
		case strings.HasPrefix(line, "+"):
			line = p.styles.Success.Render(line)
		case strings.HasPrefix(line, "-"):
			line = p.styles.Error.Render(line)
		case strings.HasPrefix(line, "\\"):
			line = p.styles.Muted.Render(line)
		}
		fmt.Fprintln(p.w, line)
	}
}

// Table prints rows under headers.
//
// Machine output is tab separated with no header row.
func (p *Printer) Table(headers []string, rows [][]string) {
	if p.level == LevelMachine {
		for _, row := range rows {
			for i, cell := range row {
				if i > 0 {
					io.WriteString(p.w, "\t")
				}
				io.WriteString(p.w, cell)
			}
			io.WriteString(p.w, "\n")
		}
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(p.styles.Muted).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.Title.Padding(0, 1)
			}
			return p.r.NewStyle().Padding(0, 1)
		})
	fmt.Fprintln(p.w, t.Render())
}

// Box prints text in a rounded box
func (p *Printer) Box(title, content string) {
	if p.level == LevelMachine {
		fmt.Fprintf(p.w, "%s: %s\n", title, content)
		return
	}
	fmt.Fprintln(p.w, p.styles.Box.Render(p.styles.Title.Render(title)+"\n"+content))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
