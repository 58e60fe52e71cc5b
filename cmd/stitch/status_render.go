package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"stitch/internal/pipeline"
)

const centisecond = 10 * time.Millisecond

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset       = "\x1b[0m"
	statusLineWidth = 16
)

var statusStyles = map[statusKind]struct {
	tag   string
	color string
}{
	statusInfo:  {tag: "INFO", color: "\x1b[34m"},
	statusOK:    {tag: "OK", color: "\x1b[32m"},
	statusWarn:  {tag: "WARN", color: "\x1b[33m"},
	statusError: {tag: "ERROR", color: "\x1b[31m"},
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	line := fmt.Sprintf("  %-*s [%s]", statusLineWidth, label+":", style.tag)
	if message != "" {
		line += " " + message
	}
	if colorize && style.color != "" {
		return style.color + line + ansiReset
	}
	return line
}

func renderSectionHeader(title string, colorize bool) string {
	header := "== " + strings.TrimSpace(title) + " =="
	if colorize {
		return statusStyles[statusInfo].color + header + ansiReset
	}
	return header
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}

// statusPrinter streams pipeline status lines to the terminal, one per
// transition or sampled progress event.
type statusPrinter struct {
	out      io.Writer
	colorize bool
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, colorize: shouldColorize(out)}
}

// Update implements pipeline.StatusSink.
func (p *statusPrinter) Update(state pipeline.State, message string) {
	kind := statusInfo
	switch state {
	case pipeline.StateDone:
		kind = statusOK
	case pipeline.StateFailed:
		kind = statusError
	}
	fmt.Fprintln(p.out, renderStatusLine(state.Label(), kind, message, p.colorize))
}
