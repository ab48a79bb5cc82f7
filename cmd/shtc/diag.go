package main

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headerColor  = color.New(color.Bold)
)

// writeInfoLog copies an info log to w, prefixing each line with path and
// coloring the severity.
func writeInfoLog(w io.Writer, path, log string) error {
	var sb strings.Builder
	for _, line := range strings.Split(strings.TrimRight(log, "\n"), "\n") {
		if line == "" {
			continue
		}
		sb.WriteString(path)
		sb.WriteString(": ")
		switch {
		case strings.HasPrefix(line, "ERROR: "):
			sb.WriteString(errorColor.Sprint("ERROR:"))
			sb.WriteString(line[len("ERROR:"):])
		case strings.HasPrefix(line, "WARNING: "):
			sb.WriteString(warningColor.Sprint("WARNING:"))
			sb.WriteString(line[len("WARNING:"):])
		default:
			sb.WriteString(line)
		}
		sb.WriteByte('\n')
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
