package compiler

import (
	"fmt"
	"strings"

	"github.com/gogpu/translator/essl"
	"github.com/gogpu/translator/ir"
)

// infoLog collects the diagnostics of one compile in the GLSL compiler
// info log format.
type infoLog struct {
	sb     strings.Builder
	errors int
}

func (l *infoLog) reset() {
	l.sb.Reset()
	l.errors = 0
}

// errorf adds "ERROR: 0:<line>: <message>".
func (l *infoLog) errorf(pos ir.Pos, format string, args ...any) {
	l.errors++
	fmt.Fprintf(&l.sb, "ERROR: 0:%d: %s\n", pos.Line, fmt.Sprintf(format, args...))
}

func (l *infoLog) addDiagnostics(diags essl.SourceErrors) {
	for _, d := range diags {
		if d.Severity == essl.SeverityError {
			l.errors++
		}
		l.sb.WriteString(d.InfoLogLine())
		l.sb.WriteByte('\n')
	}
}

// addError adds a diagnostic without a source line.
func (l *infoLog) addError(err error) {
	l.errors++
	fmt.Fprintf(&l.sb, "ERROR: %v\n", err)
}

// write appends raw text, such as a tree dump.
func (l *infoLog) write(s string) {
	l.sb.WriteString(s)
	if !strings.HasSuffix(s, "\n") {
		l.sb.WriteByte('\n')
	}
}

func (l *infoLog) String() string { return l.sb.String() }
