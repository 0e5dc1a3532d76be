package javac

import (
	"bufio"
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"go.trai.ch/javelin/internal/core/domain"
)

var (
	diagnosticLine = regexp.MustCompile(`^(.+\.java):(\d+): (error|warning): (.*)$`)
	detailLine     = regexp.MustCompile(`^\s+(symbol|location|required|found|reason):\s+(.*)$`)
)

// diagnostic is one javac message attributed to a source file.
type diagnostic struct {
	path    string
	problem domain.Problem
}

// parseDiagnostics extracts file-attributed errors and warnings from javac output.
// The echoed source line and caret are skipped; symbol and location details are
// appended to the message.
func parseDiagnostics(out []byte) []diagnostic {
	var diags []diagnostic
	sc := bufio.NewScanner(bytes.NewReader(out))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		text := strings.TrimRight(sc.Text(), "\r")
		if m := diagnosticLine.FindStringSubmatch(text); m != nil {
			n, _ := strconv.Atoi(m[2])
			p := domain.NewError(domain.CategoryCompile, n, m[4])
			if m[3] == "warning" {
				p = domain.NewWarning(domain.CategoryCompile, n, m[4])
			}
			diags = append(diags, diagnostic{path: m[1], problem: p})
			continue
		}
		if len(diags) == 0 {
			continue
		}
		if m := detailLine.FindStringSubmatch(text); m != nil {
			last := &diags[len(diags)-1].problem
			last.Message += "; " + m[1] + ": " + strings.TrimSpace(m[2])
		}
	}
	return diags
}
