package app

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/muesli/termenv"
	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/ui/output"
	"go.trai.ch/emmet/internal/ui/style"
)

const (
	usageHint    = "Try 'emmet --help' for more information"
	debugHint    = "For more information regarding the cause of the build failure, run the build again in debug mode."
	bugReportAsk = "Please file a bug report and include the output of this run with --verbose."
)

// Report writes the failure report for err. level decides how much detail is
// included.
func Report(w io.Writer, err error, level domain.Level) {
	if err == nil {
		return
	}
	out := output.New(w)
	causes := visible(domain.Chain(err))

	switch Classify(err) {
	case KindUsage:
		for _, c := range causes {
			_, _ = fmt.Fprintln(out, c.Message)
		}
		_, _ = fmt.Fprintf(out, "\n%s\n", usageHint)
	case KindBuild:
		heading(out, "BUILD FAILED")
		writeCauses(out, causes)
		if level <= domain.LevelDebug {
			writeDetails(out, causes)
		} else {
			_, _ = fmt.Fprintf(out, "\n%s\n", debugHint)
		}
	default:
		heading(out, "INTERNAL ERROR")
		writeCauses(out, causes)
		if level <= domain.LevelVerbose {
			writeDetails(out, causes)
		}
		_, _ = fmt.Fprintf(out, "\n%s\n", bugReportAsk)
	}
}

// visible drops bare taxonomy sentinels unless nothing else is left.
func visible(causes []domain.Cause) []domain.Cause {
	var kept []domain.Cause
	for _, c := range causes {
		if !c.Sentinel {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return causes
	}
	return kept
}

func heading(out *termenv.Output, title string) {
	styled := out.String(style.Cross + " " + title).Bold().Foreground(termenv.RGBColor(string(style.Red)))
	_, _ = fmt.Fprintf(out, "\n%s\n\n", styled)
}

// writeCauses prints each cause indented four spaces deeper than the one it wraps.
func writeCauses(out *termenv.Output, causes []domain.Cause) {
	for depth, c := range causes {
		indent := strings.Repeat("    ", depth)
		for line := range strings.SplitSeq(c.Message, "\n") {
			_, _ = fmt.Fprintf(out, "%s%s\n", indent, line)
		}
	}
}

func writeDetails(out *termenv.Output, causes []domain.Cause) {
	var lines []string
	seen := make(map[string]bool)
	for _, c := range causes {
		for _, key := range slices.Sorted(maps.Keys(c.Metadata)) {
			line := fmt.Sprintf("%s: %v", key, c.Metadata[key])
			if !seen[line] {
				seen[line] = true
				lines = append(lines, line)
			}
		}
	}
	if len(lines) == 0 {
		return
	}
	_, _ = fmt.Fprintf(out, "\n%s\n", out.String("Details:").Bold())
	for _, line := range lines {
		_, _ = fmt.Fprintf(out, "    %s\n", out.String(line).Foreground(termenv.RGBColor(string(style.Slate))))
	}
}
