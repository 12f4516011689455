package app

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"go.trai.ch/emmet/internal/core/domain"
	"go.trai.ch/emmet/internal/ui/style"
)

// WriteProjectHelp prints the project description, its default target and
// its targets. Targets with a description are main targets, the others are
// sub targets.
func WriteProjectHelp(w io.Writer, project *domain.Project) error {
	var b strings.Builder

	if project.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", project.Description)
	}

	targets := project.Targets()
	slices.SortFunc(targets, func(x, y *domain.Target) int {
		return strings.Compare(x.Name, y.Name)
	})

	width := 0
	var main, sub []*domain.Target
	for _, t := range targets {
		width = max(width, len(t.Name))
		if t.Description != "" {
			main = append(main, t)
		} else {
			sub = append(sub, t)
		}
	}

	if project.Default != "" {
		fmt.Fprintf(&b, "%s\n\n", style.Heading.Render("Default Target:"))
		t, ok := project.Target(project.Default)
		if ok {
			writeTargetLine(&b, t, width)
		} else {
			fmt.Fprintf(&b, " %s\n", project.Default)
		}
		b.WriteString("\n")
	}

	if len(main) > 0 {
		fmt.Fprintf(&b, "%s\n\n", style.Heading.Render("Main Targets:"))
		for _, t := range main {
			writeTargetLine(&b, t, width)
		}
		b.WriteString("\n")
	}

	if len(sub) > 0 {
		fmt.Fprintf(&b, "%s\n\n", style.Heading.Render("Sub Targets:"))
		for _, t := range sub {
			writeTargetLine(&b, t, width)
		}
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeTargetLine(b *strings.Builder, t *domain.Target, width int) {
	if t.Description == "" {
		fmt.Fprintf(b, " %s\n", t.Name)
		return
	}
	fmt.Fprintf(b, " %-*s  %s\n", width, t.Name, style.Muted.Render(t.Description))
}

// WriteFrameworks lists the configured frameworks, marking the default one.
func WriteFrameworks(w io.Writer, settings *domain.Settings) error {
	if len(settings.Frameworks) == 0 {
		_, err := io.WriteString(w, "There are no frameworks configured.\n")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", style.Heading.Render("Frameworks:"))

	width := 0
	for _, fw := range settings.Frameworks {
		width = max(width, len(fw.Name))
	}
	for _, fw := range settings.Frameworks {
		marker := " "
		if fw.Name == settings.DefaultFramework {
			marker = style.Dot
		}
		line := fmt.Sprintf(" %s %-*s", marker, width, fw.Name)
		if fw.Description != "" {
			line += "  " + style.Muted.Render(fw.Description)
		}
		b.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	if settings.DefaultFramework != "" {
		fmt.Fprintf(&b, "\n%s default\n", style.Dot)
	}

	_, err := io.WriteString(w, b.String())
	return err
}
