package diagnostics

import (
	"fmt"
	"strings"
)

// RenderText formats diagnostics with a Clang-style caret pointing at
// the offending column (spec §6.2: "Clang-style and rich renderers").
func RenderText(file, source string, diags []*Diagnostic) string {
	var sb strings.Builder
	lines := strings.Split(source, "\n")

	for _, d := range diags {
		fmt.Fprintf(&sb, "%s:%d:%d: %s: [%s] %s\n",
			file, d.Primary.Start.Line, d.Primary.Start.Column, d.Severity, d.Code, d.Message)

		if line := sourceLine(lines, d.Primary.Start.Line); line != "" {
			lineNum := fmt.Sprintf("%4d | ", d.Primary.Start.Line)
			sb.WriteString(lineNum)
			sb.WriteString(line)
			sb.WriteString("\n")
			sb.WriteString(strings.Repeat(" ", len(lineNum)+d.Primary.Start.Column-1))
			sb.WriteString("^\n")
		}

		if c, ok := d.Detail.(InterfaceMismatch); ok {
			for _, child := range interfaceMismatchChildren(c) {
				fmt.Fprintf(&sb, "    - %s\n", child)
			}
		}
		if c, ok := d.Detail.(RecursiveCycle); ok {
			fmt.Fprintf(&sb, "    cycle: %s\n", strings.Join(c.Path, " -> "))
		}
	}
	return sb.String()
}

// RenderCombined formats a Combined diagnostic as its parent followed
// by an indented line per child.
func RenderCombined(file, source string, combined *Combined) string {
	var sb strings.Builder
	sb.WriteString(RenderText(file, source, []*Diagnostic{combined.Parent}))
	for _, child := range combined.Children {
		fmt.Fprintf(&sb, "  %s:%d:%d: %s: [%s] %s\n",
			file, child.Primary.Start.Line, child.Primary.Start.Column, child.Severity, child.Code, child.Message)
	}
	return sb.String()
}

func sourceLine(lines []string, n int) string {
	if n < 1 || n > len(lines) {
		return ""
	}
	return lines[n-1]
}

func interfaceMismatchChildren(m InterfaceMismatch) []string {
	var out []string
	if m.ReturnType {
		out = append(out, fmt.Sprintf("%s: return type does not match the interface", m.Method))
	}
	if m.ParameterName {
		out = append(out, fmt.Sprintf("%s: parameter name does not match the interface", m.Method))
	}
	if m.ParameterType {
		out = append(out, fmt.Sprintf("%s: parameter type does not match the interface", m.Method))
	}
	if m.DeclaredType {
		out = append(out, fmt.Sprintf("%s: declared on a type that does not implement the interface", m.Method))
	}
	return out
}
