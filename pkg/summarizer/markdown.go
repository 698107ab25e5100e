package summarizer

import (
	"fmt"
	"strings"
)

// MarkdownOption configures a MarkdownFormatter.
type MarkdownOption func(*MarkdownFormatter)

// WithTranslator sets the function used to translate headings and labels.
func WithTranslator(t func(string) string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.t = t
	}
}

// WithVersion adds the tool version to the footer.
func WithVersion(version string) MarkdownOption {
	return func(f *MarkdownFormatter) {
		f.version = version
	}
}

// MarkdownFormatter renders a Summary as a Markdown document.
type MarkdownFormatter struct {
	t       func(string) string
	version string
}

// NewMarkdownFormatter creates a MarkdownFormatter.
func NewMarkdownFormatter(opts ...MarkdownOption) *MarkdownFormatter {
	f := &MarkdownFormatter{
		t: func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format implements the Formatter interface.
func (f *MarkdownFormatter) Format(s *Summary) string {
	t := f.t
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", t("Decode Summary"))

	fmt.Fprintf(&b, "## %s\n\n", t("Settings"))
	fmt.Fprintf(&b, "| %s | %s |\n|---|---|\n", t("Item"), t("Value"))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Backend"), s.Settings.Backend)
	fmt.Fprintf(&b, "| %s | %s |\n", t("Strict"), yesNo(t, s.Settings.Strict))
	fmt.Fprintf(&b, "| %s | %s |\n", t("Output Format"), s.Settings.OutputFormat)
	fmt.Fprintf(&b, "| %s | %d |\n\n", t("Workers"), s.Settings.Workers)

	fmt.Fprintf(&b, "## %s\n\n", t("Tiles"))
	fmt.Fprintf(&b, "%s: %d / %s: %d\n\n", t("Total"), len(s.Tiles), t("Failed"), s.Failures())
	if len(s.Tiles) > 0 {
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n", t("Name"), t("Backend"), t("Size"), t("Format"), t("Time"), t("Result"))
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, tile := range s.Tiles {
			if tile.Failed() {
				fmt.Fprintf(&b, "| %s | %s | - | - | %d ms | %s: %s |\n",
					tile.Name, dash(tile.Backend), tile.ElapsedMs, t("Error"), escape(tile.Error))
				continue
			}
			fmt.Fprintf(&b, "| %s | %s | %dx%d | %s %d-bit | %d ms | %s |\n",
				tile.Name, tile.Backend, tile.Width, tile.Height, tile.Chroma, tile.BitDepth, tile.ElapsedMs, tile.Output)
		}
		b.WriteString("\n")
	}

	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "%s: %s", t("Generated"), s.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	if f.version != "" {
		fmt.Fprintf(&b, " (heiftile %s)", f.version)
	}
	b.WriteString("\n")

	return b.String()
}

func yesNo(t func(string) string, v bool) string {
	if v {
		return t("Yes")
	}
	return t("No")
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// escape keeps error text from breaking the table.
func escape(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}
