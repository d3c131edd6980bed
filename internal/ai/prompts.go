package ai

import (
	_ "embed"
	"text/template"
)

//go:embed prompts/rewrite.md
var rewritePromptRaw string

// RewriteTemplate is the parsed prompt template for in-place edits.
// Parsed once at package init; reused on every capture.
var RewriteTemplate = template.Must(template.New("rewrite").Parse(rewritePromptRaw))

// RewriteInput feeds RewriteTemplate. Selection empty means the instruction
// applies to the whole document.
type RewriteInput struct {
	Instruction string
	Selection   string
	Document    string
}
