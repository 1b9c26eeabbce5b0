package sfz

import "strings"

// Directive is the header a line opens with.
type Directive int

const (
	// DirectiveNone marks lines the reader ignores, including headers it
	// does not support such as <control>, <global> or #define.
	DirectiveNone Directive = iota
	DirectiveGroup
	DirectiveRegion
)

const (
	groupTag  = "<group>"
	regionTag = "<region>"
)

func (d Directive) String() string {
	switch d {
	case DirectiveGroup:
		return "group"
	case DirectiveRegion:
		return "region"
	}
	return "none"
}

// Classify reports which directive line starts with and returns the text
// after the tag. Tags only match at the start of the line.
func Classify(line string) (Directive, string) {
	if rest, ok := strings.CutPrefix(line, groupTag); ok {
		return DirectiveGroup, rest
	}
	if rest, ok := strings.CutPrefix(line, regionTag); ok {
		return DirectiveRegion, rest
	}
	return DirectiveNone, ""
}
