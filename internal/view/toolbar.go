package view

import (
	"fmt"
	"strings"
)

// Syntax is a markdown construct the editor toolbar can insert.
type Syntax string

const (
	SyntaxBold          Syntax = "bold"
	SyntaxItalic        Syntax = "italic"
	SyntaxStrikethrough Syntax = "strikethrough"
	SyntaxH1            Syntax = "h1"
	SyntaxH2            Syntax = "h2"
	SyntaxH3            Syntax = "h3"
	SyntaxQuote         Syntax = "quote"
	SyntaxBulletList    Syntax = "ul"
	SyntaxNumberedList  Syntax = "ol"
	SyntaxLink          Syntax = "link"
	SyntaxImage         Syntax = "image"
	SyntaxTable         Syntax = "table"
	SyntaxRule          Syntax = "hr"
	SyntaxCodeBlock     Syntax = "code"
)

// Toolbar lists the syntaxes in the order the editor shows them.
var Toolbar = []struct {
	Syntax Syntax
	Label  string
}{
	{SyntaxBold, "B"},
	{SyntaxItalic, "I"},
	{SyntaxStrikethrough, "S"},
	{SyntaxH1, "H1"},
	{SyntaxH2, "H2"},
	{SyntaxH3, "H3"},
	{SyntaxQuote, "Quote"},
	{SyntaxBulletList, "List"},
	{SyntaxNumberedList, "1. List"},
	{SyntaxLink, "Link"},
	{SyntaxImage, "Image"},
	{SyntaxTable, "Table"},
	{SyntaxRule, "HR"},
	{SyntaxCodeBlock, "Code"},
}

// Selection is a range of the editor body in characters (runes), the way a
// textarea reports selectionStart and selectionEnd.
type Selection struct {
	Start int
	End   int
}

func (s Selection) clamp(n int) Selection {
	s.Start = min(max(s.Start, 0), n)
	s.End = min(max(s.End, 0), n)
	if s.End < s.Start {
		s.Start, s.End = s.End, s.Start
	}
	return s
}

var wraps = map[Syntax]struct{ marker, placeholder string }{
	SyntaxBold:          {"**", "bold text"},
	SyntaxItalic:        {"*", "italic text"},
	SyntaxStrikethrough: {"~~", "strikethrough text"},
}

var prefixes = map[Syntax]string{
	SyntaxH1:    "# ",
	SyntaxH2:    "## ",
	SyntaxH3:    "### ",
	SyntaxQuote: "> ",
}

var templates = map[Syntax]string{
	SyntaxTable:     "\n| Column 1 | Column 2 |\n| -------- | -------- |\n| Cell     | Cell     |\n",
	SyntaxRule:      "\n---\n",
	SyntaxCodeBlock: "\n```\ncode\n```\n",
}

// InsertMarkdown applies syntax to body at sel and returns the new body and the
// cursor position just after the inserted content. Unknown syntaxes leave the
// body untouched. Line endings are normalized to \n first, since a textarea
// submits \r\n but counts each line break as one character in its selection.
func InsertMarkdown(body string, syntax Syntax, sel Selection) (string, int) {
	runes := []rune(strings.ReplaceAll(body, "\r\n", "\n"))
	sel = sel.clamp(len(runes))
	before, selected, after := string(runes[:sel.Start]), string(runes[sel.Start:sel.End]), string(runes[sel.End:])

	if w, ok := wraps[syntax]; ok {
		if selected == "" {
			selected = w.placeholder
		}
		insert := w.marker + selected + w.marker
		return before + insert + after, sel.Start + runeLen(insert)
	}

	if p, ok := prefixes[syntax]; ok {
		start := lineStart(runes, sel.Start)
		out := string(runes[:start]) + p + string(runes[start:])
		return out, sel.End + runeLen(p)
	}

	if t, ok := templates[syntax]; ok {
		out := string(runes[:sel.End]) + t + after
		return out, sel.End + runeLen(t)
	}

	switch syntax {
	case SyntaxLink, SyntaxImage:
		label, bang := "link text", ""
		if syntax == SyntaxImage {
			label, bang = "alt text", "!"
		}
		if selected != "" {
			label = selected
		}
		insert := fmt.Sprintf("%s[%s](https://)", bang, label)
		return before + insert + after, sel.Start + runeLen(insert)

	case SyntaxBulletList, SyntaxNumberedList:
		start := lineStart(runes, sel.Start)
		end := lineEnd(runes, sel.End)
		lines := strings.Split(string(runes[start:end]), "\n")
		for i, line := range lines {
			if syntax == SyntaxBulletList {
				lines[i] = "- " + line
			} else {
				lines[i] = fmt.Sprintf("%d. %s", i+1, line)
			}
		}
		block := strings.Join(lines, "\n")
		return string(runes[:start]) + block + string(runes[end:]), start + runeLen(block)
	}

	return body, sel.End
}

func runeLen(s string) int {
	return len([]rune(s))
}

func lineStart(runes []rune, pos int) int {
	for pos > 0 && runes[pos-1] != '\n' {
		pos--
	}
	return pos
}

func lineEnd(runes []rune, pos int) int {
	for pos < len(runes) && runes[pos] != '\n' {
		pos++
	}
	return pos
}
