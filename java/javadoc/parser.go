// Package javadoc turns a Javadoc comment into a tag map: the leading
// description under "comment" plus one entry per block tag.
package javadoc

import (
	"strings"
	"unicode"
)

// CommentKey names the entry holding the text before the first block tag.
const CommentKey = "comment"

// Parser reads a Javadoc comment line by line.
type Parser struct {
	input []rune
	pos   int
	len   int
}

// Parse parses a doc comment. The /** and */ delimiters are optional.
// Parse never fails; malformed input yields whatever tags could be read.
func Parse(javadoc string) Tags {
	p := &Parser{input: []rune(trimDelimiters(javadoc))}
	p.len = len(p.input)
	return p.parseDocComment()
}

func trimDelimiters(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "/**") {
		s = s[3:]
	} else if strings.HasPrefix(s, "/*") {
		s = s[2:]
	}
	return strings.TrimSuffix(s, "*/")
}

func (p *Parser) parseDocComment() Tags {
	var (
		tags        = Tags{{Name: CommentKey}}
		description []string
		current     string
		block       []string
	)

	flush := func() {
		if current == "" {
			return
		}
		tags.add(current, strings.TrimRight(strings.Join(block, "\n"), " \t\r\n"))
		block = nil
	}

	for p.pos < p.len {
		line := p.readLine()
		if name, rest, ok := blockTag(line); ok {
			flush()
			current = name
			block = []string{rest}
			continue
		}
		if current == "" {
			description = append(description, line)
		} else {
			block = append(block, line)
		}
	}
	flush()

	tags[0].Text = strings.TrimSpace(strings.Join(description, "\n"))
	return tags
}

// readLine returns the next line with its Javadoc prefix removed: leading
// blanks, one '*' and at most one space after it.
func (p *Parser) readLine() string {
	p.skipLinePrefix()
	start := p.pos
	for p.pos < p.len && p.peek() != '\n' {
		p.advance(1)
	}
	line := string(p.input[start:p.pos])
	p.advance(1)
	return strings.TrimSuffix(line, "\r")
}

func (p *Parser) skipLinePrefix() {
	p.skipHorizontalWhitespace()
	if p.peek() == '*' {
		p.advance(1)
		if p.peek() == ' ' {
			p.advance(1)
		}
	}
}

// blockTag reports whether line starts a block tag such as "@param x".
func blockTag(line string) (name, rest string, ok bool) {
	trimmed := strings.TrimLeft(line, " \t")
	if !strings.HasPrefix(trimmed, "@") {
		return "", "", false
	}
	runes := []rune(trimmed[1:])
	end := 0
	for end < len(runes) && isTagNamePart(runes[end], end == 0) {
		end++
	}
	if end == 0 {
		return "", "", false
	}
	return string(runes[:end]), strings.TrimLeft(string(runes[end:]), " \t"), true
}

func isTagNamePart(r rune, first bool) bool {
	if unicode.IsLetter(r) {
		return true
	}
	if first {
		return false
	}
	return unicode.IsDigit(r) || r == '-' || r == '.' || r == '_'
}

func (p *Parser) peek() rune {
	if p.pos >= p.len {
		return 0
	}
	return p.input[p.pos]
}

func (p *Parser) advance(n int) {
	p.pos += n
	if p.pos > p.len {
		p.pos = p.len
	}
}

func (p *Parser) skipHorizontalWhitespace() {
	for p.pos < p.len && (p.peek() == ' ' || p.peek() == '\t') {
		p.advance(1)
	}
}
