// Package parser reads workspace formula files: optional YAML frontmatter
// followed by one formula per line.
package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/modalk/internal/apperr"
	"github.com/starford/modalk/internal/models"
)

// CommentPrefix starts a line that carries no formula.
const CommentPrefix = "#"

// Frontmatter is the YAML header of a workspace file.
type Frontmatter struct {
	Title  string `yaml:"title"`
	Expect string `yaml:"expect"`
}

// Validate checks the declared expectation.
func (f Frontmatter) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Expect, validation.In("valid", "invalid")),
	)
}

// Result holds the output of parsing a workspace file.
type Result struct {
	Title   string
	Expect  models.Expectation
	Entries []models.Entry
}

// Parse extracts the frontmatter and the formula lines. Formulas are not
// checked here; an unparsable line is reported when it is proved.
func Parse(data []byte) (*Result, error) {
	fm, body, offset := splitFrontmatter(data)
	if err := fm.Validate(); err != nil {
		return nil, fmt.Errorf("parser: frontmatter: %w: %w", apperr.ErrInvalidInput, err)
	}

	entries, firstComment := scanEntries(body, offset)
	title := fm.Title
	if title == "" {
		title = firstComment
	}
	return &Result{
		Title:   title,
		Expect:  models.Expectation(fm.Expect),
		Entries: entries,
	}, nil
}

// splitFrontmatter separates YAML frontmatter between leading --- lines
// from the body and reports how many lines precede the body. Without a
// closing delimiter or with malformed YAML the whole input is body.
func splitFrontmatter(data []byte) (Frontmatter, string, int) {
	const delim = "---"
	var fm Frontmatter

	if !bytes.HasPrefix(data, []byte(delim+"\n")) {
		return fm, string(data), 0
	}
	rest := data[len(delim)+1:]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data), 0
	}
	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return Frontmatter{}, string(data), 0
	}

	consumed := len(data) - len(after)
	if nl := bytes.IndexByte(after, '\n'); nl >= 0 {
		consumed += nl + 1
	} else {
		consumed = len(data)
	}
	offset := bytes.Count(data[:consumed], []byte("\n"))
	return fm, string(data[consumed:]), offset
}

// scanEntries returns the formula lines with 1-based line numbers in the
// original file, and the text of the first comment.
func scanEntries(body string, offset int) ([]models.Entry, string) {
	var entries []models.Entry
	var firstComment string
	sc := bufio.NewScanner(strings.NewReader(body))
	line := offset
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		switch {
		case text == "":
		case strings.HasPrefix(text, CommentPrefix):
			if firstComment == "" {
				firstComment = strings.TrimSpace(strings.TrimLeft(text, CommentPrefix))
			}
		default:
			entries = append(entries, models.Entry{Line: line, Formula: text})
		}
	}
	return entries, firstComment
}
