package html

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/pagecluster/internal/core/domain"
	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// StepName identifies the normaliser in pipelines.
const StepName = "html-markdown"

// Ensure Normaliser implements the interface.
var _ driven.TextStep = (*Normaliser)(nil)

// Normaliser converts HTML markup to markdown text.
// It is stateless and safe for concurrent use.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Name returns the step name.
func (n *Normaliser) Name() string {
	return StepName
}

// Process converts markup to markdown text.
// Input that is not valid UTF-8 returns domain.ErrNormalization.
func (n *Normaliser) Process(_ context.Context, markup string) (string, error) {
	if !utf8.ValidString(markup) {
		return "", fmt.Errorf("%w: input is not valid utf-8", domain.ErrNormalization)
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrNormalization, err)
	}

	r := &renderer{}
	r.walk(doc)
	r.flush()
	return strings.Join(r.blocks, "\n\n"), nil
}

// Title returns the text of the <title> element, or an empty string.
func Title(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return ""
	}
	var title string
	var find func(*html.Node) bool
	find = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.DataAtom == atom.Title {
			title = collapse(textOf(n))
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if find(c) {
				return true
			}
		}
		return false
	}
	find(doc)
	return title
}

// skipped elements never contribute text.
var skipped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Template: true,
	atom.Svg:      true,
	atom.Head:     true,
	atom.Iframe:   true,
	atom.Object:   true,
	atom.Canvas:   true,
}

// blockLevel elements end the current block.
var blockLevel = map[atom.Atom]bool{
	atom.P:          true,
	atom.Div:        true,
	atom.Section:    true,
	atom.Article:    true,
	atom.Main:       true,
	atom.Header:     true,
	atom.Footer:     true,
	atom.Nav:        true,
	atom.Aside:      true,
	atom.Table:      true,
	atom.Tr:         true,
	atom.Figure:     true,
	atom.Figcaption: true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Dd:         true,
}

type list struct {
	ordered bool
	next    int
}

// renderer accumulates markdown blocks while walking the parse tree.
type renderer struct {
	blocks []string
	cur    strings.Builder
	prefix string
	quotes int
	pre    int
	lists  []list
}

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.CommentNode, html.DoctypeNode:
		return
	case html.TextNode:
		if r.pre > 0 {
			r.cur.WriteString(n.Data)
		} else {
			text := collapse(n.Data)
			if text == "" {
				r.cur.WriteByte(' ')
				return
			}
			if startsWithSpace(n.Data) {
				r.cur.WriteByte(' ')
			}
			r.cur.WriteString(text)
			if endsWithSpace(n.Data) {
				r.cur.WriteByte(' ')
			}
		}
		return
	case html.ElementNode:
		r.element(n)
		return
	}
	r.children(n)
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *renderer) element(n *html.Node) {
	if skipped[n.DataAtom] {
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		r.flush()
		r.prefix = strings.Repeat("#", level) + " "
		r.children(n)
		r.flush()
	case atom.Br:
		r.cur.WriteByte('\n')
	case atom.Hr:
		r.flush()
		r.blocks = append(r.blocks, "---")
	case atom.Ul, atom.Ol:
		r.flush()
		r.lists = append(r.lists, list{ordered: n.DataAtom == atom.Ol, next: 1})
		r.children(n)
		r.flush()
		r.lists = r.lists[:len(r.lists)-1]
	case atom.Li:
		r.flush()
		r.prefix = r.bullet()
		r.children(n)
		r.flush()
	case atom.Blockquote:
		r.flush()
		r.quotes++
		r.children(n)
		r.flush()
		r.quotes--
	case atom.Pre:
		r.flush()
		r.pre++
		r.children(n)
		r.pre--
		body := strings.Trim(r.cur.String(), "\n")
		r.cur.Reset()
		if strings.TrimSpace(body) != "" {
			r.blocks = append(r.blocks, "```\n"+body+"\n```")
		}
	case atom.Td, atom.Th:
		r.children(n)
		r.cur.WriteByte(' ')
	default:
		if blockLevel[n.DataAtom] {
			r.flush()
			r.children(n)
			r.flush()
			return
		}
		r.children(n)
	}
}

func (r *renderer) bullet() string {
	if len(r.lists) == 0 {
		return "- "
	}
	indent := strings.Repeat("  ", len(r.lists)-1)
	top := &r.lists[len(r.lists)-1]
	if !top.ordered {
		return indent + "- "
	}
	b := indent + strconv.Itoa(top.next) + ". "
	top.next++
	return b
}

// flush emits the current block. The pending prefix is kept until a
// non-empty block consumes it.
func (r *renderer) flush() {
	var lines []string
	for _, line := range strings.Split(r.cur.String(), "\n") {
		if line = collapse(line); line != "" {
			lines = append(lines, line)
		}
	}
	r.cur.Reset()
	if len(lines) == 0 {
		return
	}

	quote := strings.Repeat("> ", r.quotes)
	for i, line := range lines {
		if i == 0 {
			line = r.prefix + line
		}
		lines[i] = quote + line
	}
	r.prefix = ""
	r.blocks = append(r.blocks, strings.Join(lines, "\n"))
}

// collapse folds whitespace runs into single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func startsWithSpace(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsSpace(r)
}

func endsWithSpace(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return unicode.IsSpace(r)
}

func textOf(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
