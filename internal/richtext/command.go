package richtext

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Command string

const (
	Bold           Command = "bold"
	Italic         Command = "italic"
	Underline      Command = "underline"
	UnorderedList  Command = "insertUnorderedList"
	HorizontalRule Command = "insertHorizontalRule"
)

// RuleStyle is the inline style carried by inserted dividers.
const RuleStyle = "border:none;border-top:1px solid #e0d0f0;margin:0.5rem 0;"

var inlineFormats = map[Command][]atom.Atom{
	Bold:      {atom.B, atom.Strong},
	Italic:    {atom.I, atom.Em},
	Underline: {atom.U},
}

func ParseCommand(s string) (Command, error) {
	switch c := Command(s); c {
	case Bold, Italic, Underline, UnorderedList, HorizontalRule:
		return c, nil
	}
	return "", fmt.Errorf("richtext: unknown command %q", s)
}

// Selection is a range of character offsets into the text content of a
// fragment (text nodes only, in document order). Start == End is a caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func Caret(at int) Selection { return Selection{Start: at, End: at} }

func (s Selection) Collapsed() bool { return s.Start == s.End }

// Exec applies cmd to markup and returns the new fragment.
func Exec(markup string, cmd Command, sel Selection) (string, error) {
	root, err := parse(markup)
	if err != nil {
		return "", err
	}
	sel = clamp(sel, textLen(root))
	switch cmd {
	case Bold, Italic, Underline:
		toggleInline(root, inlineFormats[cmd], sel)
	case UnorderedList:
		toggleList(root, sel)
	case HorizontalRule:
		insertRule(root, sel)
	default:
		return "", fmt.Errorf("richtext: unknown command %q", cmd)
	}
	return render(root)
}

// TextContent returns the characters Selection offsets count.
func TextContent(markup string) string {
	root, err := parse(markup)
	if err != nil {
		return ""
	}
	var sb strings.Builder
	for _, sp := range texts(root) {
		sb.WriteString(sp.node.Data)
	}
	return sb.String()
}

func parse(markup string) (*html.Node, error) {
	root := newElement(atom.Div)
	nodes, err := html.ParseFragment(strings.NewReader(markup), root)
	if err != nil {
		return nil, fmt.Errorf("richtext: parse: %w", err)
	}
	for _, n := range nodes {
		root.AppendChild(n)
	}
	return root, nil
}

func render(root *html.Node) (string, error) {
	var buf bytes.Buffer
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", fmt.Errorf("richtext: render: %w", err)
		}
	}
	return buf.String(), nil
}

func clamp(sel Selection, limit int) Selection {
	if sel.Start > sel.End {
		sel.Start, sel.End = sel.End, sel.Start
	}
	sel.Start = min(max(sel.Start, 0), limit)
	sel.End = min(max(sel.End, 0), limit)
	return sel
}

func newElement(a atom.Atom) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a}
}

func isElement(n *html.Node, atoms ...atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, a := range atoms {
		if n.DataAtom == a {
			return true
		}
	}
	return false
}

type textSpan struct {
	node       *html.Node
	start, end int
}

func texts(root *html.Node) []textSpan {
	var out []textSpan
	pos := 0
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.TextNode {
				l := utf8.RuneCountInString(c.Data)
				out = append(out, textSpan{node: c, start: pos, end: pos + l})
				pos += l
				continue
			}
			visit(c)
		}
	}
	visit(root)
	return out
}

func textLen(n *html.Node) int {
	if n.Type == html.TextNode {
		return utf8.RuneCountInString(n.Data)
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += textLen(c)
	}
	return total
}

// splitAt makes off a text node boundary.
func splitAt(root *html.Node, off int) {
	for _, sp := range texts(root) {
		if sp.start < off && off < sp.end {
			r := []rune(sp.node.Data)
			k := off - sp.start
			rest := &html.Node{Type: html.TextNode, Data: string(r[k:])}
			sp.node.Data = string(r[:k])
			sp.node.Parent.InsertBefore(rest, sp.node.NextSibling)
			return
		}
	}
}

// selectedText expects splitAt to have run for both ends of sel.
func selectedText(root *html.Node, sel Selection) []*html.Node {
	var out []*html.Node
	for _, sp := range texts(root) {
		if sp.end > sp.start && sp.start >= sel.Start && sp.end <= sel.End {
			out = append(out, sp.node)
		}
	}
	return out
}

func outermostFormat(n, root *html.Node, tags []atom.Atom) *html.Node {
	var found *html.Node
	for p := n.Parent; p != nil && p != root; p = p.Parent {
		if isElement(p, tags...) {
			found = p
		}
	}
	return found
}

func toggleInline(root *html.Node, tags []atom.Atom, sel Selection) {
	if sel.Collapsed() {
		return
	}
	splitAt(root, sel.Start)
	splitAt(root, sel.End)
	nodes := selectedText(root, sel)
	if len(nodes) == 0 {
		return
	}

	formatted := true
	for _, n := range nodes {
		if outermostFormat(n, root, tags) == nil {
			formatted = false
			break
		}
	}
	if formatted {
		unwrapFormat(root, tags, nodes)
		return
	}

	for _, n := range nodes {
		if outermostFormat(n, root, tags) != nil {
			continue
		}
		el := newElement(tags[0])
		parent := n.Parent
		parent.InsertBefore(el, n)
		parent.RemoveChild(n)
		el.AppendChild(n)
	}
	mergeSiblings(root, tags[0])
}

type side int

const (
	sideBefore side = iota
	sideInside
	sideAfter
)

// classifyLeaves tags every childless node by its position relative to the
// selected text nodes.
func classifyLeaves(root *html.Node, selected map[*html.Node]bool) map[*html.Node]side {
	out := make(map[*html.Node]side)
	state := sideBefore
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.FirstChild != nil {
				visit(c)
				continue
			}
			if c.Type == html.TextNode && c.Data != "" {
				if selected[c] {
					state = sideInside
				} else if state == sideInside {
					state = sideAfter
				}
			}
			out[c] = state
		}
	}
	visit(root)
	return out
}

func unwrapFormat(root *html.Node, tags []atom.Atom, nodes []*html.Node) {
	selected := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		selected[n] = true
	}
	sides := classifyLeaves(root, selected)
	// each pass removes one formatting element around the selection
	for pass := 0; pass < 64; pass++ {
		var target *html.Node
		for _, n := range nodes {
			if f := outermostFormat(n, root, tags); f != nil {
				target = f
				break
			}
		}
		if target == nil {
			return
		}
		before, inside, after := partition(target, sides)
		parent := target.Parent
		if len(before) > 0 {
			parent.InsertBefore(wrapClone(target, before), target)
		}
		for _, n := range inside {
			parent.InsertBefore(n, target)
		}
		if len(after) > 0 {
			parent.InsertBefore(wrapClone(target, after), target)
		}
		parent.RemoveChild(target)
	}
}

// partition detaches the children of n and regroups them by side, cloning
// intermediate elements so each group keeps its formatting.
func partition(n *html.Node, sides map[*html.Node]side) (before, inside, after []*html.Node) {
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	for _, c := range kids {
		n.RemoveChild(c)
		if c.FirstChild == nil {
			switch sides[c] {
			case sideInside:
				inside = append(inside, c)
			case sideAfter:
				after = append(after, c)
			default:
				before = append(before, c)
			}
			continue
		}
		b, i, a := partition(c, sides)
		if len(b) > 0 {
			before = append(before, wrapClone(c, b))
		}
		if len(i) > 0 {
			inside = append(inside, wrapClone(c, i))
		}
		if len(a) > 0 {
			after = append(after, wrapClone(c, a))
		}
	}
	return before, inside, after
}

func wrapClone(proto *html.Node, kids []*html.Node) *html.Node {
	el := &html.Node{
		Type:      proto.Type,
		Data:      proto.Data,
		DataAtom:  proto.DataAtom,
		Namespace: proto.Namespace,
		Attr:      append([]html.Attribute(nil), proto.Attr...),
	}
	for _, k := range kids {
		el.AppendChild(k)
	}
	return el
}

func isPlain(n *html.Node, a atom.Atom) bool {
	return isElement(n, a) && len(n.Attr) == 0
}

func mergeSiblings(n *html.Node, a atom.Atom) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		for isPlain(c, a) && isPlain(c.NextSibling, a) {
			next := c.NextSibling
			moveChildren(next, c)
			n.RemoveChild(next)
		}
		mergeSiblings(c, a)
	}
}

func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; c = from.FirstChild {
		from.RemoveChild(c)
		to.AppendChild(c)
	}
}

func ensureNotEmpty(n *html.Node) {
	if n.FirstChild == nil {
		n.AppendChild(newElement(atom.Br))
	}
}

var blockAtoms = []atom.Atom{
	atom.Div, atom.P, atom.Ul, atom.Ol, atom.Li, atom.Hr, atom.Blockquote, atom.Pre,
	atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6, atom.Table,
}

// block is a top-level block element or a run of inline nodes ended by a
// <br> or a block element.
type block struct {
	nodes      []*html.Node
	el         *html.Node
	start, end int
}

func blocks(parent *html.Node, pos int) []block {
	var out []block
	var run *block
	flush := func() {
		if run != nil {
			out = append(out, *run)
			run = nil
		}
	}
	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		l := textLen(c)
		if isElement(c, blockAtoms...) {
			flush()
			out = append(out, block{nodes: []*html.Node{c}, el: c, start: pos, end: pos + l})
			pos += l
			continue
		}
		if run == nil {
			run = &block{start: pos, end: pos}
		}
		run.nodes = append(run.nodes, c)
		pos += l
		run.end = pos
		if isElement(c, atom.Br) {
			flush()
		}
	}
	flush()
	return out
}

// pick returns the indexes of the blocks a selection touches.
func pick(bs []block, sel Selection) []int {
	var idx []int
	if !sel.Collapsed() {
		for i, b := range bs {
			if b.start < sel.End && b.end > sel.Start {
				idx = append(idx, i)
			}
		}
		if len(idx) > 0 {
			return idx
		}
	}
	for i, b := range bs {
		if b.start <= sel.Start && sel.Start < b.end {
			return []int{i}
		}
	}
	for i := len(bs) - 1; i >= 0; i-- {
		if bs[i].start <= sel.Start {
			return []int{i}
		}
	}
	return nil
}

// lineContainer descends through a lone wrapping div or p so that lines
// split by <br> inside it are found.
func lineContainer(root *html.Node) *html.Node {
	for c := root.FirstChild; c != nil && c.NextSibling == nil && isElement(c, atom.Div, atom.P) && hasChild(c, atom.Br); c = root.FirstChild {
		root = c
	}
	return root
}

func hasChild(n *html.Node, a atom.Atom) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if isElement(c, a) {
			return true
		}
	}
	return false
}

func toggleList(root *html.Node, sel Selection) {
	root = lineContainer(root)
	bs := blocks(root, 0)
	if len(bs) == 0 {
		ul, li := newElement(atom.Ul), newElement(atom.Li)
		ensureNotEmpty(li)
		ul.AppendChild(li)
		root.AppendChild(ul)
		return
	}
	// dividers are never list items
	var idx []int
	for _, i := range pick(bs, sel) {
		if !isElement(bs[i].el, atom.Hr) {
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 {
		return
	}

	allLists := true
	for _, i := range idx {
		if !isElement(bs[i].el, atom.Ul) {
			allLists = false
			break
		}
	}
	if allLists {
		for _, i := range idx {
			unlist(bs[i].el, bs[i].start, sel)
		}
		return
	}

	var ul *html.Node
	for k, i := range idx {
		b := bs[i]
		// a skipped divider ends the current list
		if k > 0 && idx[k-1] != i-1 {
			ul = nil
		}
		if ul == nil {
			ul = newElement(atom.Ul)
			root.InsertBefore(ul, b.nodes[0])
		}
		switch {
		case isElement(b.el, atom.Ul, atom.Ol):
			for c := b.el.FirstChild; c != nil; c = b.el.FirstChild {
				b.el.RemoveChild(c)
				if !isElement(c, atom.Li) {
					li := newElement(atom.Li)
					li.AppendChild(c)
					c = li
				}
				ul.AppendChild(c)
			}
			root.RemoveChild(b.el)
		case isElement(b.el, atom.Div, atom.P, atom.Li):
			li := newElement(atom.Li)
			moveChildren(b.el, li)
			ensureNotEmpty(li)
			ul.AppendChild(li)
			root.RemoveChild(b.el)
		case b.el != nil:
			li := newElement(atom.Li)
			root.RemoveChild(b.el)
			li.AppendChild(b.el)
			ul.AppendChild(li)
		default:
			li := newElement(atom.Li)
			for _, n := range b.nodes {
				root.RemoveChild(n)
				if !isElement(n, atom.Br) {
					li.AppendChild(n)
				}
			}
			ensureNotEmpty(li)
			ul.AppendChild(li)
		}
	}
}

// unlist turns the selected items of ul into plain blocks, splitting the
// list around them.
func unlist(ul *html.Node, start int, sel Selection) {
	var items []block
	pos := start
	for c := ul.FirstChild; c != nil; c = c.NextSibling {
		l := textLen(c)
		items = append(items, block{nodes: []*html.Node{c}, el: c, start: pos, end: pos + l})
		pos += l
	}
	idx := pick(items, sel)
	if len(idx) == 0 {
		return
	}
	first, last := idx[0], idx[len(idx)-1]
	parent, next := ul.Parent, ul.NextSibling

	for _, it := range items[first : last+1] {
		div := newElement(atom.Div)
		moveChildren(it.el, div)
		ensureNotEmpty(div)
		ul.RemoveChild(it.el)
		parent.InsertBefore(div, next)
	}
	if last < len(items)-1 {
		rest := newElement(atom.Ul)
		for _, it := range items[last+1:] {
			ul.RemoveChild(it.el)
			rest.AppendChild(it.el)
		}
		parent.InsertBefore(rest, next)
	}
	if ul.FirstChild == nil {
		parent.RemoveChild(ul)
	}
}

var inlineAtoms = []atom.Atom{atom.B, atom.Strong, atom.I, atom.Em, atom.U, atom.Span}

func pruneEmpty(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		pruneEmpty(c)
		if c.FirstChild == nil && isElement(c, inlineAtoms...) {
			n.RemoveChild(c)
		}
		c = next
	}
}

// insertRule replaces the selection with a divider.
func insertRule(root *html.Node, sel Selection) {
	splitAt(root, sel.Start)
	splitAt(root, sel.End)
	if !sel.Collapsed() {
		for _, n := range selectedText(root, sel) {
			n.Parent.RemoveChild(n)
		}
		pruneEmpty(root)
	}

	hr := newElement(atom.Hr)
	hr.Attr = []html.Attribute{{Key: "style", Val: RuleStyle}}
	spans := texts(root)
	for _, sp := range spans {
		if sp.end > sp.start && sp.end == sel.Start {
			sp.node.Parent.InsertBefore(hr, sp.node.NextSibling)
			return
		}
	}
	for _, sp := range spans {
		if sp.start == sel.Start {
			sp.node.Parent.InsertBefore(hr, sp.node)
			return
		}
	}
	root.AppendChild(hr)
}
