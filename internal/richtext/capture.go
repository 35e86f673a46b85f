// Package richtext implements the formatted text input surface used for
// recaps, player notes and found documents, and the matching render path.
package richtext

type State int

const (
	// Idle: the displayed content equals the last value the owner saw.
	Idle State = iota
	// Dirty: a local edit was reported and its echo has not come back yet.
	Dirty
)

func (s State) String() string {
	if s == Dirty {
		return "dirty"
	}
	return "idle"
}

// Capture is one editable region. It is not safe for concurrent use; an
// owner drives it from a single goroutine.
type Capture struct {
	content     string
	placeholder string
	state       State
	onChange    func(markup string)
}

// NewCapture seeds the region with value. onChange receives the full markup
// after every local edit.
func NewCapture(value, placeholder string, onChange func(string)) *Capture {
	return &Capture{content: value, placeholder: placeholder, onChange: onChange}
}

func (c *Capture) Value() string { return c.content }
func (c *Capture) State() State  { return c.state }

// Placeholder returns the hint text while the region has no content at all.
func (c *Capture) Placeholder() (string, bool) {
	if c.content != "" {
		return "", false
	}
	return c.placeholder, true
}

// Sync delivers a new external value. The first update after a local edit
// is that edit's echo and is ignored; otherwise a differing value replaces
// the content wholesale. Reports whether the content was replaced.
func (c *Capture) Sync(value string) bool {
	if c.state == Dirty {
		c.state = Idle
		return false
	}
	if value == c.content {
		return false
	}
	c.content = value
	return true
}

// Input records a keystroke or paste. Pasted markup is kept as is.
func (c *Capture) Input(markup string) {
	c.content = markup
	c.emit()
}

// Apply runs a toolbar command on the selection and reports the result.
func (c *Capture) Apply(cmd Command, sel Selection) error {
	out, err := Exec(c.content, cmd, sel)
	if err != nil {
		return err
	}
	c.content = out
	c.emit()
	return nil
}

func (c *Capture) emit() {
	c.state = Dirty
	if c.onChange != nil {
		c.onChange(c.content)
	}
}
