package service

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Session is the acting device's state for one request: its display name and
// whether it unlocked game master mode. Neither is persisted in the journal.
type Session struct {
	displayName string
	gm          bool
}

func NewSession(displayName string, gm bool) Session {
	return Session{displayName: strings.TrimSpace(displayName), gm: gm}
}

func (s Session) DisplayName() string { return s.displayName }
func (s Session) GM() bool            { return s.gm }

func (s Session) HasName() bool { return s.displayName != "" }

// WithGM returns a copy with the elevated flag set to gm.
func (s Session) WithGM(gm bool) Session {
	s.gm = gm
	return s
}

// Is reports whether name is this session's display name. Names typed on
// different devices may differ in Unicode composition.
func (s Session) Is(name string) bool {
	return s.displayName != "" && sameName(s.displayName, name)
}

func sameName(a, b string) bool {
	return norm.NFC.String(strings.TrimSpace(a)) == norm.NFC.String(strings.TrimSpace(b))
}
