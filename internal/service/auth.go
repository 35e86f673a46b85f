package service

import (
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// PINSource yields the current gate PIN. prefs.Store satisfies it.
type PINSource interface {
	PIN(fallback string) string
}

// Gate checks the shared game master PIN. It is advisory: anyone holding
// the PIN is trusted.
type Gate struct {
	src      PINSource
	fallback string

	mu   sync.Mutex
	pin  string
	hash []byte
}

func NewGate(src PINSource, fallback string) *Gate {
	return &Gate{src: src, fallback: fallback}
}

func (g *Gate) current() ([]byte, error) {
	pin := g.fallback
	if g.src != nil {
		pin = g.src.PIN(g.fallback)
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.hash == nil || pin != g.pin {
		h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash pin: %w", err)
		}
		g.pin, g.hash = pin, h
	}
	return g.hash, nil
}

// Unlock returns s with game master mode on, or ErrIncorrectPIN.
func (g *Gate) Unlock(s Session, pin string) (Session, error) {
	hash, err := g.current()
	if err != nil {
		return s, err
	}
	if bcrypt.CompareHashAndPassword(hash, []byte(pin)) != nil {
		return s, ErrIncorrectPIN
	}
	return s.WithGM(true), nil
}

func (g *Gate) Lock(s Session) Session { return s.WithGM(false) }
