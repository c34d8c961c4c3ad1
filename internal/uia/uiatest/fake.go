// Package uiatest содержит in-memory реализации интерфейсов хоста для тестов.
package uiatest

import (
	"errors"
	"sync"

	"UIAWatcher/internal/uia"
)

// Element - поддельный узел дерева хоста.
type Element struct {
	Type        uia.ControlType
	TypeErr     error
	ElementName string
	Focused     bool
	FocusErr    error

	// HasValue/HasText - поддержка шаблонов Value и Text.
	HasValue bool
	Value    string
	ValueErr error
	HasText  bool
	Text     string
	TextErr  error
	// IgnoreLimit заставляет DocumentText игнорировать maxLength.
	IgnoreLimit bool

	Children []*Element
	FindErr  error

	mu       sync.Mutex
	releases int
	finds    int
}

func (e *Element) ControlType() (uia.ControlType, error) { return e.Type, e.TypeErr }
func (e *Element) Name() (string, error)                 { return e.ElementName, nil }
func (e *Element) HasKeyboardFocus() (bool, error)       { return e.Focused, e.FocusErr }

func (e *Element) CurrentValue() (string, error) {
	if !e.HasValue {
		return "", uia.ErrPatternUnavailable
	}
	return e.Value, e.ValueErr
}

func (e *Element) DocumentText(maxLength int) (string, error) {
	if !e.HasText {
		return "", uia.ErrPatternUnavailable
	}
	if e.TextErr != nil {
		return "", e.TextErr
	}
	if e.IgnoreLimit || maxLength < 0 {
		return e.Text, nil
	}
	r := []rune(e.Text)
	if len(r) > maxLength {
		r = r[:maxLength]
	}
	return string(r), nil
}

// FindFirst обходит потомков в глубину, первый подходящий побеждает.
func (e *Element) FindFirst(scope uia.TreeScope, cond uia.Condition) (uia.Element, error) {
	e.mu.Lock()
	e.finds++
	e.mu.Unlock()
	if e.FindErr != nil {
		return nil, e.FindErr
	}
	c, ok := cond.(*Condition)
	if !ok {
		return nil, errors.New("uiatest: foreign condition")
	}
	if scope&uia.TreeScopeElement != 0 && c.match(e) {
		return e, nil
	}
	if scope&(uia.TreeScopeChildren|uia.TreeScopeDescendants) == 0 {
		return nil, uia.ErrNotFound
	}
	var walk func(nodes []*Element, deep bool) *Element
	walk = func(nodes []*Element, deep bool) *Element {
		for _, n := range nodes {
			if c.match(n) {
				return n
			}
			if deep {
				if f := walk(n.Children, deep); f != nil {
					return f
				}
			}
		}
		return nil
	}
	if f := walk(e.Children, scope&uia.TreeScopeDescendants != 0); f != nil {
		return f, nil
	}
	return nil, uia.ErrNotFound
}

func (e *Element) Release() {
	e.mu.Lock()
	e.releases++
	e.mu.Unlock()
}

// Releases возвращает число вызовов Release.
func (e *Element) Releases() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.releases
}

// Finds возвращает число поисков по поддереву.
func (e *Element) Finds() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finds
}

// Condition - поддельное условие поиска.
type Condition struct {
	match    func(*Element) bool
	released bool
}

func (c *Condition) Release() { c.released = true }

// Session - поддельная сессия запросов.
type Session struct {
	mu         sync.Mutex
	conditions []*Condition
	released   int
	// Err возвращается из всех фабрик условий, если задан.
	Err error
}

func (s *Session) CreatePropertyCondition(id uia.PropertyID, value bool) (uia.Condition, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var c *Condition
	switch id {
	case uia.PropertyIsTextPatternAvailable:
		c = &Condition{match: func(e *Element) bool { return e.HasText == value }}
	case uia.PropertyIsValuePatternAvailable:
		c = &Condition{match: func(e *Element) bool { return e.HasValue == value }}
	default:
		c = &Condition{match: func(*Element) bool { return false }}
	}
	s.track(c)
	return c, nil
}

func (s *Session) CreateOrCondition(a, b uia.Condition) (uia.Condition, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	ca, ok1 := a.(*Condition)
	cb, ok2 := b.(*Condition)
	if !ok1 || !ok2 {
		return nil, errors.New("uiatest: foreign condition")
	}
	c := &Condition{match: func(e *Element) bool { return ca.match(e) || cb.match(e) }}
	s.track(c)
	return c, nil
}

func (s *Session) Release() {
	s.mu.Lock()
	s.released++
	s.mu.Unlock()
}

// Released возвращает число вызовов Release.
func (s *Session) Released() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.released
}

// Outstanding возвращает число неосвобождённых условий.
func (s *Session) Outstanding() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.conditions {
		if !c.released {
			n++
		}
	}
	return n
}

func (s *Session) track(c *Condition) {
	s.mu.Lock()
	s.conditions = append(s.conditions, c)
	s.mu.Unlock()
}

// Sessions - SessionProvider, всегда отдающий одну сессию.
type Sessions struct {
	S   *Session
	Err error
}

func (p Sessions) Session() (uia.Session, func(), error) {
	if p.Err != nil {
		return nil, nil, p.Err
	}
	return p.S, func() {}, nil
}
