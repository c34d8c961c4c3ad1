package router

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap/zaptest"

	"UIAWatcher/internal/uia"
	"UIAWatcher/internal/uia/text"
	"UIAWatcher/internal/uia/uiatest"
)

type submissions struct {
	mu  sync.Mutex
	got []string
}

func (s *submissions) Submit(msg string) {
	s.mu.Lock()
	s.got = append(s.got, msg)
	s.mu.Unlock()
}

func (s *submissions) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.got...)
}

func newRouter(t *testing.T) (*Router, *submissions, *bytes.Buffer) {
	t.Helper()
	logger := zaptest.NewLogger(t).Sugar()
	sub := &submissions{}
	out := &bytes.Buffer{}
	rt := text.New(uiatest.Sessions{S: &uiatest.Session{}}, text.DefaultMaxLength, logger)
	return New(rt, sub, out, logger), sub, out
}

func focusedEdit(value string) *uiatest.Element {
	return &uiatest.Element{
		Type:        uia.ControlTypeEdit,
		ElementName: "Search",
		Focused:     true,
		HasValue:    true,
		Value:       value,
	}
}

func TestPropertyChangedForwardsWhenAllGatesPass(t *testing.T) {
	r, sub, _ := newRouter(t)
	r.HandlePropertyChangedEvent(focusedEdit("stale"), uia.PropertyValueValue, "typed")

	got := sub.all()
	want := FormatInput(PathProperty, uia.ControlTypeEdit, "Search", "typed")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}
}

func TestPropertyChangedGates(t *testing.T) {
	tests := []struct {
		name     string
		el       *uiatest.Element
		property uia.PropertyID
		payload  string
	}{
		{
			name:     "other property",
			el:       focusedEdit("abc"),
			property: uia.PropertyIsValuePatternAvailable,
			payload:  "abc",
		},
		{
			name:     "wrong control type",
			el:       &uiatest.Element{Type: uia.ControlTypeDocument, Focused: true, HasValue: true, Value: "abc"},
			property: uia.PropertyValueValue,
			payload:  "abc",
		},
		{
			name:     "no focus",
			el:       &uiatest.Element{Type: uia.ControlTypeEdit, Focused: false, HasValue: true, Value: "abc"},
			property: uia.PropertyValueValue,
			payload:  "abc",
		},
		{
			name:     "empty text",
			el:       focusedEdit(""),
			property: uia.PropertyValueValue,
			payload:  "",
		},
		{
			name:     "control type failure",
			el:       &uiatest.Element{TypeErr: errors.New("gone"), Focused: true, HasValue: true, Value: "abc"},
			property: uia.PropertyValueValue,
			payload:  "abc",
		},
		{
			name:     "focus failure",
			el:       &uiatest.Element{Type: uia.ControlTypeEdit, Focused: true, FocusErr: errors.New("gone"), HasValue: true, Value: "abc"},
			property: uia.PropertyValueValue,
			payload:  "abc",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sub, out := newRouter(t)
			r.HandlePropertyChangedEvent(tt.el, tt.property, tt.payload)
			if got := sub.all(); len(got) != 0 {
				t.Fatalf("expected event to be filtered, got %v", got)
			}
			if out.Len() != 0 {
				t.Fatalf("expected no direct output, got %q", out.String())
			}
		})
	}
}

func TestPropertyChangedFallsBackToDeepText(t *testing.T) {
	r, sub, _ := newRouter(t)
	el := &uiatest.Element{
		Type:        uia.ControlTypeGroup,
		ElementName: "Composer",
		Focused:     true,
		Children:    []*uiatest.Element{{HasText: true, Text: "draft"}},
	}
	r.HandlePropertyChangedEvent(el, uia.PropertyValueValue, "")

	got := sub.all()
	want := FormatInput(PathProperty, uia.ControlTypeGroup, "Composer", "draft")
	if len(got) != 1 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}
}

func TestTextChangedGates(t *testing.T) {
	r, sub, _ := newRouter(t)

	doc := &uiatest.Element{Type: uia.ControlTypeDocument, ElementName: "Body", Focused: true, HasText: true, Text: "hello"}
	r.HandleAutomationEvent(doc, uia.EventTextChanged)
	want := FormatInput(PathTextChanged, uia.ControlTypeDocument, "Body", "hello")
	if got := sub.all(); len(got) != 1 || got[0] != want {
		t.Fatalf("expected %q, got %v", want, got)
	}

	filtered := []struct {
		el *uiatest.Element
		id uia.EventID
	}{
		{doc, uia.EventID(20000)},
		{&uiatest.Element{Type: uia.ControlTypeDocument, HasText: true, Text: "hello"}, uia.EventTextChanged},
		{&uiatest.Element{Type: uia.ControlType(50000), Focused: true, HasText: true, Text: "hello"}, uia.EventTextChanged},
		{&uiatest.Element{Type: uia.ControlTypeEdit, Focused: true}, uia.EventTextChanged},
	}
	for i, f := range filtered {
		r.HandleAutomationEvent(f.el, f.id)
		if got := sub.all(); len(got) != 1 {
			t.Fatalf("case %d: expected event to be filtered, got %v", i, got)
		}
	}
}

func TestFocusChangedPrintsImmediately(t *testing.T) {
	r, sub, out := newRouter(t)

	r.HandleFocusChangedEvent(focusedEdit("current"))
	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %q", out.String())
	}
	if lines[0] != FormatFocus(uia.ControlTypeEdit, "Search") || lines[1] != FormatCurrent("current") {
		t.Fatalf("unexpected focus output %q", out.String())
	}
	if len(sub.all()) != 0 {
		t.Fatalf("focus output must not be debounced")
	}
}

func TestFocusChangedWithoutText(t *testing.T) {
	r, _, out := newRouter(t)
	r.HandleFocusChangedEvent(&uiatest.Element{Type: uia.ControlTypeGroup, ElementName: "Panel"})
	if got := strings.TrimRight(out.String(), "\n"); got != FormatFocus(uia.ControlTypeGroup, "Panel") {
		t.Fatalf("expected only the transition line, got %q", out.String())
	}

	out.Reset()
	r.HandleFocusChangedEvent(&uiatest.Element{Type: uia.ControlTypeDocument, HasText: true, Text: "x"})
	r.HandleFocusChangedEvent(nil)
	if out.Len() != 0 {
		t.Fatalf("expected non-input focus to be ignored, got %q", out.String())
	}
}
