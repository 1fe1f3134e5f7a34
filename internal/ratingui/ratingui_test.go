// internal/ratingui/ratingui_test.go
package ratingui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptlab/promptlab/internal/experiment"
	"github.com/promptlab/promptlab/internal/rating"
)

func newTestSession(t *testing.T, outputs ...string) *rating.Session {
	t.Helper()
	exp := &experiment.Experiment{ExperimentID: "exp-1"}
	for _, out := range outputs {
		exp.SampleResults = append(exp.SampleResults, experiment.SampleResult{
			Input:   "input for " + out,
			Output:  out,
			Success: true,
		})
	}
	s, err := rating.NewSession(exp)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestStore(t *testing.T) *rating.Store {
	t.Helper()
	st, err := rating.OpenStore(filepath.Join(t.TempDir(), "ratings.json"))
	if err != nil {
		t.Fatal(err)
	}
	return st
}

func key(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// TestRatingFlow_StateTransitions_And_View walks the full rating flow: load,
// rate every sample, save, and verifies the view at each stage.
func TestRatingFlow_StateTransitions_And_View(t *testing.T) {
	session := newTestSession(t, "first answer", "second answer")
	st := newTestStore(t)
	m := NewModel(context.Background(), nil, st)

	if m.state != viewLoading {
		t.Fatalf("expected loading state; got %v", m.state)
	}
	if !strings.Contains(m.View(), "Loading experiment") {
		t.Fatalf("expected loading view; got: %s", m.View())
	}

	m2, _ := m.Update(sessionReadyMsg{session: session})
	m = m2.(*Model)
	if m.state != viewReviewing {
		t.Fatalf("expected reviewing state; got %v", m.state)
	}

	out := m.View()
	if !strings.Contains(out, "sample 1/2") || !strings.Contains(out, "first answer") {
		t.Fatalf("expected first sample in view; got: %s", out)
	}
	if !strings.Contains(out, "☆☆☆☆☆") {
		t.Fatalf("expected empty stars for unrated sample; got: %s", out)
	}

	m2, _ = m.Update(key("4"))
	m = m2.(*Model)
	if session.Cursor() != 1 {
		t.Fatalf("expected rating to advance cursor; got %d", session.Cursor())
	}
	if !strings.Contains(m.View(), "second answer") {
		t.Fatalf("expected second sample after advance; got: %s", m.View())
	}

	m2, _ = m.Update(key("5"))
	m = m2.(*Model)
	if !strings.Contains(m.View(), "★★★★★") {
		t.Fatalf("expected five stars rendered; got: %s", m.View())
	}

	m2, _ = m.Update(key("s"))
	m = m2.(*Model)
	if m.state != viewDone {
		t.Fatalf("expected done state after save; got %v", m.state)
	}
	if m.Saved() == nil || m.Saved().Accuracy != 90 {
		t.Fatalf("expected saved rating with accuracy 90; got %+v", m.Saved())
	}
	if !strings.Contains(m.View(), "90.0%") {
		t.Fatalf("expected accuracy in done view; got: %s", m.View())
	}

	if got, ok := st.Get("exp-1"); !ok || got.Accuracy != 90 {
		t.Fatalf("expected rating persisted; got %+v ok=%v", got, ok)
	}
}

func TestSaveBlockedWhileIncomplete(t *testing.T) {
	session := newTestSession(t, "a", "b", "c")
	st := newTestStore(t)
	m := NewModel(context.Background(), nil, st)

	m2, _ := m.Update(sessionReadyMsg{session: session})
	m = m2.(*Model)
	m2, _ = m.Update(key("3"))
	m = m2.(*Model)

	m2, _ = m.Update(key("s"))
	m = m2.(*Model)
	if m.state != viewReviewing {
		t.Fatalf("incomplete save must keep reviewing; got %v", m.state)
	}
	if !strings.Contains(m.View(), "unrated") {
		t.Fatalf("expected unrated notice in view; got: %s", m.View())
	}
	if _, ok := st.Get("exp-1"); ok {
		t.Fatal("incomplete rating must not be persisted")
	}
}

func TestNavigationKeys(t *testing.T) {
	session := newTestSession(t, "a", "b", "c")
	m := NewModel(context.Background(), nil, newTestStore(t))
	m2, _ := m.Update(sessionReadyMsg{session: session})
	m = m2.(*Model)

	m2, _ = m.Update(key("l"))
	m = m2.(*Model)
	m2, _ = m.Update(key("l"))
	m = m2.(*Model)
	if session.Cursor() != 2 {
		t.Fatalf("expected cursor at 2; got %d", session.Cursor())
	}

	m2, _ = m.Update(key("h"))
	m = m2.(*Model)
	if session.Cursor() != 1 {
		t.Fatalf("expected cursor at 1; got %d", session.Cursor())
	}
}

func TestQuitAbandonsSession(t *testing.T) {
	session := newTestSession(t, "a")
	m := NewModel(context.Background(), nil, newTestStore(t))
	m2, _ := m.Update(sessionReadyMsg{session: session})
	m = m2.(*Model)
	m2, _ = m.Update(key("5"))
	m = m2.(*Model)

	m2, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	m = m2.(*Model)
	if m.state != viewDone {
		t.Fatalf("expected done after quit; got %v", m.state)
	}
	if !session.Closed() {
		t.Fatal("quit must close the session")
	}
	if m.Saved() != nil {
		t.Fatal("quit must not save")
	}
	if !strings.Contains(m.View(), "abandoned") {
		t.Fatalf("expected abandoned message; got: %s", m.View())
	}
}

func TestLoadErrorEndsProgram(t *testing.T) {
	m := NewModel(context.Background(), nil, newTestStore(t))
	m2, _ := m.Update(sessionLoadErr{error: errors.New("not found")})
	m = m2.(*Model)
	if m.state != viewDone {
		t.Fatalf("expected done state; got %v", m.state)
	}
	if m.Err() == nil || !strings.Contains(m.View(), "not found") {
		t.Fatalf("expected error surfaced; got err=%v view=%s", m.Err(), m.View())
	}
}
