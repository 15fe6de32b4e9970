package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"clozereader/internal/game"
	"clozereader/internal/hints"
	"clozereader/internal/llm"
	"clozereader/internal/models"
)

const handlerTestText = "The old keeper climbed the winding stairs every evening before " +
	"dusk carrying a heavy lantern toward the gallery. Seabirds wheeled and screamed " +
	"above the restless water below the cliffs."

type fakeDocs struct {
	mu sync.Mutex
	n  int
}

func (f *fakeDocs) DocumentByLevel(_ context.Context, _ int) (models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	return models.Document{Title: fmt.Sprintf("Book %d", f.n), Author: "A. Author", RawText: handlerTestText}, nil
}

type fakeExtractor struct{}

func (fakeExtractor) Extract(doc models.Document) (models.Passage, error) {
	return models.Passage{Text: doc.RawText, Title: doc.Title, Author: doc.Author}, nil
}

type fakeSelector struct{}

func (fakeSelector) Select(_ context.Context, passage models.Passage, count, _ int) ([]models.CandidateWord, error) {
	words := []string{"lantern", "gallery", "restless"}
	var cands []models.CandidateWord
	for i, w := range words[:count] {
		cands = append(cands, models.CandidateWord{
			SurfaceForm: w,
			ByteOffset:  strings.Index(passage.Text, w),
			TokenIndex:  14 + i,
		})
	}
	return cands, nil
}

type fakeSigner struct{}

func (fakeSigner) SignOutcome(outcome models.GameOutcome) (string, error) {
	return fmt.Sprintf("token-level-%d", outcome.Level), nil
}

func newTestMux(t *testing.T) (*http.ServeMux, *SessionStore) {
	t.Helper()
	sessions := NewSessionStore(time.Hour)
	factory := func() *game.Engine {
		return game.NewEngine(game.Deps{
			Documents: &fakeDocs{},
			Extractor: fakeExtractor{},
			Selector:  fakeSelector{},
			Hints:     hints.NewTracker(llm.NewStubProvider().FailWith(errors.New("no provider"))),
		})
	}
	gameHandler := NewGameHandler(sessions, factory, fakeSigner{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/game", gameHandler.Create)
	mux.HandleFunc("GET /api/game/{id}", gameHandler.Current)
	mux.HandleFunc("POST /api/game/{id}/submit", gameHandler.Submit)
	mux.HandleFunc("POST /api/game/{id}/next", gameHandler.Next)
	mux.HandleFunc("POST /api/game/{id}/hint", gameHandler.Hint)
	mux.HandleFunc("POST /api/game/{id}/end", gameHandler.End)
	return mux, sessions
}

func doJSON(t *testing.T, mux *http.ServeMux, method, path string, body interface{}, out interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal response %q: %v", rec.Body.String(), err)
		}
	}
	return rec
}

func createGame(t *testing.T, mux *http.ServeMux) roundView {
	t.Helper()
	var view roundView
	rec := doJSON(t, mux, http.MethodPost, "/api/game", nil, &view)
	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /api/game status = %d, body %s", rec.Code, rec.Body.String())
	}
	return view
}

func TestCreateGame(t *testing.T) {
	mux, _ := newTestMux(t)
	view := createGame(t, mux)

	if view.SessionID == "" {
		t.Error("response missing session id")
	}
	if view.Level != 1 || view.RoundNumber != 1 || view.BlanksPerPassage != 1 {
		t.Errorf("unexpected round view %+v", view)
	}
	if len(view.Passages) != 2 {
		t.Fatalf("got %d passages, want 2", len(view.Passages))
	}
	for i, p := range view.Passages {
		if !strings.Contains(p.ClozeText, "{{1}}") {
			t.Errorf("passage %d missing placeholder", i)
		}
		if strings.Contains(p.ClozeText, "lantern") {
			t.Errorf("passage %d leaked the answer", i)
		}
		if len(p.Blanks) != 1 || p.Blanks[0].StructuralHint == "" {
			t.Errorf("passage %d blanks malformed: %+v", i, p.Blanks)
		}
		if p.Contextualization == "" {
			t.Errorf("passage %d missing contextualization", i)
		}
	}
}

func TestGetCurrentRound(t *testing.T) {
	mux, _ := newTestMux(t)
	view := createGame(t, mux)

	var got roundView
	rec := doJSON(t, mux, http.MethodGet, "/api/game/"+view.SessionID, nil, &got)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.RoundNumber != view.RoundNumber || len(got.Passages) != 2 {
		t.Errorf("unexpected view %+v", got)
	}
}

func TestUnknownSession(t *testing.T) {
	mux, _ := newTestMux(t)
	rec := doJSON(t, mux, http.MethodGet, "/api/game/nope", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestSubmitAndNextRound(t *testing.T) {
	mux, _ := newTestMux(t)
	view := createGame(t, mux)
	base := "/api/game/" + view.SessionID

	var first submitResponse
	rec := doJSON(t, mux, http.MethodPost, base+"/submit", submitRequest{Passage: 0, Answers: []string{"lantern"}}, &first)
	if rec.Code != http.StatusOK {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	if !first.Score.Passed || first.Score.CorrectCount != 1 {
		t.Errorf("correct answer not accepted: %+v", first.Score)
	}
	if first.RoundComplete {
		t.Error("round complete after one of two passages")
	}

	var second submitResponse
	rec = doJSON(t, mux, http.MethodPost, base+"/submit", submitRequest{Passage: 1, Answers: []string{"wrong"}}, &second)
	if rec.Code != http.StatusOK {
		t.Fatalf("second submit status = %d", rec.Code)
	}
	if second.Score.Passed {
		t.Error("wrong answer marked correct")
	}
	if second.Score.Results[0].CorrectAnswer != "lantern" {
		t.Error("failed passage must reveal the correct answer")
	}
	if !second.RoundComplete {
		t.Error("round should be complete after both passages")
	}
	if second.PassesAtLevel != 1 {
		t.Errorf("passes at level = %d, want 1 (one passage passed)", second.PassesAtLevel)
	}

	var next roundView
	rec = doJSON(t, mux, http.MethodPost, base+"/next", nil, &next)
	if rec.Code != http.StatusOK {
		t.Fatalf("next status = %d", rec.Code)
	}
	if next.RoundNumber != 2 {
		t.Errorf("next round number = %d, want 2", next.RoundNumber)
	}
}

func TestHintEndpoint(t *testing.T) {
	mux, _ := newTestMux(t)
	view := createGame(t, mux)

	var resp hintResponse
	rec := doJSON(t, mux, http.MethodPost, "/api/game/"+view.SessionID+"/hint",
		hintRequest{Passage: 0, BlankIndex: 0, QuestionType: "meaning"}, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("hint status = %d", rec.Code)
	}
	// The stub provider always errors, so the canned fallback comes back;
	// hints never fail.
	if resp.Hint == "" {
		t.Error("hint is empty")
	}
	if strings.Contains(strings.ToLower(resp.Hint), "lantern") {
		t.Error("hint leaked the answer")
	}
	if len(resp.UsedQuestionTypes) != 1 || resp.UsedQuestionTypes[0] != "meaning" {
		t.Errorf("used question types = %v, want [meaning]", resp.UsedQuestionTypes)
	}
}

func TestEndGame(t *testing.T) {
	mux, sessions := newTestMux(t)
	view := createGame(t, mux)

	var resp outcomeResponse
	rec := doJSON(t, mux, http.MethodPost, "/api/game/"+view.SessionID+"/end", nil, &resp)
	if rec.Code != http.StatusOK {
		t.Fatalf("end status = %d", rec.Code)
	}
	if resp.Token != "token-level-1" {
		t.Errorf("token = %q", resp.Token)
	}
	if resp.Outcome.Level != 1 {
		t.Errorf("outcome level = %d, want 1", resp.Outcome.Level)
	}
	if sessions.Len() != 0 {
		t.Error("session not removed after game end")
	}

	rec = doJSON(t, mux, http.MethodGet, "/api/game/"+view.SessionID, nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("ended session still reachable, status = %d", rec.Code)
	}
}

func TestSessionStoreEviction(t *testing.T) {
	store := NewSessionStore(time.Minute)
	id := store.Put(nil)

	store.mu.Lock()
	store.sessions[id].lastSeen = time.Now().Add(-2 * time.Minute)
	store.mu.Unlock()

	store.evictIdle()
	if _, ok := store.Get(id); ok {
		t.Error("idle session survived eviction")
	}
}
