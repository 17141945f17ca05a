package quiz

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

type memoryStore struct {
	mu        sync.Mutex
	states    map[string]State
	questions map[string]string
	answers   map[string]string
	scores    map[string]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		states:    make(map[string]State),
		questions: make(map[string]string),
		answers:   make(map[string]string),
		scores:    make(map[string]int64),
	}
}

func (m *memoryStore) GetState(_ context.Context, userID string) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if state, ok := m.states[userID]; ok {
		return state, nil
	}
	return StateNewQuestion, nil
}

func (m *memoryStore) SetState(_ context.Context, userID string, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[userID] = state
	return nil
}

func (m *memoryStore) GetActiveQuestion(_ context.Context, userID string) (string, string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	question, qok := m.questions[userID]
	answer, aok := m.answers[userID]
	if !qok || !aok {
		return "", "", false, nil
	}
	return question, answer, true, nil
}

func (m *memoryStore) SetActiveQuestion(_ context.Context, userID, question, answer string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.questions[userID] = question
	m.answers[userID] = answer
	return nil
}

func (m *memoryStore) ClearActiveQuestion(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.questions, userID)
	delete(m.answers, userID)
	return nil
}

func (m *memoryStore) IncrementScore(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores[userID]++
	return m.scores[userID], nil
}

func (m *memoryStore) GetScore(_ context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scores[userID], nil
}

type fixedProvider struct {
	questions []Question
	next      int
}

func (f *fixedProvider) Sample() (Question, error) {
	if len(f.questions) == 0 {
		return Question{}, ErrEmptyBank
	}
	q := f.questions[f.next%len(f.questions)]
	f.next++
	return q, nil
}

type brokenStore struct{ memoryStore }

func (b *brokenStore) GetScore(context.Context, string) (int64, error) {
	return 0, fmt.Errorf("dial: %w", ErrStoreUnavailable)
}

func newTestEngine(qs ...Question) (*Engine, *memoryStore) {
	if len(qs) == 0 {
		qs = []Question{{Text: "Вопрос 1:\nСтолица Франции?", Answer: "Париж"}}
	}
	store := newMemoryStore()
	return NewEngine(&fixedProvider{questions: qs}, store), store
}

func TestStartGreets(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventStart, Name: "Ада"})
	if err != nil {
		t.Fatalf("Handle(Start) error: %v", err)
	}
	if reply.State != StateNewQuestion {
		t.Fatalf("state = %q, want %q", reply.State, StateNewQuestion)
	}
	if !strings.Contains(reply.Text, "Здравствуйте") || !strings.Contains(reply.Text, "Ада") {
		t.Fatalf("greeting = %q", reply.Text)
	}

	state, _ := store.GetState(ctx, "tg-1")
	if state != StateNewQuestion {
		t.Fatalf("persisted state = %q, want %q", state, StateNewQuestion)
	}
}

func TestStartWithoutName(t *testing.T) {
	engine, _ := newTestEngine()

	reply, err := engine.Handle(context.Background(), "tg-1", Event{Kind: EventStart})
	if err != nil {
		t.Fatalf("Handle(Start) error: %v", err)
	}
	if reply.Text != "Здравствуйте!" {
		t.Fatalf("greeting = %q", reply.Text)
	}
}

func TestNewQuestionServes(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion})
	if err != nil {
		t.Fatalf("Handle(NewQuestion) error: %v", err)
	}
	if reply.State != StateAnswering {
		t.Fatalf("state = %q, want %q", reply.State, StateAnswering)
	}
	if !strings.Contains(reply.Text, "Столица Франции?") {
		t.Fatalf("reply = %q, want question text", reply.Text)
	}

	question, answer, ok, _ := store.GetActiveQuestion(ctx, "tg-1")
	if !ok || question == "" || answer != "Париж" {
		t.Fatalf("active question = (%q, %q, %v)", question, answer, ok)
	}
	if state, _ := store.GetState(ctx, "tg-1"); state != StateAnswering {
		t.Fatalf("persisted state = %q, want %q", state, StateAnswering)
	}
}

func TestCorrectAnswer(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventSubmit, Text: "  париж "})
	if err != nil {
		t.Fatalf("Handle(Submit) error: %v", err)
	}
	if reply.State != StateNewQuestion {
		t.Fatalf("state = %q, want %q", reply.State, StateNewQuestion)
	}
	if !strings.Contains(reply.Text, "Правильно") {
		t.Fatalf("reply = %q", reply.Text)
	}

	if score, _ := store.GetScore(ctx, "tg-1"); score != 1 {
		t.Fatalf("score = %d, want 1", score)
	}
	if _, _, ok, _ := store.GetActiveQuestion(ctx, "tg-1"); ok {
		t.Fatal("active question not cleared after correct answer")
	}
	if state, _ := store.GetState(ctx, "tg-1"); state != StateNewQuestion {
		t.Fatalf("persisted state = %q, want %q", state, StateNewQuestion)
	}
}

func TestWrongAnswer(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventSubmit, Text: "Берлин"})
	if err != nil {
		t.Fatalf("Handle(Submit) error: %v", err)
	}
	if reply.State != StateAnswering {
		t.Fatalf("state = %q, want %q", reply.State, StateAnswering)
	}
	if !strings.Contains(reply.Text, "Неправильно") {
		t.Fatalf("reply = %q", reply.Text)
	}

	if score, _ := store.GetScore(ctx, "tg-1"); score != 0 {
		t.Fatalf("score = %d, want 0", score)
	}
	if _, _, ok, _ := store.GetActiveQuestion(ctx, "tg-1"); !ok {
		t.Fatal("active question cleared after wrong answer")
	}
}

func TestSubmitBeforeAnyQuestion(t *testing.T) {
	engine, store := newTestEngine()

	reply, err := engine.Handle(context.Background(), "tg-1", Event{Kind: EventSubmit, Text: "Париж"})
	if err != nil {
		t.Fatalf("Handle(Submit) error: %v", err)
	}
	if reply.State != StateNewQuestion {
		t.Fatalf("state = %q, want %q", reply.State, StateNewQuestion)
	}
	if !strings.Contains(reply.Text, "Новый вопрос") {
		t.Fatalf("reply = %q, want new-question prompt", reply.Text)
	}
	if len(store.questions) != 0 || len(store.scores) != 0 {
		t.Fatal("submit in new-question state must not mutate the store")
	}
}

func TestSubmitWithStaleAnsweringState(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	// Persisted state says answering but the question/answer pair is gone.
	if err := store.SetState(ctx, "tg-1", StateAnswering); err != nil {
		t.Fatal(err)
	}

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventSubmit, Text: "Париж"})
	if err != nil {
		t.Fatalf("Handle(Submit) error: %v", err)
	}
	if reply.State != StateNewQuestion {
		t.Fatalf("state = %q, want %q", reply.State, StateNewQuestion)
	}
	if !strings.Contains(reply.Text, "Нет активного вопроса") {
		t.Fatalf("reply = %q", reply.Text)
	}
	if score, _ := store.GetScore(ctx, "tg-1"); score != 0 {
		t.Fatalf("score = %d, want 0", score)
	}
}

func TestSurrenderRevealsAndServesNext(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(
		Question{Text: "Вопрос 1:\nСтолица Франции?", Answer: "Париж"},
		Question{Text: "Вопрос 2:\nСтолица Италии?", Answer: "Рим"},
	)

	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventSurrender})
	if err != nil {
		t.Fatalf("Handle(Surrender) error: %v", err)
	}
	if !strings.Contains(reply.Text, "Правильный ответ: Париж") {
		t.Fatalf("reply = %q, want revealed answer", reply.Text)
	}
	if !strings.Contains(reply.Text, "Столица Италии?") {
		t.Fatalf("reply = %q, want the next question chained in", reply.Text)
	}
	if reply.State != StateAnswering {
		t.Fatalf("state = %q, want %q", reply.State, StateAnswering)
	}

	_, answer, ok, _ := store.GetActiveQuestion(ctx, "tg-1")
	if !ok || answer != "Рим" {
		t.Fatalf("active answer = (%q, %v), want the next question's", answer, ok)
	}
	if score, _ := store.GetScore(ctx, "tg-1"); score != 0 {
		t.Fatalf("score = %d, want 0 after surrender", score)
	}
}

func TestSurrenderWithoutActiveQuestion(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventSurrender})
	if err != nil {
		t.Fatalf("Handle(Surrender) error: %v", err)
	}
	if reply.State != StateNewQuestion {
		t.Fatalf("state = %q, want %q", reply.State, StateNewQuestion)
	}
	if reply.Text != "Нет активного вопроса" {
		t.Fatalf("reply = %q", reply.Text)
	}
	if _, _, ok, _ := store.GetActiveQuestion(ctx, "tg-1"); ok {
		t.Fatal("no question should have been served")
	}
}

func TestScoreReportNeverMutates(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}

	for i := 0; i < 3; i++ {
		reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventScore})
		if err != nil {
			t.Fatalf("Handle(Score) error: %v", err)
		}
		if !strings.Contains(reply.Text, "0 очков") {
			t.Fatalf("reply = %q", reply.Text)
		}
		if reply.State != StateAnswering {
			t.Fatalf("state hint = %q, want %q", reply.State, StateAnswering)
		}
	}

	if _, _, ok, _ := store.GetActiveQuestion(ctx, "tg-1"); !ok {
		t.Fatal("score report must not clear the active question")
	}
	if state, _ := store.GetState(ctx, "tg-1"); state != StateAnswering {
		t.Fatalf("persisted state = %q, want %q", state, StateAnswering)
	}
}

func TestScoreForFreshUser(t *testing.T) {
	engine, _ := newTestEngine()

	reply, err := engine.Handle(context.Background(), "tg-unseen", Event{Kind: EventScore})
	if err != nil {
		t.Fatalf("Handle(Score) error: %v", err)
	}
	if reply.State != StateNewQuestion {
		t.Fatalf("state = %q, want %q", reply.State, StateNewQuestion)
	}
	if !strings.Contains(reply.Text, "0 очков") {
		t.Fatalf("reply = %q", reply.Text)
	}
}

func TestUnrecognizedKeepsState(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}

	reply, err := engine.Handle(ctx, "tg-1", Event{Kind: EventUnrecognized})
	if err != nil {
		t.Fatalf("Handle(Unrecognized) error: %v", err)
	}
	if reply.State != StateAnswering {
		t.Fatalf("state = %q, want %q", reply.State, StateAnswering)
	}
	if _, _, ok, _ := store.GetActiveQuestion(ctx, "tg-1"); !ok {
		t.Fatal("unrecognized input must not mutate the store")
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	engine := NewEngine(&fixedProvider{questions: []Question{{Text: "q", Answer: "a"}}}, &brokenStore{})

	_, err := engine.Handle(context.Background(), "tg-1", Event{Kind: EventScore})
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("err = %v, want ErrStoreUnavailable", err)
	}
}

func TestUsersAreIsolated(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine()

	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}
	if _, err := engine.Handle(ctx, "vk-2", Event{Kind: EventNewQuestion}); err != nil {
		t.Fatalf("serve question: %v", err)
	}
	if _, err := engine.Handle(ctx, "tg-1", Event{Kind: EventSubmit, Text: "Париж"}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	if score, _ := store.GetScore(ctx, "tg-1"); score != 1 {
		t.Fatalf("tg-1 score = %d, want 1", score)
	}
	if score, _ := store.GetScore(ctx, "vk-2"); score != 0 {
		t.Fatalf("vk-2 score = %d, want 0", score)
	}
	if _, _, ok, _ := store.GetActiveQuestion(ctx, "vk-2"); !ok {
		t.Fatal("vk-2 active question lost")
	}
}
