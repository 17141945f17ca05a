// Package quiz implements the quiz session state machine shared by all
// chat transports. The engine reads and writes user state through an
// injected SessionStore and never keeps a private copy between calls.
package quiz

import (
	"context"
	"fmt"
)

const (
	replyGreeting  = "Здравствуйте, %s!"
	replyGreeted   = "Здравствуйте!"
	replyPressNew  = "Чтобы получить новый вопрос, нажмите кнопку «Новый вопрос»"
	replyCorrect   = "Правильно! Поздравляю! Для следующего вопроса нажми «Новый вопрос»"
	replyWrong     = "Неправильно… Попробуешь ещё раз?"
	replyNoActive  = "Нет активного вопроса"
	replyScore     = "Твой текущий счёт: %d очков"
	replySurrender = "Правильный ответ: %s"
	replyHelp      = "Я бот для викторин. Чтобы начать игру, нажмите «Новый вопрос» или отправьте /start"
)

// Engine is the per-user quiz state machine.
type Engine struct {
	questions QuestionProvider
	store     SessionStore
}

func NewEngine(questions QuestionProvider, store SessionStore) *Engine {
	return &Engine{questions: questions, store: store}
}

// Handle resolves the user's persisted state, applies one event and
// returns the reply plus the state the user is now in. Store failures
// propagate to the caller; the engine never fabricates defaults on error.
func (e *Engine) Handle(ctx context.Context, userID string, ev Event) (Reply, error) {
	switch ev.Kind {
	case EventStart:
		return e.handleStart(ctx, userID, ev.Name)
	case EventNewQuestion:
		return e.serveQuestion(ctx, userID, "")
	case EventScore:
		return e.handleScore(ctx, userID)
	case EventSurrender:
		return e.handleSurrender(ctx, userID)
	case EventSubmit:
		return e.handleSubmit(ctx, userID, ev.Text)
	default:
		return e.handleUnrecognized(ctx, userID)
	}
}

func (e *Engine) handleStart(ctx context.Context, userID, name string) (Reply, error) {
	if err := e.store.SetState(ctx, userID, StateNewQuestion); err != nil {
		return Reply{}, fmt.Errorf("reset state: %w", err)
	}
	text := replyGreeted
	if name != "" {
		text = fmt.Sprintf(replyGreeting, name)
	}
	return Reply{State: StateNewQuestion, Text: text}, nil
}

// serveQuestion samples a question, persists it as active and moves the
// user to StateAnswering. prefix, when non-empty, is prepended to the
// question text so surrender can reveal and serve in a single reply.
func (e *Engine) serveQuestion(ctx context.Context, userID, prefix string) (Reply, error) {
	q, err := e.questions.Sample()
	if err != nil {
		return Reply{}, fmt.Errorf("sample question: %w", err)
	}
	if err := e.store.SetActiveQuestion(ctx, userID, q.Text, q.Answer); err != nil {
		return Reply{}, fmt.Errorf("set active question: %w", err)
	}
	if err := e.store.SetState(ctx, userID, StateAnswering); err != nil {
		return Reply{}, fmt.Errorf("set state: %w", err)
	}
	return Reply{State: StateAnswering, Text: prefix + q.Text}, nil
}

// handleScore never mutates anything: the state hint is re-derived from
// whether an active question still exists.
func (e *Engine) handleScore(ctx context.Context, userID string) (Reply, error) {
	score, err := e.store.GetScore(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get score: %w", err)
	}
	_, _, active, err := e.store.GetActiveQuestion(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get active question: %w", err)
	}
	state := StateNewQuestion
	if active {
		state = StateAnswering
	}
	return Reply{State: state, Text: fmt.Sprintf(replyScore, score)}, nil
}

func (e *Engine) handleSurrender(ctx context.Context, userID string) (Reply, error) {
	_, answer, active, err := e.store.GetActiveQuestion(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get active question: %w", err)
	}
	if !active {
		if err := e.store.SetState(ctx, userID, StateNewQuestion); err != nil {
			return Reply{}, fmt.Errorf("reset state: %w", err)
		}
		return Reply{State: StateNewQuestion, Text: replyNoActive}, nil
	}
	if err := e.store.ClearActiveQuestion(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("clear active question: %w", err)
	}
	// Reveal the answer and serve the next question in one round trip,
	// so the user can chain surrenders.
	reveal := fmt.Sprintf(replySurrender, answer)
	return e.serveQuestion(ctx, userID, reveal+"\n\n")
}

func (e *Engine) handleSubmit(ctx context.Context, userID, text string) (Reply, error) {
	state, err := e.store.GetState(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get state: %w", err)
	}
	if state != StateAnswering {
		return Reply{State: StateNewQuestion, Text: replyPressNew}, nil
	}

	_, answer, active, err := e.store.GetActiveQuestion(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get active question: %w", err)
	}
	if !active {
		// Stale StateAnswering with no stored pair: degrade to the
		// new-question prompt instead of erroring.
		return Reply{State: StateNewQuestion, Text: replyNoActive + ". " + replyPressNew}, nil
	}

	if !Matches(text, answer) {
		return Reply{State: StateAnswering, Text: replyWrong}, nil
	}

	if _, err := e.store.IncrementScore(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("increment score: %w", err)
	}
	if err := e.store.ClearActiveQuestion(ctx, userID); err != nil {
		return Reply{}, fmt.Errorf("clear active question: %w", err)
	}
	if err := e.store.SetState(ctx, userID, StateNewQuestion); err != nil {
		return Reply{}, fmt.Errorf("set state: %w", err)
	}
	return Reply{State: StateNewQuestion, Text: replyCorrect}, nil
}

func (e *Engine) handleUnrecognized(ctx context.Context, userID string) (Reply, error) {
	state, err := e.store.GetState(ctx, userID)
	if err != nil {
		return Reply{}, fmt.Errorf("get state: %w", err)
	}
	return Reply{State: state, Text: replyHelp}, nil
}
