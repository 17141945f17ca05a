package store

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

const usersCollectionName = "users"

// FirestoreStore keeps one document per user with the state, question,
// answer and score fields. The question/answer pair is set and removed
// in a single document write, which makes the pair atomic for readers.
type FirestoreStore struct {
	client *firestore.Client
}

func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{client: client}
}

type userRecord struct {
	State    string `firestore:"state"`
	Question string `firestore:"question"`
	Answer   string `firestore:"answer"`
	Score    int64  `firestore:"score"`
}

func (s *FirestoreStore) GetState(ctx context.Context, userID string) (quiz.State, error) {
	rec, err := s.get(ctx, userID)
	if err != nil {
		return "", unavailable("get state", err)
	}
	if rec.State == "" {
		return quiz.StateNewQuestion, nil
	}
	return quiz.State(rec.State), nil
}

func (s *FirestoreStore) SetState(ctx context.Context, userID string, state quiz.State) error {
	_, err := s.userDoc(userID).Set(ctx, map[string]any{
		"state": string(state),
	}, firestore.MergeAll)
	if err != nil {
		return unavailable("set state", err)
	}
	return nil
}

func (s *FirestoreStore) GetActiveQuestion(ctx context.Context, userID string) (string, string, bool, error) {
	rec, err := s.get(ctx, userID)
	if err != nil {
		return "", "", false, unavailable("get active question", err)
	}
	if rec.Question == "" || rec.Answer == "" {
		return "", "", false, nil
	}
	return rec.Question, rec.Answer, true, nil
}

func (s *FirestoreStore) SetActiveQuestion(ctx context.Context, userID, question, answer string) error {
	_, err := s.userDoc(userID).Set(ctx, map[string]any{
		"question": question,
		"answer":   answer,
	}, firestore.MergeAll)
	if err != nil {
		return unavailable("set active question", err)
	}
	return nil
}

func (s *FirestoreStore) ClearActiveQuestion(ctx context.Context, userID string) error {
	_, err := s.userDoc(userID).Set(ctx, map[string]any{
		"question": firestore.Delete,
		"answer":   firestore.Delete,
	}, firestore.MergeAll)
	if err != nil {
		return unavailable("clear active question", err)
	}
	return nil
}

func (s *FirestoreStore) IncrementScore(ctx context.Context, userID string) (int64, error) {
	var score int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(s.userDoc(userID))
		if err != nil && status.Code(err) != codes.NotFound {
			return err
		}
		var rec userRecord
		if err == nil {
			if err := snap.DataTo(&rec); err != nil {
				return err
			}
		}
		score = rec.Score + 1
		return tx.Set(s.userDoc(userID), map[string]any{
			"score": score,
		}, firestore.MergeAll)
	})
	if err != nil {
		return 0, unavailable("increment score", err)
	}
	return score, nil
}

func (s *FirestoreStore) GetScore(ctx context.Context, userID string) (int64, error) {
	rec, err := s.get(ctx, userID)
	if err != nil {
		return 0, unavailable("get score", err)
	}
	return rec.Score, nil
}

// get reads the user document, treating a missing document as the zero
// record so absence stays a valid default.
func (s *FirestoreStore) get(ctx context.Context, userID string) (userRecord, error) {
	snap, err := s.userDoc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return userRecord{}, nil
		}
		return userRecord{}, err
	}
	var rec userRecord
	if err := snap.DataTo(&rec); err != nil {
		return userRecord{}, err
	}
	return rec, nil
}

func (s *FirestoreStore) userDoc(userID string) *firestore.DocumentRef {
	return s.client.Collection(usersCollectionName).Doc(userID)
}
