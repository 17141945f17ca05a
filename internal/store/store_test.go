package store

import (
	"errors"
	"testing"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

func TestUserKey(t *testing.T) {
	tests := []struct {
		userID string
		field  string
		want   string
	}{
		{userID: "tg-42", field: "question", want: "user:tg-42:question"},
		{userID: "tg-42", field: "answer", want: "user:tg-42:answer"},
		{userID: "vk-7", field: "score", want: "user:vk-7:score"},
		{userID: "vk-7", field: "state", want: "user:vk-7:state"},
	}

	for _, tc := range tests {
		if got := userKey(tc.userID, tc.field); got != tc.want {
			t.Fatalf("userKey(%q, %q) = %q, want %q", tc.userID, tc.field, got, tc.want)
		}
	}
}

func TestUnavailableWrapsSentinel(t *testing.T) {
	cause := errors.New("connection refused")
	err := unavailable("get state", cause)

	if !errors.Is(err, quiz.ErrStoreUnavailable) {
		t.Fatalf("err = %v, want it to match quiz.ErrStoreUnavailable", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("err = %v, want it to keep the cause", err)
	}
}
