// Package questions loads the quiz corpus and serves random questions
// from it. The corpus is a directory of KOI8-R encoded text files; it is
// parsed once at startup and the bank is immutable afterwards.
package questions

import (
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/redkrayn/Chat-bots-lesson-4/internal/quiz"
)

var ErrEmptyCorpus = errors.New("no questions parsed from corpus")

// Bank is the loaded question corpus.
type Bank struct {
	entries []quiz.Question
	byText  map[string]string
}

// Load reads every regular file in dir and merges the parsed entries.
// It fails if the directory is unreadable or yields zero questions, so a
// bot never enters service with an empty bank.
func Load(dir string) (*Bank, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	byText := make(map[string]string)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		content, err := readKOI8R(filepath.Join(dir, f.Name()))
		if err != nil {
			return nil, fmt.Errorf("read corpus file %s: %w", f.Name(), err)
		}
		for question, answer := range parseCorpus(content) {
			byText[question] = answer
		}
	}
	if len(byText) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCorpus, dir)
	}

	entries := make([]quiz.Question, 0, len(byText))
	for question, answer := range byText {
		entries = append(entries, quiz.Question{Text: question, Answer: answer})
	}
	return &Bank{entries: entries, byText: byText}, nil
}

func readKOI8R(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	decoded, err := io.ReadAll(transform.NewReader(f, charmap.KOI8R.NewDecoder()))
	if err != nil {
		return "", fmt.Errorf("decode KOI8-R: %w", err)
	}
	return string(decoded), nil
}

// Sample returns one question chosen uniformly at random.
func (b *Bank) Sample() (quiz.Question, error) {
	if len(b.entries) == 0 {
		return quiz.Question{}, quiz.ErrEmptyBank
	}
	return b.entries[rand.Intn(len(b.entries))], nil
}

// Lookup finds a question by its full text.
func (b *Bank) Lookup(text string) (quiz.Question, bool) {
	answer, ok := b.byText[text]
	if !ok {
		return quiz.Question{}, false
	}
	return quiz.Question{Text: text, Answer: answer}, true
}

// Len reports the number of loaded questions.
func (b *Bank) Len() int {
	return len(b.entries)
}
