package questions

import (
	"regexp"
	"strings"
)

var questionHeader = regexp.MustCompile(`^Вопрос\s+\d+:`)

const answerPrefix = "Ответ:"

// answerCleaner strips the bracket and punctuation characters the corpus
// wraps answers in. Applied once at load time, never at match time.
var answerCleaner = strings.NewReplacer(
	"[", "", "]", "",
	"{", "", "}", "",
	"(", "", ")", "",
	`"`, "",
	".", "", "!", "", "?", "", ";", "", ":", "",
)

// parseCorpus extracts question/answer pairs from one decoded corpus
// file. Entries are separated by blank lines; a question entry starts
// with a "Вопрос N:" header and the adjacent "Ответ:" entry supplies its
// expected answer. Entries without a usable answer are dropped.
func parseCorpus(content string) map[string]string {
	content = strings.ReplaceAll(content, "\r\n", "\n")

	out := make(map[string]string)
	var current string
	for _, section := range strings.Split(content, "\n\n") {
		section = strings.TrimSpace(section)
		switch {
		case questionHeader.MatchString(section):
			current = section
		case strings.HasPrefix(section, answerPrefix) && current != "":
			if answer := cleanAnswer(strings.TrimPrefix(section, answerPrefix)); answer != "" {
				out[current] = answer
			}
			current = ""
		}
	}
	return out
}

func cleanAnswer(raw string) string {
	return strings.TrimSpace(answerCleaner.Replace(raw))
}
