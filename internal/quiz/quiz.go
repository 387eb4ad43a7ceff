// Package quiz holds the validated quiz mini-game question.
package quiz

import "fmt"

// Question is a multiple-choice question with a zero-based correct-option
// index. Construct with New so invalid questions are rejected up front.
type Question struct {
	Text    string
	Options []string
	Answer  int
}

// New validates and returns a quiz question.
func New(text string, options []string, answer int) (Question, error) {
	if text == "" {
		return Question{}, fmt.Errorf("quiz: empty question text")
	}
	if len(options) < 2 {
		return Question{}, fmt.Errorf("quiz: need at least 2 options, got %d", len(options))
	}
	if answer < 0 || answer >= len(options) {
		return Question{}, fmt.Errorf("quiz: answer index %d out of range [0,%d)", answer, len(options))
	}
	for i, o := range options {
		if o == "" {
			return Question{}, fmt.Errorf("quiz: option %d is empty", i)
		}
	}
	return Question{Text: text, Options: options, Answer: answer}, nil
}

// Check reports whether the zero-based option index is the correct answer.
func (q Question) Check(option int) bool { return option == q.Answer }

// Correct returns the text of the correct option.
func (q Question) Correct() string { return q.Options[q.Answer] }
