package artifacts

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type AnswerKind string

const (
	AnswerOption AnswerKind = "option"
	AnswerText   AnswerKind = "text"
)

var ErrInvalidAnswer = errors.New("invalid answer")

// Answer is either a chosen option ({kind:"option", optionId}) or free text
// ({kind:"text", value}). The kind is always explicit on the wire.
type Answer struct {
	Kind     AnswerKind
	OptionID uuid.UUID
	Value    string
}

func OptionAnswer(id uuid.UUID) Answer { return Answer{Kind: AnswerOption, OptionID: id} }

func TextAnswer(v string) Answer { return Answer{Kind: AnswerText, Value: v} }

type answerWire struct {
	Kind     AnswerKind `json:"kind"`
	OptionID *uuid.UUID `json:"optionId,omitempty"`
	Value    *string    `json:"value,omitempty"`
}

func (a Answer) MarshalJSON() ([]byte, error) {
	w := answerWire{Kind: a.Kind}
	switch a.Kind {
	case AnswerOption:
		id := a.OptionID
		w.OptionID = &id
	case AnswerText:
		v := a.Value
		w.Value = &v
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrInvalidAnswer, a.Kind)
	}
	return json.Marshal(w)
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	var w answerWire
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAnswer, err)
	}
	switch w.Kind {
	case AnswerOption:
		if w.OptionID == nil || w.Value != nil {
			return fmt.Errorf("%w: option answers carry optionId only", ErrInvalidAnswer)
		}
		*a = OptionAnswer(*w.OptionID)
	case AnswerText:
		if w.Value == nil || w.OptionID != nil {
			return fmt.Errorf("%w: text answers carry value only", ErrInvalidAnswer)
		}
		*a = TextAnswer(*w.Value)
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAnswer, w.Kind)
	}
	return nil
}

// Validate checks the answer against the question it is given for.
func (a Answer) Validate(q *QuizQuestion) error {
	if q == nil {
		return fmt.Errorf("%w: unknown question", ErrInvalidAnswer)
	}
	switch a.Kind {
	case AnswerOption:
		if q.Type != QuestionMultipleChoice {
			return fmt.Errorf("%w: question %s expects text", ErrInvalidAnswer, q.ID)
		}
		if q.Option(a.OptionID) == nil {
			return fmt.Errorf("%w: option %s not in question %s", ErrInvalidAnswer, a.OptionID, q.ID)
		}
	case AnswerText:
		if !q.Type.FreeText() {
			return fmt.Errorf("%w: question %s expects an option", ErrInvalidAnswer, q.ID)
		}
		if strings.TrimSpace(a.Value) == "" {
			return fmt.Errorf("%w: empty answer for question %s", ErrInvalidAnswer, q.ID)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAnswer, a.Kind)
	}
	return nil
}
