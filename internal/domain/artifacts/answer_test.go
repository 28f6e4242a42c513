package artifacts

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestAnswerDecode(t *testing.T) {
	id := uuid.MustParse("6f1c1b6e-2a59-4c6c-9d55-0a4e3f3b2a11")
	cases := []struct {
		name    string
		raw     string
		want    Answer
		wantErr bool
	}{
		{"option", `{"kind":"option","optionId":"6f1c1b6e-2a59-4c6c-9d55-0a4e3f3b2a11"}`, OptionAnswer(id), false},
		{"text", `{"kind":"text","value":"mitochondria"}`, TextAnswer("mitochondria"), false},
		// a short string is still text; there is no length heuristic
		{"short text", `{"kind":"text","value":"6f1c"}`, TextAnswer("6f1c"), false},
		{"unknown kind", `{"kind":"guess","value":"x"}`, Answer{}, true},
		{"missing kind", `{"value":"x"}`, Answer{}, true},
		{"option with value", `{"kind":"option","optionId":"6f1c1b6e-2a59-4c6c-9d55-0a4e3f3b2a11","value":"x"}`, Answer{}, true},
		{"text without value", `{"kind":"text"}`, Answer{}, true},
		{"extra field", `{"kind":"text","value":"x","score":3}`, Answer{}, true},
	}
	for _, tc := range cases {
		var got Answer
		err := json.Unmarshal([]byte(tc.raw), &got)
		if tc.wantErr {
			if err == nil || !errors.Is(err, ErrInvalidAnswer) {
				t.Fatalf("%s: want ErrInvalidAnswer got=%v", tc.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != tc.want {
			t.Fatalf("%s: want=%+v got=%+v", tc.name, tc.want, got)
		}
	}
}

func TestAnswerEncodeKeepsKind(t *testing.T) {
	raw, err := json.Marshal(TextAnswer("hi"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(raw) != `{"kind":"text","value":"hi"}` {
		t.Fatalf("encode: got=%s", raw)
	}
	if _, err := json.Marshal(Answer{}); err == nil {
		t.Fatalf("kindless answer must not encode")
	}
}

func TestAnswerValidate(t *testing.T) {
	opt := QuizOption{ID: uuid.New(), Text: "A"}
	mc := &QuizQuestion{ID: uuid.New(), Type: QuestionMultipleChoice, Options: []QuizOption{opt}}
	open := &QuizQuestion{ID: uuid.New(), Type: QuestionOpenEnded}

	if err := OptionAnswer(opt.ID).Validate(mc); err != nil {
		t.Fatalf("valid option: %v", err)
	}
	if err := OptionAnswer(uuid.New()).Validate(mc); err == nil {
		t.Fatalf("foreign option should fail")
	}
	if err := TextAnswer("x").Validate(mc); err == nil {
		t.Fatalf("text on multiple choice should fail")
	}
	if err := TextAnswer("  ").Validate(open); err == nil {
		t.Fatalf("blank text should fail")
	}
	if err := TextAnswer("because").Validate(open); err != nil {
		t.Fatalf("valid text: %v", err)
	}
}
