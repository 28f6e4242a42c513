package genapi

import (
	"encoding/json"
	"strings"
)

type ProcessRequest struct {
	UserID    string `json:"userId"`
	LectureID string `json:"lectureId"`
	FilePath  string `json:"filePath"`
}

type QuizOptions struct {
	MultipleChoice bool   `json:"multipleChoice"`
	OpenEnded      bool   `json:"openEnded"`
	CaseStudy      bool   `json:"caseStudy"`
	QuestionCount  int    `json:"questionCount"`
	Difficulty     string `json:"difficulty,omitempty"`
}

type QuizRequest struct {
	ProcessRequest
	Options QuizOptions `json:"options"`
}

type Flashcard struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type FlashcardResult struct {
	Flashcards []Flashcard `json:"flashcards"`
}

type BriefOverview struct {
	DocumentTitle string   `json:"documentTitle"`
	MainThemes    []string `json:"mainThemes"`
	Summary       string   `json:"summary,omitempty"`
}

// UnmarshalJSON also accepts a bare string, which older deployments send.
func (o *BriefOverview) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "\"") {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*o = BriefOverview{Summary: s}
		return nil
	}
	type plain BriefOverview
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*o = BriefOverview(p)
	return nil
}

type BriefResult struct {
	TotalPages       int           `json:"totalPages"`
	PageSummaries    []string      `json:"pageSummaries"`
	Overview         BriefOverview `json:"overview"`
	KeyConcepts      []string      `json:"key_concepts"`
	ImportantDetails []string      `json:"important_details"`
}

type EvaluateRequest struct {
	Question    string `json:"question"`
	ModelAnswer string `json:"modelAnswer"`
	UserAnswer  string `json:"userAnswer"`
}

type Evaluation struct {
	Score     float64 `json:"score"`
	Feedback  string  `json:"feedback"`
	IsCorrect bool    `json:"isCorrect"`
}

// envelope is the failure shape every endpoint may answer with on a 2xx.
type envelope struct {
	Success *bool  `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
