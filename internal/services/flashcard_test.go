package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
)

func TestFlashcardsGenerateAndNavigate(t *testing.T) {
	f := newFixture(t)
	userID := uuid.New()
	lecture, _ := f.lectureWithFile(userID)
	f.gen.pdf = func(ctx context.Context, req genapi.ProcessRequest) (*genapi.FlashcardResult, error) {
		return &genapi.FlashcardResult{Flashcards: []genapi.Flashcard{
			{Question: "ATP?", Answer: "Energy currency"},
			{Question: " ", Answer: "dropped"},
			{Question: "DNA?", Answer: "Genetic material"},
		}}, nil
	}
	if _, started, err := f.flashcards.Generate(f.dbc, userID, lecture.ID, uuid.Nil); err != nil || !started {
		t.Fatalf("Generate: started=%v err=%v", started, err)
	}
	snap := settle(t, func() (FlashcardState, error) { return f.flashcards.State(f.dbc, userID, lecture.ID) })
	if snap.Phase != generation.PhaseReady || snap.Position != 0 || len(snap.Artifact.Cards) != 2 {
		t.Fatalf("state: got=%+v", snap)
	}

	if _, changed, _ := f.flashcards.SetCard(f.dbc, userID, lecture.ID, 2); changed {
		t.Fatalf("card 2 is out of range")
	}
	if snap, changed, err := f.flashcards.SetCard(f.dbc, userID, lecture.ID, 1); err != nil || !changed || snap.Position != 1 {
		t.Fatalf("card 1: changed=%v position=%d err=%v", changed, snap.Position, err)
	}
	stored, _ := f.cardRepo.GetByLectureID(f.dbc, lecture.ID)
	if stored == nil || stored.CurrentCard != 1 {
		t.Fatalf("stored card: got=%+v", stored)
	}
}
