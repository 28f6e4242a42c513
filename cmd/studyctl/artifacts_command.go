package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
)

func newArtifactsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "artifacts",
		Short: "Inspect generated artifacts",
	}
	cmd.AddCommand(newArtifactsStatusCommand(ctx))
	return cmd
}

type artifactStatus struct {
	Kind     generation.Kind
	Present  bool
	Size     int
	Position int
	Updated  time.Time
}

func newArtifactsStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status <lecture-id>",
		Short: "Show which artifacts exist for a lecture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lectureID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid lecture id: %w", err)
			}
			r, err := ctx.repos()
			if err != nil {
				return err
			}
			dbc := dbctx.Context{Ctx: cmd.Context()}
			lecture, err := r.lectures.GetByID(dbc, lectureID)
			if err != nil {
				return fmt.Errorf("load lecture: %w", err)
			}
			if lecture == nil {
				return fmt.Errorf("lecture %s not found", lectureID)
			}
			statuses, err := lectureArtifacts(dbc, r, lectureID)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Lecture: %s (%s)\n", lecture.Title, lecture.ID)
			rows := make([][]string, 0, len(statuses))
			for _, s := range statuses {
				if !s.Present {
					rows = append(rows, []string{string(s.Kind), "no", "", "", ""})
					continue
				}
				rows = append(rows, []string{
					string(s.Kind),
					"yes",
					strconv.Itoa(s.Size),
					strconv.Itoa(s.Position),
					s.Updated.UTC().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Kind", "Present", "Items", "Position", "Updated (UTC)"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			return nil
		},
	}
}

// lectureArtifacts reports each kind in generation.Kinds order. Items is pages,
// questions, or cards.
func lectureArtifacts(dbc dbctx.Context, r artifactRepos, lectureID uuid.UUID) ([]artifactStatus, error) {
	out := make([]artifactStatus, 0, len(generation.Kinds))
	for _, kind := range generation.Kinds {
		st := artifactStatus{Kind: kind}
		switch kind {
		case generation.KindBrief:
			b, err := r.briefs.GetByLectureID(dbc, lectureID)
			if err != nil {
				return nil, fmt.Errorf("load brief: %w", err)
			}
			if b != nil {
				st = artifactStatus{Kind: kind, Present: true, Size: b.Pages(), Position: b.CurrentPage, Updated: b.UpdatedAt}
			}
		case generation.KindQuiz:
			q, err := r.quizzes.GetByLectureID(dbc, lectureID)
			if err != nil {
				return nil, fmt.Errorf("load quiz: %w", err)
			}
			if q != nil {
				st = artifactStatus{Kind: kind, Present: true, Size: len(q.Questions), Updated: q.UpdatedAt}
			}
		case generation.KindFlashcards:
			f, err := r.flashcards.GetByLectureID(dbc, lectureID)
			if err != nil {
				return nil, fmt.Errorf("load flashcards: %w", err)
			}
			if f != nil {
				st = artifactStatus{Kind: kind, Present: true, Size: len(f.Cards), Position: f.CurrentCard, Updated: f.UpdatedAt}
			}
		}
		out = append(out, st)
	}
	return out, nil
}
