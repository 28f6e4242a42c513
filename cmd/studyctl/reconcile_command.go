package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
)

type reconcileResult struct {
	Kind     generation.Kind
	Outcome  generation.Outcome
	Attempts int
	Err      error
}

func newReconcileCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	cmd := &cobra.Command{
		Use:   "reconcile <lecture-id>",
		Short: "Poll the artifact store until missing artifacts appear",
		Long: "Runs the generation poller against the database for every artifact kind the lecture\n" +
			"is missing (or only --kind), using the configured backoff schedule.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lectureID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid lecture id: %w", err)
			}
			kinds := generation.Kinds
			if kindFlag != "" {
				k, err := generation.ParseKind(kindFlag)
				if err != nil {
					return err
				}
				kinds = []generation.Kind{k}
			}
			results, err := reconcileLecture(cmd.Context(), ctx, lectureID, kinds)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(results))
			missing := 0
			for _, r := range results {
				note := ""
				if r.Err != nil {
					note = r.Err.Error()
				}
				if r.Outcome != generation.OutcomeFound {
					missing++
				}
				rows = append(rows, []string{string(r.Kind), string(r.Outcome), strconv.Itoa(r.Attempts), note})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "Outcome", "Attempts", "Error"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			if missing > 0 {
				return fmt.Errorf("%d artifact(s) still missing for lecture %s", missing, lectureID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&kindFlag, "kind", "", "Only reconcile this kind (brief, quiz, flashcards)")
	return cmd
}

// reconcileLecture polls each kind concurrently. An artifact already present is
// reported found with zero attempts.
func reconcileLecture(ctx context.Context, c *commandContext, lectureID uuid.UUID, kinds []generation.Kind) ([]reconcileResult, error) {
	r, err := c.repos()
	if err != nil {
		return nil, err
	}
	schedules, err := c.schedules()
	if err != nil {
		return nil, err
	}
	lecture, err := r.lectures.GetByID(dbctx.Context{Ctx: ctx}, lectureID)
	if err != nil {
		return nil, fmt.Errorf("load lecture: %w", err)
	}
	if lecture == nil {
		return nil, fmt.Errorf("lecture %s not found", lectureID)
	}

	results := make([]reconcileResult, len(kinds))
	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		g.Go(func() error {
			var res reconcileResult
			switch kind {
			case generation.KindBrief:
				res = pollKind(gctx, c, kind, schedules.For(kind), func(ctx context.Context) (*types.Brief, error) {
					return r.briefs.GetByLectureID(dbctx.Context{Ctx: ctx}, lectureID)
				})
			case generation.KindQuiz:
				res = pollKind(gctx, c, kind, schedules.For(kind), func(ctx context.Context) (*types.QuizSet, error) {
					return r.quizzes.GetByLectureID(dbctx.Context{Ctx: ctx}, lectureID)
				})
			case generation.KindFlashcards:
				res = pollKind(gctx, c, kind, schedules.For(kind), func(ctx context.Context) (*types.FlashcardSet, error) {
					return r.flashcards.GetByLectureID(dbctx.Context{Ctx: ctx}, lectureID)
				})
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func pollKind[T any](ctx context.Context, c *commandContext, kind generation.Kind, s generation.Schedule, find func(context.Context) (*T, error)) reconcileResult {
	existing, err := find(ctx)
	if err != nil {
		return reconcileResult{Kind: kind, Outcome: generation.OutcomeError, Err: err}
	}
	if existing != nil {
		return reconcileResult{Kind: kind, Outcome: generation.OutcomeFound}
	}
	log := c.appLogger().With("kind", kind)
	p := &generation.Poller[T]{
		Kind:     kind,
		Schedule: s,
		Waiter:   c.waiter,
		Find:     find,
		Log:      log,
		OnAttempt: func(attempt int) {
			log.Debug("polling", "attempt", attempt)
		},
	}
	res := p.Run(ctx)
	return reconcileResult{Kind: kind, Outcome: res.Outcome, Attempts: res.Attempts, Err: res.Err}
}
