package services

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyhub-backend/internal/data/repos"
	"github.com/yungbote/studyhub-backend/internal/data/repos/testutil"
	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/billing"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
)

type instantWaiter struct{}

func (instantWaiter) Wait(ctx context.Context, d time.Duration) error { return ctx.Err() }

type fakeGen struct {
	calls atomic.Int32

	brief    func(ctx context.Context, req genapi.ProcessRequest) (*genapi.BriefResult, error)
	pdf      func(ctx context.Context, req genapi.ProcessRequest) (*genapi.FlashcardResult, error)
	quiz     func(ctx context.Context, req genapi.QuizRequest) error
	evaluate func(ctx context.Context, req genapi.EvaluateRequest) (*genapi.Evaluation, error)
}

func (g *fakeGen) ProcessPdf(ctx context.Context, req genapi.ProcessRequest) (*genapi.FlashcardResult, error) {
	g.calls.Add(1)
	return g.pdf(ctx, req)
}

func (g *fakeGen) ProcessBrief(ctx context.Context, req genapi.ProcessRequest) (*genapi.BriefResult, error) {
	g.calls.Add(1)
	return g.brief(ctx, req)
}

func (g *fakeGen) ProcessQuiz(ctx context.Context, req genapi.QuizRequest) error {
	g.calls.Add(1)
	return g.quiz(ctx, req)
}

func (g *fakeGen) EvaluateAnswer(ctx context.Context, req genapi.EvaluateRequest) (*genapi.Evaluation, error) {
	g.calls.Add(1)
	return g.evaluate(ctx, req)
}

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeBucket() *fakeBucket { return &fakeBucket{objects: map[string][]byte{}} }

func (b *fakeBucket) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	raw, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.objects[key] = raw
	return nil
}

func (b *fakeBucket) Delete(ctx context.Context, keys ...string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, k := range keys {
		delete(b.objects, k)
	}
	return nil
}

func (b *fakeBucket) ListKeys(ctx context.Context, prefix string) ([]string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for k := range b.objects {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (b *fakeBucket) URL(key string) string { return "https://storage.test/lecture-files/" + key }

func (b *fakeBucket) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.objects)
}

type fakeGateway struct {
	requests []billing.CheckoutRequest
}

func (g *fakeGateway) CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.CheckoutResult, error) {
	g.requests = append(g.requests, req)
	return &billing.CheckoutResult{OrderID: req.OrderID, Token: "tok", RedirectURL: "https://pay.test/" + req.OrderID}, nil
}

func (g *fakeGateway) ServerKey() string { return "server-key" }

type fixture struct {
	t        *testing.T
	db       *gorm.DB
	dbc      dbctx.Context
	gen      *fakeGen
	bucket   *fakeBucket
	gateway  *fakeGateway
	registry *generation.Registry
	catalog  *PlanCatalog

	subjectRepo repos.SubjectRepo
	lectureRepo repos.LectureRepo
	fileRepo    repos.FileRepo
	briefRepo   repos.BriefRepo
	cardRepo    repos.FlashcardSetRepo
	quizRepo    repos.QuizSetRepo
	planRepo    repos.UserPlanRepo
	orderRepo   repos.PlanOrderRepo

	plans      PlanService
	subjects   SubjectService
	lectures   LectureService
	files      FileService
	briefs     BriefService
	flashcards FlashcardService
	quizzes    QuizService
	billing    BillingService
	prefs      PreferenceService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	catalog, err := LoadPlanCatalog("")
	if err != nil {
		t.Fatalf("LoadPlanCatalog: %v", err)
	}
	f := &fixture{
		t:        t,
		db:       db,
		dbc:      dbctx.Context{Ctx: context.Background()},
		gen:      &fakeGen{},
		bucket:   newFakeBucket(),
		gateway:  &fakeGateway{},
		registry: generation.NewRegistry(log, time.Minute),
		catalog:  catalog,
	}
	t.Cleanup(f.registry.CloseAll)

	f.subjectRepo = repos.NewSubjectRepo(db, log)
	f.lectureRepo = repos.NewLectureRepo(db, log)
	f.fileRepo = repos.NewFileRepo(db, log)
	f.briefRepo = repos.NewBriefRepo(db, log)
	f.cardRepo = repos.NewFlashcardSetRepo(db, log)
	f.quizRepo = repos.NewQuizSetRepo(db, log)
	f.planRepo = repos.NewUserPlanRepo(db, log)
	f.orderRepo = repos.NewPlanOrderRepo(db, log)

	hub := NewSessionHub(log, f.registry, generation.Schedules{}, nil).WithWaiter(instantWaiter{})
	f.plans = NewPlanService(log, catalog, f.planRepo)
	f.subjects = NewSubjectService(log, f.subjectRepo, f.lectureRepo, f.fileRepo, f.bucket, f.plans)
	f.lectures = NewLectureService(log, f.subjectRepo, f.lectureRepo, f.fileRepo, f.briefRepo, f.cardRepo, f.quizRepo, f.bucket, f.plans)
	f.files = NewFileService(log, f.lectureRepo, f.fileRepo, f.bucket, f.plans, nil)
	f.briefs = NewBriefService(log, hub, f.lectureRepo, f.files, f.briefRepo, f.gen)
	f.flashcards = NewFlashcardService(log, hub, f.lectureRepo, f.files, f.cardRepo, f.gen)
	f.quizzes = NewQuizService(log, hub, f.lectureRepo, f.files, f.quizRepo, repos.NewQuizSubmissionRepo(db, log), f.plans, f.gen)
	f.billing = NewBillingService(log, f.gateway, catalog, f.planRepo, f.orderRepo, nil)
	f.prefs = NewPreferenceService(log, repos.NewUserPreferenceRepo(db, log))
	return f
}

// lectureWithFile seeds a subject, a lecture and one uploaded pdf.
func (f *fixture) lectureWithFile(userID uuid.UUID) (*types.Lecture, *FileView) {
	f.t.Helper()
	subject, err := f.subjects.Create(f.dbc, userID, SubjectInput{Name: "Biology"})
	if err != nil {
		f.t.Fatalf("create subject: %v", err)
	}
	lecture, err := f.lectures.Create(f.dbc, userID, subject.ID, LectureInput{Title: "Cells"})
	if err != nil {
		f.t.Fatalf("create lecture: %v", err)
	}
	file, err := f.files.Upload(f.dbc, userID, lecture.ID, FileUpload{Name: "cells.pdf", Size: 4, Reader: strings.NewReader("%PDF")})
	if err != nil {
		f.t.Fatalf("upload: %v", err)
	}
	return lecture, file
}

// settle polls read until the session has no generation or poll in flight.
func settle[T any](t *testing.T, read func() (generation.Snapshot[T], error)) generation.Snapshot[T] {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		snap, err := read()
		if err != nil {
			t.Fatalf("read state: %v", err)
		}
		if !snap.IsLoading && !snap.IsPolling {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("session did not settle: %+v", snap)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
