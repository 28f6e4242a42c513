package app

import (
	"errors"
	"fmt"

	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/billing"
	"github.com/yungbote/studyhub-backend/internal/platform/gcp"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
	"github.com/yungbote/studyhub-backend/internal/services"
)

// Clients are the outbound dependencies the services talk to.
type Clients struct {
	Bucket  gcp.ObjectStore
	Gen     genapi.Client
	Gateway billing.Gateway // nil when payments are not configured
}

type Services struct {
	Plan       services.PlanService
	Preference services.PreferenceService
	Subject    services.SubjectService
	Lecture    services.LectureService
	File       services.FileService
	Brief      services.BriefService
	Flashcard  services.FlashcardService
	Quiz       services.QuizService
	Billing    services.BillingService
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	bucket, err := gcp.NewObjectStore(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init object storage: %w", err)
	}
	gen, err := genapi.NewClient(log, genapi.ConfigFromEnv())
	if err != nil {
		return Clients{}, fmt.Errorf("init generation client: %w", err)
	}
	gateway, err := billing.NewMidtransGateway(log, cfg.MidtransServerKey, cfg.MidtransEnv)
	if err != nil {
		if !errors.Is(err, billing.ErrNotConfigured) {
			return Clients{}, fmt.Errorf("init payment gateway: %w", err)
		}
		log.Warn("payments disabled", "reason", err)
	}
	return Clients{Bucket: bucket, Gen: gen, Gateway: gateway}, nil
}

func wireServices(
	log *logger.Logger,
	cfg Config,
	r Repos,
	c Clients,
	registry *generation.Registry,
	notifier *realtime.Notifier,
) (Services, error) {
	log.Info("Wiring services...")
	schedules, err := generation.LoadSchedules(cfg.SchedulesYAML)
	if err != nil {
		return Services{}, fmt.Errorf("load generation schedules: %w", err)
	}
	catalog, err := services.LoadPlanCatalog(cfg.PlansYAML)
	if err != nil {
		return Services{}, fmt.Errorf("load plan catalog: %w", err)
	}
	hub := services.NewSessionHub(log, registry, schedules, notifier)

	plan := services.NewPlanService(log, catalog, r.UserPlan)
	files := services.NewFileService(log, r.Lecture, r.File, c.Bucket, plan, notifier)
	return Services{
		Plan:       plan,
		Preference: services.NewPreferenceService(log, r.UserPreference),
		Subject:    services.NewSubjectService(log, r.Subject, r.Lecture, r.File, c.Bucket, plan),
		Lecture: services.NewLectureService(log, r.Subject, r.Lecture, r.File,
			r.Brief, r.FlashcardSet, r.QuizSet, c.Bucket, plan),
		File:      files,
		Brief:     services.NewBriefService(log, hub, r.Lecture, files, r.Brief, c.Gen),
		Flashcard: services.NewFlashcardService(log, hub, r.Lecture, files, r.FlashcardSet, c.Gen),
		Quiz: services.NewQuizService(log, hub, r.Lecture, files, r.QuizSet,
			r.QuizSubmission, plan, c.Gen),
		Billing: services.NewBillingService(log, c.Gateway, catalog, r.UserPlan, r.PlanOrder, notifier),
	}, nil
}
