package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/studyhub-backend/internal/http/handlers"
	"github.com/yungbote/studyhub-backend/internal/platform/i18n"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/realtime"
)

type Handlers struct {
	Health   *httpH.HealthHandler
	Subject  *httpH.SubjectHandler
	Lecture  *httpH.LectureHandler
	File     *httpH.FileHandler
	Artifact *httpH.ArtifactHandler
	Account  *httpH.AccountHandler
	Billing  *httpH.BillingHandler
	Realtime *httpH.RealtimeHandler
}

func wireHandlers(log *logger.Logger, db *gorm.DB, s Services, sseHub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	loc := httpH.NewLocalizer(log, i18n.New(), s.Preference)
	return Handlers{
		Health:   httpH.NewHealthHandler(db),
		Subject:  httpH.NewSubjectHandler(log, loc, s.Subject, s.Lecture),
		Lecture:  httpH.NewLectureHandler(log, loc, s.Lecture),
		File:     httpH.NewFileHandler(log, loc, s.File),
		Artifact: httpH.NewArtifactHandler(log, loc, s.Brief, s.Flashcard, s.Quiz),
		Account:  httpH.NewAccountHandler(log, loc, s.Plan, s.Preference),
		Billing:  httpH.NewBillingHandler(log, loc, s.Billing),
		Realtime: httpH.NewRealtimeHandler(log, loc, sseHub),
	}
}
