package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/studyhub-backend/internal/http/handlers"
	httpMW "github.com/yungbote/studyhub-backend/internal/http/middleware"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	CORSOrigins    []string
	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler   *httpH.HealthHandler
	SubjectHandler  *httpH.SubjectHandler
	LectureHandler  *httpH.LectureHandler
	FileHandler     *httpH.FileHandler
	ArtifactHandler *httpH.ArtifactHandler
	AccountHandler  *httpH.AccountHandler
	BillingHandler  *httpH.BillingHandler
	RealtimeHandler *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	if cfg.Log != nil {
		r.Use(httpMW.RequestLogger(cfg.Log))
	}
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")

	// Gateway callbacks (public, signature checked)
	if cfg.BillingHandler != nil {
		api.POST("/billing/notifications", cfg.BillingHandler.Notification)
	}

	protected := api.Group("/")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/sse/stream", cfg.RealtimeHandler.Stream)
	}

	// Account
	if cfg.AccountHandler != nil {
		protected.GET("/me/plan", cfg.AccountHandler.Plan)
		protected.GET("/me/preferences", cfg.AccountHandler.Preferences)
		protected.PUT("/me/preferences", cfg.AccountHandler.UpdatePreferences)
	}
	if cfg.BillingHandler != nil {
		protected.POST("/billing/checkout", cfg.BillingHandler.Checkout)
	}

	// Subjects
	if cfg.SubjectHandler != nil {
		protected.GET("/subjects", cfg.SubjectHandler.List)
		protected.POST("/subjects", cfg.SubjectHandler.Create)
		protected.PATCH("/subjects/:id", cfg.SubjectHandler.Update)
		protected.DELETE("/subjects/:id", cfg.SubjectHandler.Delete)
		protected.GET("/subjects/:id/lectures", cfg.SubjectHandler.ListLectures)
		protected.POST("/subjects/:id/lectures", cfg.SubjectHandler.CreateLecture)
	}

	// Lectures
	if cfg.LectureHandler != nil {
		protected.GET("/lectures/:id", cfg.LectureHandler.Overview)
		protected.PATCH("/lectures/:id", cfg.LectureHandler.Rename)
		protected.DELETE("/lectures/:id", cfg.LectureHandler.Delete)
	}

	// Files
	if cfg.FileHandler != nil {
		protected.POST("/lectures/:id/files", cfg.FileHandler.Upload)
		protected.GET("/lectures/:id/files", cfg.FileHandler.List)
		protected.GET("/files/:id/url", cfg.FileHandler.URL)
		protected.DELETE("/files/:id", cfg.FileHandler.Delete)
	}

	// Artifacts
	if h := cfg.ArtifactHandler; h != nil {
		protected.GET("/lectures/:id/brief", h.BriefState)
		protected.POST("/lectures/:id/brief/generate", h.GenerateBrief)
		protected.PUT("/lectures/:id/brief/page", h.SetBriefPage)
		protected.GET("/lectures/:id/brief/pages/:page/html", h.BriefPageHTML)
		protected.GET("/lectures/:id/brief/quality", h.BriefQuality)
		protected.DELETE("/lectures/:id/brief/session", h.CloseBrief)

		protected.GET("/lectures/:id/flashcards", h.FlashcardState)
		protected.POST("/lectures/:id/flashcards/generate", h.GenerateFlashcards)
		protected.PUT("/lectures/:id/flashcards/card", h.SetFlashcard)
		protected.DELETE("/lectures/:id/flashcards/session", h.CloseFlashcards)

		protected.GET("/lectures/:id/quiz", h.QuizState)
		protected.POST("/lectures/:id/quiz/generate", h.GenerateQuiz)
		protected.PUT("/lectures/:id/quiz/question", h.SetQuizQuestion)
		protected.POST("/lectures/:id/quiz/submissions", h.SubmitQuiz)
		protected.GET("/lectures/:id/quiz/submissions", h.QuizSubmissions)
		protected.DELETE("/lectures/:id/quiz/session", h.CloseQuiz)
	}

	return r
}
