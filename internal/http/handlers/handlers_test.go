package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	types "github.com/yungbote/studyhub-backend/internal/domain"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/http/response"
	"github.com/yungbote/studyhub-backend/internal/platform/apierr"
	"github.com/yungbote/studyhub-backend/internal/platform/ctxutil"
	"github.com/yungbote/studyhub-backend/internal/platform/dbctx"
	"github.com/yungbote/studyhub-backend/internal/platform/genapi"
	"github.com/yungbote/studyhub-backend/internal/platform/i18n"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
	"github.com/yungbote/studyhub-backend/internal/services"
)

type countingGen struct{ calls atomic.Int32 }

func (g *countingGen) ProcessPdf(ctx context.Context, req genapi.ProcessRequest) (*genapi.FlashcardResult, error) {
	g.calls.Add(1)
	return nil, errors.New("unexpected call")
}

func (g *countingGen) ProcessBrief(ctx context.Context, req genapi.ProcessRequest) (*genapi.BriefResult, error) {
	g.calls.Add(1)
	return nil, errors.New("unexpected call")
}

func (g *countingGen) ProcessQuiz(ctx context.Context, req genapi.QuizRequest) error {
	g.calls.Add(1)
	return errors.New("unexpected call")
}

func (g *countingGen) EvaluateAnswer(ctx context.Context, req genapi.EvaluateRequest) (*genapi.Evaluation, error) {
	g.calls.Add(1)
	return nil, errors.New("unexpected call")
}

// briefStub answers every BriefService call from its fields.
type briefStub struct {
	services.BriefService
	state   services.BriefState
	started bool
	err     error
	fileID  uuid.UUID
}

func (b *briefStub) Generate(dbc dbctx.Context, userID, lectureID, fileID uuid.UUID) (services.BriefState, bool, error) {
	b.fileID = fileID
	return b.state, b.started, b.err
}

func (b *briefStub) State(dbc dbctx.Context, userID, lectureID uuid.UUID) (services.BriefState, error) {
	return b.state, b.err
}

type prefStub struct {
	services.PreferenceService
	lang string
}

func (p prefStub) Get(dbc dbctx.Context, userID uuid.UUID) (*types.UserPreference, error) {
	return &types.UserPreference{ID: uuid.New(), UserID: userID, Language: p.lang, Theme: "system"}, nil
}

// withUser stands in for the auth middleware.
func withUser(userID uuid.UUID, lang string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: userID, Language: lang})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func newEngine(user gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(user)
	return r
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) response.ErrorDetail {
	t.Helper()
	var env response.ErrorBody
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode error envelope: %v body=%s", err, w.Body.String())
	}
	return env.Error
}

func TestGenerateQuizWithoutQuestionTypeIsLocalized(t *testing.T) {
	log := logger.NewNop()
	gen := &countingGen{}
	quizzes := services.NewQuizService(log, nil, nil, nil, nil, nil, nil, gen)
	h := NewArtifactHandler(log, NewLocalizer(log, i18n.New(), nil), nil, nil, quizzes)

	r := newEngine(withUser(uuid.New(), ""))
	r.POST("/lectures/:id/quiz/generate", h.GenerateQuiz)

	w := do(r, http.MethodPost, "/lectures/"+uuid.NewString()+"/quiz/generate",
		`{"options":{"question_count":5}}`, map[string]string{"Accept-Language": "es-MX,es;q=0.9"})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status: want=%d got=%d body=%s", http.StatusBadRequest, w.Code, w.Body.String())
	}
	apiErr := decodeError(t, w)
	if apiErr.Code != generation.CodeNoQuestionType {
		t.Fatalf("code: want=%s got=%s", generation.CodeNoQuestionType, apiErr.Code)
	}
	if apiErr.Message != "Selecciona al menos un tipo de pregunta." {
		t.Fatalf("message: got=%q", apiErr.Message)
	}
	if n := gen.calls.Load(); n != 0 {
		t.Fatalf("network calls: want=0 got=%d", n)
	}
}

func TestLanguagePrecedence(t *testing.T) {
	log := logger.NewNop()
	cases := []struct {
		name   string
		prefs  services.PreferenceService
		token  string
		accept string
		want   string
	}{
		{"accept-language only", nil, "", "fr", "Introuvable."},
		{"token wins over header", nil, "es", "fr", "No encontrado."},
		{"stored preference wins", prefStub{lang: "fr"}, "es", "en", "Introuvable."},
		{"nothing set", nil, "", "", "Not found."},
	}
	for _, tc := range cases {
		loc := NewLocalizer(log, i18n.New(), tc.prefs)
		r := newEngine(withUser(uuid.New(), tc.token))
		r.GET("/x", func(c *gin.Context) {
			loc.Error(c, apierr.NotFound("not_found", errors.New("lecture not found")))
		})
		w := do(r, http.MethodGet, "/x", "", map[string]string{"Accept-Language": tc.accept})
		if w.Code != http.StatusNotFound {
			t.Fatalf("%s: status want=404 got=%d", tc.name, w.Code)
		}
		if got := decodeError(t, w).Message; got != tc.want {
			t.Fatalf("%s: message want=%q got=%q", tc.name, tc.want, got)
		}
	}
}

func TestUnclassifiedErrorIsHidden(t *testing.T) {
	log := logger.NewNop()
	loc := NewLocalizer(log, i18n.New(), nil)
	r := newEngine(withUser(uuid.New(), ""))
	r.GET("/x", func(c *gin.Context) {
		loc.Error(c, errors.New("pq: relation \"lectures\" does not exist"))
	})
	w := do(r, http.MethodGet, "/x", "", nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status: want=500 got=%d", w.Code)
	}
	apiErr := decodeError(t, w)
	if apiErr.Code != "internal_error" || bytes.Contains(w.Body.Bytes(), []byte("pq:")) {
		t.Fatalf("leaked internal error: %s", w.Body.String())
	}
}

func TestGenerateBriefAlreadyRunning(t *testing.T) {
	log := logger.NewNop()
	lectureID := uuid.New()
	stub := &briefStub{state: services.BriefState{
		Kind:      generation.KindBrief,
		LectureID: lectureID,
		Phase:     generation.PhasePolling,
		IsPolling: true,
	}}
	h := NewArtifactHandler(log, NewLocalizer(log, i18n.New(), nil), stub, nil, nil)
	r := newEngine(withUser(uuid.New(), ""))
	r.POST("/lectures/:id/brief/generate", h.GenerateBrief)

	fileID := uuid.New()
	w := do(r, http.MethodPost, "/lectures/"+lectureID.String()+"/brief/generate", `{"file_id":"`+fileID.String()+`"}`, nil)
	if w.Code != http.StatusAccepted {
		t.Fatalf("status: want=202 got=%d", w.Code)
	}
	var body struct {
		Accepted bool                `json:"accepted"`
		State    services.BriefState `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Accepted || !body.State.IsPolling {
		t.Fatalf("want dropped request with polling state, got accepted=%v state=%+v", body.Accepted, body.State)
	}
	if stub.fileID != fileID {
		t.Fatalf("file id: want=%s got=%s", fileID, stub.fileID)
	}

	// no body means the latest upload
	stub.started = true
	w = do(r, http.MethodPost, "/lectures/"+lectureID.String()+"/brief/generate", "", nil)
	if w.Code != http.StatusAccepted || stub.fileID != uuid.Nil {
		t.Fatalf("empty body: status=%d file=%s", w.Code, stub.fileID)
	}
}

func TestSnapshotErrorIsLocalized(t *testing.T) {
	log := logger.NewNop()
	stub := &briefStub{state: services.BriefState{
		Kind:      generation.KindBrief,
		Phase:     generation.PhaseFailed,
		Error:     "Generation is taking unusually long.",
		ErrorCode: generation.CodeTakingLong,
	}}
	h := NewArtifactHandler(log, NewLocalizer(log, i18n.New(), nil), stub, nil, nil)
	r := newEngine(withUser(uuid.New(), "fr"))
	r.GET("/lectures/:id/brief", h.BriefState)

	w := do(r, http.MethodGet, "/lectures/"+uuid.NewString()+"/brief", "", nil)
	var body struct {
		State services.BriefState `json:"state"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := i18n.New().Message(language.French, generation.CodeTakingLong, "")
	if body.State.Error != want || body.State.ErrorCode != generation.CodeTakingLong {
		t.Fatalf("error: want=%q got=%q (%s)", want, body.State.Error, body.State.ErrorCode)
	}
}

func TestBadIDs(t *testing.T) {
	log := logger.NewNop()
	loc := NewLocalizer(log, i18n.New(), nil)
	h := NewArtifactHandler(log, loc, &briefStub{}, nil, nil)
	r := newEngine(withUser(uuid.New(), ""))
	r.GET("/lectures/:id/brief", h.BriefState)
	r.GET("/lectures/:id/brief/pages/:page/html", h.BriefPageHTML)

	cases := []struct{ path, code string }{
		{"/lectures/not-a-uuid/brief", "invalid_id"},
		{"/lectures/" + uuid.NewString() + "/brief/pages/two/html", "invalid_page"},
	}
	for _, tc := range cases {
		w := do(r, http.MethodGet, tc.path, "", nil)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("%s: status want=400 got=%d", tc.path, w.Code)
		}
		if got := decodeError(t, w).Code; got != tc.code {
			t.Fatalf("%s: code want=%s got=%s", tc.path, tc.code, got)
		}
	}
}

func TestReadyWithoutDatabase(t *testing.T) {
	r := newEngine(func(c *gin.Context) { c.Next() })
	h := NewHealthHandler(nil)
	r.GET("/readyz", h.Ready)
	r.GET("/healthcheck", h.HealthCheck)
	for _, p := range []string{"/readyz", "/healthcheck"} {
		if w := do(r, http.MethodGet, p, "", nil); w.Code != http.StatusOK {
			t.Fatalf("%s: want=200 got=%d", p, w.Code)
		}
	}
}
