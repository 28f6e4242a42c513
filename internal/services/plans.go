package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/studyhub-backend/internal/domain/user"
)

//go:embed plans.yaml
var embeddedPlans []byte

// PlanLimits is one entry of the plan catalog. Zero limits are unlimited.
type PlanLimits struct {
	Name             string `yaml:"-" json:"name"`
	MaxSubjects      int    `yaml:"max_subjects" json:"max_subjects"`
	MaxLectures      int    `yaml:"max_lectures" json:"max_lectures"`
	MaxUploadMB      int    `yaml:"max_upload_mb" json:"max_upload_mb"`
	MaxQuizQuestions int    `yaml:"max_quiz_questions" json:"max_quiz_questions"`
	PriceIDR         int64  `yaml:"price_idr" json:"price_idr,omitempty"`
	PeriodDays       int    `yaml:"period_days" json:"period_days,omitempty"`
}

func withinLimit(limit int, current int64) bool {
	return limit <= 0 || current < int64(limit)
}

func (p PlanLimits) AllowsSubject(existing int64) bool { return withinLimit(p.MaxSubjects, existing) }
func (p PlanLimits) AllowsLecture(existing int64) bool { return withinLimit(p.MaxLectures, existing) }

func (p PlanLimits) AllowsUpload(sizeBytes int64) bool {
	return p.MaxUploadMB <= 0 || sizeBytes <= int64(p.MaxUploadMB)<<20
}

func (p PlanLimits) AllowsQuestions(n int) bool {
	return p.MaxQuizQuestions <= 0 || n <= p.MaxQuizQuestions
}

type PlanCatalog struct {
	plans map[string]PlanLimits
}

// LoadPlanCatalog reads path, then PLANS_YAML, then the embedded catalog.
func LoadPlanCatalog(path string) (*PlanCatalog, error) {
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv("PLANS_YAML"))
	}
	raw := embeddedPlans
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read plan catalog %s: %w", path, err)
		}
		raw = b
	}
	return parsePlanCatalog(raw)
}

func parsePlanCatalog(raw []byte) (*PlanCatalog, error) {
	var doc struct {
		Plans map[string]PlanLimits `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse plan catalog: %w", err)
	}
	for _, name := range []string{user.PlanFree, user.PlanPremium} {
		if _, ok := doc.Plans[name]; !ok {
			return nil, fmt.Errorf("plan catalog: missing plan %q", name)
		}
	}
	if doc.Plans[user.PlanPremium].PriceIDR <= 0 {
		return nil, fmt.Errorf("plan catalog: premium price_idr must be positive")
	}
	out := make(map[string]PlanLimits, len(doc.Plans))
	for name, p := range doc.Plans {
		p.Name = name
		if p.PeriodDays <= 0 {
			p.PeriodDays = 30
		}
		out[name] = p
	}
	return &PlanCatalog{plans: out}, nil
}

// Get falls back to the free plan for unknown names.
func (c *PlanCatalog) Get(name string) PlanLimits {
	if p, ok := c.plans[name]; ok {
		return p
	}
	return c.plans[user.PlanFree]
}
