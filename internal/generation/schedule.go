package generation

import (
	"embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const schedulesEnv = "GENERATION_SCHEDULES_YAML"

//go:embed schedules.yaml
var schedulesFS embed.FS

type Kind string

const (
	KindBrief      Kind = "brief"
	KindQuiz       Kind = "quiz"
	KindFlashcards Kind = "flashcards"
)

var Kinds = []Kind{KindBrief, KindQuiz, KindFlashcards}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown artifact kind %q", s)
}

// Step applies DelayMS to every attempt up to and including UpTo.
type Step struct {
	UpTo    int `yaml:"up_to"`
	DelayMS int `yaml:"delay_ms"`
}

type Schedule struct {
	Steps []Step `yaml:"steps"`
}

type Tick struct {
	Delay time.Duration
	Done  bool
}

var DefaultSchedule = Schedule{Steps: []Step{
	{UpTo: 5, DelayMS: 2000},
	{UpTo: 10, DelayMS: 3000},
	{UpTo: 20, DelayMS: 5000},
	{UpTo: 30, DelayMS: 8000},
}}

// Ceiling is the last attempt that still gets a read.
func (s Schedule) Ceiling() int {
	if len(s.Steps) == 0 {
		return 0
	}
	return s.Steps[len(s.Steps)-1].UpTo
}

// Tick is the delay before the given 1-based attempt, or Done once the
// attempt is past the ceiling.
func (s Schedule) Tick(attempt int) Tick {
	if attempt < 1 {
		attempt = 1
	}
	for _, step := range s.Steps {
		if attempt <= step.UpTo {
			return Tick{Delay: time.Duration(step.DelayMS) * time.Millisecond}
		}
	}
	return Tick{Done: true}
}

// Total is the worst-case time spent waiting before a timeout.
func (s Schedule) Total() time.Duration {
	var total time.Duration
	for n := 1; n <= s.Ceiling(); n++ {
		total += s.Tick(n).Delay
	}
	return total
}

func (s Schedule) validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("schedule has no steps")
	}
	prev := 0
	for i, step := range s.Steps {
		if step.UpTo <= prev {
			return fmt.Errorf("step %d: up_to %d must exceed %d", i, step.UpTo, prev)
		}
		if step.DelayMS <= 0 {
			return fmt.Errorf("step %d: delay_ms must be positive", i)
		}
		prev = step.UpTo
	}
	return nil
}

type Schedules map[Kind]Schedule

// For falls back to the default schedule for kinds without their own steps.
func (s Schedules) For(kind Kind) Schedule {
	if sched, ok := s[kind]; ok && len(sched.Steps) > 0 {
		return sched
	}
	return DefaultSchedule
}

type yamlSchedules struct {
	Version int               `yaml:"version"`
	Default Schedule          `yaml:"default"`
	Kinds   map[Kind]Schedule `yaml:"kinds"`
}

// LoadSchedules reads the schedule file named by path, by GENERATION_SCHEDULES_YAML
// when path is empty, or the embedded copy when neither is set.
func LoadSchedules(path string) (Schedules, error) {
	if strings.TrimSpace(path) == "" {
		path = strings.TrimSpace(os.Getenv(schedulesEnv))
	}
	var (
		data []byte
		err  error
	)
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = schedulesFS.ReadFile("schedules.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("read schedules: %w", err)
	}
	return parseSchedules(data)
}

func parseSchedules(data []byte) (Schedules, error) {
	var file yamlSchedules
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse schedules: %w", err)
	}
	def := file.Default
	if len(def.Steps) == 0 {
		def = DefaultSchedule
	}
	if err := def.validate(); err != nil {
		return nil, fmt.Errorf("default schedule: %w", err)
	}
	out := Schedules{}
	for _, kind := range Kinds {
		out[kind] = def
	}
	for key, sched := range file.Kinds {
		kind, err := ParseKind(string(key))
		if err != nil {
			return nil, err
		}
		if len(sched.Steps) == 0 {
			continue
		}
		sort.SliceStable(sched.Steps, func(i, j int) bool { return sched.Steps[i].UpTo < sched.Steps[j].UpTo })
		if err := sched.validate(); err != nil {
			return nil, fmt.Errorf("%s schedule: %w", kind, err)
		}
		out[kind] = sched
	}
	return out, nil
}
