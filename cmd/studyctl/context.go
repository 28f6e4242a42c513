package main

import (
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/yungbote/studyhub-backend/internal/data/db"
	"github.com/yungbote/studyhub-backend/internal/data/repos"
	"github.com/yungbote/studyhub-backend/internal/generation"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

type commandContext struct {
	sqliteDSN     string
	schedulesPath string
	logMode       string

	waiter generation.Waiter

	logOnce sync.Once
	log     *logger.Logger

	dbOnce  sync.Once
	db      *gorm.DB
	dbErr   error
	closeDB func() error
}

func newCommandContext() *commandContext {
	return &commandContext{waiter: generation.RealWaiter}
}

func (c *commandContext) appLogger() *logger.Logger {
	c.logOnce.Do(func() {
		l, err := logger.New(c.logMode)
		if err != nil {
			l = logger.NewNop()
		}
		c.log = l
	})
	return c.log
}

func (c *commandContext) database() (*gorm.DB, error) {
	c.dbOnce.Do(func() {
		if dsn := strings.TrimSpace(c.sqliteDSN); dsn != "" {
			gdb, err := db.OpenSQLite(dsn, true)
			if err != nil {
				c.dbErr = err
				return
			}
			if err := db.AutoMigrateAll(gdb); err != nil {
				c.dbErr = fmt.Errorf("migrate: %w", err)
				return
			}
			c.db = gdb
			c.closeDB = func() error {
				sqlDB, err := gdb.DB()
				if err != nil {
					return err
				}
				return sqlDB.Close()
			}
			return
		}
		pg, err := db.NewPostgresService(c.appLogger(), db.PostgresConfigFromEnv())
		if err != nil {
			c.dbErr = err
			return
		}
		c.db = pg.DB()
		c.closeDB = pg.Close
	})
	return c.db, c.dbErr
}

type artifactRepos struct {
	lectures   repos.LectureRepo
	briefs     repos.BriefRepo
	flashcards repos.FlashcardSetRepo
	quizzes    repos.QuizSetRepo
}

func (c *commandContext) repos() (artifactRepos, error) {
	gdb, err := c.database()
	if err != nil {
		return artifactRepos{}, err
	}
	log := c.appLogger()
	return artifactRepos{
		lectures:   repos.NewLectureRepo(gdb, log),
		briefs:     repos.NewBriefRepo(gdb, log),
		flashcards: repos.NewFlashcardSetRepo(gdb, log),
		quizzes:    repos.NewQuizSetRepo(gdb, log),
	}, nil
}

func (c *commandContext) schedules() (generation.Schedules, error) {
	return generation.LoadSchedules(c.schedulesPath)
}

func (c *commandContext) close() {
	if c.closeDB != nil {
		_ = c.closeDB()
		c.closeDB = nil
	}
	if c.log != nil {
		c.log.Sync()
	}
}
