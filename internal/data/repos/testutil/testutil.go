// Package testutil provides databases and fixtures for repository and service tests.
package testutil

import (
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/studyhub-backend/internal/data/db"
	"github.com/yungbote/studyhub-backend/internal/platform/logger"
)

var testLogger = sync.OnceValues(func() (*logger.Logger, error) { return logger.New("test") })

// Logger is shared by every test in the process and only prints warnings.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := testLogger()
	if err != nil {
		tb.Fatalf("test logger: %v", err)
	}
	return log
}

// DB opens a private, migrated in-memory sqlite database that is closed when the
// test ends. The test is skipped when sqlite cannot be opened (CGO_ENABLED=0).
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	gdb, err := db.OpenSQLite(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), true)
	if err != nil {
		tb.Skipf("sqlite unavailable: %v", err)
	}
	tb.Cleanup(func() {
		if raw, err := gdb.DB(); err == nil {
			_ = raw.Close()
		}
	})
	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return gdb
}
