package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm"

	"habit-planner/internal/bizday"
	"habit-planner/internal/repository"
)

// NewTestDB opens a migrated SQLite database in a temporary directory.
// It automatically closes the connection when the test completes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("creating test db: %v", err)
	}

	t.Cleanup(func() {
		sqlDB, err := db.DB()
		if err != nil {
			return
		}
		if err := sqlDB.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	return db
}

// NewTestStore wraps NewTestDB in a repository.Store.
func NewTestStore(t *testing.T) *repository.Store {
	t.Helper()
	return repository.NewStore(NewTestDB(t))
}

// Clock is a settable time source for tests.
type Clock struct {
	now time.Time
}

// NewClock starts a clock at the given local date and HH:MM.
func NewClock(t *testing.T, date, clock string) *Clock {
	t.Helper()
	c := &Clock{}
	c.Set(t, date, clock)
	return c
}

func (c *Clock) Now() time.Time {
	return c.now
}

// Set moves the clock to the given local date and HH:MM.
func (c *Clock) Set(t *testing.T, date, clock string) {
	t.Helper()
	at, err := time.ParseInLocation("2006-01-02 15:04", date+" "+clock, bizday.Location)
	if err != nil {
		t.Fatalf("parsing clock %s %s: %v", date, clock, err)
	}
	c.now = at
}
