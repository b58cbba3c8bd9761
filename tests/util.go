package testutil

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/Hexmon/e-dossier-sub006/core/performance"
	"github.com/Hexmon/e-dossier-sub006/storage/database"
	"github.com/Hexmon/e-dossier-sub006/storage/database/inmem"
)

// PrepareInmemDB returns an empty in-memory store and the repository backed by it.
func PrepareInmemDB(t *testing.T) (*inmemdb.DB, performance.Repository) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	return db, inmemdb.NewPerformanceRepository(db)
}

// PrepareSQLite opens a migrated in-memory SQLite database, closed when the test ends.
func PrepareSQLite(t *testing.T) *sqlx.DB {
	db, err := sqlx.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sqlx.Open() failed: %v", err)
	}
	// every connection to :memory: is a distinct database
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db.DB, "sqlite"); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// MustExec runs a seeding statement written with `?` bind vars.
func MustExec(t *testing.T, db *sqlx.DB, query string, args ...interface{}) {
	if _, err := db.Exec(db.Rebind(query), args...); err != nil {
		t.Fatalf("exec %q failed: %v", query, err)
	}
}

func CreateEnrollment(t *testing.T, db *inmemdb.DB, ocID, courseID, branchTag string) performance.Enrollment {
	if ocID == "" {
		t.Fatal("createEnrollment() failed: empty oc id")
	}
	return db.AddEnrollment(performance.Enrollment{
		OCID:      ocID,
		CourseID:  courseID,
		BranchTag: branchTag,
		IsActive:  true,
	})
}

func Float(v float64) *float64 { return &v }

func String(s string) *string { return &s }

// AuditRecorder is a performance.AuditLogger keeping every event in memory.
type AuditRecorder struct {
	mu     sync.Mutex
	events []performance.AuditEvent
}

var _ performance.AuditLogger = (*AuditRecorder)(nil)

func (r *AuditRecorder) LogSprUpsert(_ context.Context, evt performance.AuditEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *AuditRecorder) Events() []performance.AuditEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]performance.AuditEvent(nil), r.events...)
}

// Logger is a core.Logger keeping formatted messages in memory.
type Logger struct {
	mu       sync.Mutex
	Messages []string
}

func (l *Logger) log(level, msg string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Messages = append(l.Messages, fmt.Sprintf("%s: %s", level, msg))
}

func (l *Logger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args...) }
func (l *Logger) Info(msg string, args ...interface{})  { l.log("info", msg, args...) }
func (l *Logger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args...) }
func (l *Logger) Error(msg string, args ...interface{}) { l.log("error", msg, args...) }
func (l *Logger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args...) }
