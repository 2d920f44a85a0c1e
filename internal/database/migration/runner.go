package migration

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

//go:embed sql/*.sql
var embedded embed.FS

const advisoryLockKey int64 = 746295114

var ErrChecksumMismatch = errors.New("migration checksum mismatch")

// Runner applies versioned SQL files named V<version>__<name>.sql. Files come from Dir
// when set, otherwise from the set compiled into the binary.
type Runner struct {
	Dir    string
	Logger *log.Logger
	Now    func() time.Time
}

type Migration struct {
	Version  int64
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// Status is one known migration and, once applied, when.
type Status struct {
	Migration
	AppliedAt *time.Time
}

func (s Status) Pending() bool { return s.AppliedAt == nil }

type appliedMigration struct {
	Checksum  string
	AppliedAt time.Time
}

// Run applies every pending migration, each in its own transaction. The advisory lock
// is session scoped, so locking, applying and unlocking share one connection.
func (r Runner) Run(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("nil db")
	}
	migs, err := loadMigrations(r.source())
	if err != nil || len(migs) == 0 {
		return err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire migration connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := ensureSchemaMigrations(ctx, conn); err != nil {
		return err
	}
	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, advisoryLockKey); err != nil {
		return fmt.Errorf("lock migrations: %w", err)
	}
	defer func() {
		_, _ = conn.ExecContext(context.WithoutCancel(ctx), `SELECT pg_advisory_unlock($1)`, advisoryLockKey)
	}()

	applied, err := getApplied(ctx, conn)
	if err != nil {
		return err
	}
	if err := verify(migs, applied); err != nil {
		return err
	}

	var n int
	for _, m := range migs {
		if _, ok := applied[m.Version]; ok {
			continue
		}
		if err := r.applyOne(ctx, conn, m); err != nil {
			return err
		}
		n++
		r.logf("[Migration] applied | version=%d name=%s", m.Version, m.Name)
	}
	if n == 0 {
		r.logf("[Migration] up to date | version=%d", migs[len(migs)-1].Version)
	}
	return nil
}

// Status reports every known migration in version order without applying anything.
func (r Runner) Status(ctx context.Context, db *sql.DB) ([]Status, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	migs, err := loadMigrations(r.source())
	if err != nil {
		return nil, err
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire migration connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := ensureSchemaMigrations(ctx, conn); err != nil {
		return nil, err
	}
	applied, err := getApplied(ctx, conn)
	if err != nil {
		return nil, err
	}
	if err := verify(migs, applied); err != nil {
		return nil, err
	}

	out := make([]Status, 0, len(migs))
	for _, m := range migs {
		st := Status{Migration: m}
		if a, ok := applied[m.Version]; ok {
			at := a.AppliedAt
			st.AppliedAt = &at
		}
		out = append(out, st)
	}
	return out, nil
}

// verify rejects an applied migration whose file has since changed. Applied versions
// with no file are left alone.
func verify(migs []Migration, applied map[int64]appliedMigration) error {
	for _, m := range migs {
		if a, ok := applied[m.Version]; ok && a.Checksum != m.Checksum {
			return fmt.Errorf("%w: version=%d name=%s", ErrChecksumMismatch, m.Version, m.Name)
		}
	}
	return nil
}

func (r Runner) source() fs.FS {
	if strings.TrimSpace(r.Dir) != "" {
		return os.DirFS(r.Dir)
	}
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return embedded
	}
	return sub
}

func (r Runner) now() time.Time {
	if r.Now != nil {
		return r.Now().UTC()
	}
	return time.Now().UTC()
}

func (r Runner) logf(format string, args ...any) {
	if r.Logger != nil {
		r.Logger.Printf(format, args...)
	}
}

var fileRe = regexp.MustCompile(`^V(\d+)__([A-Za-z0-9_.-]+)\.sql$`)

func loadMigrations(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	migs := make([]Migration, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := fileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		mig, err := readMigration(fsys, e.Name(), m[1], m[2])
		if err != nil {
			return nil, err
		}
		migs = append(migs, mig)
	}

	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	for i := 1; i < len(migs); i++ {
		if migs[i].Version == migs[i-1].Version {
			return nil, fmt.Errorf("duplicate migration version %d: %s and %s", migs[i].Version, migs[i-1].Filename, migs[i].Filename)
		}
	}
	return migs, nil
}

func readMigration(fsys fs.FS, filename, version, name string) (Migration, error) {
	v, err := strconv.ParseInt(version, 10, 64)
	if err != nil {
		return Migration{}, fmt.Errorf("invalid migration version: %s", filename)
	}
	b, err := fs.ReadFile(fsys, filename)
	if err != nil {
		return Migration{}, err
	}
	text := strings.TrimSpace(string(b))
	if text == "" {
		return Migration{}, fmt.Errorf("empty migration file: %s", filename)
	}
	sum := sha256.Sum256([]byte(text))
	return Migration{Version: v, Name: name, Filename: filename, SQL: text, Checksum: hex.EncodeToString(sum[:])}, nil
}

func ensureSchemaMigrations(ctx context.Context, conn *sql.Conn) error {
	_, err := conn.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS schema_migrations (
	version BIGINT PRIMARY KEY,
	name TEXT NOT NULL,
	checksum TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}
	return nil
}

func getApplied(ctx context.Context, conn *sql.Conn) (map[int64]appliedMigration, error) {
	rows, err := conn.QueryContext(ctx, `SELECT version, checksum, applied_at FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[int64]appliedMigration{}
	for rows.Next() {
		var v int64
		var a appliedMigration
		if err := rows.Scan(&v, &a.Checksum, &a.AppliedAt); err != nil {
			return nil, err
		}
		out[v] = a
	}
	return out, rows.Err()
}

func (r Runner) applyOne(ctx context.Context, conn *sql.Conn, m Migration) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("apply migration %s: %w", m.Filename, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, checksum, applied_at) VALUES ($1, $2, $3, $4)`,
		m.Version, m.Name, m.Checksum, r.now(),
	); err != nil {
		return fmt.Errorf("record migration %s: %w", m.Filename, err)
	}
	return tx.Commit()
}
