package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/cnmzsjbz199328/LazyDog/internal/store"
	"github.com/cnmzsjbz199328/LazyDog/internal/store/model"
)

// DB is the executor surface shared by *sqlx.DB and *sqlx.Tx, so the same
// repository code runs inside and outside a transaction.
type DB interface {
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	NamedExecContext(ctx context.Context, query string, arg interface{}) (sql.Result, error)
}

type SqliteRepository struct {
	db   *sqlx.DB
	exec DB

	background *backgroundRepo
	history    *historyRepo
	mindmaps   *mindMapRepo
	settings   *settingsRepo
}

func NewSqliteRepository(db *sqlx.DB) *SqliteRepository {
	return newRepository(db, db)
}

func newRepository(db *sqlx.DB, exec DB) *SqliteRepository {
	r := &SqliteRepository{db: db, exec: exec}
	r.background = &backgroundRepo{exec: exec}
	r.history = &historyRepo{exec: exec}
	r.mindmaps = &mindMapRepo{exec: exec}
	r.settings = &settingsRepo{exec: exec}
	return r
}

func (r *SqliteRepository) Background() store.BackgroundRepository { return r.background }
func (r *SqliteRepository) History() store.HistoryRepository       { return r.history }
func (r *SqliteRepository) MindMaps() store.MindMapRepository      { return r.mindmaps }
func (r *SqliteRepository) Settings() store.SettingsRepository     { return r.settings }

func (r *SqliteRepository) WithTx(ctx context.Context, fn func(repo store.Repository) error) error {
	if r.db == nil {
		return errors.New("nested transactions are not supported")
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	txRepo := newRepository(nil, tx)
	if err := fn(txRepo); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	return tx.Commit()
}

func (r *SqliteRepository) Close() error {
	if r.db == nil {
		return nil
	}
	return r.db.Close()
}

// background lives in the settings table under its canonical key.

type backgroundRepo struct {
	exec DB
}

func (r *backgroundRepo) Get(ctx context.Context) (string, error) {
	var value string
	err := r.exec.GetContext(ctx, &value,
		`SELECT value FROM settings WHERE key = ?`, store.KeyBackground)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load background: %w", err)
	}
	return value, nil
}

func (r *backgroundRepo) Set(ctx context.Context, value string) error {
	_, err := r.exec.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		store.KeyBackground, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save background: %w", err)
	}
	return nil
}

func (r *backgroundRepo) Clear(ctx context.Context) error {
	_, err := r.exec.ExecContext(ctx,
		`DELETE FROM settings WHERE key = ?`, store.KeyBackground)
	if err != nil {
		return fmt.Errorf("failed to clear background: %w", err)
	}
	return nil
}

type historyRepo struct {
	exec DB
}

func (r *historyRepo) Append(ctx context.Context, rec *model.HistoryRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	res, err := r.exec.NamedExecContext(ctx,
		`INSERT INTO history_records (main_point, content, created_at)
		 VALUES (:main_point, :content, :created_at)`, rec)
	if err != nil {
		return fmt.Errorf("failed to append history record: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		rec.ID = id
	}
	return nil
}

func (r *historyRepo) List(ctx context.Context) ([]model.HistoryRecord, error) {
	records := []model.HistoryRecord{}
	err := r.exec.SelectContext(ctx, &records,
		`SELECT id, main_point, content, created_at FROM history_records ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}
	return records, nil
}

func (r *historyRepo) MainPoints(ctx context.Context) ([]string, error) {
	records, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	points := make([]string, 0, len(records))
	for _, rec := range records {
		if rec.Valid() {
			points = append(points, rec.MainPoint)
		}
	}
	return points, nil
}

func (r *historyRepo) Clear(ctx context.Context) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM history_records`)
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (r *historyRepo) DeleteInvalid(ctx context.Context) (int64, error) {
	mainPoints := model.InvalidMainPoints()
	contents := model.InvalidContents()

	conds := []string{
		`TRIM(main_point) = ''`,
		`TRIM(content) = ''`,
	}
	args := []interface{}{}

	if len(mainPoints) > 0 {
		conds = append(conds, `main_point IN (`+placeholders(len(mainPoints))+`)`)
		for _, v := range mainPoints {
			args = append(args, v)
		}
	}
	if len(contents) > 0 {
		conds = append(conds, `content IN (`+placeholders(len(contents))+`)`)
		for _, v := range contents {
			args = append(args, v)
		}
	}

	query := `DELETE FROM history_records WHERE ` + strings.Join(conds, " OR ")
	res, err := r.exec.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete invalid history records: %w", err)
	}
	return res.RowsAffected()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

type mindMapRepo struct {
	exec DB
}

func (r *mindMapRepo) Save(ctx context.Context, doc *model.MindMapDocument) error {
	doc.ID = 1
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	_, err := r.exec.NamedExecContext(ctx,
		`INSERT INTO mindmap_documents (id, title, code, created_at, last_updated)
		 VALUES (:id, :title, :code, :created_at, :last_updated)
		 ON CONFLICT(id) DO UPDATE SET
		   title = excluded.title,
		   code = excluded.code,
		   last_updated = excluded.last_updated`, doc)
	if err != nil {
		return fmt.Errorf("failed to save mindmap document: %w", err)
	}
	return nil
}

func (r *mindMapRepo) Get(ctx context.Context) (*model.MindMapDocument, error) {
	var doc model.MindMapDocument
	err := r.exec.GetContext(ctx, &doc,
		`SELECT id, title, code, created_at, last_updated FROM mindmap_documents WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mindmap document: %w", err)
	}
	return &doc, nil
}

type settingsRepo struct {
	exec DB
}

func (r *settingsRepo) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := r.exec.GetContext(ctx, &value,
		`SELECT value FROM settings WHERE key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load setting %q: %w", key, err)
	}
	return value, nil
}

func (r *settingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.exec.ExecContext(ctx,
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to save setting %q: %w", key, err)
	}
	return nil
}

func (r *settingsRepo) Delete(ctx context.Context, key string) error {
	_, err := r.exec.ExecContext(ctx, `DELETE FROM settings WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete setting %q: %w", key, err)
	}
	return nil
}
