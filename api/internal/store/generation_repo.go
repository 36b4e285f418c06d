package store

import (
	"context"
	"database/sql"
	"time"
)

var ErrNotFound = sql.ErrNoRows

// GenerationRepo: кэш ответов модели по хэшу инструкции.
type GenerationRepo struct{ DB *sql.DB }

func NewGenerationRepo(db *sql.DB) *GenerationRepo { return &GenerationRepo{DB: db} }

// Find возвращает сохранённый ответ для (promptHash, engine, model).
// Если maxAge > 0 и запись старше, вернёт ErrNotFound (чтобы вызвать LLM заново).
func (r *GenerationRepo) Find(ctx context.Context, promptHash, engine, model string, maxAge time.Duration) (string, error) {
	const q = `select result_text, created_at
	           from generations_cache
	           where prompt_hash=$1 and engine=$2 and model=$3`
	var (
		text string
		ts   time.Time
	)
	if err := r.DB.QueryRowContext(ctx, q, promptHash, engine, model).Scan(&text, &ts); err != nil {
		return "", err
	}
	if maxAge > 0 && time.Since(ts) > maxAge {
		return "", ErrNotFound
	}
	return text, nil
}

// Upsert сохраняет/обновляет ответ. PK: (prompt_hash, engine, model).
func (r *GenerationRepo) Upsert(ctx context.Context, promptHash, engine, model, text string) error {
	const q = `
insert into generations_cache(prompt_hash, engine, model, result_text)
values ($1,$2,$3,$4)
on conflict (prompt_hash, engine, model)
do update set result_text=excluded.result_text, created_at=now()`
	_, err := r.DB.ExecContext(ctx, q, promptHash, engine, model, text)
	return err
}

// Purge удаляет записи старше maxAge.
func (r *GenerationRepo) Purge(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := r.DB.ExecContext(ctx,
		`delete from generations_cache where created_at < $1`,
		time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
