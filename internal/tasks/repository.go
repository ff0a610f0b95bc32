package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Repository defines persistence operations for tasks.
type Repository interface {
	List(ctx context.Context) ([]Task, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]Task, error)
	Get(ctx context.Context, id int64) (Task, error)
	Create(ctx context.Context, task Task) (Task, error)
	Update(ctx context.Context, task Task) (Task, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const taskColumns = `id, title, description, owner_id, created_at, updated_at`

func collectTasks(rows pgx.Rows) ([]Task, error) {
	defer rows.Close()
	var tasks []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *repository) List(ctx context.Context) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *repository) ListByOwner(ctx context.Context, ownerID int64) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE owner_id = $1 ORDER BY created_at DESC, id DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *repository) Get(ctx context.Context, id int64) (Task, error) {
	var t Task
	err := r.pool.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.Description, &t.OwnerID, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}

func (r *repository) Create(ctx context.Context, task Task) (Task, error) {
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (title, description, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $4) RETURNING id`,
		task.Title, task.Description, task.OwnerID, now).Scan(&task.ID)
	if err != nil {
		return Task{}, err
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	return task, nil
}

func (r *repository) Update(ctx context.Context, task Task) (Task, error) {
	now := time.Now().UTC()
	tag, err := r.pool.Exec(ctx,
		`UPDATE tasks SET title = $1, description = $2, updated_at = $3 WHERE id = $4`,
		task.Title, task.Description, now, task.ID)
	if err != nil {
		return Task{}, err
	}
	if tag.RowsAffected() == 0 {
		return Task{}, shared.ErrNotFound
	}
	task.UpdatedAt = now
	return task, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}
