package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatehouse-io/gatehouse/internal/shared"
)

// Repository provides administrative persistence for roles, resources and
// access rules.
type Repository interface {
	ListRoles(ctx context.Context) ([]Role, error)
	CreateRole(ctx context.Context, name string) (Role, error)
	DeleteRole(ctx context.Context, id int64) error

	ListResources(ctx context.Context) ([]Resource, error)
	CreateResource(ctx context.Context, code, name string) (Resource, error)
	DeleteResource(ctx context.Context, id int64) error

	ListRules(ctx context.Context) ([]Rule, error)
	CreateRule(ctx context.Context, rule Rule) (Rule, error)
	UpdateRule(ctx context.Context, rule Rule) (Rule, error)
	DeleteRule(ctx context.Context, id int64) error
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return shared.ErrDuplicate
		case "23503":
			return shared.ErrNotFound
		}
	}
	return err
}

func (r *PGRepository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM roles ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (r *PGRepository) CreateRole(ctx context.Context, name string) (Role, error) {
	role := Role{Name: name}
	err := r.pool.QueryRow(ctx, `INSERT INTO roles (name) VALUES ($1) RETURNING id`, name).Scan(&role.ID)
	if err != nil {
		return Role{}, mapWriteError(err)
	}
	return role, nil
}

func (r *PGRepository) DeleteRole(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *PGRepository) ListResources(ctx context.Context) ([]Resource, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, code, name FROM resources ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var resources []Resource
	for rows.Next() {
		var res Resource
		if err := rows.Scan(&res.ID, &res.Code, &res.Name); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}

func (r *PGRepository) CreateResource(ctx context.Context, code, name string) (Resource, error) {
	res := Resource{Code: code, Name: name}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO resources (code, name) VALUES ($1, $2) RETURNING id`,
		code, name).Scan(&res.ID)
	if err != nil {
		return Resource{}, mapWriteError(err)
	}
	return res, nil
}

func (r *PGRepository) DeleteResource(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

const ruleColumns = `id, role_id, resource_id, can_read, can_read_all, can_create,
	can_update, can_update_all, can_delete, can_delete_all`

func scanRule(row pgx.Row) (Rule, error) {
	var rule Rule
	err := row.Scan(&rule.ID, &rule.RoleID, &rule.ResourceID,
		&rule.Read, &rule.ReadAll, &rule.Create,
		&rule.Update, &rule.UpdateAll, &rule.Delete, &rule.DeleteAll)
	return rule, err
}

func (r *PGRepository) ListRules(ctx context.Context) ([]Rule, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+ruleColumns+` FROM access_rules ORDER BY role_id, resource_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *PGRepository) CreateRule(ctx context.Context, rule Rule) (Rule, error) {
	query := `INSERT INTO access_rules
			(role_id, resource_id, can_read, can_read_all, can_create,
			 can_update, can_update_all, can_delete, can_delete_all)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		rule.RoleID, rule.ResourceID, rule.Read, rule.ReadAll, rule.Create,
		rule.Update, rule.UpdateAll, rule.Delete, rule.DeleteAll).Scan(&rule.ID)
	if err != nil {
		return Rule{}, mapWriteError(err)
	}
	return rule, nil
}

func (r *PGRepository) UpdateRule(ctx context.Context, rule Rule) (Rule, error) {
	query := `UPDATE access_rules SET
			can_read = $1, can_read_all = $2, can_create = $3,
			can_update = $4, can_update_all = $5, can_delete = $6, can_delete_all = $7
		WHERE id = $8
		RETURNING role_id, resource_id`
	err := r.pool.QueryRow(ctx, query,
		rule.Read, rule.ReadAll, rule.Create,
		rule.Update, rule.UpdateAll, rule.Delete, rule.DeleteAll,
		rule.ID).Scan(&rule.RoleID, &rule.ResourceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, shared.ErrNotFound
		}
		return Rule{}, mapWriteError(err)
	}
	return rule, nil
}

func (r *PGRepository) DeleteRule(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM access_rules WHERE id = $1`, id)
	if err != nil {
		return mapWriteError(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var _ Repository = (*PGRepository)(nil)
