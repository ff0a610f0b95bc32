package rbac

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrRuleNotFound reports that no rule is configured for a (role, resource)
// pair. It is an expected outcome and must stay distinguishable from a
// transient store failure, which is returned as-is.
var ErrRuleNotFound = errors.New("rbac: rule not found")

// RuleStore looks up the single applicable rule for a role on a resource.
// Resource codes are matched exactly; at most one rule exists per pair.
type RuleStore interface {
	GetRule(ctx context.Context, roleID int64, resourceCode string) (Rule, error)
}

// PGRuleStore implements RuleStore using PostgreSQL.
type PGRuleStore struct {
	pool *pgxpool.Pool
}

// NewRuleStore constructs a PostgreSQL rule store.
func NewRuleStore(pool *pgxpool.Pool) *PGRuleStore {
	return &PGRuleStore{pool: pool}
}

// GetRule fetches the rule for (roleID, resourceCode).
func (s *PGRuleStore) GetRule(ctx context.Context, roleID int64, resourceCode string) (Rule, error) {
	query := `SELECT ru.id, ru.role_id, ru.resource_id,
			ru.can_read, ru.can_read_all, ru.can_create,
			ru.can_update, ru.can_update_all, ru.can_delete, ru.can_delete_all
		FROM access_rules ru
		JOIN resources res ON res.id = ru.resource_id
		WHERE ru.role_id = $1 AND res.code = $2`
	var rule Rule
	err := s.pool.QueryRow(ctx, query, roleID, resourceCode).Scan(
		&rule.ID, &rule.RoleID, &rule.ResourceID,
		&rule.Read, &rule.ReadAll, &rule.Create,
		&rule.Update, &rule.UpdateAll, &rule.Delete, &rule.DeleteAll,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Rule{}, ErrRuleNotFound
		}
		return Rule{}, fmt.Errorf("rbac: get rule: %w", err)
	}
	return rule, nil
}

var _ RuleStore = (*PGRuleStore)(nil)
