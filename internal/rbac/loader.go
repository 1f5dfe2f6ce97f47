package rbac

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/casbin/casbin/v2"
)

// Load fills the Casbin enforcer with policies and role assignments from the
// database. Seeded policies added by the caller are kept.
func Load(ctx context.Context, db *sql.DB, driver, prefix string, e *casbin.Enforcer) error {
	if db == nil || e == nil {
		return nil
	}
	roles := prefix + "roles"
	policies := prefix + "role_policies"
	userRoles := prefix + "user_roles"

	q := fmt.Sprintf(`SELECT r.name, p.path, p.method FROM %s r JOIN %s p ON r.id=p.role_id`, roles, policies)
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var role, path, method string
		if err := rows.Scan(&role, &path, &method); err != nil {
			return err
		}
		e.AddPolicy(role, path, method)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	q2 := fmt.Sprintf(`SELECT ur.user_id, r.name FROM %s ur JOIN %s r ON ur.role_id=r.id`, userRoles, roles)
	rows2, err := db.QueryContext(ctx, q2)
	if err != nil {
		return err
	}
	defer rows2.Close()
	for rows2.Next() {
		var uid int64
		var role string
		if err := rows2.Scan(&uid, &role); err != nil {
			return err
		}
		e.AddGroupingPolicy(fmt.Sprint(uid), role)
	}
	return rows2.Err()
}
