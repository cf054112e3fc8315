package test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"rentflow/test/infra"
)

// TestMigrations_ApplyAndConstraints boots a throwaway Postgres, applies the
// schema twice to prove the guards are idempotent, and checks the uniqueness
// rules the domain code leans on.
func TestMigrations_ApplyAndConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	pgC, dsn, err := infra.StartPostgres16(ctx, "")
	if err != nil {
		t.Skipf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = pgC.Terminate(context.Background()) })

	pool, teardown, err := infra.ApplyMigrations(ctx, dsn, false)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	t.Cleanup(pool.Close)
	t.Cleanup(func() { _ = teardown(context.Background()) })

	// Running the same files again must be a no-op, not an error.
	second, _, err := infra.ApplyMigrations(ctx, dsn, false)
	if err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	second.Close()

	var tenantID, propertyID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO tenants (full_name, email) VALUES ('Sam Dupont', 'sam@example.com') RETURNING id`).Scan(&tenantID); err != nil {
		t.Fatalf("insert tenant: %v", err)
	}
	if err := pool.QueryRow(ctx,
		`INSERT INTO properties (title, address, city, price, charges)
		 VALUES ('Studio', '3 rue Neuve', 'Paris', 700, 30) RETURNING id`).Scan(&propertyID); err != nil {
		t.Fatalf("insert property: %v", err)
	}

	// Tenant emails are unique case-insensitively.
	_, err = pool.Exec(ctx, `INSERT INTO tenants (full_name, email) VALUES ('Other', 'SAM@example.com')`)
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation on tenant email, got %v", err)
	}

	// At most one open contract per property.
	if _, err := pool.Exec(ctx,
		`INSERT INTO contracts (property_id, tenant_id, monthly_rent, charges, status) VALUES ($1, $2, 700, 30, 'active')`,
		propertyID, tenantID); err != nil {
		t.Fatalf("insert first contract: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO contracts (property_id, tenant_id, monthly_rent, charges, status) VALUES ($1, $2, 700, 30, 'draft')`,
		propertyID, tenantID)
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation on second open contract, got %v", err)
	}

	// A closed contract on the same property is allowed.
	if _, err := pool.Exec(ctx,
		`INSERT INTO contracts (property_id, tenant_id, monthly_rent, charges, status) VALUES ($1, $2, 700, 30, 'terminated')`,
		propertyID, tenantID); err != nil {
		t.Fatalf("insert terminated contract: %v", err)
	}

	// One payment per contract and month label.
	var contractID string
	if err := pool.QueryRow(ctx, `SELECT id FROM contracts WHERE status = 'active' LIMIT 1`).Scan(&contractID); err != nil {
		t.Fatalf("read contract: %v", err)
	}
	if _, err := pool.Exec(ctx,
		`INSERT INTO payments (contract_id, period_month, amount, due_date) VALUES ($1, 'March 2026', 730, '2026-03-01')`,
		contractID); err != nil {
		t.Fatalf("insert payment: %v", err)
	}
	_, err = pool.Exec(ctx,
		`INSERT INTO payments (contract_id, period_month, amount, due_date) VALUES ($1, 'March 2026', 730, '2026-03-01')`,
		contractID)
	if !isUniqueViolation(err) {
		t.Fatalf("expected unique violation on duplicate period, got %v", err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
