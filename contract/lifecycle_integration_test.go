package contract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"rentflow/auth"
	"rentflow/tenant"
)

// TestContractLifecycle_Integration connects to a real PostgreSQL via
// DATABASE_URL and walks the full tenant flow: request a draft, accept it,
// verify the first payment and the property flip, then terminate and delete.
func TestContractLifecycle_Integration(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL is empty; set it to a live PostgreSQL to run integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()

	if !tableExists(ctx, t, pool, "contracts") || !tableExists(ctx, t, pool, "payments") {
		t.Skip("database schema missing; apply migrations/0001_init.sql first")
	}

	nonce := time.Now().UnixNano()
	email := fmt.Sprintf("nora+%d@example.com", nonce)

	var userID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO users (email, full_name, password_hash, role) VALUES ($1, $2, 'x', 'tenant') RETURNING id`,
		email, "Nora Tenant").Scan(&userID); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	var propertyID string
	if err := pool.QueryRow(ctx,
		`INSERT INTO properties (title, address, city, price, charges, status)
		 VALUES ($1, '12 rue des Lilas', 'Lyon', 900, 50, 'available') RETURNING id`,
		fmt.Sprintf("T2 Lumineux %d", nonce)).Scan(&propertyID); err != nil {
		t.Fatalf("seed property: %v", err)
	}

	t.Cleanup(func() {
		ctx2, cancel2 := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel2()
		_, _ = pool.Exec(ctx2, `DELETE FROM payments WHERE contract_id IN (SELECT id FROM contracts WHERE property_id = $1)`, propertyID)
		_, _ = pool.Exec(ctx2, `DELETE FROM contracts WHERE property_id = $1`, propertyID)
		_, _ = pool.Exec(ctx2, `DELETE FROM properties WHERE id = $1`, propertyID)
		_, _ = pool.Exec(ctx2, `DELETE FROM tenants WHERE email = $1`, email)
		_, _ = pool.Exec(ctx2, `DELETE FROM users WHERE id = $1`, userID)
	})

	resolver := tenant.NewService(tenant.NewRepository(pool))
	svc := NewService(pool, resolver)

	principal := auth.Principal{
		UserID:   userID,
		Email:    email,
		FullName: "Nora Tenant",
		Role:     auth.RoleTenant,
	}

	// Request creates the tenant row on the fly and a draft contract with the
	// property's pricing.
	draft, err := svc.Request(ctx, principal, propertyID)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if draft.Status != StatusDraft || draft.SignedByTenant || draft.SignedByLandlord {
		t.Fatalf("got draft %+v", draft)
	}
	if draft.MonthlyRent != 900 || draft.Charges != 50 {
		t.Fatalf("pricing not copied from property: %+v", draft)
	}

	accepted, err := svc.Accept(ctx, principal, draft.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != StatusActive || !accepted.SignedByTenant || !accepted.SignedByLandlord {
		t.Fatalf("got accepted %+v", accepted)
	}
	if accepted.PaymentDay != 1 || accepted.GracePeriodDays != 5 {
		t.Fatalf("got accepted %+v", accepted)
	}

	var propertyStatus string
	if err := pool.QueryRow(ctx, `SELECT status FROM properties WHERE id = $1`, propertyID).Scan(&propertyStatus); err != nil {
		t.Fatalf("read property: %v", err)
	}
	if propertyStatus != "rented" {
		t.Fatalf("property status = %q after accept", propertyStatus)
	}

	var paymentCount int
	var amount float64
	if err := pool.QueryRow(ctx,
		`SELECT COUNT(*), COALESCE(MAX(amount), 0) FROM payments WHERE contract_id = $1`,
		accepted.ID).Scan(&paymentCount, &amount); err != nil {
		t.Fatalf("read payments: %v", err)
	}
	if paymentCount != 1 || amount != 950 {
		t.Fatalf("expected one payment of 950, got %d of %v", paymentCount, amount)
	}

	// Accepting twice is a state machine violation.
	if _, err := svc.Accept(ctx, principal, accepted.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second accept: %v", err)
	}

	// The partial unique index blocks a second open contract on the property.
	if _, err := svc.Request(ctx, principal, propertyID); !errors.Is(err, ErrPropertyUnavailable) {
		t.Fatalf("second request: %v", err)
	}

	terminated, err := svc.Terminate(ctx, accepted.ID)
	if err != nil {
		t.Fatalf("terminate: %v", err)
	}
	if terminated.Status != StatusTerminated || terminated.EndDate == nil {
		t.Fatalf("got terminated %+v", terminated)
	}
	if err := pool.QueryRow(ctx, `SELECT status FROM properties WHERE id = $1`, propertyID).Scan(&propertyStatus); err != nil {
		t.Fatalf("read property: %v", err)
	}
	if propertyStatus != "available" {
		t.Fatalf("property status = %q after terminate", propertyStatus)
	}

	if err := svc.Delete(ctx, terminated.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, terminated.ID, ""); !errors.Is(err, ErrContractNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}

func tableExists(ctx context.Context, t *testing.T, pool *pgxpool.Pool, name string) bool {
	t.Helper()
	var exists bool
	if err := pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`, name).Scan(&exists); err != nil {
		t.Fatalf("check table %s: %v", name, err)
	}
	return exists
}
