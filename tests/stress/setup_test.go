//go:build stress

// Package stress contains stress tests for concurrency safety validation.
// These tests spin up a throwaway PostgreSQL container via dockertest and
// hammer the loyalty ledger with concurrent awards and redemptions.
//
// Usage:
//
//	go test -v -race -tags stress ./tests/stress/...
package stress

import (
	"context"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"github.com/InugamiDev/car-rental-ooad-sub000/internal/repository"
	"github.com/InugamiDev/car-rental-ooad-sub000/internal/service"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	pool, err := dockertest.NewPool("")
	if err != nil {
		log.Fatalf("Could not construct pool: %s", err)
	}

	err = pool.Client.Ping()
	if err != nil {
		log.Fatalf("Could not connect to Docker: %s", err)
	}

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "15-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=testpass",
			"POSTGRES_USER=testuser",
			"POSTGRES_DB=testdb",
			"listen_addresses='*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		log.Fatalf("Could not start resource: %s", err)
	}

	hostAndPort := resource.GetHostPort("5432/tcp")
	databaseURL := fmt.Sprintf("postgres://testuser:testpass@%s/testdb?sslmode=disable", hostAndPort)

	log.Println("Connecting to database on url:", databaseURL)

	_ = resource.Expire(300) // Tell docker to kill the container after 300 seconds

	// Retry connection
	pool.MaxWait = 120 * time.Second
	if err = pool.Retry(func() error {
		var err error
		testPool, err = pgxpool.New(context.Background(), databaseURL)
		if err != nil {
			return err
		}
		return testPool.Ping(context.Background())
	}); err != nil {
		log.Fatalf("Could not connect to database: %s", err)
	}

	// Run migrations
	if err := runMigrations(testPool); err != nil {
		log.Fatalf("Could not run migrations: %s", err)
	}

	code := m.Run()

	// Cleanup
	if err := pool.Purge(resource); err != nil {
		log.Fatalf("Could not purge resource: %s", err)
	}

	os.Exit(code)
}

func runMigrations(pool *pgxpool.Pool) error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			id              UUID PRIMARY KEY,
			email           VARCHAR(255) NOT NULL UNIQUE,
			loyalty_points  INTEGER NOT NULL DEFAULT 0 CHECK (loyalty_points >= 0),
			membership_tier VARCHAR(32) NOT NULL DEFAULT 'Bronze',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE TABLE IF NOT EXISTS cars (
			id            UUID PRIMARY KEY,
			make          VARCHAR(64) NOT NULL,
			model         VARCHAR(64) NOT NULL,
			rental_status VARCHAR(16) NOT NULL DEFAULT 'AVAILABLE'
				CHECK (rental_status IN ('AVAILABLE', 'RENTED', 'MAINTENANCE', 'RESERVED'))
		);

		CREATE TABLE IF NOT EXISTS bookings (
			id         UUID PRIMARY KEY,
			user_id    UUID NOT NULL REFERENCES users(id),
			car_id     UUID NOT NULL REFERENCES cars(id),
			status     VARCHAR(16) NOT NULL DEFAULT 'PENDING'
				CHECK (status IN ('PENDING', 'CONFIRMED', 'IN_PROGRESS', 'COMPLETED', 'CANCELLED')),
			start_date TIMESTAMPTZ NOT NULL,
			end_date   TIMESTAMPTZ NOT NULL,
			total_cost NUMERIC(10, 2) NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS loyalty_transactions (
			id                 UUID PRIMARY KEY,
			user_id            UUID NOT NULL REFERENCES users(id),
			points             INTEGER NOT NULL,
			kind               VARCHAR(16) NOT NULL CHECK (kind IN ('EARNED', 'REDEEMED', 'BONUS')),
			description        TEXT NOT NULL,
			related_booking_id UUID REFERENCES bookings(id),
			expiry_date        TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
		);

		CREATE INDEX IF NOT EXISTS idx_loyalty_transactions_user_created
			ON loyalty_transactions (user_id, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id);
	`
	_, err := pool.Exec(context.Background(), schema)
	return err
}

func cleanupTables(t *testing.T) {
	t.Helper()
	_, err := testPool.Exec(context.Background(), "TRUNCATE TABLE loyalty_transactions, bookings, cars, users CASCADE")
	if err != nil {
		t.Fatalf("Failed to cleanup tables: %v", err)
	}
}

// newLoyaltyStack wires the real services against the dockertest pool.
func newLoyaltyStack() (*service.BookingService, *service.LoyaltyService) {
	userRepo := repository.NewUserRepository(testPool)
	txnRepo := repository.NewLoyaltyTransactionRepository(testPool)
	bookingRepo := repository.NewBookingRepository(testPool)
	carRepo := repository.NewCarRepository(testPool)
	ledger := service.NewLedgerService(userRepo, txnRepo)

	bookingSvc := service.NewBookingService(testPool, bookingRepo, carRepo, userRepo, ledger)
	loyaltySvc := service.NewLoyaltyService(testPool, userRepo, txnRepo, ledger)
	return bookingSvc, loyaltySvc
}

func createTestUser(t *testing.T, points int, tier string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := testPool.Exec(context.Background(),
		"INSERT INTO users (id, email, loyalty_points, membership_tier) VALUES ($1, $2, $3, $4)",
		id, id+"@example.com", points, tier)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return id
}

func createTestBooking(t *testing.T, userID, status string) string {
	t.Helper()
	ctx := context.Background()

	carID := uuid.NewString()
	_, err := testPool.Exec(ctx,
		"INSERT INTO cars (id, make, model, rental_status) VALUES ($1, $2, $3, $4)",
		carID, "Toyota", "Corolla", "RENTED")
	if err != nil {
		t.Fatalf("Failed to create test car: %v", err)
	}

	bookingID := uuid.NewString()
	now := time.Now().UTC()
	_, err = testPool.Exec(ctx,
		`INSERT INTO bookings (id, user_id, car_id, status, start_date, end_date, total_cost)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		bookingID, userID, carID, status, now.Add(-24*time.Hour), now, 80.00)
	if err != nil {
		t.Fatalf("Failed to create test booking: %v", err)
	}
	return bookingID
}

// getBalanceFromDB retrieves the stored balance and tier for a user.
func getBalanceFromDB(t *testing.T, userID string) (points int, tier string) {
	t.Helper()
	err := testPool.QueryRow(context.Background(),
		"SELECT loyalty_points, membership_tier FROM users WHERE id = $1",
		userID).Scan(&points, &tier)
	if err != nil {
		t.Fatalf("Failed to get user: %v", err)
	}
	return points, tier
}

// getLedgerFromDB returns the row count and signed sum of a user's ledger.
func getLedgerFromDB(t *testing.T, userID string) (count int, sum int) {
	t.Helper()
	err := testPool.QueryRow(context.Background(),
		"SELECT COUNT(*), COALESCE(SUM(points), 0) FROM loyalty_transactions WHERE user_id = $1",
		userID).Scan(&count, &sum)
	if err != nil {
		t.Fatalf("Failed to read ledger: %v", err)
	}
	return count, sum
}
