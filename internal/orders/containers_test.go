//go:build integration

package orders

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupPostgres démarre un Postgres jetable et applique les migrations.
func setupPostgres(ctx context.Context, t *testing.T) *sql.DB {
	t.Helper()

	container, err := postgres.Run(ctx,
		"postgres:18-alpine",
		postgres.WithDatabase("velora"),
		postgres.WithUsername("velora"),
		postgres.WithPassword("velora"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("démarrage conteneur postgres: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("arrêt conteneur postgres: %v", err)
		}
	})

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	m, err := migrate.New("file://../../migrations", connStr)
	if err != nil {
		t.Fatalf("instance migrate: %v", err)
	}
	if err := m.Up(); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	_, _ = m.Close()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("ouverture DB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// seedProduct insère un produit et retourne son id.
func seedProduct(t *testing.T, db *sql.DB, name string, price float64, stock int) string {
	t.Helper()

	id := uuid.New().String()
	_, err := db.Exec(`
		INSERT INTO products (product_id, name, description, price, stock, category, sku)
		VALUES ($1, $2, '', $3, $4, 'test', $1)
	`, id, name, price, stock)
	if err != nil {
		t.Fatalf("seed produit %s: %v", name, err)
	}
	return id
}

func productStock(t *testing.T, db *sql.DB, productID string) int {
	t.Helper()

	var stock int
	if err := db.QueryRow(`SELECT stock FROM products WHERE product_id = $1`, productID).Scan(&stock); err != nil {
		t.Fatalf("lecture stock %s: %v", productID, err)
	}
	return stock
}
