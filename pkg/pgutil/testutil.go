package pgutil

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/uptrace/bun"

	"github.com/chainsafe/phase-distributor/pkg/config"
)

const (
	testImage       = "postgres:16-alpine"
	testConnRetries = 8
)

// RequireDockerAccess skips the test when no docker daemon socket is reachable.
func RequireDockerAccess(t *testing.T) {
	t.Helper()

	candidates := []string{
		"/var/run/docker.sock",
		filepath.Join(os.Getenv("HOME"), ".docker/run/docker.sock"),
	}
	if sock, ok := strings.CutPrefix(os.Getenv("DOCKER_HOST"), "unix://"); ok && sock != "" {
		candidates = append([]string{sock}, candidates...)
	}

	for _, sock := range candidates {
		if _, err := os.Stat(sock); err != nil {
			continue
		}
		conn, err := (&net.Dialer{}).DialContext(context.Background(), "unix", sock)
		if err == nil {
			_ = conn.Close()
			return
		}
	}

	t.Skip("docker daemon socket is not accessible; skipping testcontainer-backed tests")
}

// SetupTestDB starts a throwaway ledger database and returns a connection with a small pool.
// The test is skipped when docker is not available.
func SetupTestDB(t *testing.T) (*bun.DB, func()) {
	t.Helper()
	RequireDockerAccess(t)
	ctx := context.Background()

	container, err := postgres.Run(ctx, testImage,
		postgres.WithDatabase("ledger_test"),
		postgres.WithUsername("ledger"),
		postgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(time.Minute),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	terminate := func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	host, err := container.Host(ctx)
	if err != nil {
		terminate()
		t.Fatalf("failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		terminate()
		t.Fatalf("failed to get container port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		Host:         host,
		Port:         port.Int(),
		User:         "ledger",
		Password:     "ledger",
		Database:     "ledger_test",
		SSLMode:      "disable",
		MaxOpenConns: 4,
	}

	var db *bun.DB
	for attempt := 0; ; attempt++ {
		db, err = ConnectDB(ctx, cfg)
		if err == nil {
			break
		}
		if attempt == testConnRetries {
			terminate()
			t.Fatalf("failed to connect to test database: %v", err)
		}
		time.Sleep(time.Duration(100<<attempt) * time.Millisecond)
	}

	return db, func() {
		_ = db.Close()
		terminate()
	}
}

func catalogHas(t *testing.T, db *bun.DB, what, query string, args ...any) bool {
	t.Helper()
	var exists bool
	if err := db.NewSelect().ColumnExpr("EXISTS ("+query+")", args...).Scan(context.Background(), &exists); err != nil {
		t.Fatalf("failed to look up %s: %v", what, err)
	}
	return exists
}

// AssertTable checks whether the public table exists.
func AssertTable(t *testing.T, db *bun.DB, table string, want bool) {
	t.Helper()
	got := catalogHas(t, db, "table "+table,
		"SELECT 1 FROM information_schema.tables WHERE table_schema = 'public' AND table_name = ?", table)
	if got != want {
		t.Errorf("table %s: exists=%v, want %v", table, got, want)
	}
}

// AssertIndexes checks that every named index exists.
func AssertIndexes(t *testing.T, db *bun.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		if !catalogHas(t, db, "index "+name,
			"SELECT 1 FROM pg_indexes WHERE schemaname = 'public' AND indexname = ?", name) {
			t.Errorf("index %s does not exist", name)
		}
	}
}

// AssertRowCount checks the number of rows in a table.
func AssertRowCount(t *testing.T, db *bun.DB, table string, expected int) {
	t.Helper()
	var count int
	err := db.NewSelect().
		TableExpr("?", bun.Ident(table)).
		ColumnExpr("COUNT(*)").
		Scan(context.Background(), &count)
	if err != nil {
		t.Fatalf("failed to count rows in %s: %v", table, err)
	}
	if count != expected {
		t.Errorf("table %s: expected %d rows, got %d", table, expected, count)
	}
}
