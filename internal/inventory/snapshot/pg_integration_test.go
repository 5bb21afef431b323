package snapshot

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/abgdnv/inventory/internal/inventory"
	inverrors "github.com/abgdnv/inventory/internal/inventory/errors"
	"github.com/abgdnv/inventory/internal/platform/bootstrap"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const skipIntegrationTests = "INVENTORY_SKIP_INTEGRATION_TESTS"

// PgRepositorySuite runs PgRepository against a real PostgreSQL container.
type PgRepositorySuite struct {
	suite.Suite
	pgContainer *postgres.PostgresContainer
	dbPool      *pgxpool.Pool
	repo        *PgRepository
	logger      *slog.Logger
	ctx         context.Context
}

// SetupSuite starts PostgreSQL, applies the embedded migrations and creates the repository.
func (s *PgRepositorySuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

	var err error
	s.pgContainer, err = postgres.Run(s.ctx,
		"postgres:17.5-alpine",
		postgres.WithDatabase("inventory"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to run PostgreSQL container")

	connStr, err := s.pgContainer.ConnectionString(s.ctx, "sslmode=disable")
	require.NoError(s.T(), err, "Failed to get connection string from container")

	s.dbPool, err = bootstrap.NewDbPool(s.ctx, connStr, 30*time.Second)
	require.NoError(s.T(), err, "Failed to connect to PostgreSQL")

	require.NoError(s.T(), bootstrap.RunMigrations(Migrations, MigrationsDir, connStr), "Failed to apply migrations")
	s.logger.Info("Migrations applied for integration tests")

	s.repo = NewPgRepository(s.dbPool)
}

// TearDownSuite closes the pool and terminates the container.
func (s *PgRepositorySuite) TearDownSuite() {
	if s.dbPool != nil {
		s.dbPool.Close()
	}
	if s.pgContainer != nil {
		if err := s.pgContainer.Terminate(s.ctx); err != nil {
			s.logger.Warn("failed to terminate PostgreSQL container", "error", err)
		}
	}
}

// SetupTest empties the snapshot table.
func (s *PgRepositorySuite) SetupTest() {
	_, err := s.dbPool.Exec(s.ctx, "TRUNCATE TABLE inventory_products")
	require.NoError(s.T(), err, "Failed to truncate inventory_products table")
}

func TestPgRepositoryIntegration(t *testing.T) {
	if os.Getenv(skipIntegrationTests) == "1" {
		t.Skip("Skipping integration tests based on " + skipIntegrationTests + " env var")
	}
	suite.Run(t, new(PgRepositorySuite))
}

func (s *PgRepositorySuite) TestRoundTrip() {
	products := testProducts()

	require.NoError(s.T(), s.repo.WriteSnapshot(s.ctx, products))
	loaded, err := s.repo.ReadSnapshot(s.ctx)

	require.NoError(s.T(), err)
	s.Equal(products, loaded)
}

func (s *PgRepositorySuite) TestWriteReplacesPreviousSnapshot() {
	require.NoError(s.T(), s.repo.WriteSnapshot(s.ctx, testProducts()))
	require.NoError(s.T(), s.repo.WriteSnapshot(s.ctx, testProducts()[:2]))

	loaded, err := s.repo.ReadSnapshot(s.ctx)

	require.NoError(s.T(), err)
	s.Equal(testProducts()[:2], loaded)
}

func (s *PgRepositorySuite) TestEmptySnapshot() {
	require.NoError(s.T(), s.repo.WriteSnapshot(s.ctx, []inventory.Product{}))

	loaded, err := s.repo.ReadSnapshot(s.ctx)

	require.NoError(s.T(), err)
	s.Empty(loaded)
}

func (s *PgRepositorySuite) TestUnknownKindIsFormatError() {
	_, err := s.dbPool.Exec(s.ctx,
		"INSERT INTO inventory_products (position, id, name, category, quantity, price, kind) VALUES (0, 1, 'Apple', 'Fruit', 1, 1.5, 'Grocery')")
	require.NoError(s.T(), err)

	_, err = s.repo.ReadSnapshot(s.ctx)

	s.ErrorIs(err, inverrors.ErrSnapshotFormat)
}

func (s *PgRepositorySuite) TestClosedPoolIsStorageError() {
	pool, err := pgxpool.New(s.ctx, s.dbPool.Config().ConnString())
	require.NoError(s.T(), err)
	pool.Close()
	repo := NewPgRepository(pool)

	_, err = repo.ReadSnapshot(s.ctx)
	s.ErrorIs(err, inverrors.ErrStorage)

	err = repo.WriteSnapshot(s.ctx, testProducts())
	s.ErrorIs(err, inverrors.ErrStorage)
}
