package postgres_test

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"listkeeper/pkg/domain"
	"listkeeper/pkg/storage/postgres"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	testUser     = "postgres"
	testPassword = "postgres"
	testDB       = "testdb"
)

type postgresContainer struct {
	Container testcontainers.Container
	Host      string
	Port      int
}

func startPostgresContainer(ctx context.Context) (*postgresContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        "postgres:17",
		ExposedPorts: []string{"5432"},
		Env: map[string]string{
			"POSTGRES_USER":     testUser,
			"POSTGRES_PASSWORD": testPassword,
			"POSTGRES_DB":       testDB,
		},
		WaitingFor: wait.ForListeningPort("5432"),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("could not start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not get container host: %w", err)
	}

	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		return nil, fmt.Errorf("could not get mapped port: %w", err)
	}

	return &postgresContainer{
		Container: container,
		Host:      host,
		Port:      mappedPort.Int(),
	}, nil
}

func runMigrations(db *sql.DB, migrationsDir string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("could not set dialect: %w", err)
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("could not run migrations: %w", err)
	}

	return nil
}

func setupTestDB(t *testing.T) (*postgres.PgSQL, func()) {
	t.Helper()
	ctx := context.Background()

	// start container
	pgContainer, err := startPostgresContainer(ctx)
	require.NoError(t, err)

	// create postgres instance
	pgSQL, err := postgres.New(ctx, postgres.Options{
		Username:           testUser,
		Password:           testPassword,
		Host:               pgContainer.Host,
		Port:               pgContainer.Port,
		Database:           testDB,
		SslMode:            "disable",
		ConnMaxLifetime:    time.Minute,
		ConnMaxIdleTime:    time.Minute,
		MaxOpenConnections: 5,
		MaxIdleConnections: 5,
	})
	require.NoError(t, err)

	// run migrations
	migrationsDir := filepath.Join("..", "..", "..", "migrations")
	err = runMigrations(pgSQL.DB.(*sql.DB), migrationsDir)
	require.NoError(t, err)

	return pgSQL, func() {
		_ = pgSQL.Close()
		_ = pgContainer.Container.Terminate(ctx)
	}
}

// seed helpers used across the entity tests

func seedUser(t *testing.T, pg *postgres.PgSQL, email string) *domain.User {
	t.Helper()
	u, err := pg.StoreUser(context.Background(), domain.User{
		FirstName:        "Alice",
		LastName:         "Baker",
		Email:            email,
		Password:         "secret",
		RegistrationDate: time.Now(),
		AccountStatus:    domain.AccountStatusActive,
	})
	require.NoError(t, err)

	return u
}

func seedCategory(t *testing.T, pg *postgres.PgSQL, name string) *domain.Category {
	t.Helper()
	c, err := pg.StoreCategory(context.Background(), domain.Category{
		Name:         name,
		CreationDate: time.Now(),
	})
	require.NoError(t, err)

	return c
}

func seedList(t *testing.T, pg *postgres.PgSQL, owner domain.UserID, name string) *domain.ShoppingList {
	t.Helper()
	now := time.Now()
	l, err := pg.StoreList(context.Background(), domain.ShoppingList{
		Name:             name,
		CreationDate:     now,
		LastModifiedDate: now,
		Status:           domain.ListStatusActive,
		Priority:         domain.PriorityMedium,
		OwnerID:          owner,
	})
	require.NoError(t, err)

	return l
}

func seedItem(t *testing.T,
	pg *postgres.PgSQL,
	list domain.ListID,
	category domain.CategoryID,
	name string) *domain.Item {
	t.Helper()
	i, err := pg.StoreItem(context.Background(), domain.Item{
		Name:       name,
		Quantity:   1,
		AddedDate:  time.Now(),
		Priority:   domain.PriorityMedium,
		ListID:     list,
		CategoryID: category,
	})
	require.NoError(t, err)

	return i
}
