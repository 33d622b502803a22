package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/authd/internal/db"
	"github.com/templui/authd/internal/model"
)

func newTestRepository(t *testing.T) UserRepository {
	t.Helper()

	database, err := db.Init(db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(database) })

	require.NoError(t, db.RunMigrations(database.DB, db.DriverSQLite))
	return NewUserRepository(database)
}

func newUser(username, email string) *model.User {
	return &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: "hash",
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))

	byID, err := repo.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)
	assert.Equal(t, "alice@example.com", byID.Email)
	assert.Equal(t, "hash", byID.PasswordHash)
	assert.False(t, byID.EmailVerified)

	byName, err := repo.ByIdentifier(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)

	byEmail, err := repo.ByIdentifier(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserRepository_ByIdentifierIsExactMatch(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com")))

	_, err := repo.ByIdentifier(ctx, "ALICE")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = repo.ByIdentifier(ctx, "nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_CreateDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.Create(ctx, newUser("alice", "alice@example.com")))

	err := repo.Create(ctx, newUser("alice", "other@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	err = repo.Create(ctx, newUser("bob", "alice@example.com"))
	assert.ErrorIs(t, err, ErrDuplicateKey)

	_, err = repo.ByIdentifier(ctx, "bob")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	user := newUser("alice", "alice@example.com")
	require.NoError(t, repo.Create(ctx, user))

	user.EmailVerified = true
	user.PasswordHash = "new-hash"
	require.NoError(t, repo.Update(ctx, user))

	got, err := repo.ByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.EmailVerified)
	assert.Equal(t, "new-hash", got.PasswordHash)
}

func TestUserRepository_UpdateMissing(t *testing.T) {
	repo := newTestRepository(t)

	err := repo.Update(context.Background(), newUser("ghost", "ghost@example.com"))
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_DriverFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	repo := NewUserRepository(sqlx.NewDb(sqlDB, "sqlmock"))

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO users`)).WillReturnError(errors.New("connection refused"))
	err = repo.Create(context.Background(), newUser("alice", "alice@example.com"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDuplicateKey)
	assert.Contains(t, err.Error(), "connection refused")

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, username, email`)).WillReturnError(errors.New("connection reset"))
	_, err = repo.ByIdentifier(context.Background(), "alice")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)

	require.NoError(t, mock.ExpectationsWereMet())
}
