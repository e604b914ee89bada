package store

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/jobly/apperror"
)

const userSelectColumns = "username, first_name, last_name, email, is_admin"

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"username", "first_name", "last_name", "email", "is_admin"})
}

func TestUserCreate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	mock.ExpectQuery("INSERT INTO users (username,password,first_name,last_name,email,is_admin) VALUES ($1,$2,$3,$4,$5,$6) RETURNING "+userSelectColumns).
		WithArgs("testuser", "$2b$12$hash", "Test", "User", "test@example.com", false).
		WillReturnRows(userRows().AddRow("testuser", "Test", "User", "test@example.com", false))

	user, err := s.Create(context.Background(), UserInput{
		Username:     "testuser",
		PasswordHash: "$2b$12$hash",
		FirstName:    "Test",
		LastName:     "User",
		Email:        "test@example.com",
	})
	require.NoError(t, err)
	require.Equal(t, "testuser", user.Username)
	require.False(t, user.IsAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateIsConflict(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	mock.ExpectQuery("INSERT INTO users (username,password,first_name,last_name,email,is_admin) VALUES ($1,$2,$3,$4,$5,$6) RETURNING " + userSelectColumns).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_pkey"})

	_, err := s.Create(context.Background(), UserInput{
		Username:     "testuser",
		PasswordHash: "$2b$12$hash",
		FirstName:    "Test",
		LastName:     "User",
		Email:        "test@example.com",
	})
	require.Error(t, err)
	require.True(t, apperror.IsConflict(err))
}

func TestUserCreateRejectsBadEmail(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewUserStore(db, testLogger())

	_, err := s.Create(context.Background(), UserInput{
		Username:     "testuser",
		PasswordHash: "$2b$12$hash",
		FirstName:    "Test",
		LastName:     "User",
		Email:        "not-an-email",
	})
	require.Error(t, err)
	require.True(t, apperror.IsBadRequest(err))
}

func TestUserAll(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	mock.ExpectQuery("SELECT " + userSelectColumns + " FROM users ORDER BY username").
		WillReturnRows(userRows().
			AddRow("alice", "Alice", "Ames", "alice@example.com", true).
			AddRow("bob", "Bob", "Brown", "bob@example.com", false))

	users, err := s.All(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.True(t, users[0].IsAdmin)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetIncludesAppliedJobIDs(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	mock.ExpectQuery("SELECT "+userSelectColumns+" FROM users WHERE username = $1").
		WithArgs("testuser").
		WillReturnRows(userRows().AddRow("testuser", "Test", "User", "test@example.com", false))
	mock.ExpectQuery("SELECT job_id FROM applications WHERE username = $1 ORDER BY job_id").
		WithArgs("testuser").
		WillReturnRows(sqlmock.NewRows([]string{"job_id"}).AddRow(int64(1)).AddRow(int64(4)))

	user, err := s.Get(context.Background(), "testuser")
	require.NoError(t, err)
	require.Equal(t, []int64{1, 4}, user.AppliedJobIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetMissingIsNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	mock.ExpectQuery("SELECT "+userSelectColumns+" FROM users WHERE username = $1").
		WithArgs("nope").
		WillReturnRows(userRows())

	_, err := s.Get(context.Background(), "nope")
	require.Error(t, err)
	require.True(t, apperror.IsNotFound(err))
}

func TestUserUpdateTranslatesMultiWordFields(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	// Keys sort as firstName, lastName; the username continues the
	// sequence at $3.
	mock.ExpectQuery(`UPDATE users SET "first_name"=$1, "last_name"=$2 WHERE username=$3 RETURNING `+userSelectColumns).
		WithArgs("New", "Name", "testuser").
		WillReturnRows(userRows().AddRow("testuser", "New", "Name", "test@example.com", false))

	user, err := s.Update(context.Background(), "testuser", map[string]any{
		"firstName": "New",
		"lastName":  "Name",
	})
	require.NoError(t, err)
	require.Equal(t, "New", user.FirstName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateRejectsUsernameChange(t *testing.T) {
	db, _ := newMockDB(t)
	s := NewUserStore(db, testLogger())

	_, err := s.Update(context.Background(), "testuser", map[string]any{"username": "other"})
	require.Error(t, err)
	require.True(t, apperror.IsBadRequest(err))
}

func TestUserDelete(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewUserStore(db, testLogger())

	mock.ExpectExec("DELETE FROM users WHERE username = $1").
		WithArgs("testuser").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.Delete(context.Background(), "testuser"))
	require.NoError(t, mock.ExpectationsWereMet())
}
