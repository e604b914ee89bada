package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/gaborage/jobly/apperror"
	"github.com/gaborage/jobly/database"
	"github.com/gaborage/jobly/database/fragment"
	"github.com/gaborage/jobly/logger"
)

// User is a registered account. The password hash is write-only: it is
// persisted on create and update but never read back into the model.
// AppliedJobIDs is populated only by Get.
type User struct {
	Username      string  `json:"username"`
	FirstName     string  `json:"first_name"`
	LastName      string  `json:"last_name"`
	Email         string  `json:"email"`
	IsAdmin       bool    `json:"is_admin"`
	AppliedJobIDs []int64 `json:"applied_job_ids,omitempty"`
}

// UserInput carries the fields required to create a user. PasswordHash is
// produced upstream; the store persists it opaquely.
type UserInput struct {
	Username     string `json:"username" validate:"required,max=30"`
	PasswordHash string `json:"password_hash" validate:"required"`
	FirstName    string `json:"first_name" validate:"required"`
	LastName     string `json:"last_name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	IsAdmin      bool   `json:"is_admin"`
}

const userColumnList = "username, first_name, last_name, email, is_admin"

// userColumns translates logical field names to physical columns for partial
// updates.
var userColumns = map[string]string{
	"firstName":    "first_name",
	"lastName":     "last_name",
	"isAdmin":      "is_admin",
	"passwordHash": "password",
}

// UserStore persists users.
type UserStore struct {
	db  database.Querier
	qb  *database.Builder
	log logger.Logger
}

// NewUserStore creates a user repository over the given querier.
func NewUserStore(db database.Querier, log logger.Logger) *UserStore {
	return &UserStore{
		db:  db,
		qb:  database.NewBuilder(),
		log: log,
	}
}

// Create inserts a user and returns the stored row. Duplicate usernames or
// emails surface as conflicts.
func (s *UserStore) Create(ctx context.Context, input UserInput) (*User, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	query, args, err := s.qb.
		Insert("users", "username", "password", "first_name", "last_name", "email", "is_admin").
		Values(input.Username, input.PasswordHash, input.FirstName, input.LastName, input.Email, input.IsAdmin).
		Suffix("RETURNING " + userColumnList).
		ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.TranslateError(err)
	}

	return user, nil
}

// All lists every user ordered by username.
func (s *UserStore) All(ctx context.Context) ([]User, error) {
	query, _, err := s.qb.
		Select("username", "first_name", "last_name", "email", "is_admin").
		From("users").
		OrderBy("username").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
			return nil, err
		}
		users = append(users, u)
	}

	return users, rows.Err()
}

// Get fetches one user by username, including the ids of jobs they applied
// to.
func (s *UserStore) Get(ctx context.Context, username string) (*User, error) {
	query, args, err := s.qb.
		Select("username", "first_name", "last_name", "email", "is_admin").
		From("users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("no user: %s", username)
		}
		return nil, database.TranslateError(err)
	}

	jobIDs, err := s.appliedJobIDs(ctx, username)
	if err != nil {
		return nil, err
	}
	user.AppliedJobIDs = jobIDs

	return user, nil
}

// Update applies a sparse payload to the user identified by username and
// returns the updated row. The username itself cannot be changed.
func (s *UserStore) Update(ctx context.Context, username string, data map[string]any) (*User, error) {
	if _, ok := data["username"]; ok {
		return nil, apperror.BadRequest("field %q cannot be changed", "username")
	}

	frag, err := fragment.BuildUpdate(data, userColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("UPDATE users SET %s WHERE username=$%d RETURNING %s",
		frag.Clause, frag.NextIndex(), userColumnList)
	args := append(frag.Values, username)

	user, err := scanUser(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("no user: %s", username)
		}
		return nil, database.TranslateError(err)
	}

	return user, nil
}

// Delete removes a user by username.
func (s *UserStore) Delete(ctx context.Context, username string) error {
	query, args, err := s.qb.
		Delete("users").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return err
	}

	result, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return database.TranslateError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperror.NotFound("no user: %s", username)
	}

	return nil
}

func (s *UserStore) appliedJobIDs(ctx context.Context, username string) ([]int64, error) {
	query, args, err := s.qb.
		Select("job_id").
		From("applications").
		Where(squirrel.Eq{"username": username}).
		OrderBy("job_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

func scanUser(row rowScanner) (*User, error) {
	var u User
	if err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin); err != nil {
		return nil, err
	}
	return &u, nil
}
