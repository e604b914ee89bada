package store

import (
	"context"
	"slices"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/gaborage/jobly/apperror"
	"github.com/gaborage/jobly/database"
	"github.com/gaborage/jobly/logger"
)

// Application records that a user applied to a job. Ids are generated
// client-side so the record can be referenced before the insert round-trips.
type Application struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	JobID     int64     `json:"job_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Application statuses.
const (
	StatusInterested = "interested"
	StatusApplied    = "applied"
	StatusAccepted   = "accepted"
	StatusRejected   = "rejected"
)

var applicationStatuses = []string{StatusInterested, StatusApplied, StatusAccepted, StatusRejected}

// ApplicationStore persists job applications.
type ApplicationStore struct {
	db  database.Querier
	qb  *database.Builder
	log logger.Logger
}

// NewApplicationStore creates an application repository over the given
// querier.
func NewApplicationStore(db database.Querier, log logger.Logger) *ApplicationStore {
	return &ApplicationStore{
		db:  db,
		qb:  database.NewBuilder(),
		log: log,
	}
}

// Apply records an application by username for the given job with status
// "applied". Applying twice to the same job is a conflict; an unknown user
// or job surfaces through the foreign-key mapping.
func (s *ApplicationStore) Apply(ctx context.Context, username string, jobID int64) (*Application, error) {
	app := &Application{
		ID:       uuid.New(),
		Username: username,
		JobID:    jobID,
		Status:   StatusApplied,
	}

	query, args, err := s.qb.
		Insert("applications", "id", "username", "job_id", "status").
		Values(app.ID, app.Username, app.JobID, app.Status).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	if err := s.db.QueryRow(ctx, query, args...).Scan(&app.CreatedAt); err != nil {
		err = database.TranslateError(err)
		if apperror.IsConflict(err) {
			return nil, apperror.Conflict("user %q has already applied to job %d", username, jobID)
		}
		return nil, err
	}

	return app, nil
}

// ForUser lists a user's applications, oldest first.
func (s *ApplicationStore) ForUser(ctx context.Context, username string) ([]Application, error) {
	query, args, err := s.qb.
		Select("id", "username", "job_id", "status", "created_at").
		From("applications").
		Where(squirrel.Eq{"username": username}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var apps []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.Username, &a.JobID, &a.Status, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}

	return apps, rows.Err()
}

// UpdateStatus moves an application to a new status.
func (s *ApplicationStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if !slices.Contains(applicationStatuses, status) {
		return apperror.BadRequest("invalid application status %q; must be one of: interested, applied, accepted, rejected", status)
	}

	query, args, err := s.qb.
		Update("applications").
		Set("status", status).
		Where(squirrel.Eq{"id": id}).
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
		return apperror.NotFound("no application: %s", id)
	}

	return nil
}
