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

// Job is a posted position. Equity is a NUMERIC column that round-trips as
// text; the store binds and scans it as a string and never coerces it.
type Job struct {
	ID            int64  `json:"id"`
	Title         string `json:"title"`
	Salary        int    `json:"salary"`
	Equity        string `json:"equity"`
	CompanyHandle string `json:"company_handle"`
}

// JobInput carries the fields required to create a job.
type JobInput struct {
	Title         string `json:"title" validate:"required"`
	Salary        int    `json:"salary" validate:"gte=0"`
	Equity        string `json:"equity" validate:"omitempty,numeric"`
	CompanyHandle string `json:"company_handle" validate:"required"`
}

const jobColumnList = "id, title, salary, equity, company_handle"

// jobColumns translates logical field names to physical columns for partial
// updates.
var jobColumns = map[string]string{
	"companyHandle": "company_handle",
}

// jobFilters fixes the filters the job listing recognizes and their
// evaluation order.
var jobFilters = fragment.Spec{Rules: []fragment.Rule{
	{Key: "title", Column: "title", Kind: fragment.Contains},
	{Key: "minSalary", Column: "salary", Kind: fragment.Min},
	{Key: "hasEquity", Column: "equity", Kind: fragment.FlagPositive},
}}

// immutableJobFields cannot appear in an update payload.
var immutableJobFields = []string{"id", "companyHandle", "company_handle"}

// JobStore persists jobs.
type JobStore struct {
	db  database.Querier
	qb  *database.Builder
	log logger.Logger
}

// NewJobStore creates a job repository over the given querier.
func NewJobStore(db database.Querier, log logger.Logger) *JobStore {
	return &JobStore{
		db:  db,
		qb:  database.NewBuilder(),
		log: log,
	}
}

// Create inserts a job and returns the stored row. An unknown company handle
// surfaces as a bad request through the foreign-key mapping.
func (s *JobStore) Create(ctx context.Context, input JobInput) (*Job, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	equity := input.Equity
	if equity == "" {
		equity = "0"
	}

	query, args, err := s.qb.
		Insert("jobs", "title", "salary", "equity", "company_handle").
		Values(input.Title, input.Salary, equity, input.CompanyHandle).
		Suffix("RETURNING " + jobColumnList).
		ToSql()
	if err != nil {
		return nil, err
	}

	job, err := scanJob(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.TranslateError(err)
	}

	return job, nil
}

// All lists jobs matching the given filter bag, ordered by title. An empty
// bag lists every job.
func (s *JobStore) All(ctx context.Context, filters fragment.Bag) ([]Job, error) {
	frag, err := fragment.BuildFilter(filters, jobFilters)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + jobColumnList + " FROM jobs"
	if !frag.Empty() {
		query += " WHERE " + frag.Clause
	}
	query += " ORDER BY title"

	rows, err := s.db.Query(ctx, query, frag.Values...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var j Job
		if err := rows.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}

	return jobs, rows.Err()
}

// Get fetches one job by id.
func (s *JobStore) Get(ctx context.Context, id int64) (*Job, error) {
	query, args, err := s.qb.
		Select("id", "title", "salary", "equity", "company_handle").
		From("jobs").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	job, err := scanJob(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("no job: %d", id)
		}
		return nil, database.TranslateError(err)
	}

	return job, nil
}

// Update applies a sparse payload to the job identified by id and returns
// the updated row. The job's id and owning company cannot be changed.
func (s *JobStore) Update(ctx context.Context, id int64, data map[string]any) (*Job, error) {
	for _, field := range immutableJobFields {
		if _, ok := data[field]; ok {
			return nil, apperror.BadRequest("field %q cannot be changed", field)
		}
	}

	frag, err := fragment.BuildUpdate(data, jobColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("UPDATE jobs SET %s WHERE id=$%d RETURNING %s",
		frag.Clause, frag.NextIndex(), jobColumnList)
	args := append(frag.Values, id)

	job, err := scanJob(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("no job: %d", id)
		}
		return nil, database.TranslateError(err)
	}

	return job, nil
}

// Delete removes a job by id.
func (s *JobStore) Delete(ctx context.Context, id int64) error {
	query, args, err := s.qb.
		Delete("jobs").
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
		return apperror.NotFound("no job: %d", id)
	}

	return nil
}

func scanJob(row rowScanner) (*Job, error) {
	var j Job
	if err := row.Scan(&j.ID, &j.Title, &j.Salary, &j.Equity, &j.CompanyHandle); err != nil {
		return nil, err
	}
	return &j, nil
}
