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

// Company is a hiring company. Jobs is populated only by Get.
type Company struct {
	Handle       string `json:"handle"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	NumEmployees int    `json:"num_employees"`
	LogoURL      string `json:"logo_url"`
	Jobs         []Job  `json:"jobs,omitempty"`
}

// CompanyInput carries the fields required to create a company.
type CompanyInput struct {
	Handle       string `json:"handle" validate:"required,lowercase,max=25"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	NumEmployees int    `json:"num_employees" validate:"gte=0"`
	LogoURL      string `json:"logo_url" validate:"omitempty,url"`
}

const companyColumnList = "handle, name, description, num_employees, logo_url"

// companyColumns translates logical multi-word field names to their physical
// columns for partial updates. Fields absent here keep their logical name.
var companyColumns = map[string]string{
	"numEmployees": "num_employees",
	"logoUrl":      "logo_url",
}

// companyFilters fixes the filters the company listing recognizes and their
// evaluation order.
var companyFilters = fragment.Spec{Rules: []fragment.Rule{
	{Key: "name", Column: "name", Kind: fragment.Contains},
	{Key: "minEmployees", Column: "num_employees", Kind: fragment.Min},
	{Key: "maxEmployees", Column: "num_employees", Kind: fragment.Max},
}}

// CompanyStore persists companies.
type CompanyStore struct {
	db  database.Querier
	qb  *database.Builder
	log logger.Logger
}

// NewCompanyStore creates a company repository over the given querier.
func NewCompanyStore(db database.Querier, log logger.Logger) *CompanyStore {
	return &CompanyStore{
		db:  db,
		qb:  database.NewBuilder(),
		log: log,
	}
}

// Create inserts a company and returns the stored row. A duplicate handle
// surfaces as a conflict.
func (s *CompanyStore) Create(ctx context.Context, input CompanyInput) (*Company, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	query, args, err := s.qb.
		Insert("companies", "handle", "name", "description", "num_employees", "logo_url").
		Values(input.Handle, input.Name, input.Description, input.NumEmployees, input.LogoURL).
		Suffix("RETURNING " + companyColumnList).
		ToSql()
	if err != nil {
		return nil, err
	}

	company, err := scanCompany(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, database.TranslateError(err)
	}

	return company, nil
}

// All lists companies matching the given filter bag, ordered by name. An
// empty bag lists every company.
func (s *CompanyStore) All(ctx context.Context, filters fragment.Bag) ([]Company, error) {
	frag, err := fragment.BuildFilter(filters, companyFilters)
	if err != nil {
		return nil, err
	}

	query := "SELECT " + companyColumnList + " FROM companies"
	if !frag.Empty() {
		query += " WHERE " + frag.Clause
	}
	query += " ORDER BY name"

	rows, err := s.db.Query(ctx, query, frag.Values...)
	if err != nil {
		return nil, database.TranslateError(err)
	}
	defer rows.Close()

	var companies []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}

	return companies, rows.Err()
}

// Get fetches one company by handle, including its jobs.
func (s *CompanyStore) Get(ctx context.Context, handle string) (*Company, error) {
	query, args, err := s.qb.
		Select("handle", "name", "description", "num_employees", "logo_url").
		From("companies").
		Where(squirrel.Eq{"handle": handle}).
		ToSql()
	if err != nil {
		return nil, err
	}

	company, err := scanCompany(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("no company: %s", handle)
		}
		return nil, database.TranslateError(err)
	}

	jobs, err := s.jobsFor(ctx, handle)
	if err != nil {
		return nil, err
	}
	company.Jobs = jobs

	return company, nil
}

// Update applies a sparse payload to the company identified by handle and
// returns the updated row. The payload uses logical field names; an empty
// payload is rejected.
func (s *CompanyStore) Update(ctx context.Context, handle string, data map[string]any) (*Company, error) {
	frag, err := fragment.BuildUpdate(data, companyColumns)
	if err != nil {
		return nil, err
	}

	// The WHERE identifier continues the placeholder sequence after the
	// fragment's values.
	query := fmt.Sprintf("UPDATE companies SET %s WHERE handle=$%d RETURNING %s",
		frag.Clause, frag.NextIndex(), companyColumnList)
	args := append(frag.Values, handle)

	company, err := scanCompany(s.db.QueryRow(ctx, query, args...))
	if err != nil {
		if database.IsNoRows(err) {
			return nil, apperror.NotFound("no company: %s", handle)
		}
		return nil, database.TranslateError(err)
	}

	return company, nil
}

// Delete removes a company by handle.
func (s *CompanyStore) Delete(ctx context.Context, handle string) error {
	query, args, err := s.qb.
		Delete("companies").
		Where(squirrel.Eq{"handle": handle}).
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
		return apperror.NotFound("no company: %s", handle)
	}

	return nil
}

func (s *CompanyStore) jobsFor(ctx context.Context, handle string) ([]Job, error) {
	query, args, err := s.qb.
		Select("id", "title", "salary", "equity", "company_handle").
		From("jobs").
		Where(squirrel.Eq{"company_handle": handle}).
		OrderBy("id").
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.Query(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCompany(row rowScanner) (*Company, error) {
	var c Company
	if err := row.Scan(&c.Handle, &c.Name, &c.Description, &c.NumEmployees, &c.LogoURL); err != nil {
		return nil, err
	}
	return &c, nil
}
