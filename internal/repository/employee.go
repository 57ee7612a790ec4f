package repository

import (
	"context"
	"strconv"

	"github.com/emilianohg/dashone/internal/models"
)

type EmployeeRepo struct {
	db DBTX
}

func NewEmployeeRepo(db DBTX) *EmployeeRepo {
	return &EmployeeRepo{db: db}
}

func (r *EmployeeRepo) Create(ctx context.Context, e models.Employee) (models.ID, error) {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO employees (first_name, last_name, program, company_details, email, avatar_url)
		VALUES (?, ?, ?, NULLIF(?, ''), NULLIF(?, ''), NULLIF(?, ''))
	`, e.FirstName, e.LastName, e.Program, e.CompanyDetails, e.Email, e.AvatarURL)
	if err != nil {
		return "", err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return "", err
	}

	return models.ID(strconv.FormatInt(id, 10)), nil
}

func (r *EmployeeRepo) GetAll(ctx context.Context) ([]models.Employee, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, first_name, last_name, program,
		       COALESCE(avatar_url, ''), COALESCE(email, ''), COALESCE(company_details, '')
		FROM employees
		ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	employees := []models.Employee{}
	for rows.Next() {
		var e models.Employee
		var id string
		if err := rows.Scan(&id, &e.FirstName, &e.LastName, &e.Program, &e.AvatarURL, &e.Email, &e.CompanyDetails); err != nil {
			return nil, err
		}
		e.ID = models.ID(id)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (r *EmployeeRepo) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM employees").Scan(&n)
	return n, err
}
