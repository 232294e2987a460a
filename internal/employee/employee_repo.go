package employee

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Employee, error)
	Create(ctx context.Context, emp *Employee) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindByCode matches the employee code first and falls back to the legacy
// numeric code burned into older devices. Returns gorm.ErrRecordNotFound
// when neither matches.
func (r *repository) FindByCode(ctx context.Context, code string) (*Employee, error) {
	var emp Employee
	err := r.db.WithContext(ctx).
		Preload("Schedule").
		Where("code = ? OR device_code = ?", code, code).
		First(&emp).Error
	if err != nil {
		return nil, err
	}
	return &emp, nil
}

func (r *repository) Create(ctx context.Context, emp *Employee) error {
	return r.db.WithContext(ctx).Create(emp).Error
}
