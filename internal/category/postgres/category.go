package postgres

import (
	"context"

	"github.com/frahmantamala/fintrack/internal/category"
	categoryDatamodel "github.com/frahmantamala/fintrack/internal/core/datamodel/category"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) category.RepositoryAPI {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) GetAll(ctx context.Context) ([]*categoryDatamodel.Category, error) {
	var categories []*categoryDatamodel.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) GetPaymentMethods(ctx context.Context) ([]*categoryDatamodel.PaymentMethod, error) {
	var methods []*categoryDatamodel.PaymentMethod
	err := r.db.WithContext(ctx).Order("name ASC").Find(&methods).Error
	return methods, err
}
