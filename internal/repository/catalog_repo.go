package repository

import (
	"context"

	"gorm.io/gorm"

	"carrental/internal/domain"
)

// CatalogRepository stores the reference data cars are described with.
type CatalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

func createNamed[T any](ctx context.Context, db *gorm.DB, v *T) error {
	if err := db.WithContext(ctx).Create(v).Error; err != nil {
		return conflictOn(err)
	}
	return nil
}

func listNamed[T any](ctx context.Context, db *gorm.DB) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepository) CreateMake(ctx context.Context, m *domain.CarMake) error {
	return createNamed(ctx, r.db, m)
}

func (r *CatalogRepository) ListMakes(ctx context.Context) ([]domain.CarMake, error) {
	return listNamed[domain.CarMake](ctx, r.db)
}

func (r *CatalogRepository) GetMake(ctx context.Context, id int64) (*domain.CarMake, error) {
	var m domain.CarMake
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *CatalogRepository) CreateModel(ctx context.Context, m *domain.CarModel) error {
	return createNamed(ctx, r.db, m)
}

// ListModels returns every model, or only one make's models when makeID > 0.
func (r *CatalogRepository) ListModels(ctx context.Context, makeID int64) ([]domain.CarModel, error) {
	q := r.db.WithContext(ctx).Preload("Make").Order("name ASC")
	if makeID > 0 {
		q = q.Where("make_id = ?", makeID)
	}
	var out []domain.CarModel
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CatalogRepository) GetModel(ctx context.Context, id int64) (*domain.CarModel, error) {
	var m domain.CarModel
	if err := r.db.WithContext(ctx).Preload("Make").First(&m, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

func (r *CatalogRepository) CreateBodyType(ctx context.Context, b *domain.BodyType) error {
	return createNamed(ctx, r.db, b)
}

func (r *CatalogRepository) ListBodyTypes(ctx context.Context) ([]domain.BodyType, error) {
	return listNamed[domain.BodyType](ctx, r.db)
}

func (r *CatalogRepository) CreateTransmissionType(ctx context.Context, t *domain.TransmissionType) error {
	return createNamed(ctx, r.db, t)
}

func (r *CatalogRepository) ListTransmissionTypes(ctx context.Context) ([]domain.TransmissionType, error) {
	return listNamed[domain.TransmissionType](ctx, r.db)
}

func (r *CatalogRepository) CreateMotorType(ctx context.Context, m *domain.MotorType) error {
	return createNamed(ctx, r.db, m)
}

func (r *CatalogRepository) ListMotorTypes(ctx context.Context) ([]domain.MotorType, error) {
	return listNamed[domain.MotorType](ctx, r.db)
}

// ReferencesExist reports whether all catalog rows a car points at exist.
func (r *CatalogRepository) ReferencesExist(ctx context.Context, modelID, bodyTypeID, transmissionTypeID, motorTypeID int64) (bool, error) {
	checks := []struct {
		model interface{}
		id    int64
	}{
		{&domain.CarModel{}, modelID},
		{&domain.BodyType{}, bodyTypeID},
		{&domain.TransmissionType{}, transmissionTypeID},
		{&domain.MotorType{}, motorTypeID},
	}
	for _, c := range checks {
		var n int64
		if err := r.db.WithContext(ctx).Model(c.model).Where("id = ?", c.id).Count(&n).Error; err != nil {
			return false, err
		}
		if n == 0 {
			return false, nil
		}
	}
	return true, nil
}
