package cached

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carrental/internal/domain"
	"carrental/internal/pkg/cache"
	"carrental/internal/pkg/logger"
)

const catalogPrefix = "catalog:"

// CatalogSource is the uncached catalog store being decorated.
type CatalogSource interface {
	CreateMake(ctx context.Context, m *domain.CarMake) error
	ListMakes(ctx context.Context) ([]domain.CarMake, error)
	GetMake(ctx context.Context, id int64) (*domain.CarMake, error)
	CreateModel(ctx context.Context, m *domain.CarModel) error
	ListModels(ctx context.Context, makeID int64) ([]domain.CarModel, error)
	GetModel(ctx context.Context, id int64) (*domain.CarModel, error)
	CreateBodyType(ctx context.Context, b *domain.BodyType) error
	ListBodyTypes(ctx context.Context) ([]domain.BodyType, error)
	CreateTransmissionType(ctx context.Context, t *domain.TransmissionType) error
	ListTransmissionTypes(ctx context.Context) ([]domain.TransmissionType, error)
	CreateMotorType(ctx context.Context, m *domain.MotorType) error
	ListMotorTypes(ctx context.Context) ([]domain.MotorType, error)
	ReferencesExist(ctx context.Context, modelID, bodyTypeID, transmissionTypeID, motorTypeID int64) (bool, error)
}

// CatalogRepository adds cache-aside reads to the catalog lists. Writes go
// to the source first and then drop the affected keys. Cache failures are
// logged and never fail the call.
type CatalogRepository struct {
	CatalogSource
	cache *cache.Client
	ttl   time.Duration
	log   logger.Logger
}

func NewCatalogRepository(src CatalogSource, c *cache.Client, ttl time.Duration, log logger.Logger) *CatalogRepository {
	return &CatalogRepository{CatalogSource: src, cache: c, ttl: ttl, log: log}
}

func readThrough[T any](ctx context.Context, r *CatalogRepository, key string, load func() ([]T, error)) ([]T, error) {
	if raw, err := r.cache.Get(ctx, key); err == nil {
		var out []T
		if err := json.Unmarshal(raw, &out); err == nil {
			return out, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		r.log.Warn("catalog cache read failed", map[string]interface{}{"key": key, "error": err.Error()})
	}

	out, err := load()
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(out); err == nil {
		if err := r.cache.Set(ctx, key, raw, r.ttl); err != nil {
			r.log.Warn("catalog cache write failed", map[string]interface{}{"key": key, "error": err.Error()})
		}
	}
	return out, nil
}

func (r *CatalogRepository) invalidate(ctx context.Context, keys ...string) {
	if err := r.cache.Del(ctx, keys...); err != nil {
		r.log.Warn("catalog cache invalidation failed", map[string]interface{}{"keys": keys, "error": err.Error()})
	}
}

func modelsKey(makeID int64) string {
	return fmt.Sprintf("%smodels:%d", catalogPrefix, makeID)
}

func (r *CatalogRepository) ListMakes(ctx context.Context) ([]domain.CarMake, error) {
	return readThrough(ctx, r, catalogPrefix+"makes", func() ([]domain.CarMake, error) {
		return r.CatalogSource.ListMakes(ctx)
	})
}

func (r *CatalogRepository) CreateMake(ctx context.Context, m *domain.CarMake) error {
	if err := r.CatalogSource.CreateMake(ctx, m); err != nil {
		return err
	}
	r.invalidate(ctx, catalogPrefix+"makes")
	return nil
}

func (r *CatalogRepository) ListModels(ctx context.Context, makeID int64) ([]domain.CarModel, error) {
	return readThrough(ctx, r, modelsKey(makeID), func() ([]domain.CarModel, error) {
		return r.CatalogSource.ListModels(ctx, makeID)
	})
}

func (r *CatalogRepository) CreateModel(ctx context.Context, m *domain.CarModel) error {
	if err := r.CatalogSource.CreateModel(ctx, m); err != nil {
		return err
	}
	r.invalidate(ctx, modelsKey(0), modelsKey(m.MakeID))
	return nil
}

func (r *CatalogRepository) ListBodyTypes(ctx context.Context) ([]domain.BodyType, error) {
	return readThrough(ctx, r, catalogPrefix+"body_types", func() ([]domain.BodyType, error) {
		return r.CatalogSource.ListBodyTypes(ctx)
	})
}

func (r *CatalogRepository) CreateBodyType(ctx context.Context, b *domain.BodyType) error {
	if err := r.CatalogSource.CreateBodyType(ctx, b); err != nil {
		return err
	}
	r.invalidate(ctx, catalogPrefix+"body_types")
	return nil
}

func (r *CatalogRepository) ListTransmissionTypes(ctx context.Context) ([]domain.TransmissionType, error) {
	return readThrough(ctx, r, catalogPrefix+"transmission_types", func() ([]domain.TransmissionType, error) {
		return r.CatalogSource.ListTransmissionTypes(ctx)
	})
}

func (r *CatalogRepository) CreateTransmissionType(ctx context.Context, t *domain.TransmissionType) error {
	if err := r.CatalogSource.CreateTransmissionType(ctx, t); err != nil {
		return err
	}
	r.invalidate(ctx, catalogPrefix+"transmission_types")
	return nil
}

func (r *CatalogRepository) ListMotorTypes(ctx context.Context) ([]domain.MotorType, error) {
	return readThrough(ctx, r, catalogPrefix+"motor_types", func() ([]domain.MotorType, error) {
		return r.CatalogSource.ListMotorTypes(ctx)
	})
}

func (r *CatalogRepository) CreateMotorType(ctx context.Context, m *domain.MotorType) error {
	if err := r.CatalogSource.CreateMotorType(ctx, m); err != nil {
		return err
	}
	r.invalidate(ctx, catalogPrefix+"motor_types")
	return nil
}
