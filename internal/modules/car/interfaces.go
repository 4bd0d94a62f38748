package car

import "context"

type CatalogRefs interface {
	ReferencesExist(ctx context.Context, modelID, bodyTypeID, transmissionTypeID, motorTypeID int64) (bool, error)
}
