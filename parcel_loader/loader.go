package parcel_loader

import (
	"context"

	"github.com/UnownHash/ParcelFinder/parcels"
)

type ParcelLoader interface {
	LoaderName() string
	LoadExpedientes(ctx context.Context) ([]*parcels.Expediente, error)
}
