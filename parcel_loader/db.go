package parcel_loader

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/UnownHash/ParcelFinder/db_store"
	"github.com/UnownHash/ParcelFinder/parcels"
)

// ParcelsStore is the part of db_store.ParcelsDBStore the loader reads from.
type ParcelsStore interface {
	GetAllExpedientes(ctx context.Context) ([]*db_store.Expediente, error)
	GetAllParcels(ctx context.Context) ([]*db_store.Parcel, error)
}

type DBParcelLoader struct {
	logger  *logrus.Logger
	dbStore ParcelsStore
}

func (*DBParcelLoader) LoaderName() string {
	return "db"
}

func (loader *DBParcelLoader) LoadExpedientes(ctx context.Context) ([]*parcels.Expediente, error) {
	dbExpedientes, err := loader.dbStore.GetAllExpedientes(ctx)
	if err != nil {
		return nil, err
	}

	dbParcels, err := loader.dbStore.GetAllParcels(ctx)
	if err != nil {
		return nil, err
	}

	expedientes := make([]*parcels.Expediente, len(dbExpedientes))
	expedientesById := make(map[string]*parcels.Expediente, len(dbExpedientes))

	for idx, dbExpediente := range dbExpedientes {
		expediente := &parcels.Expediente{
			Id:   dbExpediente.ExpedienteId,
			Name: dbExpediente.Name.ValueOrZero(),
		}
		expedientes[idx] = expediente
		expedientesById[expediente.Id] = expediente
	}

	for _, dbParcel := range dbParcels {
		expediente := expedientesById[dbParcel.ExpedienteId]
		if expediente == nil {
			loader.logger.Warnf("PARCEL-LOAD[%s/%s]: skipping parcel of unknown expediente", dbParcel.ExpedienteId, dbParcel.ParcelId)
			continue
		}
		attributes, err := dbParcel.AttributesMap()
		if err != nil {
			loader.logger.Warnf("PARCEL-LOAD[%s/%s]: ignoring bad attributes: %v", dbParcel.ExpedienteId, dbParcel.ParcelId, err)
		}
		expediente.Parcels = append(expediente.Parcels, &parcels.Parcel{
			Id:           dbParcel.ParcelId,
			ExpedienteId: dbParcel.ExpedienteId,
			CadastralRef: dbParcel.CadastralRef.ValueOrZero(),
			Attributes:   attributes,
			GeometryRaw:  dbParcel.GeometryRaw.ValueOrZero(),
		})
	}

	return expedientes, nil
}

func NewDBParcelLoader(logger *logrus.Logger, dbStore ParcelsStore) *DBParcelLoader {
	return &DBParcelLoader{
		logger:  logger,
		dbStore: dbStore,
	}
}
