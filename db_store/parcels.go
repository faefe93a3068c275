package db_store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"gopkg.in/guregu/null.v4"
)

// ParcelsDBStore reads expedientes and parcels owned by the project storage
// service. It never writes.
type ParcelsDBStore struct {
	logger *logrus.Logger
	db     *sqlx.DB
}

type Expediente struct {
	ExpedienteId string      `db:"expediente_id"`
	Name         null.String `db:"name"`
}

type Parcel struct {
	ParcelId     string      `db:"parcel_id"`
	ExpedienteId string      `db:"expediente_id"`
	CadastralRef null.String `db:"cadastral_ref"`
	Attributes   []byte      `db:"attributes"`
	GeometryRaw  null.String `db:"geometry_raw"`
}

// AttributesMap decodes the JSON attributes column. NULL or empty is nil.
func (parcel *Parcel) AttributesMap() (map[string]any, error) {
	if len(parcel.Attributes) == 0 {
		return nil, nil
	}
	var attrs map[string]any
	if err := json.Unmarshal(parcel.Attributes, &attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}

const (
	expedienteSelectColumns = "expediente_id,name"
	parcelSelectColumns     = "parcel_id,expediente_id,cadastral_ref,attributes,geometry_raw"
)

func (st *ParcelsDBStore) GetAllExpedientes(ctx context.Context) ([]*Expediente, error) {
	const query = "SELECT " + expedienteSelectColumns + " FROM expedientes ORDER BY expediente_id"

	rows, err := st.db.QueryxContext(ctx, query)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
		}
		return nil, err
	}

	expedientes := make([]*Expediente, 0, 64)

	for rows.Next() {
		var expediente Expediente
		if err := rows.StructScan(&expediente); err != nil {
			return nil, closeRows(rows, err)
		}
		expedientes = append(expedientes, &expediente)
	}

	return expedientes, closeRows(rows, rows.Err())
}

func (st *ParcelsDBStore) GetAllParcels(ctx context.Context) ([]*Parcel, error) {
	const query = "SELECT " + parcelSelectColumns + " FROM parcels ORDER BY expediente_id, parcel_id"

	rows, err := st.db.QueryxContext(ctx, query)
	if err != nil {
		if err == sql.ErrNoRows {
			err = nil
		}
		return nil, err
	}

	dbParcels := make([]*Parcel, 0, 1024)

	for rows.Next() {
		var parcel Parcel
		if err := rows.StructScan(&parcel); err != nil {
			return nil, closeRows(rows, err)
		}
		dbParcels = append(dbParcels, &parcel)
	}

	return dbParcels, closeRows(rows, rows.Err())
}

func (st *ParcelsDBStore) Close() error {
	return st.db.Close()
}

func NewParcelsDBStore(config DBConfig, logger *logrus.Logger) (*ParcelsDBStore, error) {
	db, err := sqlx.Open("mysql", config.AsDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open parcels db: %w", err)
	}

	if config.MaxPool > 0 {
		db.SetMaxOpenConns(config.MaxPool)
		db.SetMaxIdleConns(config.MaxPool)
	}

	return &ParcelsDBStore{
		logger: logger,
		db:     db,
	}, nil
}

// closeRows closes rows and returns the first error seen.
func closeRows(rows *sqlx.Rows, err error) error {
	if closeErr := rows.Close(); err == nil {
		err = closeErr
	}
	return err
}
