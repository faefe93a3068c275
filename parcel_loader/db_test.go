package parcel_loader

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/guregu/null.v4"

	"github.com/UnownHash/ParcelFinder/db_store"
	"github.com/UnownHash/ParcelFinder/parcels"
)

type fakeParcelsStore struct {
	expedientes    []*db_store.Expediente
	parcels        []*db_store.Parcel
	expedientesErr error
	parcelsErr     error
}

func (st *fakeParcelsStore) GetAllExpedientes(context.Context) ([]*db_store.Expediente, error) {
	return st.expedientes, st.expedientesErr
}

func (st *fakeParcelsStore) GetAllParcels(context.Context) ([]*db_store.Parcel, error) {
	return st.parcels, st.parcelsErr
}

const testSquare = "-0.50,39.00 -0.49,39.00 -0.49,39.01 -0.50,39.01"

func TestDBParcelLoader(t *testing.T) {
	tests := []struct {
		name     string
		store    *fakeParcelsStore
		expected []*parcels.Expediente
	}{
		{
			name: "joins parcels to expedientes",
			store: &fakeParcelsStore{
				expedientes: []*db_store.Expediente{
					{ExpedienteId: "EXP-1", Name: null.StringFrom("Huerta norte")},
					{ExpedienteId: "EXP-2"},
				},
				parcels: []*db_store.Parcel{
					{
						ParcelId:     "R1",
						ExpedienteId: "EXP-1",
						CadastralRef: null.StringFrom("46250A01200045"),
						Attributes:   []byte(`{"uso":"TA"}`),
						GeometryRaw:  null.StringFrom(testSquare),
					},
					{ParcelId: "R1", ExpedienteId: "EXP-2", GeometryRaw: null.StringFrom(testSquare)},
				},
			},
			expected: []*parcels.Expediente{
				{
					Id:   "EXP-1",
					Name: "Huerta norte",
					Parcels: []*parcels.Parcel{{
						Id:           "R1",
						ExpedienteId: "EXP-1",
						CadastralRef: "46250A01200045",
						Attributes:   map[string]any{"uso": "TA"},
						GeometryRaw:  testSquare,
					}},
				},
				{
					Id:      "EXP-2",
					Parcels: []*parcels.Parcel{{Id: "R1", ExpedienteId: "EXP-2", GeometryRaw: testSquare}},
				},
			},
		},
		{
			name: "skips parcels of unknown expedientes",
			store: &fakeParcelsStore{
				expedientes: []*db_store.Expediente{{ExpedienteId: "EXP-1"}},
				parcels: []*db_store.Parcel{
					{ParcelId: "orphan", ExpedienteId: "EXP-9", GeometryRaw: null.StringFrom(testSquare)},
					{ParcelId: "R1", ExpedienteId: "EXP-1", GeometryRaw: null.StringFrom(testSquare)},
				},
			},
			expected: []*parcels.Expediente{
				{
					Id:      "EXP-1",
					Parcels: []*parcels.Parcel{{Id: "R1", ExpedienteId: "EXP-1", GeometryRaw: testSquare}},
				},
			},
		},
		{
			name: "keeps parcels with bad attributes",
			store: &fakeParcelsStore{
				expedientes: []*db_store.Expediente{{ExpedienteId: "EXP-1"}},
				parcels: []*db_store.Parcel{
					{ParcelId: "R1", ExpedienteId: "EXP-1", Attributes: []byte("{not json"), GeometryRaw: null.StringFrom(testSquare)},
				},
			},
			expected: []*parcels.Expediente{
				{
					Id:      "EXP-1",
					Parcels: []*parcels.Parcel{{Id: "R1", ExpedienteId: "EXP-1", GeometryRaw: testSquare}},
				},
			},
		},
		{
			name: "null geometry becomes empty",
			store: &fakeParcelsStore{
				expedientes: []*db_store.Expediente{{ExpedienteId: "EXP-1"}},
				parcels: []*db_store.Parcel{
					{ParcelId: "R1", ExpedienteId: "EXP-1"},
				},
			},
			expected: []*parcels.Expediente{
				{
					Id:      "EXP-1",
					Parcels: []*parcels.Parcel{{Id: "R1", ExpedienteId: "EXP-1"}},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := NewDBParcelLoader(quietLogger(), tt.store)
			expedientes, err := loader.LoadExpedientes(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.expected, expedientes)
		})
	}
}

func TestDBParcelLoaderErrors(t *testing.T) {
	loader := NewDBParcelLoader(quietLogger(), &fakeParcelsStore{expedientesErr: errors.New("no table")})
	_, err := loader.LoadExpedientes(context.Background())
	assert.ErrorContains(t, err, "no table")

	loader = NewDBParcelLoader(quietLogger(), &fakeParcelsStore{parcelsErr: errors.New("timeout")})
	_, err = loader.LoadExpedientes(context.Background())
	assert.ErrorContains(t, err, "timeout")
}
