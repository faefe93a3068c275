package parcels

import "fmt"

type ExpedienteRef = string
type ParcelRef = string

// Ref identifies a parcel within its expediente. This is all the spatial
// index stores about a parcel; everything else is looked up in a Collection.
type Ref struct {
	ExpedienteId ExpedienteRef `json:"expediente_id"`
	ParcelId     ParcelRef     `json:"parcel_id"`
}

func (ref Ref) String() string {
	return ref.ExpedienteId + "/" + ref.ParcelId
}

// Parcel (recinto) is the smallest cadastral unit subject to inspection.
// GeometryRaw is either a GeoJSON geometry object or a legacy
// "lng,lat lng,lat ..." string. Empty means there is no geometry.
type Parcel struct {
	Id           ParcelRef
	ExpedienteId ExpedienteRef
	CadastralRef string
	Attributes   map[string]any
	GeometryRaw  string
}

func (parcel *Parcel) Ref() Ref {
	return Ref{ExpedienteId: parcel.ExpedienteId, ParcelId: parcel.Id}
}

func (parcel *Parcel) FullName() string {
	if parcel.CadastralRef == "" {
		return parcel.Ref().String()
	}
	return fmt.Sprintf("%s(%s)", parcel.Ref(), parcel.CadastralRef)
}

// Expediente is an inspection case aggregating parcels.
type Expediente struct {
	Id      ExpedienteRef
	Name    string
	Parcels []*Parcel
}
