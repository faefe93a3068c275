package parcels

import (
	"github.com/sirupsen/logrus"
)

// Collection is a flat, read-only set of parcels addressed by Ref. It is
// built once per load and never mutated afterwards, so it needs no locking.
type Collection struct {
	expedientes []*Expediente
	parcels     []*Parcel
	parcelsMap  map[Ref]*Parcel
}

func (c *Collection) Get(ref Ref) *Parcel {
	return c.parcelsMap[ref]
}

// All returns parcels in load order.
func (c *Collection) All() []*Parcel {
	return c.parcels[:]
}

func (c *Collection) Expedientes() []*Expediente {
	return c.expedientes[:]
}

func (c *Collection) Len() int {
	return len(c.parcels)
}

// NewCollection flattens expedientes into a collection. Parcels with an
// empty id or a Ref that was already seen are dropped with a warning. The
// collection keeps shallow copies of the expedientes and parcels it is
// given, with each parcel's ExpedienteId taken from the expediente it is
// listed under. The caller's values are never modified.
func NewCollection(logger *logrus.Logger, expedientes []*Expediente) *Collection {
	c := &Collection{
		expedientes: make([]*Expediente, 0, len(expedientes)),
		parcelsMap:  make(map[Ref]*Parcel),
	}

	for _, expediente := range expedientes {
		if expediente == nil {
			continue
		}

		kept := &Expediente{
			Id:      expediente.Id,
			Name:    expediente.Name,
			Parcels: make([]*Parcel, 0, len(expediente.Parcels)),
		}

		for _, parcel := range expediente.Parcels {
			if parcel == nil {
				continue
			}
			if parcel.Id == "" {
				logger.Warnf("PARCELS[%s]: skipping parcel with empty id", expediente.Id)
				continue
			}
			if parcel.ExpedienteId != "" && parcel.ExpedienteId != expediente.Id {
				logger.Warnf("PARCELS[%s/%s]: parcel claims expediente '%s'; using the one it is listed under",
					expediente.Id, parcel.Id, parcel.ExpedienteId)
			}

			parcelCopy := *parcel
			parcelCopy.ExpedienteId = expediente.Id

			ref := parcelCopy.Ref()
			if _, ok := c.parcelsMap[ref]; ok {
				logger.Warnf("PARCELS[%s]: parcel already exists (skipping this one).", ref)
				continue
			}
			c.parcelsMap[ref] = &parcelCopy
			c.parcels = append(c.parcels, &parcelCopy)
			kept.Parcels = append(kept.Parcels, &parcelCopy)
		}

		c.expedientes = append(c.expedientes, kept)
	}

	return c
}
