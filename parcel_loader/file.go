package parcel_loader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/UnownHash/ParcelFinder/parcels"
)

type fileParcel struct {
	Id           string          `json:"id"`
	CadastralRef string          `json:"cadastral_ref"`
	Attributes   map[string]any  `json:"attributes"`
	Geometry     json.RawMessage `json:"geometry"`
}

type fileExpediente struct {
	Id      string        `json:"id"`
	Name    string        `json:"name"`
	Parcels []*fileParcel `json:"parcels"`
}

type parcelsFile struct {
	Expedientes []*fileExpediente `json:"expedientes"`
}

// geometryRawFromJSON accepts either a JSON string (either encoding, as
// exported) or an inline GeoJSON geometry object, which is kept verbatim.
func geometryRawFromJSON(msg json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	}
	return string(trimmed), nil
}

// FileParcelLoader reads expedientes and their parcels from a JSON file:
//
//	{"expedientes": [{"id": "...", "name": "...", "parcels": [
//	    {"id": "...", "cadastral_ref": "...", "attributes": {...}, "geometry": ...}
//	]}]}
type FileParcelLoader struct {
	logger   *logrus.Logger
	filename string
}

func (*FileParcelLoader) LoaderName() string {
	return "file"
}

func (loader *FileParcelLoader) LoadExpedientes(ctx context.Context) ([]*parcels.Expediente, error) {
	f, err := os.Open(loader.filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var contents parcelsFile

	decoder := json.NewDecoder(f)
	if err := decoder.Decode(&contents); err != nil {
		return nil, fmt.Errorf("'%s' cannot be loaded: bad json: %w", loader.filename, err)
	}

	expedientes := make([]*parcels.Expediente, 0, len(contents.Expedientes))

	for _, fileExp := range contents.Expedientes {
		if fileExp == nil {
			continue
		}
		if fileExp.Id == "" {
			loader.logger.Warnf("PARCEL-LOAD[]: skipping expediente with no id in '%s'", loader.filename)
			continue
		}

		expediente := &parcels.Expediente{
			Id:      fileExp.Id,
			Name:    fileExp.Name,
			Parcels: make([]*parcels.Parcel, 0, len(fileExp.Parcels)),
		}

		for _, fileParcel := range fileExp.Parcels {
			if fileParcel == nil {
				continue
			}
			raw, err := geometryRawFromJSON(fileParcel.Geometry)
			if err != nil {
				// keep the parcel; it just won't be indexed.
				loader.logger.Warnf("PARCEL-LOAD[%s/%s]: unreadable geometry: %v", fileExp.Id, fileParcel.Id, err)
			}
			expediente.Parcels = append(expediente.Parcels, &parcels.Parcel{
				Id:           fileParcel.Id,
				ExpedienteId: fileExp.Id,
				CadastralRef: fileParcel.CadastralRef,
				Attributes:   fileParcel.Attributes,
				GeometryRaw:  raw,
			})
		}

		expedientes = append(expedientes, expediente)
	}

	return expedientes, ctx.Err()
}

func NewFileParcelLoader(logger *logrus.Logger, filename string) *FileParcelLoader {
	return &FileParcelLoader{
		logger:   logger,
		filename: filename,
	}
}
