package httpserver

import (
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/paulmach/orb/geojson"

	"github.com/UnownHash/ParcelFinder/geo"
	"github.com/UnownHash/ParcelFinder/index_manager"
	"github.com/UnownHash/ParcelFinder/parcels"
)

type APIParcel struct {
	ExpedienteId string         `json:"expediente_id"`
	ParcelId     string         `json:"parcel_id"`
	CadastralRef string         `json:"cadastral_ref,omitempty"`
	Attributes   map[string]any `json:"attributes,omitempty"`
}

type APIBounds struct {
	MinLat float64 `json:"min_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLat float64 `json:"max_lat"`
	MaxLng float64 `json:"max_lng"`
}

type APILatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type APIParcelDetail struct {
	APIParcel
	Indexed    bool              `json:"indexed"`
	Kind       string            `json:"kind,omitempty"`
	Bounds     *APIBounds        `json:"bounds,omitempty"`
	AreaM2     float64           `json:"area_m2"`
	LabelPoint *APILatLng        `json:"label_point,omitempty"`
	Paths      [][][2]float64    `json:"paths,omitempty"`
	Geometry   *geojson.Geometry `json:"geometry,omitempty"`
}

type matchParcelResponse struct {
	Parcel *APIParcel `json:"parcel"`
}

type getCandidatesResponse struct {
	Candidates []parcels.Ref `json:"candidates"`
}

type getParcelResponse struct {
	Parcel *APIParcelDetail `json:"parcel"`
}

func parcelToAPIParcel(ref parcels.Ref, parcel *parcels.Parcel) *APIParcel {
	apiParcel := &APIParcel{
		ExpedienteId: ref.ExpedienteId,
		ParcelId:     ref.ParcelId,
	}
	if parcel != nil {
		apiParcel.CadastralRef = parcel.CadastralRef
		apiParcel.Attributes = parcel.Attributes
	}
	return apiParcel
}

func parseCoordinateParam(c *gin.Context, name string, limit float64) (float64, error) {
	str := c.Query(name)
	if str == "" {
		return 0, fmt.Errorf("missing '%s'", name)
	}
	val, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, fmt.Errorf("malformed '%s'", name)
	}
	if val < -limit || val > limit {
		return 0, fmt.Errorf("'%s' out of range", name)
	}
	return val, nil
}

func parseLatLng(c *gin.Context) (float64, float64, error) {
	lat, err := parseCoordinateParam(c, "lat", 90)
	if err != nil {
		return 0, 0, err
	}
	lng, err := parseCoordinateParam(c, "lng", 180)
	if err != nil {
		return 0, 0, err
	}
	return lat, lng, nil
}

func (srv *HTTPServer) handleMatchParcel(c *gin.Context) {
	lat, lng, err := parseLatLng(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, &APIErrorResponse{Error: err.Error()})
		return
	}

	var resp matchParcelResponse

	if match, found := srv.indexManager.FindContainingParcel(lat, lng); found {
		resp.Parcel = parcelToAPIParcel(match.Ref, match.Parcel)
	}

	c.JSON(http.StatusOK, resp)
}

func (srv *HTTPServer) handleGetCandidates(c *gin.Context) {
	lat, lng, err := parseLatLng(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, &APIErrorResponse{Error: err.Error()})
		return
	}

	candidates := srv.indexManager.Search(lat, lng)
	if candidates == nil {
		candidates = []parcels.Ref{}
	}

	c.JSON(http.StatusOK, getCandidatesResponse{candidates})
}

func parcelInfoToAPIParcelDetail(info *index_manager.ParcelInfo) *APIParcelDetail {
	detail := &APIParcelDetail{
		APIParcel: *parcelToAPIParcel(info.Parcel.Ref(), info.Parcel),
	}

	geometry := info.Geometry
	if geometry == nil {
		return detail
	}

	label := geo.GetPolygonLabelPoint(geometry)

	detail.Indexed = true
	detail.Kind = geometry.Kind.String()
	detail.Bounds = &APIBounds{
		MinLat: info.Bound.Min.Lat(),
		MinLng: info.Bound.Min.Lon(),
		MaxLat: info.Bound.Max.Lat(),
		MaxLng: info.Bound.Max.Lon(),
	}
	detail.AreaM2 = geo.AreaM2(geometry)
	detail.LabelPoint = &APILatLng{Lat: label.Lat(), Lng: label.Lon()}
	detail.Paths = geo.PathsFromGeometry(geometry)
	detail.Geometry = geojson.NewGeometry(geometry.OrbGeometry())

	return detail
}

func (srv *HTTPServer) handleGetParcel(c *gin.Context) {
	ref := parcels.Ref{
		ExpedienteId: c.Param("expediente_id"),
		ParcelId:     c.Param("parcel_id"),
	}

	info := srv.indexManager.GetParcel(ref)
	if info == nil {
		c.JSON(http.StatusNotFound, &APIErrorResponse{
			Error: "Parcel not found",
		})
		return
	}

	c.JSON(http.StatusOK, getParcelResponse{parcelInfoToAPIParcelDetail(info)})
}
