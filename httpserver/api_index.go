package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/ParcelFinder/index"
)

type APIIndex struct {
	Loaded               bool                  `json:"loaded"`
	SnapshotId           string                `json:"snapshot_id,omitempty"`
	BuiltAt              *time.Time            `json:"built_at,omitempty"`
	BuildDurationSeconds float64               `json:"build_duration_seconds"`
	NumIndexed           int                   `json:"num_indexed"`
	NumSkipped           int                   `json:"num_skipped"`
	Skipped              []index.SkippedParcel `json:"skipped"`
}

type getIndexResponse struct {
	Index APIIndex `json:"index"`
}

func (srv *HTTPServer) handleGetIndex(c *gin.Context) {
	var resp getIndexResponse

	resp.Index.Skipped = []index.SkippedParcel{}

	if snap := srv.indexManager.Snapshot(); snap != nil {
		builtAt := snap.BuiltAt
		skipped := snap.Skipped()

		resp.Index.Loaded = true
		resp.Index.SnapshotId = snap.Id
		resp.Index.BuiltAt = &builtAt
		resp.Index.BuildDurationSeconds = snap.BuildDuration.Seconds()
		resp.Index.NumIndexed = snap.Len()
		resp.Index.NumSkipped = len(skipped)
		if skipped != nil {
			resp.Index.Skipped = skipped
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (srv *HTTPServer) handleRebuildIndex(c *gin.Context) {
	type rebuildResponse struct {
		Message string `json:"message"`
	}

	srv.indexManager.RequestRebuild()
	srv.logger.Infof("index rebuild requested via API")

	c.JSON(http.StatusAccepted, rebuildResponse{
		Message: "rebuild queued",
	})
}
