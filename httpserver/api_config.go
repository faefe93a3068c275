package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/UnownHash/ParcelFinder/index_manager"
)

func (srv *HTTPServer) handleReload(c *gin.Context) {
	type reloadResponse struct {
		Message string `json:"message"`
	}

	if srv.reloadFn == nil {
		c.JSON(http.StatusNotImplemented, APIErrorResponse{
			Error: "reloading is not supported",
		})
		return
	}

	err := srv.reloadFn()
	if err != nil {
		srv.logger.Error(err)
		c.JSON(http.StatusInternalServerError, APIErrorResponse{
			Error: "an internal error occurred: check the logs",
		})
		return
	}

	srv.logger.Infof("config and parcels reloaded")

	c.JSON(http.StatusOK, reloadResponse{
		Message: "config has been reloaded",
	})
}

func (srv *HTTPServer) handleGetConfig(c *gin.Context) {
	type configResponse struct {
		ManagerConfig index_manager.Config `json:"manager"`
	}

	type getConfigResponse struct {
		Config configResponse `json:"config"`
	}

	var resp getConfigResponse
	resp.Config.ManagerConfig = srv.indexManager.GetConfig()

	c.JSON(http.StatusOK, resp)
}
