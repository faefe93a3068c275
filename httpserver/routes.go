package httpserver

import (
	"net/http/pprof"

	"github.com/gin-gonic/gin"
)

func (srv *HTTPServer) authorizeAPI(c *gin.Context) {
	// anything goes for now.
	c.Next()
}

func (srv *HTTPServer) setupRoutes() {
	r := srv.ginRouter

	r.Use(gin.RecoveryWithWriter(srv.logger.Writer()))

	apiGroup := r.Group("/api", srv.authorizeAPI)

	configGroup := apiGroup.Group("/config")
	configGroup.GET("", srv.handleGetConfig)
	configGroup.GET("/reload", srv.handleReload)
	configGroup.PUT("/reload", srv.handleReload)

	parcelsGroup := apiGroup.Group("/parcels")
	parcelsGroup.GET("/match", srv.handleMatchParcel)
	parcelsGroup.GET("/candidates", srv.handleGetCandidates)

	apiGroup.GET("/expedientes/:expediente_id/parcels/:parcel_id", srv.handleGetParcel)

	indexGroup := apiGroup.Group("/index")
	indexGroup.GET("", srv.handleGetIndex)
	indexGroup.PUT("/rebuild", srv.handleRebuildIndex)

	debugGroup := r.Group("/debug/pprof")
	debugGroup.GET("/cmdline", func(c *gin.Context) {
		pprof.Cmdline(c.Writer, c.Request)
	})
	debugGroup.GET("/heap", func(c *gin.Context) {
		pprof.Index(c.Writer, c.Request)
	})
	debugGroup.GET("/block", func(c *gin.Context) {
		pprof.Index(c.Writer, c.Request)
	})
	debugGroup.GET("/mutex", func(c *gin.Context) {
		pprof.Index(c.Writer, c.Request)
	})
	debugGroup.GET("/trace", func(c *gin.Context) {
		pprof.Trace(c.Writer, c.Request)
	})
	debugGroup.GET("/profile", func(c *gin.Context) {
		pprof.Profile(c.Writer, c.Request)
	})
	debugGroup.GET("/symbol", func(c *gin.Context) {
		pprof.Symbol(c.Writer, c.Request)
	})
}
