package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"cosync/internal/runner"
)

func (d Deps) execute(c *gin.Context) {
	var req runner.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "missing or invalid execute request"})
		return
	}
	result, err := d.Runner.Execute(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("module", "api.run").Str("language", req.Language).Msg("execute")
		c.JSON(http.StatusBadGateway, gin.H{"message": "code execution failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (d Deps) runtimes(c *gin.Context) {
	runtimes, err := d.Runner.Runtimes(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Str("module", "api.run").Msg("runtimes")
		c.JSON(http.StatusBadGateway, gin.H{"message": "runtime list unavailable"})
		return
	}
	c.JSON(http.StatusOK, runtimes)
}
