package controllers

import (
	"errors"
	"net/http"

	"tunnel-dashboard/internal/models"
	"tunnel-dashboard/internal/rpc"
	"tunnel-dashboard/services"

	"github.com/gin-gonic/gin"
)

// TunnelController forwards tunnel commands to the dispatcher
type TunnelController struct {
	dispatcher *services.Dispatcher
}

// NewTunnelController creates a TunnelController bound to the session dispatcher
func NewTunnelController(dispatcher *services.Dispatcher) *TunnelController {
	return &TunnelController{
		dispatcher: dispatcher,
	}
}

func (tc *TunnelController) RegisterRoutes(r *gin.Engine) {
	g := r.Group("/api/v1/tunnels")
	g.POST("/start", tc.StartTunnel)
	g.POST("/stop", tc.StopTunnel)
	g.POST("/replace", tc.ReplaceTunnel)
}

// StartTunnel starts one tunnel or a range
//
//	@Summary		Start tunnels
//	@Description	Start a tunnel id or a range such as "0-4"; empty starts tunnel 0
//	@Tags			Tunnels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.StartTunnelRequest	true	"Start request"
//	@Success		200		{object}	models.CommandResult
//	@Failure		400		{object}	models.ErrorResponse
//	@Failure		502		{object}	models.ErrorResponse
//	@Router			/api/v1/tunnels/start [post]
func (tc *TunnelController) StartTunnel(c *gin.Context) {
	var req models.StartTunnelRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Code:  "tunnel.invalid_request",
			Error: "Invalid request parameters",
		})
		return
	}

	res, err := tc.dispatcher.Start(c.Request.Context(), models.StartRequest{
		TunnelID:      string(req.TunnelID),
		Build:         req.Build,
		UpdateConfigs: req.UpdateConfigs,
	})
	respondCommand(c, res, err)
}

// StopTunnel stops one tunnel or "all"
//
//	@Summary		Stop tunnels
//	@Tags			Tunnels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.StopTunnelRequest	true	"Stop request"
//	@Success		200		{object}	models.CommandResult
//	@Failure		400		{object}	models.ErrorResponse
//	@Failure		502		{object}	models.ErrorResponse
//	@Router			/api/v1/tunnels/stop [post]
func (tc *TunnelController) StopTunnel(c *gin.Context) {
	var req models.StopTunnelRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Code:  "tunnel.invalid_request",
			Error: "Invalid request parameters",
		})
		return
	}

	res, err := tc.dispatcher.Stop(c.Request.Context(), string(req.TunnelID))
	respondCommand(c, res, err)
}

// ReplaceTunnel stops one tunnel and starts another
//
//	@Summary		Replace tunnel
//	@Tags			Tunnels
//	@Accept			json
//	@Produce		json
//	@Param			body	body		models.ReplaceTunnelRequest	true	"Replace request"
//	@Success		200		{object}	models.CommandResult
//	@Failure		400		{object}	models.ErrorResponse
//	@Failure		502		{object}	models.ErrorResponse
//	@Router			/api/v1/tunnels/replace [post]
func (tc *TunnelController) ReplaceTunnel(c *gin.Context) {
	var req models.ReplaceTunnelRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{
			Code:  "tunnel.invalid_request",
			Error: "Invalid request parameters",
		})
		return
	}

	res, err := tc.dispatcher.Replace(c.Request.Context(), string(req.StopTunnel), string(req.StartTunnel))
	respondCommand(c, res, err)
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.ContentLength == 0 {
		return nil
	}
	return c.ShouldBindJSON(obj)
}

func respondCommand(c *gin.Context, res *models.CommandResult, err error) {
	if err == nil {
		c.JSON(http.StatusOK, res)
		return
	}

	msg := err.Error()
	if res != nil {
		msg = res.Message
	}
	var apiErr *rpc.APIError
	switch {
	case errors.Is(err, services.ErrMissingTunnelID):
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{Code: "tunnel.missing_id", Error: msg})
	case errors.Is(err, services.ErrInvalidTunnelID):
		c.JSON(http.StatusBadRequest, &models.ErrorResponse{Code: "tunnel.invalid_id", Error: msg})
	case errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500:
		c.JSON(apiErr.StatusCode, &models.ErrorResponse{Code: "tunnel.rejected", Error: msg})
	default:
		c.JSON(http.StatusBadGateway, &models.ErrorResponse{Code: "tunnel.backend_error", Error: msg})
	}
}
