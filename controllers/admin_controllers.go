package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

type AdminController struct {
	Stats *services.StatsService
}

func NewAdminController(stats *services.StatsService) *AdminController {
	return &AdminController{Stats: stats}
}

// GetDashboardStats -> users, seat occupancy, order counts, revenue, top menus
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Stats.Dashboard(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats retrieved successfully", stats)
}
