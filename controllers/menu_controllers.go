package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/services"
	"github.com/yeremiapane/pc-cafe/utils"
)

type MenuController struct {
	Menus          *services.MenuService
	MaxUploadBytes int64
}

func NewMenuController(menus *services.MenuService, maxUploadBytes int64) *MenuController {
	return &MenuController{Menus: menus, MaxUploadBytes: maxUploadBytes}
}

// GetAllMenus
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	menus, err := mc.Menus.List(c.Request.Context())
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// CreateMenu accepts multipart (name, price, category, image) or JSON.
func (mc *MenuController) CreateMenu(c *gin.Context) {
	input, err := mc.readInput(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	menu, err := mc.Menus.Create(c.Request.Context(), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.InfoLogger.Printf("Menu created: %s (id=%d)", menu.Name, menu.ID)
	utils.RespondJSON(c, http.StatusOK, "Menu created", gin.H{"id": menu.ID})
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	input, err := mc.readInput(c)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	menu, err := mc.Menus.Update(c.Request.Context(), id, input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu updated", mc.Menus.View(*menu))
}

// DeleteMenu also deletes every order placed for the menu.
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	id, err := paramID(c, "id")
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	removed, err := mc.Menus.Delete(c.Request.Context(), id)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", gin.H{"deletedOrders": removed})
}

func (mc *MenuController) readInput(c *gin.Context) (services.MenuInput, error) {
	if strings.HasPrefix(c.ContentType(), "application/json") {
		return readJSONMenu(c)
	}

	if mc.MaxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, mc.MaxUploadBytes)
	}
	if err := c.Request.ParseMultipartForm(mc.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return services.MenuInput{}, utils.BadRequest("upload exceeds size limit")
		}
		return services.MenuInput{}, utils.BadRequest("error processing form")
	}

	var in services.MenuInput
	if v, ok := c.GetPostForm("name"); ok {
		in.Name = &v
	}
	if v, ok := c.GetPostForm("category"); ok {
		in.Category = &v
	}
	if v, ok := c.GetPostForm("price"); ok {
		price, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil || price <= 0 {
			return in, utils.BadRequest("price must be a positive integer")
		}
		in.Price = &price
	}

	fh, err := c.FormFile("image")
	switch {
	case err == nil:
		in.Image = fh
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
	default:
		return in, utils.BadRequest("invalid image upload")
	}
	return in, nil
}

func readJSONMenu(c *gin.Context) (services.MenuInput, error) {
	var req struct {
		Name     *string `json:"name"`
		Price    *int64  `json:"price"`
		Category *string `json:"category"`
	}
	if err := bindJSON(c, &req, false); err != nil {
		return services.MenuInput{}, err
	}
	return services.MenuInput{Name: req.Name, Price: req.Price, Category: req.Category}, nil
}
