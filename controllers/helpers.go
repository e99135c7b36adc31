package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/pc-cafe/middlewares"
	"github.com/yeremiapane/pc-cafe/utils"
)

// paramID parses a positive integer path parameter.
func paramID(c *gin.Context, name string) (uint, error) {
	n, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || n == 0 {
		return 0, utils.BadRequest("invalid " + name)
	}
	return uint(n), nil
}

// bindJSON binds the body into obj. With allowEmpty an empty body is
// accepted and obj keeps its zero value.
func bindJSON(c *gin.Context, obj interface{}, allowEmpty bool) error {
	if allowEmpty && (c.Request.Body == nil || c.Request.Body == http.NoBody) {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return utils.BindingError(err)
	}
	return nil
}

func claims(c *gin.Context) (*utils.CustomClaims, error) {
	cl, ok := middlewares.CurrentClaims(c)
	if !ok {
		return nil, utils.Unauthenticated("unauthorized")
	}
	return cl, nil
}
