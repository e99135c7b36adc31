package utils

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yeremiapane/pc-cafe/models"
)

var registerOnce sync.Once

// RegisterValidators adds the domain enum tags to gin's binding validator:
//
//	paymentmethod  card | cash
//	orderstatus    pending | processing | completed | cancelled
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
				if name != "" && name != "-" {
					return name
				}
			}
			return fld.Name
		})
		_ = v.RegisterValidation("paymentmethod", func(fl validator.FieldLevel) bool {
			return models.PaymentMethod(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			return models.OrderStatus(fl.Field().String()).Valid()
		})
	})
}

// BindingError turns a ShouldBind failure into a bad-request with a short
// field-level message instead of the raw validator text.
func BindingError(err error) *AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		field := lowerFirst(fe.Field())
		switch fe.Tag() {
		case "required":
			return BadRequest(fmt.Sprintf("%s is required", field))
		case "paymentmethod":
			return BadRequest("paymentMethod must be card or cash")
		case "orderstatus":
			return BadRequest("status must be one of pending, processing, completed, cancelled")
		case "oneof":
			return BadRequest(fmt.Sprintf("%s must be one of %s", field, fe.Param()))
		case "gt", "gte", "min":
			return BadRequest(fmt.Sprintf("%s must be at least %s", field, minParam(fe)))
		default:
			return BadRequest(fmt.Sprintf("%s is invalid", field))
		}
	}
	return BadRequest("invalid request body")
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

func minParam(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		if n, err := strconv.Atoi(fe.Param()); err == nil {
			return strconv.Itoa(n + 1)
		}
	}
	return fe.Param()
}
