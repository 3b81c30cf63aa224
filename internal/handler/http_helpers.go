package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Key validation errors by the form field name instead of the Go
	// struct field, so the API reports "title", not "Title".
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

// respondData writes the uniform success envelope.
func respondData(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, gin.H{
		"status":  true,
		"message": message,
		"data":    data,
	})
}

// respondError writes the uniform failure envelope with a null data field.
func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{
		"status":  false,
		"message": message,
		"data":    nil,
	})
}

// respondValidation writes a 400 with field-keyed messages.
func respondValidation(c *gin.Context, errs map[string]string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"status": false,
		"errors": errs,
	})
}

// validationErrors flattens a binding error into field-keyed messages.
func validationErrors(err error) map[string]string {
	out := make(map[string]string)

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		out["request"] = "malformed request body"
		return out
	}

	for _, fe := range fieldErrors {
		out[fe.Field()] = validationMessage(fe)
	}
	return out
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", fe.Field())
	case "max":
		return fmt.Sprintf("The %s field must not exceed %s characters.", fe.Field(), fe.Param())
	case "oneof":
		choices := strings.ReplaceAll(fe.Param(), " ", ", ")
		return fmt.Sprintf("The %s field must be one of: %s.", fe.Field(), choices)
	default:
		return fmt.Sprintf("The %s field is invalid.", fe.Field())
	}
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}
