package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/arnavshah/timeclock-api/pkg/database"
	"github.com/arnavshah/timeclock-api/pkg/models"
	"github.com/arnavshah/timeclock-api/pkg/shifttime"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// mustRegisterValidators adds the hhmm and isodate tags to gin's validator
func mustRegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			panic("gin binding validator is not go-playground/validator")
		}
		if err := v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := shifttime.ParseClock(fl.Field().String())
			return err == nil
		}); err != nil {
			panic(err)
		}
		if err := v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := models.ParseDate(fl.Field().String())
			return err == nil
		}); err != nil {
			panic(err)
		}
	})
}

// bindFailed answers 400 for a request body or query that failed to bind
func bindFailed(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	c.JSON(http.StatusBadRequest, gin.H{"message": strings.Join(msgs, "; ")})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	if field != "" {
		field = strings.ToLower(field[:1]) + field[1:]
	}
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "hhmm":
		return field + " must be HH:MM"
	case "isodate":
		return field + " must be YYYY-MM-DD"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid (%s)", field, fe.Tag())
}

// fail maps an error from the model or storage layer to a response
func (h *Handler) fail(c *gin.Context, err error) {
	var conflict *database.ConflictError
	var invalid *models.ValidationError

	switch {
	case errors.As(err, &conflict):
		c.JSON(http.StatusBadRequest, gin.H{"message": conflict.Error(), "conflicts": conflict.Conflicts})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{"message": invalid.Error()})
	case database.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case database.IsUniqueViolation(err):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Record already exists"})
	default:
		h.Logger.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
	}
}
