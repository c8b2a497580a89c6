package handler

import (
	"errors"
	"net/http"
	"reflect"

	"superbravo/internal/apierror"
	"superbravo/internal/middleware"
	"superbravo/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidacion, "JSON inválido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// validar runs the validator tags of v, answering 400 with the failing fields.
func validar(c *gin.Context, v interface{}) bool {
	if err := validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidacion, err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Namespace()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, apierror.NewValidation(fields))
		return false
	}
	return true
}

// bindQuery binds the query string into dst and validates it; bad numbers
// and out-of-range paging are a 400.
func bindQuery(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindQuery(dst); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidacion, "Parámetros inválidos: "+err.Error()))
		return false
	}
	return validar(c, dst)
}

// paramUUID parses the path parameter name, answering 400 when it is not a UUID.
func paramUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(apierror.KindValidacion, "ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}

// statusFor maps an apierror kind to its HTTP status.
func statusFor(kind string) int {
	switch kind {
	case apierror.KindValidacion, apierror.KindStockInsuficiente:
		return http.StatusBadRequest
	case apierror.KindNoEncontrado:
		return http.StatusNotFound
	case apierror.KindLimite:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the envelope for a service error. 5xx bodies are always
// the generic one; the cause is logged with the request id.
func respondError(c *gin.Context, err error) {
	kind := service.KindOf(err)
	status := statusFor(kind)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", c.GetString(middleware.RequestIDKey)).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(status, apierror.Interno())
		return
	}

	msg := err.Error()
	var se *service.Error
	if errors.As(err, &se) {
		msg = se.Msg
	}
	c.JSON(status, apierror.New(kind, msg))
}
