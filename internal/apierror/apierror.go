// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// Machine-readable error kinds carried by every error envelope.
const (
	KindValidacion        = "VALIDACION"
	KindNoEncontrado      = "NO_ENCONTRADO"
	KindStockInsuficiente = "STOCK_INSUFICIENTE"
	KindAlmacenamiento    = "ERROR_ALMACENAMIENTO"
	KindLimite            = "LIMITE_EXCEDIDO"
	KindInterno           = "ERROR_INTERNO"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Kind   string `json:"kind"`
	Detail string `json:"detail"`
}

func New(kind, msg string) *APIError {
	return &APIError{Kind: kind, Detail: msg}
}

// Interno is the only body a 5xx ever carries.
func Interno() *APIError {
	return &APIError{Kind: KindInterno, Detail: "Error interno del servidor"}
}

// Validation wraps multiple field errors.
type ValidationError struct {
	Kind   string            `json:"kind"`
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Kind: KindValidacion, Detail: "Error de validacion", Fields: fields}
}
