package dto

import "encoding/json"

// PageRequest paginación para listados.
type PageRequest struct {
	Limit  int `query:"limit" validate:"min=0,max=100"`
	Offset int `query:"offset" validate:"min=0"`
}

// DefaultPage aplica valores por defecto si Limit/Offset son cero.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total,omitempty"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"` // errores de validación por campo
}

// DateLayout formato de fechas de negocio en la API.
const DateLayout = "2006-01-02"

// OptionalString campo de un patch que distingue "omitido" de "enviado". Un null JSON
// cuenta como enviado con valor vacío.
type OptionalString struct {
	Set   bool
	Value string
}

// NewOptionalString valor enviado.
func NewOptionalString(v string) OptionalString {
	return OptionalString{Set: true, Value: v}
}

// UnmarshalJSON solo se invoca cuando la clave está presente, incluso con null.
func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = ""
		return nil
	}
	return json.Unmarshal(b, &o.Value)
}
