package dto

// Response envoltura uniforme de todas las respuestas de la API.
type Response struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// PageRequest paginación para listados. La primera página es 1.
type PageRequest struct {
	Page     int `query:"page" validate:"min=1"`
	PageSize int `query:"page_size" validate:"min=1,max=100"`
}

// DefaultPage aplica valores por defecto si Page/PageSize son cero.
func (p *PageRequest) DefaultPage() {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = 20
	}
}

// PageResponse metadatos de página en respuestas de listado.
type PageResponse struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

// ErrorResponse cuerpo de error HTTP.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
