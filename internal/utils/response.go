package utils

import "github.com/gofiber/fiber/v3"

// Envelope wraps every successful API payload
type Envelope struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

// Pagination describes one page of sales history
type Pagination struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
	Pages    int `json:"pages"`
}

// errorEnvelope flattens an APIError next to the success flag
type errorEnvelope struct {
	Success bool `json:"success"`
	*APIError
}

// SuccessResponse sends data with 200
func SuccessResponse(c fiber.Ctx, data any) error {
	return c.JSON(Envelope{Success: true, Data: data})
}

// CreatedResponse sends data with 201, used when an import batch is staged
func CreatedResponse(c fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(Envelope{Success: true, Data: data})
}

// ErrorResponse renders an APIError with its status code
func ErrorResponse(c fiber.Ctx, apiErr *APIError) error {
	return c.Status(apiErr.StatusCode).JSON(errorEnvelope{APIError: apiErr})
}

// PaginatedResponse sends one page of results
func PaginatedResponse(c fiber.Ctx, data any, page, pageSize, total int) error {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	return c.JSON(Envelope{
		Success: true,
		Data:    data,
		Pagination: &Pagination{
			Page:     page,
			PageSize: pageSize,
			Total:    total,
			Pages:    pages,
		},
	})
}
