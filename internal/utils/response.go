package utils

import "github.com/gofiber/fiber/v2"

// APIResponse is the envelope every EduBridge endpoint returns. Data is
// omitted on errors so clients can branch on Success alone.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message"`
}

// SendSuccess writes a 200 response wrapping data in the standard envelope.
func SendSuccess(c *fiber.Ctx, message string, data interface{}) error {
	return SendSuccessWithStatus(c, fiber.StatusOK, message, data)
}

// SendSuccessWithStatus writes a success envelope with an explicit status,
// typically 201 for resource creation.
func SendSuccessWithStatus(c *fiber.Ctx, status int, message string, data interface{}) error {
	if status == 0 {
		status = fiber.StatusOK
	}
	return send(c, status, APIResponse{
		Success: true,
		Data:    data,
		Message: defaultMessage(message, "success"),
	})
}

// SendError writes an error envelope with the given status code.
func SendError(c *fiber.Ctx, status int, message string) error {
	return send(c, status, APIResponse{
		Success: false,
		Message: defaultMessage(message, "error"),
	})
}

func send(c *fiber.Ctx, status int, body APIResponse) error {
	return c.Status(status).JSON(body)
}

func defaultMessage(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}
