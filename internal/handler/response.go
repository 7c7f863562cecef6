package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/probook/probook-api/pkg/errors"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// RespondError writes the HTTP response for a service error. Application
// errors carry their own code; anything else is a 500 with a generic body.
func RespondError(c *gin.Context, err error) {
	status, message := StatusForError(err)
	c.JSON(status, NewErrorResponse(message))
}

// StatusForError maps an error onto an HTTP status and client-safe message.
func StatusForError(err error) (int, string) {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case apperrors.ErrNotFound:
			return http.StatusNotFound, appErr.Message
		case apperrors.ErrBadRequest:
			return http.StatusBadRequest, appErr.Message
		case apperrors.ErrUnauthorized:
			return http.StatusUnauthorized, appErr.Message
		case apperrors.ErrForbidden:
			return http.StatusForbidden, appErr.Message
		case apperrors.ErrConflict:
			return http.StatusConflict, appErr.Message
		}
	}
	return http.StatusInternalServerError, "internal server error"
}

// UserID extracts the authenticated user from the gin context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString("userID"))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
