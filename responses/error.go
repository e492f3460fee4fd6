package responses

import "fmt"

// Error describes an error for humans and machines
type Error struct {
	Status  int    `json:"status"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e Error) Error() string {
	return fmt.Sprintf("status:%d, code:%d, message:%q", e.Status, e.Code, e.Message)
}

// NewErrorf a brand new error using fmt.Sprintf
func NewErrorf(status, code int, message string, args ...interface{}) *Error {
	return &Error{
		Status:  status,
		Code:    code,
		Message: fmt.Sprintf(message, args...),
	}
}
