package service

import "errors"

// Категории ошибок. Конкретные ошибки разворачиваются в одну из них.
var (
	ErrValidation = errors.New("validation error")
	ErrAuth       = errors.New("auth error")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// Error — ошибка предметной области с сообщением для пользователя.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }
func (e *Error) Unwrap() error { return e.Kind }

var (
	ErrPasswordTooShort     = &Error{Kind: ErrValidation, Msg: "Password must be at least 5 characters"}
	ErrInvalidUsername      = &Error{Kind: ErrValidation, Msg: "Username may contain only letters, digits, '.', '_' and '-'"}
	ErrPasswordMismatch     = &Error{Kind: ErrValidation, Msg: "Passwords do not match"}
	ErrInvalidFilename      = &Error{Kind: ErrValidation, Msg: "Invalid file name"}
	ErrInvalidExpiry        = &Error{Kind: ErrValidation, Msg: "Expiry must be a non-negative integer"}
	ErrInvalidCredentials   = &Error{Kind: ErrAuth, Msg: "Invalid username or password"}
	ErrOldPasswordIncorrect = &Error{Kind: ErrAuth, Msg: "Old password incorrect"}
	ErrUserNotFound         = &Error{Kind: ErrNotFound, Msg: "Username not found"}
	ErrFileNotFound         = &Error{Kind: ErrNotFound, Msg: "File not found"}
	ErrLoginTaken           = &Error{Kind: ErrConflict, Msg: "Username already exists"}
)

// Message возвращает текст для пользователя, если ошибка предметная.
func Message(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
