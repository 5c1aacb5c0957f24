package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrTitleConflict = errors.New("title conflict")
	ErrInvalidTitle  = errors.New("invalid title")
	ErrEditorLaunch  = errors.New("editor launch failed")
)
