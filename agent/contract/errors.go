package contract

import "errors"

var (
	ErrDecide         = errors.New("decision function failed")
	ErrUnknownTool    = errors.New("tool not in registry")
	ErrBadArguments   = errors.New("tool arguments invalid")
	ErrInvalidPhone   = errors.New("phone number is empty")
	ErrInvalidMessage = errors.New("message is empty")
)
