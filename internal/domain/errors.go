package domain

import "errors"

var (
	ErrEmptyLedger        = errors.New("rotation ledger is empty")
	ErrIndexOutOfRange    = errors.New("rotation index out of range")
	ErrLoopAlreadyRunning = errors.New("rotation loop already running")
	ErrLoopNotRunning     = errors.New("rotation loop not running")
	ErrAccountNotFound    = errors.New("shopee account not found")
	ErrNoActiveSession    = errors.New("no active live session")
	ErrNoProductSets      = errors.New("no non-empty product sets available")
)
