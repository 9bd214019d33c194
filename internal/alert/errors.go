package alert

import "errors"

var (
	ErrInvalidStatus    = errors.New("invalid alert status")
	ErrNotFound         = errors.New("alert not found")
	ErrUnknownRule      = errors.New("unknown rule type")
	ErrUnknownPreset    = errors.New("unknown threshold preset")
	ErrInvalidThreshold = errors.New("invalid threshold")
)
