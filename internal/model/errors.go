package model

import "errors"

var ErrInvalidAllocation = errors.New("target allocation must be between 0 and 100")
