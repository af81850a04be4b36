package gacha

import "errors"

var (
	ErrUnknownTier   = errors.New("unknown tier")
	ErrInvalidWeight = errors.New("invalid item weight; must be a positive finite number")
	ErrInvalidRate   = errors.New("invalid tier rate; must be a finite number >= 0")
	ErrZeroRates     = errors.New("tier rates must not all be zero")
	ErrItemNotFound  = errors.New("item not found")
	ErrNotTopTier    = errors.New("item is not in the top tier")
	ErrNoTopTierItem = errors.New("catalog has no top-tier item; hard pity cannot be resolved")
)
