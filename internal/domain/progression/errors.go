package progression

import "errors"

var (
	// ErrCardNotFound is returned when a card key is not in the catalog.
	ErrCardNotFound = errors.New("progression: card not found")

	// ErrCardNotForSale is returned for a card with no positive price.
	ErrCardNotForSale = errors.New("progression: card not for sale")

	// ErrInsufficientExperience is returned when a purchase would
	// overdraw the user's experience balance.
	ErrInsufficientExperience = errors.New("progression: insufficient experience")

	// ErrCardNotOwned is returned when consuming a card the user does
	// not hold.
	ErrCardNotOwned = errors.New("progression: card not owned")
)
