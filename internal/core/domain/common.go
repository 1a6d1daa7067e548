package domain

import "time"

// Timestamps holds standard creation/update times for ledger entities.
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
