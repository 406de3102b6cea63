package shop

import "time"

// Shop is an installed shop and its offline Admin API credential.
type Shop struct {
	ID          int64
	Domain      string
	AccessToken string
	Scopes      string
	Status      string
	InstalledAt time.Time
}
