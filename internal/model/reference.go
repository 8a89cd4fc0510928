package model

import "time"

// Reference is a lookup row identified by a unique display name. Item types,
// classifications and departments share this shape.
type Reference struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
