package model

import "time"

// Item is a catalogue entry an asset is an instance of.
type Item struct {
	ID                   int64     `json:"id"`
	ItemName             string    `json:"itemName"`
	ItemTypeID           int64     `json:"itemTypeId"`
	ItemClassificationID int64     `json:"itemClassificationId"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`

	// Joined fields (not always populated).
	ItemTypeName       string `json:"itemTypeName,omitempty"`
	ClassificationName string `json:"classificationName,omitempty"`
}
