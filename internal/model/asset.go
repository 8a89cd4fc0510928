package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Asset is one tracked instance of an item, held by an employee in a department.
type Asset struct {
	ID                   int64           `json:"id"`
	ItemID               int64           `json:"itemId"`
	ItemTypeID           int64           `json:"itemTypeId"`
	ItemClassificationID int64           `json:"itemClassificationId"`
	DepartmentID         int64           `json:"departmentId"`
	EmployeeID           int64           `json:"employeeId"`
	EncoderID            int64           `json:"encoderId"`
	PurchaseDate         Date            `json:"purchaseDate"`
	TotalCost            decimal.Decimal `json:"totalCost"`
	Quantity             int             `json:"quantity"`
	LifeSpanMonths       *int            `json:"lifeSpanMonths,omitempty"`
	Condition            string          `json:"condition,omitempty"`
	ImageRef             string          `json:"imageRef,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	UpdatedAt            time.Time       `json:"updatedAt"`
}

