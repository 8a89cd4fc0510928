package model

// User is read-only reference data: employees holding assets and encoders
// recording them.
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	FullName string `json:"fullName" yaml:"fullName"`
	Email    string `json:"email" yaml:"email"`
	IsActive bool   `json:"isActive" yaml:"isActive"`
}
