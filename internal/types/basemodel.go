package types

import (
	"time"
)

// BaseModel is a base model for all domain models that need to be persisted
// in the key-value store
type BaseModel struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func GetDefaultBaseModel() BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Touch bumps UpdatedAt. Call before persisting a mutation.
func (m *BaseModel) Touch() {
	m.UpdatedAt = time.Now().UTC()
}
