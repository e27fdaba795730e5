package models

import "time"

type IdempotencyModel struct {
	Key         string `gorm:"primaryKey"`
	Status      string `gorm:"not null"`
	Signature   string
	RecordID    string
	CreatedAt   time.Time
	CompletedAt time.Time
}

func (IdempotencyModel) TableName() string {
	return "idempotency_keys"
}
