package logger

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// RecordingFailedEvent is an audit row for a recording request that was
// rejected or could not settle. Kept separate from the idempotency table
// so every attempt is visible, not just the latest state per key.
type RecordingFailedEvent struct {
	ID             uint `gorm:"primaryKey"`
	RequestType    string
	IdempotencyKey string
	Reason         string
	Retryable      bool
	Timestamp      time.Time
}

type RecordingAuditLogger interface {
	LogRecordingFailed(ctx context.Context, event RecordingFailedEvent) error
}

type PGRecordingAuditLogger struct {
	db *gorm.DB
}

func NewPGRecordingAuditLogger(db *gorm.DB) *PGRecordingAuditLogger {
	return &PGRecordingAuditLogger{db: db}
}

func (l *PGRecordingAuditLogger) LogRecordingFailed(ctx context.Context, event RecordingFailedEvent) error {
	return l.db.WithContext(ctx).Create(&event).Error
}
