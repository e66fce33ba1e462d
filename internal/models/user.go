package models

import (
	"time"

	"github.com/google/uuid"
)

type RiskTolerance string

const (
	RiskToleranceLow    RiskTolerance = "low"
	RiskToleranceMedium RiskTolerance = "medium"
	RiskToleranceHigh   RiskTolerance = "high"
)

type User struct {
	ID                  uuid.UUID     `db:"id"`
	Username            string        `db:"username"`
	Email               string        `db:"email"`
	Password            string        `db:"password"`
	RiskTolerance       RiskTolerance `db:"risk_tolerance"`
	CustomBufferTarget  *float64      `db:"custom_buffer_target"`
	CustomCurrentBuffer *float64      `db:"custom_current_buffer"`
	CreatedAt           time.Time     `db:"created_at"`
	UpdatedAt           time.Time     `db:"updated_at"`
}
