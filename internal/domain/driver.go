package domain

import "time"

// Driver represents a commercial truck driver in the system.
type Driver struct {
	ID            string
	Name          string
	Phone         string
	LicenseNumber string
	CreatedAt     time.Time
}
