package entity

import (
	"time"

	"github.com/google/uuid"
)

// Deliverable is a gallery, album or film owed to a couple.
type Deliverable struct {
	ID          uuid.UUID  `json:"id"`
	CoupleID    uuid.UUID  `json:"couple_id"`
	Kind        string     `json:"kind"`
	Status      string     `json:"status"`
	DueDate     string     `json:"due_date,omitempty"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}

// StaffAssignment puts a photographer or videographer on a wedding.
type StaffAssignment struct {
	ID        uuid.UUID `json:"id"`
	CoupleID  uuid.UUID `json:"couple_id"`
	StaffName string    `json:"staff_name"`
	Role      string    `json:"role"`
}
