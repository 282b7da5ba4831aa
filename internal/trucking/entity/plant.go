package entity

import "time"

// Plant is a loading/unloading site a truck can visit. Plants are soft
// deleted only; transaction details keep referencing removed plants.
type Plant struct {
	ID            uint      `json:"plant_id" gorm:"primaryKey"`
	Name          string    `json:"plant_name" gorm:"size:128;not null;index"`
	Address       string    `json:"plant_address" gorm:"size:256"`
	ContactPerson string    `json:"contact_person" gorm:"size:64"`
	MobileNo      string    `json:"mobile_no" gorm:"size:20"`
	Remarks       string    `json:"remarks" gorm:"size:256"`
	IsDeleted     bool      `json:"is_deleted" gorm:"not null;default:false"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Plant) TableName() string {
	return "plant_master"
}
