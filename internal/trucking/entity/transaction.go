package entity

import (
	"time"
)

// Freight payment terms for a detail row
const (
	FreightToPay = "ToPay"
	FreightPaid  = "Paid"
)

// TruckTransaction is the itinerary header: one physical trip of a truck
// visiting one or more plants. Completed flips to true only when every
// detail row has both check-in and check-out recorded.
type TruckTransaction struct {
	ID              uint      `json:"transaction_id" gorm:"primaryKey"`
	TruckNo         string    `json:"truck_no" gorm:"size:11;not null;index"`
	TransactionDate time.Time `json:"transaction_date" gorm:"type:date;not null"`
	CityName        string    `json:"city_name" gorm:"size:128;not null"`
	Transporter     string    `json:"transporter" gorm:"size:128"`
	AmountPerTon    float64   `json:"amount_per_ton" gorm:"type:decimal(12,2);default:0"`
	TruckWeight     float64   `json:"truck_weight" gorm:"type:decimal(12,3);not null"`
	DeliverPoint    string    `json:"deliver_point" gorm:"size:128;not null"`
	Remarks         string    `json:"remarks" gorm:"size:256"`
	Completed       bool      `json:"completed" gorm:"not null;default:false;index"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	Details []TransactionDetail `json:"details,omitempty" gorm:"foreignKey:TransactionID"`
}

func (TruckTransaction) TableName() string {
	return "truck_transaction_master"
}

// TransactionDetail is one plant visit within a header. Once either check
// flag is set the row is locked: it survives itinerary resubmission and
// only the check-in/out fields may still change.
type TransactionDetail struct {
	ID             uint       `json:"detail_id" gorm:"primaryKey"`
	TransactionID  uint       `json:"transaction_id" gorm:"not null;index"`
	PlantID        uint       `json:"plant_id" gorm:"not null;index"`
	LoadingSlipNo  string     `json:"loading_slip_no" gorm:"size:64;not null"`
	Qty            float64    `json:"qty" gorm:"type:decimal(12,3);not null"`
	Priority       int        `json:"priority" gorm:"not null"`
	Remarks        string     `json:"remarks" gorm:"size:256"`
	Freight        string     `json:"freight" gorm:"size:10;not null;default:ToPay"`
	CheckInStatus  bool       `json:"check_in_status" gorm:"not null;default:false"`
	CheckInTime    *time.Time `json:"check_in_time"`
	CheckOutStatus bool       `json:"check_out_status" gorm:"not null;default:false"`
	CheckOutTime   *time.Time `json:"check_out_time"`
	InvoiceNumber  string     `json:"invoice_number" gorm:"size:64"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Transaction *TruckTransaction `json:"-" gorm:"foreignKey:TransactionID"`
	Plant       *Plant            `json:"plant,omitempty" gorm:"foreignKey:PlantID"`
}

func (TransactionDetail) TableName() string {
	return "truck_transaction_details"
}

// Locked reports whether the row may still be edited or deleted by an
// itinerary submission.
func (d *TransactionDetail) Locked() bool {
	return d.CheckInStatus || d.CheckOutStatus
}

// FullyProcessed reports whether both check flags are set.
func (d *TransactionDetail) FullyProcessed() bool {
	return d.CheckInStatus && d.CheckOutStatus
}
