package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories is the set of trucking data stores.
type Repositories struct {
	Plant       *PlantRepository
	User        *UserRepository
	Transaction *TransactionRepository
	Report      *ReportRepository
}

// NewRepositories wires all repositories to one gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Plant:       NewPlantRepository(db),
		User:        NewUserRepository(db),
		Transaction: NewTransactionRepository(db),
		Report:      NewReportRepository(db),
	}
}
