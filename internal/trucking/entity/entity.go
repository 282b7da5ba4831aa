package entity

import "gorm.io/gorm"

// Migrate creates all tables, the open-header uniqueness index and the
// itinerary uniqueness constraints.
//
// The per-header (plant, priority) uniqueness is enforced with deferred
// constraints rather than plain unique indexes: an itinerary resubmission
// may reorder priorities of existing rows in place, which transiently
// collides until the whole row set is written. Checking at commit keeps the
// store-level guarantee without rejecting valid reorders.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&Plant{},
		&User{},
		&TruckTransaction{},
		&TransactionDetail{},
	); err != nil {
		return err
	}

	stmts := []string{
		// At most one open header per truck, enforced at the store so two
		// concurrent submissions racing past the service-level count cannot
		// both commit.
		"DROP INDEX IF EXISTS uq_open_header_truck",
		"CREATE UNIQUE INDEX uq_open_header_truck ON truck_transaction_master (truck_no) WHERE NOT completed",
		"ALTER TABLE truck_transaction_details DROP CONSTRAINT IF EXISTS uq_details_txn_plant",
		"ALTER TABLE truck_transaction_details ADD CONSTRAINT uq_details_txn_plant UNIQUE (transaction_id, plant_id) DEFERRABLE INITIALLY DEFERRED",
		"ALTER TABLE truck_transaction_details DROP CONSTRAINT IF EXISTS uq_details_txn_priority",
		"ALTER TABLE truck_transaction_details ADD CONSTRAINT uq_details_txn_priority UNIQUE (transaction_id, priority) DEFERRABLE INITIALLY DEFERRED",
	}
	for _, s := range stmts {
		if err := db.Exec(s).Error; err != nil {
			return err
		}
	}
	return nil
}
