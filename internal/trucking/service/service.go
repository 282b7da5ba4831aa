package service

import (
	"errors"
	"strings"

	"github.com/nilp12200/truckproject/internal/trucking/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Domain failure classes. Handlers map these onto HTTP statuses with
// errors.Is; services wrap them with context via fmt.Errorf("...: %w", ...).
var (
	// ErrValidation: a required field is missing or a submitted row set is
	// internally inconsistent. Rejected before any write.
	ErrValidation = errors.New("validation failed")
	// ErrTruckBusy: the truck already has an open itinerary, or a previous
	// itinerary is not fully checked out yet.
	ErrTruckBusy = errors.New("truck already in transport")
	// ErrInvalidTransition: check-out before check-in, duplicate check-out,
	// duplicate check-in.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrDuplicate: a master record with the same identity already exists
	// (plant name under normalization, username).
	ErrDuplicate = errors.New("record already exists")
	// ErrRowLocked: a detail row with a recorded check-in or check-out was
	// targeted for deletion.
	ErrRowLocked = errors.New("detail row is locked")
	// ErrPlantNotInItinerary: the queried plant has no row in the truck's
	// open header.
	ErrPlantNotInItinerary = errors.New("plant not in itinerary")
)

// Services is the trucking service collection.
type Services struct {
	Auth      *AuthService
	Plant     *PlantService
	User      *UserService
	Itinerary *ItineraryService
	Status    *StatusService
	Report    *ReportService
}

// NewServices wires all services.
func NewServices(db *gorm.DB, repos *repository.Repositories, logger *zap.Logger, jwtSecret string) *Services {
	return &Services{
		Auth:      NewAuthService(repos.User, jwtSecret),
		Plant:     NewPlantService(repos.Plant),
		User:      NewUserService(repos.User),
		Itinerary: NewItineraryService(db, repos.Transaction, logger),
		Status:    NewStatusService(db, repos.Transaction, repos.Plant, logger),
		Report:    NewReportService(repos.Report, repos.Plant),
	}
}

// NormalizeTruckNo canonicalizes a truck number: trims, strips everything
// that is not a letter or digit, uppercases, and caps at 11 characters.
// Every lookup and every stored header uses this form, so "abc-123",
// "ABC123" and " abc123 " resolve to the same truck.
func NormalizeTruckNo(truckNo string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(truckNo) {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	s := strings.ToUpper(b.String())
	if len(s) > 11 {
		s = s[:11]
	}
	return s
}

// NormalizePlantName canonicalizes a plant name for lookups: trim and
// lowercase. Stored names keep their original casing.
func NormalizePlantName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
