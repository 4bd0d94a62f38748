package domain

import "time"

type RentalStatus string

const (
	RentalPending   RentalStatus = "pending"
	RentalConfirmed RentalStatus = "confirmed"
	RentalActive    RentalStatus = "active"
	RentalCompleted RentalStatus = "completed"
	RentalCancelled RentalStatus = "cancelled"
)

// BlockingRentalStatuses hold a car's date window against other bookings.
var BlockingRentalStatuses = []RentalStatus{RentalConfirmed, RentalActive}

const DateLayout = "2006-01-02"

type Rental struct {
	ID                 int64        `json:"id" gorm:"primaryKey"`
	CarID              int64        `json:"car_id" gorm:"not null;index:idx_rentals_car_window,priority:1"`
	RenterID           int64        `json:"renter_id" gorm:"not null;index"`
	StartDate          time.Time    `json:"start_date" gorm:"type:date;not null;index:idx_rentals_car_window,priority:2"`
	EndDate            time.Time    `json:"end_date" gorm:"type:date;not null;index:idx_rentals_car_window,priority:3"`
	TotalPrice         float64      `json:"total_price" gorm:"type:decimal(12,2);not null"`
	Status             RentalStatus `json:"status" gorm:"type:varchar(16);not null;index"`
	CancellationReason string       `json:"cancellation_reason,omitempty" gorm:"type:text"`
	CancelledAt        *time.Time   `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time    `json:"created_at"`
	UpdatedAt          time.Time    `json:"updated_at"`

	Car     *Car     `json:"car,omitempty" gorm:"foreignKey:CarID"`
	Renter  *User    `json:"renter,omitempty" gorm:"foreignKey:RenterID"`
	Payment *Payment `json:"payment,omitempty" gorm:"foreignKey:RentalID"`
}

func (Rental) TableName() string { return "rentals" }

// Days is the number of billed days; both ends of the window are inclusive.
func (r *Rental) Days() int {
	return DaysBetween(r.StartDate, r.EndDate)
}

func (r *Rental) IsBlocking() bool {
	return r.Status == RentalConfirmed || r.Status == RentalActive
}

func (r *Rental) IsParty(userID int64, ownerID int64) bool {
	return userID == r.RenterID || userID == ownerID
}

// RentalStatusHistory is the append-only audit trail of a rental.
// FromStatus is empty for the creation entry; ActorID is nil for system transitions.
type RentalStatusHistory struct {
	ID         int64        `json:"id" gorm:"primaryKey"`
	RentalID   int64        `json:"rental_id" gorm:"not null;index"`
	FromStatus RentalStatus `json:"from_status,omitempty" gorm:"type:varchar(16)"`
	ToStatus   RentalStatus `json:"to_status" gorm:"type:varchar(16);not null"`
	ActorID    *int64       `json:"actor_id,omitempty"`
	Reason     string       `json:"reason,omitempty" gorm:"type:text"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (RentalStatusHistory) TableName() string { return "rental_status_history" }

// Day truncates t to its UTC calendar day.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Day(t), nil
}

func DaysBetween(start, end time.Time) int {
	return int(Day(end).Sub(Day(start)).Hours()/24) + 1
}

// WindowsOverlap reports whether two inclusive day windows share at least one day.
func WindowsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Day(aStart).After(Day(bEnd)) && !Day(bStart).After(Day(aEnd))
}
