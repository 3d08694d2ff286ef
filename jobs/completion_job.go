package jobs

import (
	"log"
	"time"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
)

// CompleteFinishedClasses moves confirmed bookings whose end time has
// passed into the completed state. Completed is terminal: a completed
// class can no longer be cancelled or edited.
func CompleteFinishedClasses() {
	res := database.DB.Model(&models.ClassBooking{}).
		Where("status = ? AND end_time < ?", models.BookingConfirmed, time.Now()).
		Update("status", models.BookingCompleted)

	if res.Error != nil {
		log.Printf("Error completing finished classes: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Marked %d booking(s) as completed.", res.RowsAffected)
	}
}
