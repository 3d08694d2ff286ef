package jobs

import (
	"log"
	"time"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
)

// SweepExpiredHolds deletes holds past their expiry. Every read already
// treats expired holds as absent, so the sweep only keeps the table from
// accumulating dead rows.
func SweepExpiredHolds() {
	res := database.DB.
		Where("expires_at <= ?", time.Now()).
		Delete(&models.ReservationHold{})

	if res.Error != nil {
		log.Printf("Error sweeping expired holds: %v", res.Error)
		return
	}
	if res.RowsAffected > 0 {
		log.Printf("Swept %d expired hold(s).", res.RowsAffected)
	}
}
