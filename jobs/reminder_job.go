package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/edaline/tutorhub/database"
	"github.com/edaline/tutorhub/models"
	"github.com/edaline/tutorhub/notifications"
)

func SendClassReminders() {
	now := time.Now()
	lowerBound := now.Add(60 * time.Minute)
	upperBound := now.Add(65 * time.Minute)

	var upcomingBookings []models.ClassBooking
	err := database.DB.
		Preload("Student").
		Preload("Teacher").
		Where("status = ? AND start_time BETWEEN ? AND ?", models.BookingConfirmed, lowerBound, upperBound).
		Find(&upcomingBookings).Error
	if err != nil {
		log.Printf("Error checking for upcoming classes: %v", err)
		return
	}

	for _, booking := range upcomingBookings {
		log.Printf("Sending reminder for booking ID: %s", booking.ID)

		emailSubject := "Reminder: Your Class Starts in 1 Hour!"
		emailBody := fmt.Sprintf(
			"<h1>Class Reminder</h1><p>Hi there,</p><p>This is a friendly reminder that your class is scheduled to start in one hour at %s.</p>",
			booking.StartTime.Format(time.Kitchen),
		)

		go notifications.SendEmail(booking.Student.FullName, booking.Student.Email, emailSubject, emailBody)
		go notifications.SendEmail(booking.Teacher.FullName, booking.Teacher.Email, emailSubject, emailBody)
	}
}
