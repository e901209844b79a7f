package jobs

import (
	"log"
	"time"

	"laundry-booking-server/services"
	"laundry-booking-server/timeutil"
)

// ExpirationJob sweeps elapsed duration-based bookings so their slots free up
// even when nobody is reading the list.
type ExpirationJob struct {
	bookings *services.BookingService
	interval time.Duration
	stopChan chan bool
}

// NewExpirationJob creates a new expiration job
func NewExpirationJob(bookings *services.BookingService, interval time.Duration) *ExpirationJob {
	if interval <= 0 {
		interval = time.Minute
	}
	return &ExpirationJob{
		bookings: bookings,
		interval: interval,
		stopChan: make(chan bool),
	}
}

// Start begins the expiration job
func (j *ExpirationJob) Start() {
	go j.run()
	log.Println("🚀 Expiration job started")
}

// Stop stops the expiration job
func (j *ExpirationJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Expiration job stopped")
}

// run executes the expiration job
func (j *ExpirationJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep()
		case <-j.stopChan:
			return
		}
	}
}

// sweep reconciles every elapsed booking in one pass.
func (j *ExpirationJob) sweep() {
	flipped, err := j.bookings.ReconcileExpired(timeutil.Now())
	if err != nil {
		log.Printf("❌ Error reconciling expired bookings: %v", err)
		return
	}
	if len(flipped) > 0 {
		log.Printf("⏰ Expired %d elapsed booking(s)", len(flipped))
	}
}
