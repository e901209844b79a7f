package jobs

import (
	"log"
	"time"

	"laundry-booking-server/services"
	"laundry-booking-server/timeutil"
)

// CleanupJob runs the retention purge once a week at a fixed local wall-clock
// time. The next run is recomputed after every firing, including failed runs,
// so one bad week never stalls the schedule.
type CleanupJob struct {
	cleanup  *services.CleanupService
	weekday  time.Weekday
	hour     int
	stopChan chan bool
}

// NewCleanupJob creates a new weekly cleanup job
func NewCleanupJob(cleanup *services.CleanupService, weekday time.Weekday, hour int) *CleanupJob {
	return &CleanupJob{
		cleanup:  cleanup,
		weekday:  weekday,
		hour:     hour,
		stopChan: make(chan bool),
	}
}

// Start begins the cleanup job
func (j *CleanupJob) Start() {
	go j.run()
	log.Printf("🚀 Cleanup job started (weekly, %s %02d:00)", j.weekday, j.hour)
}

// Stop stops the cleanup job
func (j *CleanupJob) Stop() {
	j.stopChan <- true
	log.Println("🛑 Cleanup job stopped")
}

// run schedules and executes the weekly purge
func (j *CleanupJob) run() {
	for {
		next := nextRunAfter(timeutil.Now(), j.weekday, j.hour)
		timer := time.NewTimer(time.Until(next))
		log.Printf("🧹 Next retention purge scheduled for %s", next.Format("02/01/2006 15:04"))

		select {
		case <-timer.C:
			j.purge()
		case <-j.stopChan:
			timer.Stop()
			return
		}
	}
}

// purge executes one retention run
func (j *CleanupJob) purge() {
	result, err := j.cleanup.PurgeOldBookings(timeutil.Now())
	if err != nil {
		log.Printf("❌ Retention purge failed: %v", err)
		return
	}
	log.Printf("🧹 Retention purge done: %d booking(s), %d notification(s) removed",
		result.DeletedBookings, result.DeletedNotifications)
}

// nextRunAfter returns the first weekday/hour instant strictly after now, in
// now's location.
func nextRunAfter(now time.Time, weekday time.Weekday, hour int) time.Time {
	candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	daysAhead := (int(weekday) - int(now.Weekday()) + 7) % 7
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(now) {
		candidate = candidate.AddDate(0, 0, 7)
	}
	return candidate
}
