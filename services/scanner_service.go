package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

// ReminderJobName is the queue job that triggers a subscription expiry scan.
const ReminderJobName = "subscription_reminders"

// ScannerService scans restaurant accounts for upcoming subscription expiry
// and drives the notification store and dispatch bus for each match. Runs
// are not idempotent: re-running the same day re-sends reminders, which is
// acceptable for a once-daily job.
type ScannerService struct {
	db            *gorm.DB
	notifications NotificationStore
	bus           Dispatcher
	reminderDays  []int
	now           func() time.Time
}

// NewScannerService creates the expiry scanner. reminderDays are the
// day-offsets (e.g. 1, 2, 3) that produce a reminder; each offset covers
// one whole calendar day. bus may be nil.
func NewScannerService(db *gorm.DB, notifications NotificationStore, bus Dispatcher, reminderDays []int) *ScannerService {
	return &ScannerService{
		db:            db,
		notifications: notifications,
		bus:           bus,
		reminderDays:  reminderDays,
		now:           time.Now,
	}
}

// Handler adapts the scan to the work-queue handler signature.
func (s *ScannerService) Handler() JobHandler {
	return func(ctx context.Context, _ json.RawMessage) error {
		return s.Scan(ctx)
	}
}

// Scan finds active restaurant subscriptions expiring in any of the
// configured day windows and sends each matching restaurant one reminder.
// A single restaurant's failure is logged and skipped; the scan continues.
func (s *ScannerService) Scan(ctx context.Context) error {
	log.Println("[Worker] Checking for expiring subscriptions...")

	now := s.now()
	total := 0
	for _, days := range s.reminderDays {
		start, end := dayWindow(now.AddDate(0, 0, days))

		var restaurants []models.User
		err := s.db.
			Where("role = ? AND subscription_status = ?", models.RoleRestaurant, models.SubscriptionActive).
			Where("subscription_expiry >= ? AND subscription_expiry <= ?", start, end).
			Find(&restaurants).Error
		if err != nil {
			return fmt.Errorf("expiry scan query failed for +%dd window: %w", days, err)
		}

		for i := range restaurants {
			s.remind(ctx, &restaurants[i], now)
		}
		total += len(restaurants)
	}

	log.Printf("[Worker] Found %d restaurants to remind.", total)
	return nil
}

// remind sends one reminder to one restaurant, both persistently and in
// real time. Failures are swallowed so the scan loop continues.
func (s *ScannerService) remind(ctx context.Context, restaurant *models.User, now time.Time) {
	daysRemaining := 0
	if restaurant.SubscriptionExpiry != nil {
		daysRemaining = int(math.Ceil(restaurant.SubscriptionExpiry.Sub(now).Hours() / 24))
	}
	message := fmt.Sprintf(
		"Your subscription plan (%s) expires in %d day(s). Please renew to avoid service interruption.",
		restaurant.SubscriptionPlan, daysRemaining,
	)

	BestEffort("record subscription reminder", func() error {
		_, err := s.notifications.Record(restaurant.ID, "Subscription Renewal", message, models.NotificationSubscription, nil)
		return err
	})

	BestEffort("publish subscription reminder", func() error {
		if s.bus == nil {
			return nil
		}
		return s.bus.Publish(ctx, RestaurantChannel(restaurant.ID), EventNewNotification, map[string]interface{}{
			"title":    "Subscription Renewal",
			"message":  message,
			"category": models.NotificationSubscription,
		})
	})
}

// dayWindow returns the [00:00:00, 23:59:59.999999999] bounds of t's day.
func dayWindow(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start, end
}

var scannerServiceInstance *ScannerService

// InitScannerService initializes the process-wide scanner.
func InitScannerService(db *gorm.DB, notifications NotificationStore, bus Dispatcher, reminderDays []int) *ScannerService {
	scannerServiceInstance = NewScannerService(db, notifications, bus, reminderDays)
	return scannerServiceInstance
}

// GetScannerService returns the initialized scanner instance
func GetScannerService() *ScannerService {
	return scannerServiceInstance
}

// SetScannerService sets the scanner instance (primarily for testing)
func SetScannerService(s *ScannerService) {
	scannerServiceInstance = s
}
