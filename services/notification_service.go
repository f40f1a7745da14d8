package services

import (
	"gorm.io/gorm"

	"github.com/platewise/platewise-api/models"
)

// NotificationPayload is the optional structured payload attached to a
// notification, pointing at the order that triggered it.
type NotificationPayload struct {
	OrderID  uint   `json:"order_id"`
	OrderRef string `json:"order_ref"`
}

// NotificationStore is the durable per-recipient message log. It performs
// pure persistence with no fan-out of its own.
type NotificationStore interface {
	Record(recipientID uint, title, message, category string, payload *NotificationPayload) (*models.Notification, error)
	ListUnread(recipientID uint, page, pageSize int) ([]models.Notification, int64, error)
	MarkRead(notificationID uint) error
	MarkAllRead(recipientID uint) error
}

// notificationService implements NotificationStore on the relational store.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationStore creates a store backed by the given database.
func NewNotificationStore(db *gorm.DB) NotificationStore {
	return &notificationService{db: db}
}

func (s *notificationService) Record(recipientID uint, title, message, category string, payload *NotificationPayload) (*models.Notification, error) {
	notification := models.Notification{
		RecipientID: recipientID,
		Title:       title,
		Message:     message,
		Category:    category,
	}
	if payload != nil {
		orderID := payload.OrderID
		notification.OrderID = &orderID
		notification.OrderRef = payload.OrderRef
	}
	if err := s.db.Create(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

func (s *notificationService) ListUnread(recipientID uint, page, pageSize int) ([]models.Notification, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	query := s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := query.
		Order("created_at DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (s *notificationService) MarkRead(notificationID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("id = ?", notificationID).
		Update("is_read", true).Error
}

func (s *notificationService) MarkAllRead(recipientID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true).Error
}

var notificationStoreInstance NotificationStore

// InitNotificationStore initializes the process-wide notification store.
func InitNotificationStore(db *gorm.DB) NotificationStore {
	notificationStoreInstance = NewNotificationStore(db)
	return notificationStoreInstance
}

// GetNotificationStore returns the initialized notification store instance
func GetNotificationStore() NotificationStore {
	return notificationStoreInstance
}

// SetNotificationStore sets the notification store instance (primarily for testing)
func SetNotificationStore(store NotificationStore) {
	notificationStoreInstance = store
}
