package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSalesRequest    NotificationType = "sales_request"
	NotificationTypeProductRequest  NotificationType = "product_request"
	NotificationTypeRequestApproved NotificationType = "request_approved"
	NotificationTypeRequestRejected NotificationType = "request_rejected"
	NotificationTypeStatusUpdate    NotificationType = "status_update"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSalesRequest,
	NotificationTypeProductRequest,
	NotificationTypeRequestApproved,
	NotificationTypeRequestRejected,
	NotificationTypeStatusUpdate,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
