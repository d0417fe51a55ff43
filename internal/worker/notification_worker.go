package worker

import (
	"github.com/ticketflow/ticketflow/internal/notification"
)

// StartNotificationWorker subscribes the notification service to ticket
// events so department mailboxes hear about changes.
func StartNotificationWorker(notificationService *notification.Service) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
