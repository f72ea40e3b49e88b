package dto

// NotificationPayload is one entry of GET /notifications.
type NotificationPayload struct {
	ID               FlexID   `json:"id"`
	UserID           FlexID   `json:"user_id"`
	TicketID         FlexID   `json:"ticket_id"`
	NotificationType string   `json:"notification_type"`
	Title            string   `json:"title"`
	Message          string   `json:"message"`
	IsRead           bool     `json:"is_read"`
	CreatedAt        FlexTime `json:"created_at"`
}

// UnreadCountResponse is the GET /notifications/unread/count answer.
type UnreadCountResponse struct {
	Count int `json:"count"`
}
