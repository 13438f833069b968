package bus

// Event names pushed to connected clients. Names and payload shapes are part
// of the client contract; renaming one breaks every dashboard listening for it.
const (
	EventNewComplaint          = "new-complaint"
	EventComplaintStatusUpdate = "complaint-status-updated"
	EventComplaintCommentAdded = "complaint-comment-added"
	EventComplaintDeleted      = "complaint-deleted"

	EventNewGuestRequest    = "new-guest-request"
	EventGuestStatusUpdated = "guest-status-updated"
	EventGuestDeleted       = "guest-deleted"

	EventNewNotice     = "new-notice"
	EventNoticeUpdated = "notice-updated"
	EventNoticeDeleted = "notice-deleted"

	EventPaymentStatusUpdated = "payment-status-updated"

	EventGuestUserApproved = "guest-user-approved"
	EventUserStatusUpdated = "user-status-updated"
	EventUserDeleted       = "user-deleted"
)

// Event is a single fan-out message.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}
