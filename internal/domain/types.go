package domain

import "time"

type CategoryTag string

const (
	CategoryGeneric      CategoryTag = "GENERIC"
	CategoryPayment      CategoryTag = "PAYMENT"
	CategoryEUCovidCert  CategoryTag = "EU_COVID_CERT"
	CategoryLegalMessage CategoryTag = "LEGAL_MESSAGE"
	CategoryThirdParty   CategoryTag = "THIRD_PARTY"
)

// Category is a closed tagged variant: Tag selects which of the optional
// fields are meaningful. PAYMENT carries NoticeNumber; THIRD_PARTY carries
// the remaining fields.
type Category struct {
	Tag                 CategoryTag `json:"tag"`
	NoticeNumber        string      `json:"notice_number,omitempty"`
	HasAttachments      *bool       `json:"has_attachments,omitempty"`
	ID                  string      `json:"id,omitempty"`
	OriginalSender      string      `json:"original_sender,omitempty"`
	OriginalReceiptDate *time.Time  `json:"original_receipt_date,omitempty"`
	Summary             string      `json:"summary,omitempty"`
}

// EnrichedMessage is the output entity of the list operation. It is built
// fresh per request and never persisted.
type EnrichedMessage struct {
	ID               string    `json:"id"`
	Recipient        string    `json:"recipient"`
	CreatedAt        time.Time `json:"created_at"`
	SenderServiceID  string    `json:"sender_service_id"`
	MessageTitle     string    `json:"message_title"`
	IsRead           bool      `json:"is_read"`
	IsArchived       bool      `json:"is_archived"`
	TimeToLive       int64     `json:"time_to_live,omitempty"`
	HasAttachments   bool      `json:"has_attachments"`
	HasRemoteContent bool      `json:"has_remote_content"`
	HasPrecondition  bool      `json:"has_precondition"`
	OrganizationName string    `json:"organization_name,omitempty"`
	ServiceName      string    `json:"service_name,omitempty"`
	Category         *Category `json:"category,omitempty"`
}

// MessagePage is a cursor-paginated slice of enriched messages, newest first.
// Prev is the id of the first item (absent when the page is empty); Next is
// the id of the first matching item beyond the page (absent when exhausted).
type MessagePage struct {
	Items []EnrichedMessage `json:"items"`
	Prev  string            `json:"prev,omitempty"`
	Next  string            `json:"next,omitempty"`
}

type ListMessagesRequest struct {
	Recipient string
	PageSize  int
	Enrich    bool
	Archived  bool
	MaximumID string
	MinimumID string
}

const DefaultPageSize = 100

// EffectivePrecondition suppresses the precondition prompt once the message
// has been read.
func EffectivePrecondition(configured, read bool) bool {
	return configured && !read
}
