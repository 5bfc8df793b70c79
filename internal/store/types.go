package store

import (
	"errors"
	"time"
)

type ProcessingState string

const (
	StateAccepted  ProcessingState = "ACCEPTED"
	StateThrottled ProcessingState = "THROTTLED"
	StateProcessed ProcessingState = "PROCESSED"
	StateFailed    ProcessingState = "FAILED"
	StateRejected  ProcessingState = "REJECTED"
)

// MessageRecord is the normalized message row. Immutable once written;
// status and content live elsewhere.
type MessageRecord struct {
	ID              string
	Recipient       string
	CreatedAt       time.Time
	SenderServiceID string
	IsPending       bool
	TimeToLive      int64
}

// MessageStatus is one version of a message's status history. Only the
// highest version per message is authoritative.
type MessageStatus struct {
	MessageID  string
	Version    int
	IsRead     bool
	IsArchived bool
	State      ProcessingState
}

// MessageContent is the blob-stored message body.
type MessageContent struct {
	Subject  string `json:"subject"`
	Markdown string `json:"markdown"`
}

type ViewStatus struct {
	IsRead     bool
	IsArchived bool
}

type PaymentComponent struct {
	Has          bool
	NoticeNumber string
}

type FlagComponent struct {
	Has bool
}

type ThirdPartyComponent struct {
	Has                 bool
	ID                  string
	OriginalSender      string
	OriginalReceiptDate *time.Time
	Summary             string
	HasAttachments      bool
	HasRemoteContent    bool
	// HasPrecondition is nil when the projection did not state it; the
	// sender's remote-content configuration decides then.
	HasPrecondition *bool
}

type Components struct {
	Payment     PaymentComponent
	LegalData   FlagComponent
	EUCovidCert FlagComponent
	Attachments FlagComponent
	ThirdParty  ThirdPartyComponent
}

// MessageView is the denormalized projection row: record fields plus
// embedded status and component flags. Written by an external pipeline,
// read-only here.
type MessageView struct {
	ID              string
	Recipient       string
	CreatedAt       time.Time
	SenderServiceID string
	TimeToLive      int64
	MessageTitle    string
	Status          ViewStatus
	Components      Components
}

// ServiceMetadata is the latest version of a sender service's registry
// entry.
type ServiceMetadata struct {
	ServiceID        string `json:"service_id"`
	Version          int    `json:"version"`
	ServiceName      string `json:"service_name"`
	OrganizationName string `json:"organization_name"`
}

func (s ServiceMetadata) Validate() error {
	if s.ServiceID == "" {
		return errors.New("service metadata missing service id")
	}
	return nil
}

// RemoteContentConfig is the remote-content configuration for a sender
// service: whether its third-party messages require a precondition prompt.
type RemoteContentConfig struct {
	ServiceID       string `json:"service_id"`
	Version         int    `json:"version"`
	HasPrecondition bool   `json:"has_precondition"`
}

func (c RemoteContentConfig) Validate() error {
	if c.ServiceID == "" {
		return errors.New("remote content config missing service id")
	}
	return nil
}
