package models

// RequestStatus is the lifecycle state of a connection request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestDeclined RequestStatus = "declined"
)

// ShortlistModel records that a user shortlisted another profile.
type ShortlistModel struct {
	Base
	UserID   string `json:"user_id"   gorm:"uniqueIndex:idx_shortlist_pair;not null"`
	TargetID string `json:"target_id" gorm:"uniqueIndex:idx_shortlist_pair;not null"`
}

func (ShortlistModel) TableName() string { return "shortlists" }

// RecentlyViewModel records a profile view, newest first.
type RecentlyViewModel struct {
	Base
	UserID   string `json:"user_id"   gorm:"index;not null"`
	TargetID string `json:"target_id" gorm:"index;not null"`
}

func (RecentlyViewModel) TableName() string { return "recently_views" }

// RequestModel is a connection request between two members.
type RequestModel struct {
	Base
	FromID string        `json:"from_id" gorm:"uniqueIndex:idx_request_pair;not null"`
	ToID   string        `json:"to_id"   gorm:"uniqueIndex:idx_request_pair;not null"`
	Status RequestStatus `json:"status"  gorm:"type:varchar(16);default:pending"`
}

func (RequestModel) TableName() string { return "requests" }

// ConversationModel is created when a request is accepted.
type ConversationModel struct {
	Base
	UserA string `json:"user_a" gorm:"uniqueIndex:idx_conversation_pair;not null"`
	UserB string `json:"user_b" gorm:"uniqueIndex:idx_conversation_pair;not null"`
}

func (ConversationModel) TableName() string { return "conversations" }
