package models

import "time"

const (
	NoteGeneral     = "general"
	NoteCall        = "call"
	NoteEmail       = "email"
	NoteMeeting     = "meeting"
	NoteComplaint   = "complaint"
	NoteOrderUpdate = "order_update"
)

const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	TaskFollowUp = "follow_up"
	TaskCall     = "call"
	TaskEmail    = "email"
	TaskMeeting  = "meeting"
)

func ValidTaskPriority(s string) bool {
	switch s {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func ValidTaskType(s string) bool {
	switch s {
	case TaskFollowUp, TaskCall, TaskEmail, TaskMeeting:
		return true
	}
	return false
}

const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadQualified = "qualified"
	LeadConverted = "converted"
	LeadLost      = "lost"
)

type CustomerNote struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CustomerID uint      `gorm:"index;not null"           json:"customer_id"`
	AuthorID   uint      `gorm:"not null"                 json:"author_id"`
	Note       string    `gorm:"not null"                 json:"note"`
	Type       string    `gorm:"not null;default:general" json:"type"`
	CreatedAt  time.Time `json:"created_at"`
}

type CRMTask struct {
	ID          uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string     `gorm:"not null"                 json:"title"`
	Description string     `json:"description,omitempty"`
	CustomerID  *uint      `gorm:"index" json:"customer_id,omitempty"`
	AssignedTo  uint       `gorm:"index;not null"           json:"assigned_to"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Priority    string     `gorm:"not null;default:medium"  json:"priority"`
	Status      string     `gorm:"not null;default:pending;index" json:"status"`
	Type        string     `gorm:"not null;default:follow_up"     json:"type"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

type Lead struct {
	ID                    uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name                  string    `gorm:"not null"                 json:"name"`
	Email                 string    `gorm:"not null"                 json:"email"`
	Phone                 string    `json:"phone,omitempty"`
	Source                string    `gorm:"not null;default:website" json:"source"`
	Status                string    `gorm:"not null;default:new;index" json:"status"`
	Interest              string    `json:"interest,omitempty"`
	Notes                 string    `json:"notes,omitempty"`
	AssignedTo            *uint     `json:"assigned_to,omitempty"`
	ConvertedToCustomerID *uint     `json:"converted_to_customer_id,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}
