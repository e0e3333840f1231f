// models/form_entry.go
package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AttendanceStatus of a worker for one entry.
type AttendanceStatus string

const (
	AttendancePresent    AttendanceStatus = "PRESENT"
	AttendanceAbsent     AttendanceStatus = "ABSENT"
	AttendanceLate       AttendanceStatus = "LATE"
	AttendanceEarlyLeave AttendanceStatus = "EARLY_LEAVE"
)

// IssueType classifies a production issue recorded against an entry.
type IssueType string

const (
	IssueAbsent           IssueType = "ABSENT"
	IssueLate             IssueType = "LATE"
	IssueWaitingMaterials IssueType = "WAITING_MATERIALS"
	IssueQuality          IssueType = "QUALITY_ISSUE"
	IssueLostMaterials    IssueType = "LOST_MATERIALS"
	IssueOther            IssueType = "OTHER"
)

// ProductionIssue is a value object owned by its entry, never persisted on its own.
type ProductionIssue struct {
	Type        IssueType `json:"type"`
	Hour        int       `json:"hour"`
	Impact      int       `json:"impact"` // 0-100
	Description string    `json:"description,omitempty"`
}

// ProductionEntry records one worker's output for one product/color/process on
// one form. The tuple (form, worker, handbag, color, process) is unique per
// form. Deletes are hard deletes so a removed combination can be re-added.
type ProductionEntry struct {
	ID     uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	FormID uuid.UUID    `gorm:"type:uuid;uniqueIndex:idx_entry_combination;not null" json:"formId"`
	Form   *DigitalForm `gorm:"foreignKey:FormID" json:"form,omitempty"`

	UserID     uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_entry_combination;not null" json:"userId"`
	User       *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	HandBagID  uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_entry_combination;not null" json:"handBagId"`
	HandBag    *HandBag    `gorm:"foreignKey:HandBagID" json:"handBag,omitempty"`
	BagColorID uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_entry_combination;not null" json:"bagColorId"`
	BagColor   *BagColor   `gorm:"foreignKey:BagColorID" json:"bagColor,omitempty"`
	ProcessID  uuid.UUID   `gorm:"type:uuid;uniqueIndex:idx_entry_combination;not null" json:"processId"`
	Process    *BagProcess `gorm:"foreignKey:ProcessID" json:"process,omitempty"`

	PlannedOutput int            `gorm:"default:0" json:"plannedOutput"`
	HourlyData    datatypes.JSON `gorm:"type:jsonb" json:"hourlyData"`
	TotalOutput   int            `gorm:"default:0" json:"totalOutput"`

	ShiftType        ShiftType        `gorm:"size:20;not null;default:'REGULAR'" json:"shiftType"`
	AttendanceStatus AttendanceStatus `gorm:"size:20;not null;default:'PRESENT'" json:"attendanceStatus"`
	CheckInTime      *time.Time       `json:"checkInTime,omitempty"`
	CheckOutTime     *time.Time       `json:"checkOutTime,omitempty"`
	AttendanceNote   string           `gorm:"size:500" json:"attendanceNote,omitempty"`

	Issues datatypes.JSON `gorm:"type:jsonb" json:"issues"`

	QualityScore int    `gorm:"default:100" json:"qualityScore"` // 0-100
	QualityNote  string `gorm:"size:500" json:"qualityNote,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (e *ProductionEntry) TableName() string {
	return "production_entries"
}

func (e *ProductionEntry) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return
}

// GetHourlyData decodes the JSONB slot map. A missing column decodes to an
// empty map, never nil.
func (e *ProductionEntry) GetHourlyData() map[string]int {
	data := map[string]int{}
	if len(e.HourlyData) > 0 {
		_ = json.Unmarshal(e.HourlyData, &data)
	}
	return data
}

// SetHourlyData encodes the slot map and recomputes the derived total.
func (e *ProductionEntry) SetHourlyData(data map[string]int) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	e.HourlyData = datatypes.JSON(raw)
	e.TotalOutput = SumSlots(data)
	return nil
}

// GetIssues decodes the recorded production issues.
func (e *ProductionEntry) GetIssues() []ProductionIssue {
	issues := []ProductionIssue{}
	if len(e.Issues) > 0 {
		_ = json.Unmarshal(e.Issues, &issues)
	}
	return issues
}

// SetIssues encodes the issue list.
func (e *ProductionEntry) SetIssues(issues []ProductionIssue) error {
	raw, err := json.Marshal(issues)
	if err != nil {
		return err
	}
	e.Issues = datatypes.JSON(raw)
	return nil
}

// SameCombination reports whether two entries cover the same work combination.
func (e *ProductionEntry) SameCombination(userID, handBagID, bagColorID, processID uuid.UUID) bool {
	return e.UserID == userID &&
		e.HandBagID == handBagID &&
		e.BagColorID == bagColorID &&
		e.ProcessID == processID
}

// MergeHourlyPatch overlays the supplied keys onto existing hourly data,
// leaving untouched keys intact, and returns the merged map.
func MergeHourlyPatch(existing, patch map[string]int) map[string]int {
	merged := make(map[string]int, len(existing)+len(patch))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range patch {
		merged[k] = v
	}
	return merged
}

// ValidateIssues checks hour indexes and impact ranges.
func ValidateIssues(issues []ProductionIssue) error {
	for i, issue := range issues {
		if issue.Impact < 0 || issue.Impact > 100 {
			return InvalidInputError("issue %d: impact must be between 0 and 100, got %d", i, issue.Impact)
		}
		if issue.Hour < 0 {
			return InvalidInputError("issue %d: hour index must not be negative", i)
		}
		switch issue.Type {
		case IssueAbsent, IssueLate, IssueWaitingMaterials, IssueQuality, IssueLostMaterials, IssueOther:
		default:
			return InvalidInputError("issue %d: unknown issue type %q", i, issue.Type)
		}
	}
	return nil
}
