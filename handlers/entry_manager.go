package handlers

import (
	"errors"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// EntryManager owns the entries of a single form: hourly output, attendance,
// quality and issues. Every mutation requires the parent form to still be
// DRAFT — that is the consistency mechanism protecting submitted data.
type EntryManager struct {
	db *gorm.DB
}

// NewEntryManager creates an entry manager on the global connection.
func NewEntryManager() *EntryManager {
	return &EntryManager{db: config.DB}
}

// AddEntryInput carries a new entry. Empty hourly data is seeded with zeros
// for every slot of the entry's shift tier.
type AddEntryInput struct {
	UserID           uuid.UUID                `json:"userId"`
	HandBagID        uuid.UUID                `json:"handBagId"`
	BagColorID       uuid.UUID                `json:"bagColorId"`
	ProcessID        uuid.UUID                `json:"processId"`
	PlannedOutput    int                      `json:"plannedOutput"`
	HourlyData       map[string]int           `json:"hourlyData,omitempty"`
	ShiftType        *models.ShiftType        `json:"shiftType,omitempty"`
	AttendanceStatus models.AttendanceStatus  `json:"attendanceStatus,omitempty"`
	CheckInTime      *time.Time               `json:"checkInTime,omitempty"`
	CheckOutTime     *time.Time               `json:"checkOutTime,omitempty"`
	AttendanceNote   string                   `json:"attendanceNote,omitempty"`
	Issues           []models.ProductionIssue `json:"issues,omitempty"`
	QualityScore     *int                     `json:"qualityScore,omitempty"`
	QualityNote      string                   `json:"qualityNote,omitempty"`
}

// UpdateEntryInput is a partial patch. HourlyPatch only overwrites the keys it
// carries; TotalOutput is honored only when no hourly patch is supplied.
type UpdateEntryInput struct {
	HandBagID        *uuid.UUID                `json:"handBagId,omitempty"`
	BagColorID       *uuid.UUID                `json:"bagColorId,omitempty"`
	ProcessID        *uuid.UUID                `json:"processId,omitempty"`
	PlannedOutput    *int                      `json:"plannedOutput,omitempty"`
	HourlyPatch      map[string]int            `json:"hourlyData,omitempty"`
	TotalOutput      *int                      `json:"totalOutput,omitempty"`
	AttendanceStatus *models.AttendanceStatus  `json:"attendanceStatus,omitempty"`
	CheckInTime      *time.Time                `json:"checkInTime,omitempty"`
	CheckOutTime     *time.Time                `json:"checkOutTime,omitempty"`
	AttendanceNote   *string                   `json:"attendanceNote,omitempty"`
	Issues           *[]models.ProductionIssue `json:"issues,omitempty"`
	QualityScore     *int                      `json:"qualityScore,omitempty"`
	QualityNote      *string                   `json:"qualityNote,omitempty"`
}

// AddEntry creates a worker's entry on a draft form, rejecting duplicate
// (worker, handbag, color, process) combinations.
func (em *EntryManager) AddEntry(actor *models.User, formID uuid.UUID, in AddEntryInput) (*models.ProductionEntry, error) {
	form, err := em.loadForm(formID)
	if err != nil {
		return nil, err
	}
	if err := ValidateDraftEdit(actor, form); err != nil {
		return nil, err
	}

	if err := em.checkDuplicate(formID, uuid.Nil, in.UserID, in.HandBagID, in.BagColorID, in.ProcessID); err != nil {
		return nil, err
	}

	shift := form.ShiftType
	if in.ShiftType != nil {
		if !in.ShiftType.IsValid() {
			return nil, models.InvalidInputError("unknown shift type %q", *in.ShiftType)
		}
		shift = *in.ShiftType
	}

	hourly := in.HourlyData
	if len(hourly) == 0 {
		hourly = map[string]int{}
		for _, label := range models.SlotsForShift(shift) {
			hourly[label] = 0
		}
	}

	attendance := in.AttendanceStatus
	if attendance == "" {
		attendance = models.AttendancePresent
	}
	if err := validateAttendance(attendance); err != nil {
		return nil, err
	}

	quality := 100
	if in.QualityScore != nil {
		quality = *in.QualityScore
	}
	if quality < 0 || quality > 100 {
		return nil, models.InvalidInputError("quality score must be between 0 and 100, got %d", quality)
	}

	if err := models.ValidateIssues(in.Issues); err != nil {
		return nil, err
	}

	entry := &models.ProductionEntry{
		FormID:           formID,
		UserID:           in.UserID,
		HandBagID:        in.HandBagID,
		BagColorID:       in.BagColorID,
		ProcessID:        in.ProcessID,
		PlannedOutput:    in.PlannedOutput,
		ShiftType:        shift,
		AttendanceStatus: attendance,
		CheckInTime:      in.CheckInTime,
		CheckOutTime:     in.CheckOutTime,
		AttendanceNote:   in.AttendanceNote,
		QualityScore:     quality,
		QualityNote:      in.QualityNote,
	}
	if err := entry.SetHourlyData(hourly); err != nil {
		return nil, models.InternalError("failed to encode hourly data", err)
	}
	if err := entry.SetIssues(in.Issues); err != nil {
		return nil, models.InternalError("failed to encode issues", err)
	}

	if err := em.db.Create(entry).Error; err != nil {
		return nil, models.InternalError("failed to create entry", err)
	}

	log.Printf("✅ Added entry %s to form %s", entry.ID, form.FormCode)
	return entry, nil
}

// UpdateEntry merges a patch into an existing entry. Changing the work
// combination re-checks uniqueness against the form's other entries; an
// hourly patch always recomputes the derived total.
func (em *EntryManager) UpdateEntry(actor *models.User, formID, entryID uuid.UUID, in UpdateEntryInput) (*models.ProductionEntry, error) {
	form, err := em.loadForm(formID)
	if err != nil {
		return nil, err
	}
	if err := ValidateDraftEdit(actor, form); err != nil {
		return nil, err
	}

	entry, err := em.loadEntry(formID, entryID)
	if err != nil {
		return nil, err
	}

	handBag := entry.HandBagID
	if in.HandBagID != nil {
		handBag = *in.HandBagID
	}
	bagColor := entry.BagColorID
	if in.BagColorID != nil {
		bagColor = *in.BagColorID
	}
	process := entry.ProcessID
	if in.ProcessID != nil {
		process = *in.ProcessID
	}
	if !entry.SameCombination(entry.UserID, handBag, bagColor, process) {
		if err := em.checkDuplicate(formID, entryID, entry.UserID, handBag, bagColor, process); err != nil {
			return nil, err
		}
		entry.HandBagID = handBag
		entry.BagColorID = bagColor
		entry.ProcessID = process
	}

	if in.PlannedOutput != nil {
		entry.PlannedOutput = *in.PlannedOutput
	}

	if len(in.HourlyPatch) > 0 {
		merged := models.MergeHourlyPatch(entry.GetHourlyData(), in.HourlyPatch)
		if err := entry.SetHourlyData(merged); err != nil {
			return nil, models.InternalError("failed to encode hourly data", err)
		}
	} else if in.TotalOutput != nil {
		// Explicit override, accepted only when hourly data is untouched.
		entry.TotalOutput = *in.TotalOutput
	}

	if in.AttendanceStatus != nil {
		if err := validateAttendance(*in.AttendanceStatus); err != nil {
			return nil, err
		}
		entry.AttendanceStatus = *in.AttendanceStatus
	}
	if in.CheckInTime != nil {
		entry.CheckInTime = in.CheckInTime
	}
	if in.CheckOutTime != nil {
		entry.CheckOutTime = in.CheckOutTime
	}
	if in.AttendanceNote != nil {
		entry.AttendanceNote = *in.AttendanceNote
	}
	if in.Issues != nil {
		if err := models.ValidateIssues(*in.Issues); err != nil {
			return nil, err
		}
		if err := entry.SetIssues(*in.Issues); err != nil {
			return nil, models.InternalError("failed to encode issues", err)
		}
	}
	if in.QualityScore != nil {
		if *in.QualityScore < 0 || *in.QualityScore > 100 {
			return nil, models.InvalidInputError("quality score must be between 0 and 100, got %d", *in.QualityScore)
		}
		entry.QualityScore = *in.QualityScore
	}
	if in.QualityNote != nil {
		entry.QualityNote = *in.QualityNote
	}

	if err := em.db.Save(entry).Error; err != nil {
		return nil, models.InternalError("failed to update entry", err)
	}

	return entry, nil
}

// ChangeShift expands or contracts the entry's slot set for a new shift tier
// and persists the slot map and shift type together. A downgrade that would
// discard non-zero output is rejected unless force is set; the dropped values
// are returned either way so callers can confirm.
func (em *EntryManager) ChangeShift(actor *models.User, formID, entryID uuid.UUID, target models.ShiftType, force bool) (*models.ProductionEntry, map[string]int, error) {
	if !target.IsValid() {
		return nil, nil, models.InvalidInputError("unknown shift type %q", target)
	}

	form, err := em.loadForm(formID)
	if err != nil {
		return nil, nil, err
	}
	if err := ValidateDraftEdit(actor, form); err != nil {
		return nil, nil, err
	}

	entry, err := em.loadEntry(formID, entryID)
	if err != nil {
		return nil, nil, err
	}

	slots, dropped := models.ExpandSlotsForShift(entry.GetHourlyData(), target)
	if len(dropped) > 0 && !force {
		labels := make([]string, 0, len(dropped))
		for label := range dropped {
			labels = append(labels, label)
		}
		sort.Strings(labels)
		return nil, dropped, models.InvalidStateError(
			"changing to %s would discard recorded output in slots %s; pass force to confirm",
			target, strings.Join(labels, ", "))
	}

	if err := entry.SetHourlyData(slots); err != nil {
		return nil, nil, models.InternalError("failed to encode hourly data", err)
	}
	entry.ShiftType = target

	if err := em.db.Model(entry).Updates(map[string]interface{}{
		"hourly_data":  entry.HourlyData,
		"total_output": entry.TotalOutput,
		"shift_type":   target,
	}).Error; err != nil {
		return nil, nil, models.InternalError("failed to change shift", err)
	}

	if len(dropped) > 0 {
		log.Printf("⚠️  Entry %s shift change to %s dropped %d non-zero slots", entry.ID, target, len(dropped))
	}
	return entry, dropped, nil
}

// DeleteEntry removes an entry from a draft form.
func (em *EntryManager) DeleteEntry(actor *models.User, formID, entryID uuid.UUID) error {
	form, err := em.loadForm(formID)
	if err != nil {
		return err
	}
	if err := ValidateDraftEdit(actor, form); err != nil {
		return err
	}

	res := em.db.Where("id = ? AND form_id = ?", entryID, formID).Delete(&models.ProductionEntry{})
	if res.Error != nil {
		return models.InternalError("failed to delete entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NotFoundError("entry %s not found on form %s", entryID, formID)
	}
	return nil
}

// ListEntries returns the entries of one form with their lookups.
func (em *EntryManager) ListEntries(formID uuid.UUID) ([]models.ProductionEntry, error) {
	var entries []models.ProductionEntry
	if err := em.db.
		Preload("User").Preload("HandBag").Preload("BagColor").Preload("Process").
		Where("form_id = ?", formID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, models.InternalError("failed to list entries", err)
	}
	return entries, nil
}

func (em *EntryManager) loadForm(formID uuid.UUID) (*models.DigitalForm, error) {
	var form models.DigitalForm
	err := em.db.First(&form, "id = ?", formID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("form %s not found", formID)
	}
	if err != nil {
		return nil, models.InternalError("failed to load form", err)
	}
	return &form, nil
}

func (em *EntryManager) loadEntry(formID, entryID uuid.UUID) (*models.ProductionEntry, error) {
	var entry models.ProductionEntry
	err := em.db.First(&entry, "id = ? AND form_id = ?", entryID, formID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("entry %s not found on form %s", entryID, formID)
	}
	if err != nil {
		return nil, models.InternalError("failed to load entry", err)
	}
	return &entry, nil
}

func (em *EntryManager) checkDuplicate(formID, excludeID, userID, handBagID, bagColorID, processID uuid.UUID) error {
	query := em.db.Model(&models.ProductionEntry{}).
		Where("form_id = ? AND user_id = ? AND hand_bag_id = ? AND bag_color_id = ? AND process_id = ?",
			formID, userID, handBagID, bagColorID, processID)
	if excludeID != uuid.Nil {
		query = query.Where("id != ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return models.InternalError("failed to check entry uniqueness", err)
	}
	if count > 0 {
		return models.DuplicateError("an entry for this worker, handbag, color and process already exists on the form")
	}
	return nil
}

func validateAttendance(status models.AttendanceStatus) error {
	switch status {
	case models.AttendancePresent, models.AttendanceAbsent, models.AttendanceLate, models.AttendanceEarlyLeave:
		return nil
	}
	return models.InvalidInputError("unknown attendance status %q", status)
}
