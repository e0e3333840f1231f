package handlers

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// FormLifecycle owns the digital-form state machine: creation with code
// generation, draft edits, and the submit/approve/reject transitions. Every
// transition is a single conditional update so two concurrent calls can never
// both succeed.
type FormLifecycle struct {
	db *gorm.DB
}

// NewFormLifecycle creates a lifecycle engine on the global connection.
func NewFormLifecycle() *FormLifecycle {
	return &FormLifecycle{db: config.DB}
}

// CreateFormInput carries the fields a caller supplies for a new form.
type CreateFormInput struct {
	FormName    string           `json:"formName"`
	Description string           `json:"description"`
	Date        time.Time        `json:"date"`
	ShiftType   models.ShiftType `json:"shiftType"`
	FactoryID   uuid.UUID        `json:"factoryId"`
	LineID      uuid.UUID        `json:"lineId"`
	TeamID      uuid.UUID        `json:"teamId"`
	GroupID     uuid.UUID        `json:"groupId"`
	UserID      *uuid.UUID       `json:"userId,omitempty"`
}

// UpdateFormInput is a partial patch applied to a draft form.
type UpdateFormInput struct {
	FormName    *string           `json:"formName,omitempty"`
	Description *string           `json:"description,omitempty"`
	Date        *time.Time        `json:"date,omitempty"`
	ShiftType   *models.ShiftType `json:"shiftType,omitempty"`
}

// BuildFormCode renders the structured form code:
// PCD-<YYMMDD>-<factory>-<line>-<team>-<group>-<shift>-<3-digit suffix>.
// The random suffix resolves same-day collisions without a global counter.
func BuildFormCode(date time.Time, factoryCode, lineCode, teamCode, groupCode string, shift models.ShiftType, suffix int) string {
	return fmt.Sprintf("PCD-%s-%s-%s-%s-%s-%s-%03d",
		date.Format("060102"), factoryCode, lineCode, teamCode, groupCode, shift.ShiftCode(), suffix%1000)
}

// Create validates the requester's role, resolves the organizational chain and
// inserts a DRAFT form with a generated code.
func (fl *FormLifecycle) Create(actor *models.User, in CreateFormInput) (*models.DigitalForm, error) {
	if !actor.CanCreateForms() {
		return nil, models.PermissionError("role %s is not allowed to create forms", actor.Role)
	}
	if !in.ShiftType.IsValid() {
		return nil, models.InvalidInputError("unknown shift type %q", in.ShiftType)
	}
	if in.Date.IsZero() {
		return nil, models.InvalidInputError("form date is required")
	}

	var group models.Group
	if err := fl.db.First(&group, "id = ?", in.GroupID).Error; err != nil {
		return nil, orgLookupErr("group", in.GroupID, err)
	}
	var team models.Team
	if err := fl.db.First(&team, "id = ?", in.TeamID).Error; err != nil {
		return nil, orgLookupErr("team", in.TeamID, err)
	}
	var line models.Line
	if err := fl.db.First(&line, "id = ?", in.LineID).Error; err != nil {
		return nil, orgLookupErr("line", in.LineID, err)
	}
	var factory models.Factory
	if err := fl.db.First(&factory, "id = ?", in.FactoryID).Error; err != nil {
		return nil, orgLookupErr("factory", in.FactoryID, err)
	}

	if group.TeamID != team.ID || team.LineID != line.ID || line.FactoryID != factory.ID {
		return nil, models.InvalidInputError("organizational scope is inconsistent: group %s does not roll up to factory %s", group.Code, factory.Code)
	}

	date := normalizeDate(in.Date)
	name := in.FormName
	if name == "" {
		name = fmt.Sprintf("Production %s - %s", group.Name, date.Format("2006-01-02"))
	}

	form := &models.DigitalForm{
		FormCode:    BuildFormCode(date, factory.Code, line.Code, team.Code, group.Code, in.ShiftType, rand.Intn(1000)),
		FormName:    name,
		Description: in.Description,
		Date:        date,
		ShiftType:   in.ShiftType,
		Status:      models.StatusDraft,
		FactoryID:   factory.ID,
		LineID:      line.ID,
		TeamID:      team.ID,
		GroupID:     group.ID,
		UserID:      in.UserID,
		CreatedByID: actor.ID,
		SyncStatus:  "NONE",
	}

	if err := fl.db.Create(form).Error; err != nil {
		return nil, models.InternalError("failed to create form", err)
	}

	log.Printf("✅ Created form %s (group %s, %s shift)", form.FormCode, group.Code, form.ShiftType)
	return form, nil
}

// Get loads a form with its scope and entries.
func (fl *FormLifecycle) Get(id uuid.UUID) (*models.DigitalForm, error) {
	var form models.DigitalForm
	err := fl.db.
		Preload("Factory").Preload("Line").Preload("Team").Preload("Group").
		Preload("Entries").Preload("Entries.User").
		First(&form, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NotFoundError("form %s not found", id)
	}
	if err != nil {
		return nil, models.InternalError("failed to load form", err)
	}
	return &form, nil
}

// ListFormsFilter is the list-by-condition-and-page contract.
type ListFormsFilter struct {
	Status    models.RecordStatus
	FactoryID *uuid.UUID
	LineID    *uuid.UUID
	TeamID    *uuid.UUID
	GroupID   *uuid.UUID
	CreatedBy *uuid.UUID
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	Limit     int
}

// List returns a page of forms plus the total match count.
func (fl *FormLifecycle) List(filter ListFormsFilter) ([]models.DigitalForm, int64, error) {
	query := fl.db.Model(&models.DigitalForm{})

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.FactoryID != nil {
		query = query.Where("factory_id = ?", *filter.FactoryID)
	}
	if filter.LineID != nil {
		query = query.Where("line_id = ?", *filter.LineID)
	}
	if filter.TeamID != nil {
		query = query.Where("team_id = ?", *filter.TeamID)
	}
	if filter.GroupID != nil {
		query = query.Where("group_id = ?", *filter.GroupID)
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by_id = ?", *filter.CreatedBy)
	}
	if filter.DateFrom != nil {
		query = query.Where("date >= ?", normalizeDate(*filter.DateFrom))
	}
	if filter.DateTo != nil {
		query = query.Where("date <= ?", normalizeDate(*filter.DateTo))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.InternalError("failed to count forms", err)
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	limit := filter.Limit
	if limit < 1 || limit > 200 {
		limit = 20
	}

	var forms []models.DigitalForm
	if err := query.
		Preload("Group").Preload("Team").
		Order("date DESC, form_code ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&forms).Error; err != nil {
		return nil, 0, models.InternalError("failed to list forms", err)
	}

	return forms, total, nil
}

// Update applies a patch to a draft form. Only the creator or an admin-tier
// role may edit, and only while the form is still DRAFT.
func (fl *FormLifecycle) Update(actor *models.User, id uuid.UUID, in UpdateFormInput) (*models.DigitalForm, error) {
	form, err := fl.Get(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateDraftEdit(actor, form); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{"updated_by_id": actor.ID}
	if in.FormName != nil {
		updates["form_name"] = *in.FormName
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.Date != nil {
		updates["date"] = normalizeDate(*in.Date)
	}
	if in.ShiftType != nil {
		if !in.ShiftType.IsValid() {
			return nil, models.InvalidInputError("unknown shift type %q", *in.ShiftType)
		}
		updates["shift_type"] = *in.ShiftType
	}

	res := fl.db.Model(&models.DigitalForm{}).
		Where("id = ? AND status = ?", id, models.StatusDraft).
		Updates(updates)
	if res.Error != nil {
		return nil, models.InternalError("failed to update form", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.InvalidStateError("only draft forms can be updated")
	}

	return fl.Get(id)
}

// Delete removes a draft form together with its entries.
func (fl *FormLifecycle) Delete(actor *models.User, id uuid.UUID) error {
	form, err := fl.Get(id)
	if err != nil {
		return err
	}
	if err := ValidateDraftEdit(actor, form); err != nil {
		return err
	}

	return fl.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", id, models.StatusDraft).Delete(&models.DigitalForm{})
		if res.Error != nil {
			return models.InternalError("failed to delete form", res.Error)
		}
		if res.RowsAffected == 0 {
			return models.InvalidStateError("only draft forms can be deleted")
		}
		if err := tx.Where("form_id = ?", id).Delete(&models.ProductionEntry{}).Error; err != nil {
			return models.InternalError("failed to delete form entries", err)
		}
		return nil
	})
}

// Submit moves DRAFT -> PENDING. Requires at least one entry; records the
// submission timestamp and the optional external approval-request reference.
func (fl *FormLifecycle) Submit(actor *models.User, id uuid.UUID, approvalRequestID *string) (*models.DigitalForm, error) {
	form, err := fl.Get(id)
	if err != nil {
		return nil, err
	}
	if !actor.CanEditForm(form) {
		return nil, models.PermissionError("only the creator or an admin may submit this form")
	}

	// The entry count is re-read inside the transaction so a concurrent
	// entry delete cannot slip an empty form past the precondition.
	now := time.Now()
	err = fl.db.Transaction(func(tx *gorm.DB) error {
		var entryCount int64
		if err := tx.Model(&models.ProductionEntry{}).
			Where("form_id = ?", id).
			Count(&entryCount).Error; err != nil {
			return models.InternalError("failed to count entries", err)
		}
		if err := ValidateSubmit(form, int(entryCount)); err != nil {
			return err
		}

		res := tx.Model(&models.DigitalForm{}).
			Where("id = ? AND status = ?", id, models.StatusDraft).
			Updates(map[string]interface{}{
				"status":              models.StatusPending,
				"submitted_at":        now,
				"approval_request_id": approvalRequestID,
				"updated_by_id":       actor.ID,
			})
		if res.Error != nil {
			return models.InternalError("failed to submit form", res.Error)
		}
		if res.RowsAffected == 0 {
			// Lost the race to another transition.
			return models.InvalidStateError("form already submitted")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Printf("✅ Submitted form %s", form.FormCode)
	return fl.Get(id)
}

// Approve moves PENDING -> CONFIRMED. Admin tier only.
func (fl *FormLifecycle) Approve(actor *models.User, id uuid.UUID) (*models.DigitalForm, error) {
	return fl.resolve(actor, id, models.StatusConfirmed)
}

// Reject moves PENDING -> REJECTED. Admin tier only.
func (fl *FormLifecycle) Reject(actor *models.User, id uuid.UUID) (*models.DigitalForm, error) {
	return fl.resolve(actor, id, models.StatusRejected)
}

func (fl *FormLifecycle) resolve(actor *models.User, id uuid.UUID, target models.RecordStatus) (*models.DigitalForm, error) {
	form, err := fl.Get(id)
	if err != nil {
		return nil, err
	}
	if err := ValidateResolve(actor, form); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":        target,
		"updated_by_id": actor.ID,
	}
	if target == models.StatusConfirmed {
		updates["approved_at"] = time.Now()
	}

	res := fl.db.Model(&models.DigitalForm{}).
		Where("id = ? AND status = ?", id, models.StatusPending).
		Updates(updates)
	if res.Error != nil {
		return nil, models.InternalError("failed to resolve form", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, models.InvalidStateError("only pending forms can be approved or rejected")
	}

	log.Printf("✅ Form %s -> %s", form.FormCode, target)
	return fl.Get(id)
}

// ValidateDraftEdit is the shared precondition for update/delete/entry edits:
// the form must still be DRAFT and the actor its creator or admin tier.
func ValidateDraftEdit(actor *models.User, form *models.DigitalForm) error {
	if !actor.CanEditForm(form) {
		return models.PermissionError("only the creator or an admin may edit this form")
	}
	if form.Status != models.StatusDraft {
		return models.InvalidStateError("form %s is %s; only draft forms can be edited", form.FormCode, form.Status)
	}
	return nil
}

// ValidateSubmit checks the submit preconditions apart from the atomic status
// swap itself.
func ValidateSubmit(form *models.DigitalForm, entryCount int) error {
	if form.Status != models.StatusDraft {
		return models.InvalidStateError("form already submitted")
	}
	if entryCount == 0 {
		return models.InvalidStateError("cannot submit a form with no entries")
	}
	return nil
}

// ValidateResolve checks approve/reject preconditions: admin tier regardless
// of creator identity, and the form must be PENDING.
func ValidateResolve(actor *models.User, form *models.DigitalForm) error {
	if !actor.IsAdminTier() {
		return models.PermissionError("only admin-tier roles may approve or reject forms")
	}
	if form.Status.IsTerminal() {
		return models.InvalidStateError("form %s is already %s", form.FormCode, form.Status)
	}
	if form.Status != models.StatusPending {
		return models.InvalidStateError("only pending forms can be approved or rejected")
	}
	return nil
}

func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func orgLookupErr(kind string, id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NotFoundError("%s %s not found", kind, id)
	}
	return models.InternalError("failed to load "+kind, err)
}
