package handlers

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// setupTestDB opens an isolated in-memory database and points the global
// connection at it for the duration of one test.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Factory{}, &models.Line{}, &models.Team{}, &models.Group{},
		&models.User{}, &models.HandBag{}, &models.BagColor{}, &models.BagProcess{},
		&models.DigitalForm{}, &models.ProductionEntry{},
	))

	prev := config.DB
	config.DB = db
	t.Cleanup(func() { config.DB = prev })

	return db
}

// formFixture is a seeded org chain with one draft form, ready for entry
// mutations.
type formFixture struct {
	db      *gorm.DB
	creator *models.User
	worker  *models.User
	form    *models.DigitalForm
	bag     models.HandBag
	color   models.BagColor
	process models.BagProcess
}

func newFormFixture(t *testing.T) *formFixture {
	t.Helper()
	db := setupTestDB(t)

	factory := models.Factory{Code: "F1", Name: "Factory 1", IsActive: true}
	require.NoError(t, db.Create(&factory).Error)
	line := models.Line{FactoryID: factory.ID, Code: "L1", Name: "Line 1", IsActive: true}
	require.NoError(t, db.Create(&line).Error)
	team := models.Team{LineID: line.ID, Code: "T1", Name: "Team 1", IsActive: true}
	require.NoError(t, db.Create(&team).Error)
	group := models.Group{TeamID: team.ID, Code: "G1", Name: "Group 1", IsActive: true}
	require.NoError(t, db.Create(&group).Error)

	creator := models.User{
		EmployeeCode: "TL-001", Name: "Leader", Email: "leader@test.local",
		PasswordHash: "x", Role: models.RoleTeamLeader, IsActive: true,
	}
	require.NoError(t, db.Create(&creator).Error)
	worker := models.User{
		EmployeeCode: "W-001", Name: "Worker", Email: "worker@test.local",
		PasswordHash: "x", Role: models.RoleWorker, GroupID: &group.ID, IsActive: true,
	}
	require.NoError(t, db.Create(&worker).Error)

	bag := models.HandBag{Code: "HB-A", Name: "Tote A", IsActive: true}
	require.NoError(t, db.Create(&bag).Error)
	color := models.BagColor{HandBagID: bag.ID, Code: "BLACK", Name: "Black", IsActive: true}
	require.NoError(t, db.Create(&color).Error)
	process := models.BagProcess{Code: "SEW", Name: "Sewing", IsActive: true}
	require.NoError(t, db.Create(&process).Error)

	form, err := NewFormLifecycle().Create(&creator, CreateFormInput{
		Date:      time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
		ShiftType: models.ShiftRegular,
		FactoryID: factory.ID,
		LineID:    line.ID,
		TeamID:    team.ID,
		GroupID:   group.ID,
	})
	require.NoError(t, err)

	return &formFixture{
		db: db, creator: &creator, worker: &worker, form: form,
		bag: bag, color: color, process: process,
	}
}

func (f *formFixture) entryInput() AddEntryInput {
	return AddEntryInput{
		UserID:        f.worker.ID,
		HandBagID:     f.bag.ID,
		BagColorID:    f.color.ID,
		ProcessID:     f.process.ID,
		PlannedOutput: 40,
	}
}

func TestAddEntryRejectsDuplicateCombination(t *testing.T) {
	f := newFormFixture(t)
	em := NewEntryManager()

	_, err := em.AddEntry(f.creator, f.form.ID, f.entryInput())
	require.NoError(t, err)

	_, err = em.AddEntry(f.creator, f.form.ID, f.entryInput())
	assert.ErrorIs(t, err, models.ErrDuplicate)

	entries, err := em.ListEntries(f.form.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestDeletedEntryCombinationCanBeReAdded(t *testing.T) {
	f := newFormFixture(t)
	em := NewEntryManager()

	entry, err := em.AddEntry(f.creator, f.form.ID, f.entryInput())
	require.NoError(t, err)
	require.NoError(t, em.DeleteEntry(f.creator, f.form.ID, entry.ID))

	// The same (worker, handbag, color, process) tuple must be insertable
	// again after a delete; a lingering row would trip the combination index.
	readded, err := em.AddEntry(f.creator, f.form.ID, f.entryInput())
	require.NoError(t, err)
	assert.NotEqual(t, entry.ID, readded.ID)

	entries, err := em.ListEntries(f.form.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestChangeShiftDowngradeRequiresForce(t *testing.T) {
	f := newFormFixture(t)
	em := NewEntryManager()

	extended := models.ShiftExtended
	in := f.entryInput()
	in.ShiftType = &extended
	in.HourlyData = map[string]int{
		"07:30-08:30": 5,
		"16:30-17:00": 3,
	}
	entry, err := em.AddEntry(f.creator, f.form.ID, in)
	require.NoError(t, err)

	_, dropped, err := em.ChangeShift(f.creator, f.form.ID, entry.ID, models.ShiftRegular, false)
	assert.ErrorIs(t, err, models.ErrInvalidState)
	assert.Equal(t, map[string]int{"16:30-17:00": 3}, dropped)

	// Nothing persisted by the refused change.
	kept, err := em.loadEntry(f.form.ID, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ShiftExtended, kept.ShiftType)
	assert.Equal(t, 3, kept.GetHourlyData()["16:30-17:00"])
}

func TestChangeShiftForcedDowngradeDropsSlots(t *testing.T) {
	f := newFormFixture(t)
	em := NewEntryManager()

	extended := models.ShiftExtended
	in := f.entryInput()
	in.ShiftType = &extended
	in.HourlyData = map[string]int{
		"07:30-08:30": 5,
		"16:30-17:00": 3,
	}
	entry, err := em.AddEntry(f.creator, f.form.ID, in)
	require.NoError(t, err)

	changed, dropped, err := em.ChangeShift(f.creator, f.form.ID, entry.ID, models.ShiftRegular, true)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"16:30-17:00": 3}, dropped)
	assert.Equal(t, models.ShiftRegular, changed.ShiftType)

	slots := changed.GetHourlyData()
	assert.NotContains(t, slots, "16:30-17:00")
	assert.Equal(t, len(models.RegularSlots), len(slots))
	assert.Equal(t, 5, changed.TotalOutput)
}

func TestSubmitRequiresEntries(t *testing.T) {
	f := newFormFixture(t)
	fl := NewFormLifecycle()

	_, err := fl.Submit(f.creator, f.form.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = NewEntryManager().AddEntry(f.creator, f.form.ID, f.entryInput())
	require.NoError(t, err)

	submitted, err := fl.Submit(f.creator, f.form.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, submitted.Status)
	require.NotNil(t, submitted.SubmittedAt)

	// The transition is one-shot.
	_, err = fl.Submit(f.creator, f.form.ID, nil)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}
