package handlers

import (
	"log"
	"time"

	"gorm.io/gorm"
	"p9e.in/prodtrack/config"
	"p9e.in/prodtrack/models"
)

// FormScheduler pre-creates draft forms for every active group each
// morning so team leaders start the day with a form to fill.
type FormScheduler struct {
	db        *gorm.DB
	lifecycle *FormLifecycle
}

// NewFormScheduler creates a new form scheduler
func NewFormScheduler() *FormScheduler {
	return &FormScheduler{
		db:        config.DB,
		lifecycle: NewFormLifecycle(),
	}
}

// StartScheduler starts the daily form pre-creation service
func (fs *FormScheduler) StartScheduler() {
	log.Println("📅 Starting Form Scheduler...")

	// Catch up on startup, then check hourly whether today's drafts exist.
	fs.CreateDailyDrafts(time.Now())

	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		fs.CreateDailyDrafts(time.Now())
	}
}

// CreateDailyDrafts creates one draft form per active group for the given
// day, skipping groups that already have one. Safe to call repeatedly.
func (fs *FormScheduler) CreateDailyDrafts(day time.Time) {
	admin, err := fs.systemAdmin()
	if err != nil {
		log.Printf("⚠️  Form scheduler has no system admin identity: %v", err)
		return
	}

	var groups []models.Group
	if err := fs.db.Preload("Team.Line").Where("is_active = ?", true).Find(&groups).Error; err != nil {
		log.Printf("⚠️  Failed to fetch groups for daily drafts: %v", err)
		return
	}

	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	created := 0
	for _, group := range groups {
		if group.Team == nil || group.Team.Line == nil {
			log.Printf("⚠️  Group %s has a broken organization chain, skipping", group.Code)
			continue
		}

		var count int64
		if err := fs.db.Model(&models.DigitalForm{}).
			Where("group_id = ? AND date = ?", group.ID, date).
			Count(&count).Error; err != nil {
			log.Printf("⚠️  Failed to check existing forms for group %s: %v", group.Code, err)
			continue
		}
		if count > 0 {
			continue
		}

		_, err := fs.lifecycle.Create(admin, CreateFormInput{
			FormName:  "Daily Production - " + group.Name,
			Date:      date,
			ShiftType: models.ShiftRegular,
			FactoryID: group.Team.Line.FactoryID,
			LineID:    group.Team.LineID,
			TeamID:    group.TeamID,
			GroupID:   group.ID,
		})
		if err != nil {
			log.Printf("❌ Failed to create daily draft for group %s: %v", group.Code, err)
			continue
		}
		created++
	}

	if created > 0 {
		log.Printf("✅ Created %d daily draft forms for %s", created, date.Format("2006-01-02"))
		invalidateReports()
	}
}

func (fs *FormScheduler) systemAdmin() (*models.User, error) {
	var admin models.User
	if err := fs.db.First(&admin, "id = ?", config.SystemAdminID).Error; err != nil {
		return nil, models.InternalError("system admin user not found", err)
	}
	return &admin, nil
}
