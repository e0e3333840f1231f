package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"p9e.in/prodtrack/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "20260110_create_org_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Factory{}, &models.Line{}, &models.Team{},
					&models.Group{}, &models.User{})
			},
		},
		{
			ID: "20260110_create_product_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.HandBag{}, &models.BagColor{}, &models.BagProcess{})
			},
		},
		{
			ID: "20260111_create_form_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.DigitalForm{}, &models.ProductionEntry{})
			},
		},
		{
			ID: "20260215_add_form_sync_columns",
			Migrate: func(tx *gorm.DB) error {
				// Columns exist on fresh installs via AutoMigrate; this covers
				// databases created before export tracking landed.
				if err := tx.Exec("ALTER TABLE digital_forms ADD COLUMN IF NOT EXISTS is_exported boolean DEFAULT false").Error; err != nil {
					return err
				}
				return tx.Exec("ALTER TABLE digital_forms ADD COLUMN IF NOT EXISTS sync_status varchar(20) DEFAULT 'NONE'").Error
			},
		},
		{
			ID: "20260829_fix_soft_delete_unique_indexes",
			Migrate: func(tx *gorm.DB) error {
				// Entries are hard-deleted now: a soft-deleted row would keep
				// occupying idx_entry_combination and block re-adding the same
				// worker/product/process combination on a draft form.
				if err := tx.Exec("DELETE FROM production_entries WHERE deleted_at IS NOT NULL").Error; err != nil {
					return err
				}
				if err := tx.Exec("ALTER TABLE production_entries DROP COLUMN IF EXISTS deleted_at").Error; err != nil {
					return err
				}
				// Form codes stay unique among live forms only, so a deleted
				// form no longer blocks a same-day code collision retry.
				if err := tx.Exec("DROP INDEX IF EXISTS idx_digital_forms_form_code").Error; err != nil {
					return err
				}
				return tx.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_form_code ON digital_forms (form_code) WHERE deleted_at IS NULL").Error
			},
		},
	})

	return m.Migrate()
}
