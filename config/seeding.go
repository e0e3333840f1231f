package config

import (
	"fmt"
	"log"
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"p9e.in/prodtrack/models"
)

// RunSeeding populates an empty database with a minimal factory hierarchy and
// product catalog. Every step is idempotent: existing rows are left alone.
func RunSeeding(db *gorm.DB) error {
	if err := seedOrganization(db); err != nil {
		return err
	}
	if err := seedProducts(db); err != nil {
		return err
	}
	return seedSystemAdmin(db)
}

func seedOrganization(db *gorm.DB) error {
	var count int64
	db.Model(&models.Factory{}).Count(&count)
	if count > 0 {
		return nil
	}

	factory := models.Factory{Code: "F1", Name: "Factory 1", IsActive: true}
	if err := db.Create(&factory).Error; err != nil {
		return fmt.Errorf("seed factory: %w", err)
	}

	for l := 1; l <= 2; l++ {
		line := models.Line{FactoryID: factory.ID, Code: fmt.Sprintf("L%d", l), Name: fmt.Sprintf("Line %d", l), IsActive: true}
		if err := db.Create(&line).Error; err != nil {
			return fmt.Errorf("seed line: %w", err)
		}
		for t := 1; t <= 2; t++ {
			team := models.Team{LineID: line.ID, Code: fmt.Sprintf("L%dT%d", l, t), Name: fmt.Sprintf("Line %d Team %d", l, t), IsActive: true}
			if err := db.Create(&team).Error; err != nil {
				return fmt.Errorf("seed team: %w", err)
			}
			for g := 1; g <= 2; g++ {
				group := models.Group{TeamID: team.ID, Code: fmt.Sprintf("L%dT%dG%d", l, t, g), Name: fmt.Sprintf("Line %d Team %d Group %d", l, t, g), IsActive: true}
				if err := db.Create(&group).Error; err != nil {
					return fmt.Errorf("seed group: %w", err)
				}
			}
		}
	}

	log.Println("✅ Seeded organizational hierarchy")
	return nil
}

func seedProducts(db *gorm.DB) error {
	var count int64
	db.Model(&models.HandBag{}).Count(&count)
	if count > 0 {
		return nil
	}

	bags := []struct {
		code, name string
		colors     []string
	}{
		{"HB-CLS", "Classic Tote", []string{"BLACK", "BROWN", "TAN"}},
		{"HB-CRS", "Crossbody Mini", []string{"BLACK", "RED"}},
		{"HB-SLG", "Slim Clutch", []string{"NAVY", "CREAM"}},
	}
	for _, b := range bags {
		bag := models.HandBag{Code: b.code, Name: b.name, IsActive: true}
		if err := db.Create(&bag).Error; err != nil {
			return fmt.Errorf("seed handbag: %w", err)
		}
		for _, c := range b.colors {
			color := models.BagColor{HandBagID: bag.ID, Code: c, Name: c, IsActive: true}
			if err := db.Create(&color).Error; err != nil {
				return fmt.Errorf("seed bag color: %w", err)
			}
		}
	}

	processes := []struct{ code, name string }{
		{"CUT", "Cutting"},
		{"SKV", "Skiving"},
		{"SEW", "Sewing"},
		{"EDG", "Edge Painting"},
		{"ASM", "Assembly"},
		{"QC", "Quality Control"},
		{"PKG", "Packing"},
	}
	for _, p := range processes {
		if err := db.Create(&models.BagProcess{Code: p.code, Name: p.name, IsActive: true}).Error; err != nil {
			return fmt.Errorf("seed process: %w", err)
		}
	}

	log.Println("✅ Seeded product catalog")
	return nil
}

func seedSystemAdmin(db *gorm.DB) error {
	email := os.Getenv("SYSTEM_ADMIN_EMAIL")
	if email == "" {
		email = "admin@prodtrack.local"
	}

	var count int64
	db.Model(&models.User{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil
	}

	password := os.Getenv("SYSTEM_ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		EmployeeCode: "SYS-ADMIN",
		Name:         "System Administrator",
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleSuperAdmin,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("seed system admin: %w", err)
	}

	log.Printf("✅ Seeded system admin %s", email)
	return nil
}

// ResolveSystemAdmin looks up the background-job identity configured via
// SYSTEM_ADMIN_EMAIL and stores it in SystemAdminID.
func ResolveSystemAdmin(db *gorm.DB) error {
	email := os.Getenv("SYSTEM_ADMIN_EMAIL")
	if email == "" {
		email = "admin@prodtrack.local"
	}

	var admin models.User
	if err := db.Where("email = ?", email).First(&admin).Error; err != nil {
		return fmt.Errorf("system admin %s not found: %w", email, err)
	}

	SystemAdminID = admin.ID
	return nil
}
