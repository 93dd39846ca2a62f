package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long:  `Seed the database with operator accounts, credential catalog entries and sample work types for development and testing purposes.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		sqlDB, err := initDB(cfg.Database)
		if err != nil {
			log.Fatalf("failed to init db: %v", err)
		}

		db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB.DB}), &gorm.Config{})
		if err != nil {
			log.Fatalf("failed to init orm: %v", err)
		}

		if clearData {
			for _, table := range []string{
				"user_permissions", "permissions", "users",
				"person_credentials", "credential_definitions",
				"rule_overrides", "work_types", "people",
			} {
				if err := db.Exec("DELETE FROM " + table).Error; err != nil {
					log.Fatalf("failed to clear %s: %v", table, err)
				}
			}
			fmt.Println("Cleared existing data")
		}

		seedUsers(db, cfg.Security.BCryptCost)
		seedPermissions(db)
		seedPeople(db)
		seedCredentialCatalog(db)
		seedWorkTypes(db)

		fmt.Println("Seeding complete")
	},
}

func seedUsers(db *gorm.DB, bcryptCost int) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcryptCost)
	if err != nil {
		log.Fatalf("failed to hash seed password: %v", err)
	}

	users := []struct {
		Email string
		Name  string
	}{
		{"admin@site.example", "Site Admin"},
		{"hse.lead@site.example", "HSE Lead"},
		{"dispatcher@site.example", "Dispatcher"},
	}

	for _, u := range users {
		var exists int
		row := db.Raw("SELECT 1 FROM users WHERE email = ?", u.Email).Row()
		if err := row.Scan(&exists); err == nil {
			fmt.Printf("user %s already exists\n", u.Email)
			continue
		}

		if err := db.Exec(
			"INSERT INTO users (email, name, password_hash, is_active, created_at, updated_at) VALUES (?, ?, ?, true, now(), now())",
			u.Email, u.Name, string(hash)).Error; err != nil {
			log.Fatalf("failed to insert user %s: %v", u.Email, err)
		}
		fmt.Println("Seeded user:", u.Email)
	}
}

func seedPermissions(db *gorm.DB) {
	permissions := []struct {
		Name string
		Desc string
	}{
		{"admin", "full administrator"},
		{"manage_work_types", "Can create and deactivate work types and overrides"},
		{"approve_overrides", "Can approve rule overrides"},
		{"manage_credentials", "Can manage credential catalog and submissions"},
		{"verify_credentials", "Can verify or reject person credentials"},
		{"run_checks", "Can run eligibility checks"},
		{"view_people", "Can view workforce members"},
	}

	for _, p := range permissions {
		var pid int64
		row := db.Raw("SELECT id FROM permissions WHERE name = ?", p.Name).Row()
		if err := row.Scan(&pid); err != nil {
			if err := db.Exec(
				"INSERT INTO permissions (name, description, created_at) VALUES (?, ?, now())",
				p.Name, p.Desc).Error; err != nil {
				log.Fatalf("failed to insert permission %s: %v", p.Name, err)
			}
			fmt.Println("Seeded permission:", p.Name)
		}
	}

	grants := map[string][]string{
		"admin@site.example":      {"admin"},
		"hse.lead@site.example":   {"approve_overrides", "verify_credentials", "run_checks", "view_people"},
		"dispatcher@site.example": {"manage_work_types", "manage_credentials", "run_checks", "view_people"},
	}

	for email, perms := range grants {
		for _, perm := range perms {
			if err := db.Exec(`
				INSERT INTO user_permissions (user_id, permission_id, created_at)
				SELECT u.id, p.id, now() FROM users u, permissions p
				WHERE u.email = ? AND p.name = ?
				AND NOT EXISTS (
					SELECT 1 FROM user_permissions up
					WHERE up.user_id = u.id AND up.permission_id = p.id
				)`, email, perm).Error; err != nil {
				log.Fatalf("failed to grant %s to %s: %v", perm, email, err)
			}
		}
	}
}

func seedPeople(db *gorm.DB) {
	people := []struct {
		Name  string
		Email string
		Tags  string
	}{
		{"Arif Wibowo", "arif.w@crew.example", `["welder","scaffolder"]`},
		{"Siti Rahma", "siti.r@crew.example", `["rigger"]`},
		{"Budi Santoso", "budi.s@crew.example", `["electrician"]`},
	}

	for _, p := range people {
		var exists int
		row := db.Raw("SELECT 1 FROM people WHERE email = ?", p.Email).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec(
			"INSERT INTO people (full_name, status, email, role_tags, created_at, updated_at) VALUES (?, 'active', ?, ?, now(), now())",
			p.Name, p.Email, p.Tags).Error; err != nil {
			log.Fatalf("failed to insert person %s: %v", p.Name, err)
		}
		fmt.Println("Seeded person:", p.Name)
	}
}

func seedCredentialCatalog(db *gorm.DB) {
	defs := []struct {
		Kind      string
		Code      string
		Name      string
		Months    int
		AlertDays string
	}{
		{"certification", "WELD-L2", "Welder level 2", 24, `[30,90]`},
		{"certification", "SCAF-L1", "Scaffolder level 1", 36, `[30,90]`},
		{"certification", "WAH-L1", "Working at height level 1", 24, `[30]`},
		{"training", "TBT-HOT", "Hot work briefing", 12, `[14,60]`},
		{"training", "TBT-GEN", "General site induction", 12, `[30]`},
	}

	for _, d := range defs {
		var exists int
		row := db.Raw("SELECT 1 FROM credential_definitions WHERE kind = ? AND code = ?", d.Kind, d.Code).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec(
			"INSERT INTO credential_definitions (kind, code, name, validity_months, alert_days, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, true, now(), now())",
			d.Kind, d.Code, d.Name, d.Months, d.AlertDays).Error; err != nil {
			log.Fatalf("failed to insert definition %s: %v", d.Code, err)
		}
		fmt.Println("Seeded credential definition:", d.Code)
	}
}

func seedWorkTypes(db *gorm.DB) {
	workTypes := []struct {
		Code         string
		Name         string
		CertsAll     string
		CertsAny     string
		TrainingsAll string
		Mode         string
	}{
		{"WT-HOTWORK", "Hot work", `["WELD-L2"]`, `[]`, `["TBT-HOT"]`, "BLOCK"},
		{"WT-SCAFFOLD", "Scaffold erection", `["SCAF-L1","WAH-L1"]`, `[]`, `["TBT-GEN"]`, "BLOCK"},
		{"WT-GENERAL", "General labour", `[]`, `[]`, `["TBT-GEN"]`, "WARN"},
	}

	for _, wt := range workTypes {
		var exists int
		row := db.Raw("SELECT 1 FROM work_types WHERE code = ?", wt.Code).Row()
		if err := row.Scan(&exists); err == nil {
			continue
		}

		if err := db.Exec(
			"INSERT INTO work_types (code, name, required_certs_all, required_certs_any, required_trainings_all, required_trainings_any, enforcement_mode, is_active, created_at, updated_at) VALUES (?, ?, ?, ?, ?, '[]', ?, true, now(), now())",
			wt.Code, wt.Name, wt.CertsAll, wt.CertsAny, wt.TrainingsAll, wt.Mode).Error; err != nil {
			log.Fatalf("failed to insert work type %s: %v", wt.Code, err)
		}
		fmt.Println("Seeded work type:", wt.Code)
	}
}
