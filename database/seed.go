package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/mbrandt-dev/klassenvote-backend/models"
	"github.com/mbrandt-dev/klassenvote-backend/repository"
	"github.com/mbrandt-dev/klassenvote-backend/services"
)

var sampleNames = []string{
	"Anna Schmidt", "Max Müller", "Lisa Weber", "Tom Fischer",
	"Sarah Klein", "Jan Becker", "Emma Wagner", "Lukas Schulz",
	"Mia Hoffmann", "Felix Richter", "Julia Braun", "David König",
	"Laura Zimmermann", "Niklas Wolf", "Sophia Krüger",
}

var sampleCategories = []struct {
	Title       string
	Description string
}{
	{"Klassensprecher/in", "Wer soll unser/e nächste/r Klassensprecher/in werden?"},
	{"Lustigste Person", "Wer bringt die Klasse am meisten zum Lachen?"},
	{"Hilfsbereiteste Person", "Wer hilft anderen am meisten?"},
	{"Sportlichste Person", "Wer ist am sportlichsten in der Klasse?"},
	{"Kreativste Person", "Wer hat die besten kreativen Ideen?"},
	{"Zuverlässigste Person", "Auf wen kann man sich am besten verlassen?"},
	{"Beste/r Freund/in", "Wer ist der/die beste Freund/in?"},
}

// SeedSampleData populates an empty database with sample persons,
// categories, an admin account and numCodes voting codes. It is a no-op
// when persons already exist.
func SeedSampleData(db *gorm.DB, codeLength, defaultMaxUses, numCodes int) error {
	personRepo := repository.NewPersonRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	userRepo := repository.NewGormUserRepository(db)
	codeService := services.NewCodeService(repository.NewGormVotingCodeRepository(db), codeLength)

	personCount, err := personRepo.Count()
	if err != nil {
		return err
	}
	if personCount > 0 {
		log.Println("seed: database already has persons, skipping sample data")
		return nil
	}

	for _, name := range sampleNames {
		if err := personRepo.Create(&models.Person{Name: name}); err != nil {
			return fmt.Errorf("seed: failed to create person %s: %w", name, err)
		}
	}
	log.Printf("seed: created %d persons", len(sampleNames))

	for _, c := range sampleCategories {
		category := models.Category{Title: c.Title, Description: c.Description, IsActive: true}
		if err := categoryRepo.Create(&category); err != nil {
			return fmt.Errorf("seed: failed to create category %s: %w", c.Title, err)
		}
	}
	log.Printf("seed: created %d categories", len(sampleCategories))

	userCount, err := userRepo.Count()
	if err != nil {
		return err
	}
	var admin *models.User
	if userCount == 0 {
		admin = &models.User{Username: "admin"}
		if err := admin.SetPassword("admin123"); err != nil {
			return fmt.Errorf("seed: failed to hash admin password: %w", err)
		}
		if err := userRepo.Create(admin); err != nil {
			return fmt.Errorf("seed: failed to create admin user: %w", err)
		}
		log.Println("seed: created admin user (username: admin, password: admin123) - change this password")
	} else {
		admin, err = userRepo.GetByUsername("admin")
		if err != nil {
			return fmt.Errorf("seed: no admin user available for code generation: %w", err)
		}
	}

	codes, err := codeService.IssueBatch(admin.ID, defaultMaxUses, numCodes)
	if err != nil {
		return fmt.Errorf("seed: failed to generate voting codes: %w", err)
	}
	log.Printf("seed: generated %d voting codes:", len(codes))
	for _, code := range codes {
		log.Printf("seed:   %s", code.Code)
	}

	return nil
}
