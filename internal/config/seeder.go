package config

import (
	"log"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedRoles(); err != nil {
		return err
	}
	if err := s.seedClients(); err != nil {
		return err
	}
	if err := s.seedCategories(); err != nil {
		return err
	}
	if err := s.seedModerator(); err != nil {
		log.Printf("⚠️ Moderator seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedRoles seeds the fixed role set. Role IDs are part of the token
// format and must not change between deployments.
func (s *Seeder) seedRoles() error {
	roles := []models.Role{
		{ID: models.RoleBeneficiary, Name: "beneficiary"},
		{ID: models.RoleVolunteer, Name: "volunteer"},
		{ID: models.RoleModerator, Name: "moderator"},
	}

	for _, role := range roles {
		var count int64
		s.db.Model(&models.Role{}).Where("id = ?", role.ID).Count(&count)
		if count > 0 {
			continue
		}
		if err := s.db.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedClients seeds the known API clients with hashed secrets
func (s *Seeder) seedClients() error {
	clients := map[string]string{
		"frontend": getEnv("CLIENT_FRONTEND_SECRET", "frontend-dev-secret"),
		"telegram": getEnv("CLIENT_TELEGRAM_SECRET", "telegram-dev-secret"),
	}

	for name, secret := range clients {
		var count int64
		s.db.Model(&models.Client{}).Where("name = ?", name).Count(&count)
		if count > 0 {
			continue
		}

		secretHash, err := password.Hash(secret)
		if err != nil {
			return err
		}
		client := &models.Client{Name: name, SecretHash: secretHash}
		if err := s.db.Create(client).Error; err != nil {
			return err
		}
		log.Printf("✅ Client created: %s", name)
	}
	return nil
}

// seedCategories seeds a starter category set for fresh installs
func (s *Seeder) seedCategories() error {
	var count int64
	s.db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return nil
	}

	categories := []models.Category{
		{Name: "Groceries", IsActive: true},
		{Name: "Medicine", IsActive: true},
		{Name: "Transport", IsActive: true},
		{Name: "Household help", IsActive: true},
	}
	for i := range categories {
		if err := s.db.Create(&categories[i]).Error; err != nil {
			return err
		}
	}
	log.Printf("✅ Seeded %d starter categories", len(categories))
	return nil
}

// seedModerator seeds a default moderator when credentials are provided.
// In production, create moderators through a secure process instead.
func (s *Seeder) seedModerator() error {
	phone := getEnv("SEED_MODERATOR_PHONE", "")
	pass := getEnv("SEED_MODERATOR_PASSWORD", "")
	if phone == "" || pass == "" {
		return nil
	}

	var count int64
	s.db.Model(&models.Moderator{}).Where("phone_number = ?", phone).Count(&count)
	if count > 0 {
		return nil
	}

	var client models.Client
	if err := s.db.Where("name = ?", "frontend").First(&client).Error; err != nil {
		return err
	}

	hashedPassword, err := password.Hash(pass)
	if err != nil {
		return err
	}

	moderator := &models.Moderator{
		PhoneNumber:  phone,
		PasswordHash: hashedPassword,
		ClientID:     client.ID,
		RoleID:       models.RoleModerator,
	}
	if err := s.db.Create(moderator).Error; err != nil {
		return err
	}

	log.Printf("✅ Moderator created: %s", phone)
	return nil
}
