package bootstrap

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"talib.app/backend/internal/entity"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.Student{},
		&entity.Owner{},
		&entity.Admin{},
		&entity.ItemCategory{},
		&entity.Housing{},
		&entity.Item{},
		&entity.Image{},
		&entity.RoommateProfile{},
		&entity.Favorite{},
		&entity.Report{},
		&entity.Notification{},
	)
}

var DefaultCategories = []entity.ItemCategory{
	{Name: "Textbooks", Slug: "textbooks", Description: "Course books and study guides"},
	{Name: "Electronics", Slug: "electronics", Description: "Laptops, phones and accessories"},
	{Name: "Furniture", Slug: "furniture", Description: "Desks, chairs and storage"},
	{Name: "Clothing", Slug: "clothing", Description: "Clothes, shoes and bags"},
	{Name: "Kitchen", Slug: "kitchen", Description: "Cookware and small appliances"},
	{Name: "Sports", Slug: "sports", Description: "Sports and outdoor gear"},
	{Name: "Other", Slug: "other", Description: "Everything else"},
}

// SeedCategories inserts the default item categories, leaving existing slugs untouched.
func SeedCategories(db *gorm.DB) error {
	for _, category := range DefaultCategories {
		category := category
		if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}

type AdminSeed struct {
	Username string
	Email    string
	Password string
}

// SeedAdmin creates the first admin account when none with that username exists.
func SeedAdmin(db *gorm.DB, seed AdminSeed, logger *zap.Logger) error {
	if seed.Username == "" || seed.Password == "" {
		logger.Info("admin seed skipped, no password configured")
		return nil
	}

	var count int64
	if err := db.Model(&entity.Admin{}).
		Where("username = ?", seed.Username).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		logger.Debug("admin already exists, skipping seed", zap.String("username", seed.Username))
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(seed.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.Admin{
		Username:     seed.Username,
		Email:        seed.Email,
		PasswordHash: string(hashed),
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logger.Info("admin account seeded", zap.String("username", seed.Username))
	return nil
}
