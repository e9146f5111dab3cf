// Package testutil holds fixtures shared by repository, service and handler tests.
package testutil

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"talib.app/backend/internal/bootstrap"
	"talib.app/backend/internal/entity"
)

// NewDB opens a private in-memory SQLite database with the full schema and default categories.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, bootstrap.Migrate(db))
	require.NoError(t, bootstrap.SeedCategories(db))
	return db
}

func hash(t *testing.T, password string) string {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hashed)
}

// CreateStudent inserts a student whose password is "password123".
func CreateStudent(t *testing.T, db *gorm.DB, email string) *entity.Student {
	t.Helper()
	student := &entity.Student{
		Email:        email,
		PasswordHash: hash(t, "password123"),
		FirstName:    "Test",
		LastName:     "Student",
	}
	require.NoError(t, db.Create(student).Error)
	return student
}

// CreateOwner inserts an owner whose password is "password123".
func CreateOwner(t *testing.T, db *gorm.DB, email string) *entity.Owner {
	t.Helper()
	owner := &entity.Owner{
		Email:        email,
		PasswordHash: hash(t, "password123"),
		FullName:     "Test Owner",
	}
	require.NoError(t, db.Create(owner).Error)
	return owner
}

func CreateHousing(t *testing.T, db *gorm.DB, ownerID uuid.UUID, city string, price float64) *entity.Housing {
	t.Helper()
	housing := &entity.Housing{
		OwnerID:  ownerID,
		Title:    "Room in " + city,
		Type:     entity.HousingRoom,
		Price:    price,
		City:     city,
		Bedrooms: 1,
		Status:   entity.HousingAvailable,
	}
	require.NoError(t, db.Create(housing).Error)
	return housing
}

func CreateItem(t *testing.T, db *gorm.DB, studentID uuid.UUID, category string, price float64) *entity.Item {
	t.Helper()
	item := &entity.Item{
		StudentID: studentID,
		Title:     "Used " + category,
		Category:  category,
		Condition: entity.ConditionGood,
		Price:     price,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func CreateRoommateProfile(t *testing.T, db *gorm.DB, studentID uuid.UUID, location string, budget float64) *entity.RoommateProfile {
	t.Helper()
	profile := &entity.RoommateProfile{
		StudentID: studentID,
		Budget:    budget,
		Location:  location,
		IsActive:  true,
	}
	require.NoError(t, db.Create(profile).Error)
	return profile
}
