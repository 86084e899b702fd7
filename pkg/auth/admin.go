package auth

import (
	"errors"
	"log"

	"github.com/arnavshah/timeclock-api/pkg/models"
	"gorm.io/gorm"
)

// AdminEmployeeID is the employee id given to the bootstrap admin
const AdminEmployeeID = "ADMIN-0001"

// EnsureAdminExists creates an admin from the given credentials when no admin exists yet.
// Nothing is created without a password.
func EnsureAdminExists(db *gorm.DB, username, password string, logger *log.Logger) error {
	var count int64
	if err := db.Model(&models.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if password == "" {
		logger.Println("No admin account exists and ADMIN_PASSWORD is not set; skipping admin bootstrap")
		return nil
	}

	_, err := CreateAdmin(db, username, password, AdminEmployeeID)
	if err == nil {
		logger.Printf("Default admin user created: %s", username)
	}
	return err
}

// CreateAdmin creates an admin account, or promotes and resets the password of an existing username
func CreateAdmin(db *gorm.DB, username, password, employeeID string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, errors.New("username and password are required")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	var user models.User
	err = db.Where("username = ?", username).First(&user).Error
	switch {
	case err == nil:
		user.IsAdmin = true
		user.PasswordHash = hash
		return &user, db.Save(&user).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		user = models.User{
			Username:     username,
			EmployeeID:   employeeID,
			PasswordHash: hash,
			Position:     models.PositionManager,
			IsAdmin:      true,
		}
		return &user, db.Create(&user).Error
	default:
		return nil, err
	}
}
