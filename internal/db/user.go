package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User is owned by the authentication subsystem; this application only reads
// it for authorship and seeds a single author account on startup.
type User struct {
	gorm.Model
	Name     string `json:"name" gorm:"unique;not null"`
	Password string `json:"-" gorm:"not null"`
	Avatar   string `json:"avatar"`
}

// EnsureUser creates a bcrypt-hashed user when both name and password are
// non-empty and no account with that name exists yet.
func EnsureUser(name, password string) error {
	trimmedName := strings.TrimSpace(name)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedName == "" || trimmedPassword == "" {
		return nil
	}

	if DB == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := DB.Where("name = ?", trimmedName).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return DB.Create(&User{Name: trimmedName, Password: string(hashed)}).Error
	}

	return nil
}
