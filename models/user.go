package models

import (
	"errors"

	"mediaalbums/utils"

	"gorm.io/gorm"
)

type User struct {
	ID        uint64 `gorm:"primaryKey"`
	CreatedAt int64
	UpdatedAt int64
	Name      string  `gorm:"type:varchar(100)"`
	Email     string  `gorm:"type:varchar(150);index:uniq_email,unique"`
	Password  string  `gorm:"type:varchar(128)"`
	PassSalt  string  `gorm:"type:varchar(200)"`
	Grants    []Grant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

const saltSize = 60

var ErrInvalidLogin = errors.New("invalid email or password")

func UserCreate(db *gorm.DB, name, email, plainTextPassword string, permissions ...Permission) (u User, err error) {
	u.Email = email
	u.Name = name
	u.SetPassword(plainTextPassword)
	for _, p := range permissions {
		u.Grants = append(u.Grants, Grant{Permission: p})
	}
	return u, db.Create(&u).Error
}

func (u *User) SetPassword(plainTextPassword string) {
	u.PassSalt = utils.RandSalt(saltSize)
	u.Password = utils.Sha512String(plainTextPassword + u.PassSalt)
}

func UserLogin(db *gorm.DB, email, plainTextPassword string) (u User, err error) {
	result := db.Preload("Grants").First(&u, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return User{}, ErrInvalidLogin
		}
		return User{}, result.Error
	}
	if u.Password != utils.Sha512String(plainTextPassword+u.PassSalt) {
		return User{}, ErrInvalidLogin
	}
	return u, nil
}

// UserByID loads the user with grants. A zero User is returned when the
// user no longer exists.
func UserByID(db *gorm.DB, id uint64) (u User) {
	if db.Preload("Grants").First(&u, id).Error != nil {
		return User{}
	}
	return
}

// EnsureAdmin creates the first staff user when the users table is empty
func EnsureAdmin(db *gorm.DB, name, email, plainTextPassword string) (created bool, err error) {
	if email == "" || plainTextPassword == "" {
		return false, nil
	}
	var count int64
	if err = db.Model(&User{}).Count(&count).Error; err != nil || count > 0 {
		return false, err
	}
	if name == "" {
		name = "Admin"
	}
	_, err = UserCreate(db, name, email, plainTextPassword, PermissionStaff)
	return err == nil, err
}

func (u *User) IsAuthenticated() bool {
	return u.ID != 0
}

func (u *User) IsStaff() bool {
	return u.HasPermission(PermissionStaff)
}

func (u *User) GetPermissions() []int {
	permissions := []int{}
	for _, grant := range u.Grants {
		permissions = append(permissions, int(grant.Permission))
	}
	return permissions
}

func (u *User) HasPermission(required Permission) bool {
	for _, permission := range u.Grants {
		if permission.Permission == required {
			return true
		}
	}
	return false
}

func (u *User) HasPermissions(required []Permission) bool {
	for _, permission := range required {
		if !u.HasPermission(permission) {
			return false
		}
	}
	return true
}
