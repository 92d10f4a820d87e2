package models

import (
	"context"
	"errors"
	"time"

	"bitbucket.org/mmdatafocus/pos_backend/config"
	"bitbucket.org/mmdatafocus/pos_backend/utils"
	"golang.org/x/crypto/bcrypt"
)

type UserRole string

const (
	UserRoleAdmin   UserRole = "A"
	UserRoleCashier UserRole = "C"
)

type User struct {
	ID         int       `gorm:"primary_key" json:"id"`
	BusinessId string    `gorm:"index" json:"business_id"`
	Username   string    `gorm:"size:100;not null;unique" json:"username" binding:"required"`
	Name       string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Password   string    `gorm:"size:255;not null" json:"password"`
	Role       UserRole  `gorm:"type:enum('A', 'C');default:C" json:"role"`
	IsActive   *bool     `gorm:"not null" json:"is_active"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	BusinessId string   `json:"business_id"`
	Username   string   `json:"username" binding:"required"`
	Name       string   `json:"name" binding:"required"`
	Password   string   `json:"password" binding:"required"`
	Role       UserRole `json:"role"`
}

type LoginInfo struct {
	Token        string `json:"token"`
	Name         string `json:"name"`
	Role         string `json:"role"`
	BusinessId   string `json:"business_id"`
	BusinessName string `json:"business_name"`
}

func (result *User) PrepareGive() {
	result.Password = ""
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	businessId := input.BusinessId
	if businessId == "" {
		id, ok := utils.GetBusinessIdFromContext(ctx)
		if !ok || id == "" {
			return nil, errors.New("business id is required")
		}
		businessId = id
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = UserRoleCashier
	}
	user := User{
		BusinessId: businessId,
		Username:   input.Username,
		Name:       input.Name,
		Password:   string(hashed),
		Role:       role,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	// a re-seeded username must not serve a stale cached row
	_ = config.RemoveRedisKey("User:" + user.Username)
	user.PrepareGive()
	return &user, nil
}

func Login(ctx context.Context, username string, password string) (*LoginInfo, error) {

	db := config.GetDB()
	user := User{}

	// cached user record avoids a DB hit per terminal unlock
	exists, err := config.GetRedisObject("User:"+username, &user)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = db.WithContext(ctx).Model(&User{}).Where("username = ?", username).Take(&user).Error
		if err != nil {
			return nil, errors.New("invalid username or password")
		}
		_ = config.SetRedisObject("User:"+username, &user, 10*time.Minute)
	}

	err = utils.ComparePassword(user.Password, password)
	if err != nil && err == bcrypt.ErrMismatchedHashAndPassword {
		return nil, errors.New("invalid username or password")
	}
	if err != nil {
		return nil, err
	}

	if !utils.DereferencePtr(user.IsActive) {
		return nil, errors.New("user is disabled")
	}

	roleName := "Cashier"
	if user.Role == UserRoleAdmin {
		roleName = "Admin"
	}
	token, err := utils.JwtGenerate(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	return &LoginInfo{
		Token:      token,
		Name:       user.Name,
		Role:       roleName,
		BusinessId: user.BusinessId,
	}, nil
}

// GetUserById resolves the JWT subject back to a user row.
func GetUserById(ctx context.Context, id int) (*User, error) {
	var user User
	db := config.GetDB()
	err := db.WithContext(ctx).Model(&User{}).Where("id = ?", id).Take(&user).Error
	if err != nil {
		return nil, utils.ErrorRecordNotFound
	}
	return &user, nil
}
