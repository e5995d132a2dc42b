package models

import (
	"context"
	"errors"
	"time"

	"github.com/basma-app/maintenance_backend/config"
	"github.com/basma-app/maintenance_backend/utils"
)

type User struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name" binding:"required"`
	Email     string    `gorm:"size:100;not null;unique" json:"email" binding:"required"`
	Phone     string    `gorm:"size:20" json:"phone"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	Role      UserRole  `gorm:"type:enum('CUSTOMER','TECHNICIAN','BASMA_ADMIN','MAINTENANCE_ADMIN','SUPER_ADMIN');not null;default:'CUSTOMER'" json:"role"`
	IsActive  *bool     `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewUser struct {
	Name     string   `json:"name" validate:"required,max=100"`
	Email    string   `json:"email" validate:"required,email"`
	Phone    string   `json:"phone"`
	Password string   `json:"password" validate:"required,min=8"`
	Role     UserRole `json:"role" validate:"required"`
	IsActive *bool    `json:"is_active"`
}

// validate input for both create & update. (id = 0 for create)

func (input *NewUser) validate(ctx context.Context, id int) error {
	if err := validate.Struct(input); err != nil {
		return err
	}
	if _, err := ParseUserRole(string(input.Role)); err != nil {
		return err
	}
	// email
	if err := utils.ValidateUnique[User](ctx, "email", input.Email, id); err != nil {
		return err
	}
	return nil
}

func CreateUser(ctx context.Context, input *NewUser) (*User, error) {

	if err := input.validate(ctx, 0); err != nil {
		return nil, err
	}

	hashed, err := utils.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	isActive := input.IsActive
	if isActive == nil {
		isActive = utils.NewTrue()
	}

	user := User{
		Name:     input.Name,
		Email:    input.Email,
		Phone:    input.Phone,
		Password: string(hashed),
		Role:     input.Role,
		IsActive: isActive,
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func UpdateUser(ctx context.Context, id int, input *NewUser) (*User, error) {

	if err := input.validate(ctx, id); err != nil {
		return nil, err
	}

	user, err := utils.FetchModel[User](ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":  input.Name,
		"Email": input.Email,
		"Phone": input.Phone,
		"Role":  input.Role,
	}
	if input.IsActive != nil {
		updates["IsActive"] = input.IsActive
	}
	if input.Password != "" {
		hashed, err := utils.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		updates["Password"] = string(hashed)
	}

	db := config.GetDB()
	// db action
	if err := db.WithContext(ctx).Model(user).Updates(updates).Error; err != nil {
		return nil, err
	}
	return user, nil
}

func GetUser(ctx context.Context, id int) (*User, error) {
	return utils.FetchModel[User](ctx, id)
}

func GetUserByEmail(ctx context.Context, email string) (*User, error) {

	db := config.GetDB()
	var user User
	if err := db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, utils.WrapRecordError("load user", err)
	}
	return &user, nil
}

func GetUsers(ctx context.Context, role *UserRole) ([]*User, error) {

	db := config.GetDB()
	var results []*User

	dbCtx := db.WithContext(ctx)
	if role != nil && len(*role) > 0 {
		dbCtx = dbCtx.Where("role = ?", *role)
	}
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// VerifyUserPassword is used by the external auth layer; the engine itself
// never checks credentials.
func VerifyUserPassword(ctx context.Context, email string, password string) (*User, error) {
	user, err := GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if err := utils.ComparePassword(user.Password, password); err != nil {
		return nil, errors.New("invalid credentials")
	}
	return user, nil
}
