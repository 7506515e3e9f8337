package models

import "gorm.io/gorm"

const (
	RoleBuyer  = "buyer"
	RoleFarmer = "farmer"
	RoleAdmin  = "admin"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     string `json:"role"`
	FarmID   int    `json:"farmId"`
}

type LoginData struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}
