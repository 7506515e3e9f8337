package models

import "gorm.io/gorm"

type Product struct {
	gorm.Model
	Name   string  `json:"name" binding:"required"`
	Price  float64 `json:"price" binding:"required,gt=0"`
	Unit   string  `json:"unit" binding:"required"`
	Stock  float64 `json:"stock"`
	FarmID int     `json:"farmId"`
}
