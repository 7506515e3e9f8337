package initializers

import (
	"log"

	"github.com/stellarsoil/stellarsoil-api/models"
)

func SyncDatabase() {
	DB.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.StatusEvent{},
	)
	log.Println("Database synced successfully.")
}
