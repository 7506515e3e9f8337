package controllers

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stellarsoil/stellarsoil-api/initializers"
	"github.com/stellarsoil/stellarsoil-api/models"
	"golang.org/x/crypto/bcrypt"
)

const (
	// Default cost for bcrypt password hashing
	bcryptCost = 10

	// Standard response messages
	msgInvalidInput          = "invalid input"
	msgUserAlreadyExists     = "user already exists"
	msgFailedToHashPassword  = "failed to hash password"
	msgInvalidCredentials    = "invalid email or password"
	msgFailedToGenerateToken = "failed to generate token"
	msgInternalServerError   = "Internal server error"
)

func sendJSONResponse(ctx *gin.Context, status int, data gin.H) {
	ctx.JSON(status, data)
}

func sendErrorResponse(ctx *gin.Context, status int, message string) {
	sendJSONResponse(ctx, status, gin.H{"msg": message})
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func comparePasswords(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func generateJWT(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"role":    user.Role,
		"farm_id": user.FarmID,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(time.Hour * 24 * 30).Unix(),
	})

	jwtSecret := os.Getenv("JWT_SECRET")
	return token.SignedString([]byte(jwtSecret))
}

// currentUserID pulls the authenticated user's id out of the JWT claims set
// by the auth middleware.
func currentUserID(ctx *gin.Context) int {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return 0
	}
	claims := userClaims.(jwt.MapClaims)
	id, ok := claims["user_id"].(float64)
	if !ok {
		return 0
	}
	return int(id)
}

func currentUserRole(ctx *gin.Context) string {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return ""
	}
	claims := userClaims.(jwt.MapClaims)
	role, _ := claims["role"].(string)
	return role
}

func currentUserFarmID(ctx *gin.Context) int {
	userClaims, exists := ctx.Get("user")
	if !exists {
		return 0
	}
	claims := userClaims.(jwt.MapClaims)
	farmID, ok := claims["farm_id"].(float64)
	if !ok {
		return 0
	}
	return int(farmID)
}

// Signup handles user registration
func Signup(ctx *gin.Context) {
	var signUpData models.User
	if err := ctx.ShouldBindJSON(&signUpData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var existingUser models.User
	result := initializers.DB.Where("email = ?", signUpData.Email).Find(&existingUser)
	if result.Error != nil {
		log.Println("Database error during user check:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}
	if result.RowsAffected > 0 {
		sendErrorResponse(ctx, http.StatusBadRequest, msgUserAlreadyExists)
		return
	}

	hashedPassword, err := hashPassword(signUpData.Password)
	if err != nil {
		log.Println("Password hashing error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToHashPassword)
		return
	}
	signUpData.Password = hashedPassword

	// Assign default role if not specified
	if signUpData.Role == "" {
		signUpData.Role = models.RoleBuyer
	}

	if result := initializers.DB.Create(&signUpData); result.Error != nil {
		log.Println("User creation error:", result.Error)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgInternalServerError)
		return
	}

	sendJSONResponse(ctx, http.StatusCreated, gin.H{"message": "User created successfully."})
}

// Login handles user authentication
func Login(ctx *gin.Context) {
	var loginData models.LoginData
	if err := ctx.ShouldBindJSON(&loginData); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidInput)
		return
	}

	var user models.User
	if result := initializers.DB.Where("email = ?", loginData.Email).First(&user); result.Error != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	if err := comparePasswords(user.Password, loginData.Password); err != nil {
		sendErrorResponse(ctx, http.StatusBadRequest, msgInvalidCredentials)
		return
	}

	tokenString, err := generateJWT(user)
	if err != nil {
		log.Println("JWT generation error:", err)
		sendErrorResponse(ctx, http.StatusInternalServerError, msgFailedToGenerateToken)
		return
	}

	sendJSONResponse(ctx, http.StatusOK, gin.H{"token": tokenString, "role": user.Role})
}
