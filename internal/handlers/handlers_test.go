package handlers

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/lunarcms/lunar/internal/models"
)

func seedUser(t *testing.T, db *gorm.DB, email string, mutate ...func(*models.User)) models.User {
	t.Helper()

	user := models.User{
		FirstName: "Alex",
		LastName:  "Doe",
		Email:     email,
		Password:  "hashed",
		IsActive:  true,
	}
	for _, fn := range mutate {
		fn(&user)
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}
