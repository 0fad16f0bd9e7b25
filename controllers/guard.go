package controllers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"digitaltwin/database"
	"digitaltwin/security"
)

// RequireAdminSession revalidates the caller's admin role against the users
// table. A valid token is necessary but not sufficient: the role can change
// or the account can be deleted while the token is still live, so every
// privileged call re-checks the system of record. The guard only validates
// and fails; callers are responsible for writing the denied audit entry.
func RequireAdminSession(db *gorm.DB, c *gin.Context) (*database.User, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return nil, &security.AuthorizationError{Reason: "no authenticated session"}
	}

	id, ok := userID.(uint)
	if !ok {
		return nil, &security.AuthorizationError{Reason: "malformed session identity"}
	}

	var user database.User
	err := db.Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &security.AuthorizationError{Reason: "user no longer exists"}
		}
		return nil, &security.StorageError{Op: "admin session lookup", Err: err}
	}

	if user.Role != database.RoleAdmin {
		return nil, &security.AuthorizationError{Reason: "role is not admin"}
	}

	return &user, nil
}
