package handler

import (
	"fmt"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ridwanfathin/invoice-service/internal/middleware"
	"github.com/ridwanfathin/invoice-service/internal/repository"
)

const maxPageSize = 100

// currentUserID returns the authenticated user, responding 401 when there is none
func currentUserID(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.ContextUserID)
	if userID == "" {
		respondUnauthorized(c, ErrNotAuthenticated)
		return "", false
	}
	return userID, true
}

// getQueryInt retrieves an integer query parameter with a default value
func getQueryInt(c *gin.Context, paramName string, defaultValue int) (int, error) {
	valueStr := c.Query(paramName)
	if valueStr == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: must be an integer", paramName)
	}

	return value, nil
}

// listOptions reads limit and offset. Limit 0 means every invoice.
func listOptions(c *gin.Context) (repository.ListOptions, error) {
	limit, err := getQueryInt(c, "limit", 0)
	if err != nil {
		return repository.ListOptions{}, err
	}
	offset, err := getQueryInt(c, "offset", 0)
	if err != nil {
		return repository.ListOptions{}, err
	}
	if limit < 0 || limit > maxPageSize {
		return repository.ListOptions{}, fmt.Errorf("limit must be between 0 and %d", maxPageSize)
	}
	if offset < 0 {
		return repository.ListOptions{}, fmt.Errorf("offset must not be negative")
	}
	return repository.ListOptions{Limit: limit, Offset: offset}, nil
}

// bindJSON binds JSON request body to a struct
func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return fmt.Errorf("invalid JSON format: %v", err)
	}
	return nil
}
