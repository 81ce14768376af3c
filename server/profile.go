package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type profileResponse struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Picture     string `json:"picture"`
}

type profileUpdateRequest struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Picture     string `json:"picture"`
}

func (s *Server) handleGetProfile(c echo.Context) error {
	userID := c.Get("user_id").(string)

	user, err := s.store.UserByID(userID)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}

	return c.JSON(http.StatusOK, profileResponse{
		Name:        user.Name,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Picture:     user.Picture,
	})
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	userID := c.Get("user_id").(string)

	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := s.store.UpdateUserProfile(userID, req.Name, req.PhoneNumber, req.Picture); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return s.handleGetProfile(c)
}

// handleDeleteAccount removes the account and everything it owns.
// There is no undo.
func (s *Server) handleDeleteAccount(c echo.Context) error {
	userID := c.Get("user_id").(string)

	if err := s.store.DeleteUser(userID); err != nil {
		c.Logger().Error("db error:", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}
