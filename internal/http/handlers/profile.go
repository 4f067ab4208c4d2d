package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nextera/workforce-api/internal/config"
	"github.com/nextera/workforce-api/internal/domain/user"
	"github.com/nextera/workforce-api/internal/security"
)

// ProfileHandler serves the profile read/update/delete routes. There is no
// session: every mutation re-proves identity with the current password, and
// the acting user is named by an email query parameter.
type ProfileHandler struct {
	users UserStore
}

func NewProfileHandler(users UserStore) *ProfileHandler {
	return &ProfileHandler{users: users}
}

type UpdateProfileRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewFullName     string `json:"new_full_name"`
	NewPassword     string `json:"new_password"`
}

func (h *ProfileHandler) GetProfile(ctx *gin.Context) {
	email := ctx.Query("email")

	if email == "" {
		RespondBadRequest(ctx, "invalid_request", "email query parameter is required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not load profile")
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

func (h *ProfileHandler) UpdateProfile(ctx *gin.Context) {
	email := ctx.Query("email")

	if email == "" {
		RespondBadRequest(ctx, "invalid_request", "email query parameter is required", nil)
		return
	}

	var req UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)

	// A missing account answers the same as a wrong password here; only the
	// read and delete routes disclose not-found distinctly.
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondBadRequest(ctx, "invalid_credentials", "Incorrect current password", nil)
			return
		}

		RespondInternal(ctx, "Could not update profile")
		return
	}

	err = security.CheckPassword(u.HashedPassword, req.CurrentPassword)

	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Incorrect current password", nil)
		return
	}

	var changes user.Changes

	if req.NewFullName != "" {
		changes.FullName = &req.NewFullName
	}

	if req.NewPassword != "" {
		hash, hashErr := security.HashPassword(req.NewPassword)

		if hashErr != nil {
			RespondInternal(ctx, "Could not update profile")
			return
		}

		changes.HashedPassword = &hash
	}

	// an update with nothing to change is still a success
	if !changes.IsEmpty() {
		err = h.users.UpdateFields(cctx, email, changes)

		if err != nil {
			RespondInternal(ctx, "Could not update profile")
			return
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

func (h *ProfileHandler) DeleteProfile(ctx *gin.Context) {
	email := ctx.Query("email")
	password := ctx.Query("password")

	if email == "" || password == "" {
		RespondBadRequest(ctx, "invalid_request", "email and password query parameters are required", nil)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete profile")
		return
	}

	err = security.CheckPassword(u.HashedPassword, password)

	if err != nil {
		RespondBadRequest(ctx, "invalid_credentials", "Incorrect password", nil)
		return
	}

	err = h.users.DeleteByEmail(cctx, email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete profile")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
