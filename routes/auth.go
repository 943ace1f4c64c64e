package routes

import (
	"errors"
	"net/http"
	"strings"

	"tour-booking-server/services"
	"tour-booking-server/utils"

	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const loginFailedMessage = "Login failed. Please try again."

func (h *Handler) LoginForm(ctx iris.Context) {
	ctx.JSON(iris.Map{"form": iris.Map{"fields": []string{"username", "password"}}})
}

func (h *Handler) Login(ctx iris.Context) {
	creds := services.Credentials{
		Username: ctx.FormValue("username"),
		Password: ctx.FormValue("password"),
	}

	identity, err := h.Auth.Authenticate(ctx.Request().Context(), creds)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) || errors.Is(err, services.ErrValidation) {
			ctx.StatusCode(http.StatusUnauthorized)
			ctx.JSON(iris.Map{"error_message": loginFailedMessage})
			return
		}
		handleServiceError(ctx, err)
		return
	}

	h.issueTokens(ctx, identity)
}

func (h *Handler) Register(ctx iris.Context) {
	input := services.RegisterInput{
		Username: ctx.FormValue("username"),
		Email:    ctx.FormValue("email"),
		Password: ctx.FormValue("password"),
	}

	user, err := h.Auth.Register(ctx.Request().Context(), input)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": user})
}

// RefreshToken exchanges a refresh token for a new token pair.
func (h *Handler) RefreshToken(ctx iris.Context) {
	token := strings.TrimSpace(ctx.FormValue("refresh_token"))
	if token == "" {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "refresh_token required")
		return
	}

	userID, err := h.Tokens.ConsumeRefreshToken(ctx.Request().Context(), token)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidRefreshToken) {
			utils.JSONError(ctx, http.StatusUnauthorized, "invalid_token", err.Error())
			return
		}
		utils.CreateServerError(ctx, err)
		return
	}

	identity, err := h.Auth.IdentityFor(ctx.Request().Context(), userID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	h.issueTokens(ctx, identity)
}

// Logout invalidates the presented access token and, when given, the refresh token.
func (h *Handler) Logout(ctx iris.Context) {
	if verified := jwt.GetVerifiedToken(ctx); verified != nil && h.verifier.Blocklist != nil {
		if err := h.verifier.Blocklist.InvalidateToken(verified.Token, verified.StandardClaims); err != nil {
			golog.Warnf("logout: invalidate access token: %v", err)
		}
	}

	refreshToken := strings.TrimSpace(ctx.URLParam("refresh_token"))
	if err := h.Tokens.RevokeRefreshToken(ctx.Request().Context(), refreshToken); err != nil {
		golog.Warnf("logout: revoke refresh token: %v", err)
	}

	ctx.Redirect("/", iris.StatusSeeOther)
}

// POST /admin/users/{id}/deactivate
func (h *Handler) AdminDeactivateUser(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "user id")
		return
	}
	if err := h.Auth.Deactivate(ctx.Request().Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": iris.Map{"id": id, "isActive": false}})
}

func (h *Handler) issueTokens(ctx iris.Context, identity *services.Identity) {
	pair, err := h.Tokens.CreateTokenPair(ctx.Request().Context(), utils.AccessToken{
		ID:       identity.UserID,
		Role:     string(identity.Role),
		Username: identity.Username,
	})
	if err != nil {
		utils.CreateServerError(ctx, err)
		return
	}
	ctx.JSON(pair)
}
