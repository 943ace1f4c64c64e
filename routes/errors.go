package routes

import (
	"errors"
	"fmt"

	"tour-booking-server/services"
	"tour-booking-server/storage"
	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
)

// handleServiceError translates a service error into its HTTP response.
func handleServiceError(ctx iris.Context, err error) {
	var validationErr *services.ValidationError
	var batchErr *services.BatchConflictError

	switch {
	case errors.As(err, &validationErr):
		utils.HandleValidationErrors(validationErr.Fields, ctx)
	case errors.Is(err, services.ErrValidation):
		utils.CreateError(iris.StatusBadRequest, "Validation error", err.Error(), ctx)
	case errors.As(err, &batchErr):
		ctx.StatusCode(iris.StatusConflict)
		ctx.JSON(iris.Map{
			"error":   "conflict",
			"message": cannotDeleteInFlight,
			"blocked": batchErr.Blocked,
		})
	case errors.Is(err, services.ErrNotFound):
		utils.CreateNotFound(ctx)
	case errors.Is(err, services.ErrPermission):
		utils.CreateError(iris.StatusForbidden, "Forbidden", err.Error(), ctx)
	case errors.Is(err, services.ErrUnauthorized):
		utils.CreateError(iris.StatusUnauthorized, "Unauthorized", err.Error(), ctx)
	case errors.Is(err, services.ErrInvalidState), errors.Is(err, services.ErrConflict):
		utils.CreateError(iris.StatusConflict, "Conflict", err.Error(), ctx)
	case errors.Is(err, storage.ErrImageStoreDisabled):
		utils.CreateError(iris.StatusServiceUnavailable, "Service Unavailable", err.Error(), ctx)
	default:
		utils.CreateServerError(ctx, err)
	}
}

const cannotDeleteInFlight = "Cannot delete bookings that are pending or confirmed."

func invalidID(ctx iris.Context, name string) {
	utils.JSONError(ctx, iris.StatusBadRequest, "invalid_id", fmt.Sprintf("invalid %s", name))
}
