package routes

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tour-booking-server/services"
	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
)

type bookingIDsInput struct {
	IDs []uint `json:"ids"`
}

func (h *Handler) actor(ctx iris.Context) services.Actor {
	return services.Actor{ID: utils.UserID(ctx), IP: utils.ClientIP(ctx)}
}

// GET /approve-tours
func (h *Handler) ApproveToursPage(ctx iris.Context) {
	bookings, _, err := h.Approvals.ListBookings(ctx.Request().Context(), services.BookingListQuery{})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"bookings": bookings, "actions": []services.BulkAction{
		services.ActionApprove, services.ActionCancel, services.ActionDelete,
	}})
}

// POST /approve-tours with repeated selected_bookings and an action.
func (h *Handler) ApproveTours(ctx iris.Context) {
	ids, ok := parseIDList(ctx.FormValues()["selected_bookings"])
	if !ok {
		utils.HandleValidationErrors(map[string]string{"selected_bookings": "Enter a list of valid booking ids."}, ctx)
		return
	}
	action, err := services.ParseBulkAction(ctx.FormValue("action"))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	result, actionErr := h.Approvals.ApplyBulkAction(ctx.Request().Context(), h.actor(ctx), ids, action)
	var batchErr *services.BatchConflictError
	if actionErr != nil && !errors.As(actionErr, &batchErr) {
		handleServiceError(ctx, actionErr)
		return
	}

	bookings, _, err := h.Approvals.ListBookings(ctx.Request().Context(), services.BookingListQuery{})
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	if batchErr != nil {
		ctx.StatusCode(http.StatusConflict)
		ctx.JSON(iris.Map{
			"bookings":      bookings,
			"error_message": cannotDeleteInFlight,
			"blocked":       batchErr.Blocked,
		})
		return
	}
	ctx.JSON(iris.Map{"bookings": bookings, "result": result})
}

// GET /admin/bookings?page=&per_page=&status=
func (h *Handler) AdminListBookings(ctx iris.Context) {
	query := services.BookingListQuery{
		Status:  ctx.URLParamDefault("status", ""),
		Page:    ctx.URLParamIntDefault("page", 1),
		PerPage: ctx.URLParamIntDefault("per_page", 25),
	}
	query.Normalize()

	bookings, total, err := h.Approvals.ListBookings(ctx.Request().Context(), query)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	utils.JSONPage(ctx, bookings, query.Page, query.PerPage, total)
}

// POST /admin/bookings/approve-pending { ids }
func (h *Handler) AdminApprovePending(ctx iris.Context) {
	var body bookingIDsInput
	if err := ctx.ReadJSON(&body); err != nil || len(body.IDs) == 0 {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "ids required")
		return
	}
	result, err := h.Approvals.ApprovePending(ctx.Request().Context(), h.actor(ctx), body.IDs)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": result})
}

// POST /admin/bookings/delete { ids }
//
// Cancelled bookings are deleted; the others are reported back untouched.
func (h *Handler) AdminDeleteBookings(ctx iris.Context) {
	var body bookingIDsInput
	if err := ctx.ReadJSON(&body); err != nil || len(body.IDs) == 0 {
		utils.JSONError(ctx, http.StatusUnprocessableEntity, "invalid_payload", "ids required")
		return
	}

	deleted, err := h.Bookings.DeleteBookings(ctx.Request().Context(), body.IDs)
	var batchErr *services.BatchConflictError
	if err != nil && !errors.As(err, &batchErr) {
		handleServiceError(ctx, err)
		return
	}
	if deleted == nil {
		deleted = []uint{}
	}

	resp := iris.Map{"deleted": deleted, "blocked": []uint{}}
	if batchErr != nil {
		resp["blocked"] = batchErr.Blocked
		resp["message"] = cannotDeleteInFlight
	}
	ctx.JSON(iris.Map{"data": resp})
}

func parseIDList(values []string) ([]uint, bool) {
	ids := make([]uint, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 32)
		if err != nil || id == 0 {
			return nil, false
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}
