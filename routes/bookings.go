package routes

import (
	"net/http"
	"strconv"
	"strings"

	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
)

func (h *Handler) ListBookings(ctx iris.Context) {
	userID := utils.UserID(ctx)

	bookings, err := h.Bookings.ListForUser(ctx.Request().Context(), userID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{"bookings": bookings})
}

// CancelBooking cancels the posted booking_id. Without a booking_id it only lists.
func (h *Handler) CancelBooking(ctx iris.Context) {
	raw := strings.TrimSpace(ctx.FormValue("booking_id"))
	if raw == "" {
		h.ListBookings(ctx)
		return
	}

	bookingID, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || bookingID == 0 {
		ctx.StatusCode(http.StatusBadRequest)
		ctx.JSON(iris.Map{"error": "Invalid booking ID"})
		return
	}

	userID := utils.UserID(ctx)
	if _, err := h.Bookings.Cancel(ctx.Request().Context(), uint(bookingID), userID); err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.Redirect("/bookings", iris.StatusSeeOther)
}
