package routes

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"tour-booking-server/services"
	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
)

const notApprovedMessage = "An admin has not approved your booking yet, so you cannot comment."

func (h *Handler) RateCommentForm(ctx iris.Context) {
	tourID, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}

	tour, err := h.Tours.Get(ctx.Request().Context(), tourID)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	if _, err := h.Ratings.CanRate(ctx.Request().Context(), utils.UserID(ctx), tourID); err != nil {
		ratingGateError(ctx, err)
		return
	}

	ctx.JSON(iris.Map{
		"tour": tourView{Tour: *tour, Stars: tour.Stars()},
		"form": iris.Map{"fields": []string{"rating", "content"}},
	})
}

func (h *Handler) SubmitRating(ctx iris.Context) {
	tourID, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}

	input := services.SubmitRatingInput{
		UserID:  utils.UserID(ctx),
		TourID:  tourID,
		Content: ctx.FormValue("content"),
	}
	if rating, err := strconv.Atoi(strings.TrimSpace(ctx.FormValue("rating"))); err == nil {
		input.Rating = rating
	}

	if _, err := h.Ratings.Submit(ctx.Request().Context(), input); err != nil {
		ratingGateError(ctx, err)
		return
	}
	ctx.Redirect(fmt.Sprintf("/tour/%d", tourID), iris.StatusSeeOther)
}

// ratingGateError answers a missing approval with a plain text message.
func ratingGateError(ctx iris.Context, err error) {
	if errors.Is(err, services.ErrUnauthorized) {
		ctx.StatusCode(http.StatusForbidden)
		ctx.ContentType("text/plain; charset=utf-8")
		ctx.WriteString(notApprovedMessage)
		return
	}
	handleServiceError(ctx, err)
}
