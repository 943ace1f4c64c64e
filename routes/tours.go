package routes

import (
	"errors"
	"fmt"
	"net/http"

	"tour-booking-server/models"
	"tour-booking-server/services"
	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
)

const futureOnlyMessage = "You can only book tours for a future date."

var bookingFormFields = []string{"number_of_people", "departure_date", "end_date"}

type tourView struct {
	models.Tour
	Stars string `json:"stars"`
}

type ratingView struct {
	models.Rating
	Stars string `json:"stars"`
}

func toTourViews(tours []models.Tour) []tourView {
	views := make([]tourView, 0, len(tours))
	for _, t := range tours {
		views = append(views, tourView{Tour: t, Stars: t.Stars()})
	}
	return views
}

func (h *Handler) Home(ctx iris.Context) {
	ctx.JSON(iris.Map{"title": "Tour booking"})
}

func (h *Handler) ListTours(ctx iris.Context) {
	tours, err := h.Tours.List(ctx.Request().Context())
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"tours": toTourViews(tours)})
}

func (h *Handler) TourDetail(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}

	tour, err := h.Tours.Get(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ratings, err := h.Ratings.ListForTour(ctx.Request().Context(), id)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	views := make([]ratingView, 0, len(ratings))
	for _, r := range ratings {
		views = append(views, ratingView{Rating: r, Stars: r.Stars()})
	}
	ctx.JSON(iris.Map{
		"tour":    tourView{Tour: *tour, Stars: tour.Stars()},
		"ratings": views,
		"form":    iris.Map{"fields": bookingFormFields},
	})
}

// BookTour handles the booking form posted on a tour page.
func (h *Handler) BookTour(ctx iris.Context) {
	tourID, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}

	input, err := services.ParseBookingForm(ctx.FormValue)
	if err != nil {
		bookingFormError(ctx, err)
		return
	}
	input.TourID = tourID
	input.UserID = utils.UserID(ctx)

	if _, err := h.Bookings.Create(ctx.Request().Context(), input); err != nil {
		if errors.Is(err, services.ErrValidation) {
			bookingFormError(ctx, err)
			return
		}
		handleServiceError(ctx, err)
		return
	}

	ctx.Redirect(fmt.Sprintf("/tour/%d", tourID), iris.StatusSeeOther)
}

func bookingFormError(ctx iris.Context, err error) {
	formErrors := map[string][]string{}
	var validationErr *services.ValidationError
	if errors.As(err, &validationErr) {
		for field, message := range validationErr.Fields {
			formErrors[field] = []string{message}
		}
	}

	body := iris.Map{"form_errors": formErrors}
	if errors.Is(err, services.ErrInvalidDate) {
		body["error_message"] = futureOnlyMessage
	}
	ctx.StatusCode(http.StatusBadRequest)
	ctx.JSON(body)
}

func (h *Handler) SearchTours(ctx iris.Context) {
	query, err := services.ParseSearchQuery(ctx.URLParam)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	tours, err := h.Search.Search(ctx.Request().Context(), query)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{
		"tours": toTourViews(tours),
		"form": iris.Map{
			"query":      query.Keyword,
			"location":   query.Location,
			"min_price":  ctx.URLParam("min_price"),
			"max_price":  ctx.URLParam("max_price"),
			"start_date": ctx.URLParam("start_date"),
			"end_date":   ctx.URLParam("end_date"),
		},
	})
}

// POST /admin/tours
func (h *Handler) AdminCreateTour(ctx iris.Context) {
	var input services.TourInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "Invalid request payload")
		return
	}
	tour, err := h.Tours.Create(ctx.Request().Context(), input)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": tour})
}

// PATCH /admin/tours/{id}
func (h *Handler) AdminUpdateTour(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}
	var patch services.TourPatch
	if err := ctx.ReadJSON(&patch); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "Invalid request payload")
		return
	}
	tour, err := h.Tours.Update(ctx.Request().Context(), id, patch)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"data": tour})
}

// DELETE /admin/tours/{id}
func (h *Handler) AdminDeleteTour(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}
	if err := h.Tours.Delete(ctx.Request().Context(), id); err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}

// POST /admin/tours/{id}/images { image }
func (h *Handler) AdminAddTourImage(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}
	var body struct {
		Image string `json:"image"`
	}
	if err := ctx.ReadJSON(&body); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid_payload", "Invalid request payload")
		return
	}
	image, err := h.Tours.AddImage(ctx.Request().Context(), id, body.Image)
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusCreated)
	ctx.JSON(iris.Map{"data": image})
}

// DELETE /admin/tours/{id}/images/{imageID}
func (h *Handler) AdminRemoveTourImage(ctx iris.Context) {
	id, err := ctx.Params().GetUint("id")
	if err != nil {
		invalidID(ctx, "tour id")
		return
	}
	imageID, err := ctx.Params().GetUint("imageID")
	if err != nil {
		invalidID(ctx, "image id")
		return
	}
	if err := h.Tours.RemoveImage(ctx.Request().Context(), id, imageID); err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.StatusCode(http.StatusNoContent)
}
