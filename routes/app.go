package routes

import (
	"tour-booking-server/services"
	"tour-booking-server/utils"

	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"github.com/kataras/iris/v12/middleware/logger"
	"github.com/kataras/iris/v12/middleware/recover"
	"github.com/kataras/iris/v12/middleware/requestid"
)

// Handler carries the services the HTTP handlers delegate to.
type Handler struct {
	Bookings  *services.BookingService
	Tours     *services.TourService
	Search    *services.SearchService
	Ratings   *services.RatingService
	Approvals *services.ApprovalService
	Auth      *services.AuthService
	Tokens    *utils.TokenIssuer

	verifier *jwt.Verifier
}

type Options struct {
	AccessTokenSecret string
	AllowedOrigin     string
	LogLevel          string
	// RequestLog enables per-request access logging.
	RequestLog bool
	// RemoteAddrHeaders names the proxy headers trusted for the client IP,
	// e.g. X-Forwarded-For behind a load balancer. Empty trusts none.
	RemoteAddrHeaders []string
}

// NewApp builds the iris application with every route registered.
func NewApp(h *Handler, opts Options) *iris.Application {
	app := iris.New()
	if opts.LogLevel != "" {
		app.Logger().SetLevel(opts.LogLevel)
	}
	if len(opts.RemoteAddrHeaders) > 0 {
		app.Configure(iris.WithRemoteAddrHeader(opts.RemoteAddrHeaders...))
	}

	app.UseRouter(recover.New())
	app.UseRouter(requestid.New())
	app.UseRouter(corsMiddleware(opts.AllowedOrigin))
	if opts.RequestLog {
		app.Use(logger.New())
	}
	app.Use(iris.Compression)

	h.verifier = jwt.NewVerifier(jwt.HS256, []byte(opts.AccessTokenSecret))
	h.verifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := h.verifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})
	requireUser := []iris.Handler{accessTokenVerifierMiddleware, utils.UserIDFromTokenMiddleware}

	app.Get("/health", func(ctx iris.Context) {
		ctx.JSON(iris.Map{"status": "ok"})
	})

	app.Get("/", h.Home)
	app.Get("/tours", h.ListTours)
	app.Get("/tour/{id:uint}", h.TourDetail)
	app.Post("/tour/{id:uint}", append(requireUser, h.BookTour)...)
	app.Get("/search", h.SearchTours)

	app.Get("/login", h.LoginForm)
	app.Post("/login", h.Login)
	app.Post("/register", h.Register)
	app.Post("/token/refresh", h.RefreshToken)
	app.Get("/logout", append(requireUser, h.Logout)...)

	app.Get("/bookings", append(requireUser, h.ListBookings)...)
	app.Post("/bookings", append(requireUser, h.CancelBooking)...)

	app.Get("/tour/{id:uint}/rate-comment", append(requireUser, h.RateCommentForm)...)
	app.Post("/tour/{id:uint}/rate-comment", append(requireUser, h.SubmitRating)...)

	approve := app.Party("/approve-tours", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		approve.Get("/", h.ApproveToursPage)
		approve.Post("/", h.ApproveTours)
	}

	admin := app.Party("/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/bookings", h.AdminListBookings)
		admin.Post("/bookings/approve-pending", h.AdminApprovePending)
		admin.Post("/bookings/delete", h.AdminDeleteBookings)

		admin.Post("/tours", h.AdminCreateTour)
		admin.Patch("/tours/{id:uint}", h.AdminUpdateTour)
		admin.Delete("/tours/{id:uint}", h.AdminDeleteTour)
		admin.Post("/tours/{id:uint}/images", h.AdminAddTourImage)
		admin.Delete("/tours/{id:uint}/images/{imageID:uint}", h.AdminRemoveTourImage)

		admin.Post("/users/{id:uint}/deactivate", h.AdminDeactivateUser)
	}

	return app
}

func corsMiddleware(allowedOrigin string) iris.Handler {
	return func(ctx iris.Context) {
		origin := allowedOrigin
		if origin == "" {
			origin = ctx.GetHeader("Origin")
		}
		if origin != "" {
			ctx.Header("Access-Control-Allow-Origin", origin)
			ctx.Header("Vary", "Origin")
			ctx.Header("Access-Control-Allow-Credentials", "true")
			ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
			ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		}
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	}
}
