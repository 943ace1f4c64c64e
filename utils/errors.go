package utils

import (
	"github.com/kataras/golog"
	"github.com/kataras/iris/v12"
)

func CreateError(statusCode int, title string, detail string, ctx iris.Context) {
	ctx.StopWithProblem(statusCode, iris.NewProblem().
		Title(title).
		Detail(detail))
}

func CreateInternalServerError(ctx iris.Context) {
	CreateError(iris.StatusInternalServerError, "Internal Server Error", "Internal Server Error", ctx)
}

func CreateNotFound(ctx iris.Context) {
	CreateError(iris.StatusNotFound, "Not Found", "Not Found", ctx)
}

// CreateServerError logs err and answers with a generic 500 problem.
func CreateServerError(ctx iris.Context, err error) {
	golog.Errorf("%s %s: %v", ctx.Method(), ctx.Path(), err)
	CreateInternalServerError(ctx)
}

// HandleValidationErrors answers 400 with the per-field messages under "errors".
func HandleValidationErrors(fields map[string]string, ctx iris.Context) {
	list := make([]iris.Map, 0, len(fields))
	for field, message := range fields {
		list = append(list, iris.Map{"field": field, "message": message})
	}
	ctx.StopWithProblem(iris.StatusBadRequest, iris.NewProblem().
		Title("Validation error").
		Detail("One or more fields failed to be validated").
		Key("errors", list))
}
