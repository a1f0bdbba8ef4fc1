package handlers

import (
	"encoding/json"
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/backsoul/quizquest/pkg/models"
	"github.com/backsoul/quizquest/pkg/services"
)

// respondWithJSON writes response as the JSON body
func respondWithJSON(ctx *fasthttp.RequestCtx, statusCode int, response interface{}) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(statusCode)

	jsonData, err := json.Marshal(response)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success": false, "error": "error serializing response"}`)
		return
	}

	ctx.SetBody(jsonData)
}

func respondWithError(ctx *fasthttp.RequestCtx, statusCode int, message string) {
	respondWithJSON(ctx, statusCode, models.APIResponse{
		Success: false,
		Error:   message,
	})
}

func respondWithSuccess(ctx *fasthttp.RequestCtx, data interface{}, message string) {
	respondWithJSON(ctx, fasthttp.StatusOK, models.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// respondWithServiceError maps a service error to its status code
func respondWithServiceError(ctx *fasthttp.RequestCtx, err error) {
	respondWithError(ctx, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrQuizNotFound),
		errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrSessionNotFound):
		return fasthttp.StatusNotFound
	case errors.Is(err, services.ErrSessionForbidden):
		return fasthttp.StatusForbidden
	case errors.Is(err, services.ErrInvalidCredentials),
		errors.Is(err, services.ErrInvalidToken):
		return fasthttp.StatusUnauthorized
	case errors.Is(err, services.ErrAlreadyBootstrapped),
		errors.Is(err, services.ErrInvalidTransition):
		return fasthttp.StatusConflict
	case errors.Is(err, services.ErrEmptyField),
		errors.Is(err, services.ErrInvalidChoice),
		errors.Is(err, services.ErrUnknownMode):
		return fasthttp.StatusBadRequest
	case errors.Is(err, services.ErrNoQuizzes):
		return fasthttp.StatusUnprocessableEntity
	default:
		return fasthttp.StatusInternalServerError
	}
}

// decodeBody unmarshals the request body into v and answers 400 on failure
func decodeBody(ctx *fasthttp.RequestCtx, v interface{}) bool {
	if err := json.Unmarshal(ctx.PostBody(), v); err != nil {
		respondWithError(ctx, fasthttp.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
