package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jankeeper/jankeeper/scoring"
	"github.com/jankeeper/jankeeper/services"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.Any("error", err),
	)
	errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func failedValidationResponse(w http.ResponseWriter, r *http.Request, detail interface{}) {
	errorResponse(w, r, http.StatusUnprocessableEntity, detail)
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unauthorizedResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusUnauthorized, message)
}

func forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusForbidden, message)
}

// mapServiceErrorToHTTP translates service layer errors into HTTP
// responses. Score validation errors carry structured detail so the
// client can highlight what is wrong with the submitted table.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	var shapeErr *scoring.ShapeError
	var quantErr *scoring.QuantizationError
	var balanceErr *scoring.BalanceError

	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrSectionNotFound),
		errors.Is(err, services.ErrGameNotFound):
		notFoundResponse(w, r)

	case errors.Is(err, services.ErrDisplayNameTaken):
		conflictResponse(w, r, err.Error())

	case errors.As(err, &shapeErr):
		detail := jsonResponse{"message": shapeErr.Error()}
		if shapeErr.UnknownUserID != "" {
			detail["unknown_user_id"] = shapeErr.UnknownUserID
		} else {
			detail["expected"] = shapeErr.Expected
			detail["got"] = shapeErr.Got
		}
		failedValidationResponse(w, r, detail)

	case errors.As(err, &quantErr):
		failedValidationResponse(w, r, jsonResponse{
			"message": quantErr.Error(),
			"user_id": quantErr.UserID,
			"points":  quantErr.Points,
		})

	case errors.As(err, &balanceErr):
		failedValidationResponse(w, r, jsonResponse{
			"message":  balanceErr.Error(),
			"expected": balanceErr.Expected,
			"actual":   balanceErr.Actual,
			"diff":     balanceErr.Diff(),
		})

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrDisplayNameInvalid),
		errors.Is(err, services.ErrPasswordTooShort),
		errors.Is(err, services.ErrSectionNameInvalid),
		errors.Is(err, services.ErrStartingPointsInvalid),
		errors.Is(err, services.ErrReturnPointsInvalid),
		errors.Is(err, services.ErrRateInvalid),
		errors.Is(err, services.ErrPlayerCountInvalid),
		errors.Is(err, services.ErrParticipantCountMismatch),
		errors.Is(err, services.ErrParticipantsNotDistinct),
		errors.Is(err, services.ErrUnsupportedImageType):
		badRequestResponse(w, r, err)

	case errors.Is(err, services.ErrInvalidCredentials):
		unauthorizedResponse(w, r, err.Error())

	case errors.Is(err, services.ErrPermissionDenied),
		errors.Is(err, services.ErrAdminRequired):
		forbiddenResponse(w, r, err.Error())

	case errors.Is(err, services.ErrSectionNotActive),
		errors.Is(err, services.ErrSectionNotClosed):
		conflictResponse(w, r, err.Error())

	case errors.Is(err, services.ErrAvatarStorageUnavailable):
		errorResponse(w, r, http.StatusServiceUnavailable, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
