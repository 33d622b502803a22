package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/templui/authd/internal/ctxkeys"
	"github.com/templui/authd/internal/service"
)

type authHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *authHandler {
	return &authHandler{authService: authService}
}

func (h *authHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in service.RegisterInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message{Msg: err.Error()})
		return
	}

	user, err := h.authService.Register(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, message{Msg: "Created a new user", Data: user.ID})
	case errors.Is(err, service.ErrMissingField), errors.Is(err, service.ErrPasswordTooLong):
		writeJSON(w, http.StatusBadRequest, message{Msg: err.Error()})
	default:
		slog.Error("registration failed", "error", err, "username", in.Username)
		writeJSON(w, http.StatusInternalServerError, message{
			Msg: fmt.Sprintf("Couldn't create a new user. Failed with error: '%v'", err),
		})
	}
}

type loginData struct {
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

type loginResponse struct {
	Data   loginData `json:"data"`
	Status string    `json:"status"`
}

func (h *authHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in service.LoginInput
	err := decodeJSON(w, r, &in)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, message{Msg: err.Error()})
		return
	}

	result, err := h.authService.Login(r.Context(), in)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, loginResponse{
			Data:   loginData{Username: result.Username, AccessToken: result.AccessToken},
			Status: "success",
		})
	case errors.Is(err, service.ErrMissingField):
		writeJSON(w, http.StatusBadRequest, message{Msg: err.Error()})
	case errors.Is(err, service.ErrUserNotFound):
		writeJSON(w, http.StatusForbidden, message{Msg: "A user with those details does not exist."})
	case errors.Is(err, service.ErrBadCredentials):
		writeJSON(w, http.StatusForbidden, message{Msg: "The provided password is incorrect."})
	default:
		slog.Error("login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, message{Msg: "Couldn't log in. Please try again."})
	}
}

type meData struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

func (h *authHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.authService.CurrentUser(r.Context(), ctxkeys.UserID(r.Context()))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, message{Msg: "ok", Data: meData{
			ID:            user.ID,
			Username:      user.Username,
			Email:         user.Email,
			EmailVerified: user.EmailVerified,
		}})
	case errors.Is(err, service.ErrUserNotFound):
		Unauthorized(w, r)
	default:
		slog.Error("failed to load current user", "error", err)
		writeJSON(w, http.StatusInternalServerError, message{Msg: "Couldn't load the user."})
	}
}

func (h *authHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.PathValue("token")

	_, err := h.authService.VerifyEmail(r.Context(), token)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "Your email has been verified.")
	case errors.Is(err, service.ErrInvalidToken):
		writeText(w, http.StatusBadRequest, "The verification link is invalid or has expired.")
	default:
		slog.Error("email verification failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Couldn't verify your email. Please try again.")
	}
}

func (h *authHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	identifier := r.PathValue("identifier")

	err := h.authService.RequestPasswordReset(r.Context(), identifier)
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "A password reset link has been sent to the email address on file.")
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrMissingField):
		writeText(w, http.StatusNotFound, "User does not exist.")
	default:
		slog.Error("password reset request failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Couldn't request a password reset. Please try again.")
	}
}

func (h *authHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := r.ParseForm()
	if err != nil {
		writeText(w, http.StatusBadRequest, "Couldn't read the form.")
		return
	}

	err = h.authService.ResetPassword(r.Context(), service.ResetPasswordInput{
		Token:     r.PathValue("token"),
		Password:  r.PostFormValue("password"),
		Password2: r.PostFormValue("password2"),
	})
	switch {
	case err == nil:
		writeText(w, http.StatusOK, "Your password has been reset.")
	case errors.Is(err, service.ErrPasswordMismatch):
		writeText(w, http.StatusBadRequest, "The passwords do not match.")
	case errors.Is(err, service.ErrMissingField):
		writeText(w, http.StatusBadRequest, "Please enter a new password.")
	case errors.Is(err, service.ErrPasswordTooLong):
		writeText(w, http.StatusBadRequest, "The password is too long.")
	case errors.Is(err, service.ErrInvalidToken):
		writeText(w, http.StatusBadRequest, "The password reset link is invalid or has expired.")
	default:
		slog.Error("password reset failed", "error", err)
		writeText(w, http.StatusInternalServerError, "Couldn't reset your password. Please try again.")
	}
}
