package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"givetrack/internal/core"
	"givetrack/internal/log"
)

// Account fields are pointers so an absent key reaches the store as NULL.
type signupRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type loginRequest struct {
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

type accountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type donationRequest struct {
	UserID int64   `json:"user_id"`
	Amount float64 `json:"amount"`
}

type donationResponse struct {
	ID     int64   `json:"id"`
	UserID int64   `json:"user_id"`
	Amount float64 `json:"amount"`
	Date   string  `json:"date"`
}

type volunteerRequest struct {
	UserID int64   `json:"user_id"`
	Hours  float64 `json:"hours"`
}

type volunteerResponse struct {
	ID     int64   `json:"id"`
	UserID int64   `json:"user_id"`
	Hours  float64 `json:"hours"`
	Date   string  `json:"date"`
}

type causeRequest struct {
	UserID    int64  `json:"user_id"`
	CauseName string `json:"cause_name"`
}

type causeResponse struct {
	ID        int64  `json:"id"`
	UserID    int64  `json:"user_id"`
	CauseName string `json:"cause_name"`
}

type dashboardUser struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type dashboardResponse struct {
	User           dashboardUser `json:"user"`
	TotalDonations float64       `json:"total_donations"`
	TotalHours     float64       `json:"total_hours"`
	Causes         []string      `json:"causes"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{ID: a.ID, Username: a.Username, Email: a.Email}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[signupRequest](r)

	account, err := s.accounts.CreateAccount(r.Context(), core.Signup{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		msg := "Internal server error"
		switch {
		case errors.Is(err, core.ErrDuplicateEmail):
			msg = "Email already exists"
		case errors.Is(err, core.ErrMissingField):
			msg = "Missing required fields"
		}
		writeError(w, r, statusFor(err), msg, log.OpSignup, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[loginRequest](r)

	account, err := s.accounts.Authenticate(r.Context(), core.Login{Email: req.Email, Password: req.Password})
	if err != nil {
		status := statusFor(err)
		msg := "Invalid credentials"
		if status != http.StatusBadRequest {
			msg = "Internal server error"
		}
		writeError(w, r, status, msg, log.OpLogin, err)
		return
	}

	writeJSON(w, http.StatusOK, toAccountResponse(account))
}

func (s *Server) handleDonation(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[donationRequest](r)

	d, err := s.contributions.RecordDonation(r.Context(), req.UserID, req.Amount)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to add donation", log.OpDonate, err)
		return
	}

	writeJSON(w, http.StatusOK, donationResponse{ID: d.ID, UserID: d.AccountID, Amount: d.Amount, Date: d.Date})
}

func (s *Server) handleVolunteer(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[volunteerRequest](r)

	v, err := s.contributions.LogVolunteerHours(r.Context(), req.UserID, req.Hours)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to log hours", log.OpVolunteer, err)
		return
	}

	writeJSON(w, http.StatusOK, volunteerResponse{ID: v.ID, UserID: v.AccountID, Hours: v.Hours, Date: v.Date})
}

func (s *Server) handleCause(w http.ResponseWriter, r *http.Request) {
	req := decodeBody[causeRequest](r)

	c, err := s.contributions.PledgeCause(r.Context(), req.UserID, req.CauseName)
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "Failed to support cause", log.OpPledge, err)
		return
	}

	writeJSON(w, http.StatusOK, causeResponse{ID: c.ID, UserID: c.AccountID, CauseName: c.CauseName})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// A non-numeric id cannot name an account.
	id, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		writeError(w, r, http.StatusNotFound, "User not found", log.OpDashboard, nil)
		return
	}

	dash, err := s.dashboards.GetDashboard(r.Context(), id)
	if err != nil {
		if statusFor(err) == http.StatusNotFound {
			writeError(w, r, http.StatusNotFound, "User not found", log.OpDashboard, nil)
			return
		}
		writeError(w, r, http.StatusInternalServerError, "Failed to fetch dashboard", log.OpDashboard, err)
		return
	}

	writeJSON(w, http.StatusOK, dashboardResponse{
		User:           dashboardUser{Username: dash.User.Username, Email: dash.User.Email},
		TotalDonations: dash.TotalDonations,
		TotalHours:     dash.TotalHours,
		Causes:         dash.Causes,
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.store.Ping(ctx); err != nil {
			writeError(w, r, http.StatusServiceUnavailable, "store unavailable", log.OpReadiness, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
