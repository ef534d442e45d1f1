package http

import (
	"net/http"
)

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type avatarRequest struct {
	Image string `json:"image"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	u, err := s.users.Register(r.Context(), sanitizeInput(req.Name), sanitizeInput(req.Email), req.Password)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, "Registration successful", envelope{"user": u})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	u, err := s.users.Login(r.Context(), sanitizeInput(req.Email), req.Password)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Login successful", envelope{"user": u})
}

func (s *Server) handleAvatar(w http.ResponseWriter, r *http.Request) {
	var req avatarRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(r.Context(), w, err)
		return
	}

	u, err := s.users.SetAvatar(r.Context(), r.PathValue("id"), req.Image)
	if err != nil {
		respondError(r.Context(), w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Avatar updated", envelope{"user": u})
}
