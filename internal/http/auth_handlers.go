package httpapi

import (
	"net/http"

	"hoctap-backend/internal/services"
)

type RegisterRequest struct {
	Email    string  `json:"email" validate:"required,email,max=255"`
	Password string  `json:"password" validate:"required,min=6,max=72"`
	FullName *string `json:"fullName" validate:"omitempty,max=200"`
}

func (r RegisterRequest) input() services.RegisterInput {
	return services.RegisterInput{Email: r.Email, Password: r.Password, FullName: r.FullName}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	AccessToken string `json:"accessToken"`
}

type ProfileResponse struct {
	Principal services.Principal `json:"principal"`
	Profile   interface{}        `json:"profile"`
}

func (s *Server) AdminRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	admin, err := s.Auth.AdminRegister(r.Context(), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, admin)
}

func (s *Server) UserRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	user, err := s.Auth.UserRegister(r.Context(), req.input())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusCreated, user)
}

func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.Auth.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, res)
}

func (s *Server) UserLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.Auth.UserLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, res)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	res, err := s.Auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, res)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.Auth.Logout(r.Context(), req.AccessToken); err != nil {
		s.fail(w, r, err)
		return
	}
	WriteMessage(w, http.StatusOK, "Đăng xuất thành công")
}

func (s *Server) Profile(w http.ResponseWriter, r *http.Request) {
	p, _ := CurrentPrincipal(r)
	profile, err := s.Auth.Profile(r.Context(), p)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	WriteData(w, http.StatusOK, ProfileResponse{Principal: p, Profile: profile})
}
