package mockapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"mindscape/internal/api"
	"mindscape/internal/logging"
)

type emailBody struct {
	Email string `json:"email" validate:"required,email"`
}

type verifyOTPBody struct {
	Email    string `json:"email" validate:"required,email"`
	OTP      string `json:"otp" validate:"required"`
	FullName string `json:"fullName"`
	Password string `json:"password"`
}

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerBody struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type resetBody struct {
	Password string `json:"password" validate:"required"`
	Token    string `json:"token" validate:"required"`
}

type profileBody struct {
	FullName string `json:"fullName"`
	Avatar   string `json:"avatar"`
}

type userResponse struct {
	User api.User `json:"user"`
}

func (s *Server) handleSendOTP(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if !s.decode(w, r, &body) {
		return
	}
	key := strings.ToLower(body.Email)

	s.mu.Lock()
	if _, exists := s.accounts[key]; exists {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "Email is already registered")
		return
	}
	code := s.newOTP()
	s.signupOTPs[key] = code
	s.mu.Unlock()

	logger := logging.Ctx(r.Context())
	logger.Info().Str("email", body.Email).Str("otp", code).Msg("sign-up code issued")
	respond(w, http.StatusOK, nil, "OTP has been sent to your email")
}

func (s *Server) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var body verifyOTPBody
	if !s.decode(w, r, &body) {
		return
	}
	key := strings.ToLower(body.Email)

	s.mu.Lock()
	code, ok := s.signupOTPs[key]
	if !ok || code != body.OTP {
		s.mu.Unlock()
		respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	delete(s.signupOTPs, key)

	name := body.FullName
	if name == "" {
		name = strings.SplitN(body.Email, "@", 2)[0]
	}
	acc := &account{FullName: name, Email: body.Email, Password: body.Password}
	s.accounts[key] = acc
	user := acc.user()
	s.mu.Unlock()

	s.signIn(w, key)
	respond(w, http.StatusCreated, userResponse{User: user}, "Account verified")
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginBody
	if !s.decode(w, r, &body) {
		return
	}
	key := strings.ToLower(body.Email)

	s.mu.Lock()
	acc, ok := s.accounts[key]
	if !ok || acc.Password != body.Password {
		s.mu.Unlock()
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	user := acc.user()
	s.mu.Unlock()

	s.signIn(w, key)
	respond(w, http.StatusOK, userResponse{User: user}, "Login successful")
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body registerBody
	if !s.decode(w, r, &body) {
		return
	}
	key := strings.ToLower(body.Email)

	s.mu.Lock()
	if _, exists := s.accounts[key]; exists {
		s.mu.Unlock()
		respondError(w, http.StatusConflict, "Email is already registered")
		return
	}
	acc := &account{FullName: body.Name, Email: body.Email, Password: body.Password}
	s.accounts[key] = acc
	user := acc.user()
	s.mu.Unlock()

	s.signIn(w, key)
	respond(w, http.StatusCreated, userResponse{User: user}, "Registration successful")
}

func (s *Server) handleSendResetOTP(w http.ResponseWriter, r *http.Request) {
	var body emailBody
	if !s.decode(w, r, &body) {
		return
	}
	key := strings.ToLower(body.Email)

	s.mu.Lock()
	if _, ok := s.accounts[key]; !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "No account found for this email")
		return
	}
	code := s.newOTP()
	s.resetOTPs[key] = code
	s.mu.Unlock()

	logger := logging.Ctx(r.Context())
	logger.Info().Str("email", body.Email).Str("otp", code).Msg("reset code issued")
	respond(w, http.StatusOK, nil, "OTP has been sent to your email")
}

func (s *Server) handleVerifyResetOTP(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email" validate:"required,email"`
		OTP   string `json:"otp" validate:"required"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	key := strings.ToLower(body.Email)

	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.resetOTPs[key]
	if !ok || code != body.OTP {
		respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
		return
	}
	delete(s.resetOTPs, key)
	token := uuid.New().String()
	s.resetTokens[token] = key

	respond(w, http.StatusOK, map[string]string{"resetToken": token}, "OTP verified")
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var body resetBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	key, ok := s.resetTokens[body.Token]
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusBadRequest, "Reset token is invalid or has expired")
		return
	}
	delete(s.resetTokens, body.Token)
	acc := s.accounts[key]
	acc.Password = body.Password
	user := acc.user()
	s.mu.Unlock()

	s.signIn(w, key)
	respond(w, http.StatusOK, userResponse{User: user}, "Password has been reset")
}

func (s *Server) handleOAuth(w http.ResponseWriter, r *http.Request) {
	respondError(w, http.StatusNotImplemented, "Social login is not available on the mock API")
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	acc, ok := s.accounts[currentEmail(r.Context())]
	var user api.User
	if ok {
		user = acc.user()
	}
	s.mu.Unlock()

	if !ok {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respond(w, http.StatusOK, userResponse{User: user}, "")
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body profileBody
	if !s.decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	acc, ok := s.accounts[currentEmail(r.Context())]
	if !ok {
		s.mu.Unlock()
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	if body.FullName != "" {
		acc.FullName = body.FullName
	}
	if body.Avatar != "" {
		acc.Avatar = body.Avatar
	}
	user := acc.user()
	s.mu.Unlock()

	respond(w, http.StatusOK, userResponse{User: user}, "Profile updated")
}
