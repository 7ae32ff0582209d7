package acceptance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/bitminesocial/mining-service/internal/dto"
)

func (s *Suite) login(email, displayName, provider string) (*dto.AuthResponse, []*http.Cookie) {
	reqBody := dto.LoginRequest{
		Email:       email,
		DisplayName: displayName,
		Provider:    provider,
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode, "Login should succeed")

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))

	return &authResp, resp.Cookies()
}

func (s *Suite) authedRequest(method, path, token string, body []byte) *http.Response {
	req, _ := http.NewRequest(method, s.BaseURL+path, bytes.NewBuffer(body))
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	return resp
}

func (s *Suite) TestLogin_Success() {
	authResp, cookies := s.login("ann@example.com", "Ann", "google")

	s.NotEmpty(authResp.AccessToken)
	s.Equal("Bearer", authResp.TokenType)
	s.NotZero(authResp.ExpiresIn)
	s.Equal("ann@example.com", authResp.User.Email)
	s.Equal("Ann", authResp.User.DisplayName)
	s.Equal("google", authResp.User.Provider)
	s.NotEmpty(authResp.User.ID)

	s.NotEmpty(cookies, "Should have refresh token cookie")
}

func (s *Suite) TestLogin_AnyCredentialsAccepted() {
	reqBody := dto.LoginRequest{
		Email:       "bob@example.com",
		DisplayName: "Bob",
		Provider:    "email",
		Password:    "whatever-password",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// A second login with a different password still succeeds
	reqBody.Password = "a-different-password"
	body, _ = json.Marshal(reqBody)
	resp, err = http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)
}

func (s *Suite) TestLogin_UnknownProvider() {
	reqBody := dto.LoginRequest{
		Email:       "ann@example.com",
		DisplayName: "Ann",
		Provider:    "myspace",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestLogin_InvalidEmail() {
	reqBody := dto.LoginRequest{
		Email:       "invalid-email",
		DisplayName: "Ann",
		Provider:    "email",
	}
	body, _ := json.Marshal(reqBody)

	resp, err := http.Post(
		s.BaseURL+"/api/v1/auth/login",
		"application/json",
		bytes.NewBuffer(body),
	)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusBadRequest, resp.StatusCode)
}

func (s *Suite) TestGetMe_Success() {
	authResp, _ := s.login("ann@example.com", "Ann", "apple")

	resp := s.authedRequest("GET", "/api/v1/auth/me", authResp.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var sessionResp dto.SessionResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&sessionResp))

	s.True(sessionResp.IsAuthenticated)
	s.False(sessionResp.IsHydrating)
	s.Require().NotNil(sessionResp.Identity)
	s.Equal("ann@example.com", sessionResp.Identity.Email)
	s.Equal("Ann", sessionResp.Identity.DisplayName)
	s.Require().NotNil(sessionResp.User)
	s.Equal(authResp.User.ID, sessionResp.User.ID)
}

func (s *Suite) TestGetMe_NoToken() {
	req, _ := http.NewRequest("GET", s.BaseURL+"/api/v1/auth/me", nil)

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestGetMe_InvalidToken() {
	resp := s.authedRequest("GET", "/api/v1/auth/me", "invalid-token", nil)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestRefresh_Success() {
	_, cookies := s.login("ann@example.com", "Ann", "email")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var authResp dto.AuthResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&authResp))
	s.NotEmpty(authResp.AccessToken)
}

func (s *Suite) TestRefresh_IsRotatedOnce() {
	_, cookies := s.login("ann@example.com", "Ann", "email")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	// Replaying the consumed token fails
	req, _ = http.NewRequest("POST", s.BaseURL+"/api/v1/auth/refresh", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err = http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestLogout_Success() {
	authResp, cookies := s.login("ann@example.com", "Ann", "email")

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", authResp.AccessToken))
	for _, c := range cookies {
		req.AddCookie(c)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	// The session settles to logged out
	meResp := s.authedRequest("GET", "/api/v1/auth/me", authResp.AccessToken, nil)
	defer meResp.Body.Close()
	s.Equal(http.StatusOK, meResp.StatusCode)

	var sessionResp dto.SessionResponse
	s.Require().NoError(json.NewDecoder(meResp.Body).Decode(&sessionResp))
	s.False(sessionResp.IsAuthenticated)
	s.Nil(sessionResp.Identity)
}
