package acceptance

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/bitminesocial/mining-service/internal/dto"
)

func (s *Suite) navigate(token, destination string) map[string]interface{} {
	body, _ := json.Marshal(dto.NavigateRequest{Destination: destination})

	req, _ := http.NewRequest("POST", s.BaseURL+"/api/v1/navigate", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var decision map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decision))
	return decision
}

func (s *Suite) TestNavigate_PublicRoutesAnonymous() {
	for _, dest := range []string{"home", "faq", "about", "live-mining", "demo-mining"} {
		decision := s.navigate("", dest)
		s.Equal(true, decision["permit"], "route %s", dest)
		s.Equal(false, decision["prompt_login"], "route %s", dest)
	}
}

func (s *Suite) TestNavigate_DashboardAnonymousPromptsLogin() {
	decision := s.navigate("", "dashboard")

	s.Equal(false, decision["permit"])
	s.Equal(true, decision["prompt_login"])
	s.Equal("home", decision["redirect_to"])
}

func (s *Suite) TestNavigate_DashboardAuthenticated() {
	authResp, _ := s.login("ann@example.com", "Ann", "email")

	decision := s.navigate(authResp.AccessToken, "dashboard")

	s.Equal(true, decision["permit"])
	s.Equal(false, decision["prompt_login"])
}

func (s *Suite) TestNavigate_UnknownRouteResolvesToNotFound() {
	decision := s.navigate("", "settings")

	s.Equal(true, decision["permit"])
	s.Equal("not-found", decision["redirect_to"])
}
