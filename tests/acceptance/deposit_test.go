package acceptance

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/bitminesocial/mining-service/internal/dto"
)

func (s *Suite) decodeFlow(resp *http.Response) dto.DepositFlowResponse {
	defer resp.Body.Close()
	var flow dto.DepositFlowResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&flow))
	return flow
}

func (s *Suite) TestDeposit_OpensAtAmountSelection() {
	authResp, _ := s.login("miner@example.com", "Miner", "email")

	resp := s.authedRequest("GET", "/api/v1/deposit", authResp.AccessToken, nil)
	s.Equal(http.StatusOK, resp.StatusCode)

	flow := s.decodeFlow(resp)
	s.Equal("selecting_amount", string(flow.State))
	s.Equal(1000, flow.SelectedAmountUsd)
	s.False(flow.Confirmed)
	s.Len(flow.Options, 4)
	s.Equal("bc1qcm6wmwk47q35axp75gvkwsnhrsfvwks3yf6sqd", flow.WalletAddress)
	s.NotEmpty(flow.ExchangePartnerURL)
}

func (s *Suite) TestDeposit_RequiresAuth() {
	resp, err := http.Get(s.BaseURL + "/api/v1/deposit")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusUnauthorized, resp.StatusCode)
}

func (s *Suite) TestDeposit_FullActivationFlow() {
	authResp, _ := s.login("miner@example.com", "Miner", "email")
	token := authResp.AccessToken

	// Select the $500 tier
	body, _ := json.Marshal(dto.SelectAmountRequest{AmountUsd: 500})
	resp := s.authedRequest("POST", "/api/v1/deposit/amount", token, body)
	s.Equal(http.StatusOK, resp.StatusCode)
	flow := s.decodeFlow(resp)
	s.Equal("awaiting_sent_confirmation", string(flow.State))
	s.Equal(500, flow.SelectedAmountUsd)
	s.Equal("0.6%", flow.DailyReturn)
	s.Equal("18%", flow.MonthlyReturn)

	// Confirm the payment was sent, opening the license gate
	resp = s.authedRequest("POST", "/api/v1/deposit/sent", token, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	flow = s.decodeFlow(resp)
	s.Equal("awaiting_license", string(flow.State))

	// A wrong license keeps the gate open with the error flag
	body, _ = json.Marshal(dto.VerifyLicenseRequest{LicenseKey: "abc"})
	resp = s.authedRequest("POST", "/api/v1/deposit/license", token, body)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	flow = s.decodeFlow(resp)
	s.Equal("awaiting_license", string(flow.State))
	s.NotEmpty(flow.LicenseError)

	// The correct license starts the on-chain confirmation
	body, _ = json.Marshal(dto.VerifyLicenseRequest{LicenseKey: licenseKey})
	resp = s.authedRequest("POST", "/api/v1/deposit/license", token, body)
	s.Equal(http.StatusOK, resp.StatusCode)
	flow = s.decodeFlow(resp)
	s.Equal("confirming_on_chain", string(flow.State))
	s.Empty(flow.LicenseError)

	// Polling settles into the activated state once the confirmation lands
	s.Require().Eventually(func() bool {
		resp := s.authedRequest("GET", "/api/v1/deposit/status", token, nil)
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return false
		}
		flow = s.decodeFlow(resp)
		return string(flow.State) == "activated"
	}, 2*time.Second, 20*time.Millisecond, "activation never confirmed")

	s.True(flow.Confirmed)
	s.Equal(500, flow.SelectedAmountUsd)
	s.NotNil(flow.FirstActivatedAt)
}

func (s *Suite) activate(token string, amountUsd int) {
	body, _ := json.Marshal(dto.SelectAmountRequest{AmountUsd: amountUsd})
	resp := s.authedRequest("POST", "/api/v1/deposit/amount", token, body)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	resp = s.authedRequest("POST", "/api/v1/deposit/sent", token, nil)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	body, _ = json.Marshal(dto.VerifyLicenseRequest{LicenseKey: licenseKey})
	resp = s.authedRequest("POST", "/api/v1/deposit/license", token, body)
	resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	s.Require().Eventually(func() bool {
		resp := s.authedRequest("GET", "/api/v1/deposit/status", token, nil)
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return false
		}
		flow := s.decodeFlow(resp)
		return string(flow.State) == "activated"
	}, 2*time.Second, 20*time.Millisecond, "activation never confirmed")
}

func (s *Suite) TestDeposit_Reset() {
	authResp, _ := s.login("miner@example.com", "Miner", "email")
	s.activate(authResp.AccessToken, 500)

	resp := s.authedRequest("POST", "/api/v1/deposit/reset", authResp.AccessToken, nil)
	resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	resp = s.authedRequest("GET", "/api/v1/deposit", authResp.AccessToken, nil)
	flow := s.decodeFlow(resp)
	s.Equal("selecting_amount", string(flow.State))
	s.False(flow.Confirmed)
}

func (s *Suite) TestDashboardStats_AfterActivation() {
	authResp, _ := s.login("miner@example.com", "Miner", "email")
	s.activate(authResp.AccessToken, 500)

	resp := s.authedRequest("GET", "/api/v1/dashboard/stats", authResp.AccessToken, nil)
	defer resp.Body.Close()
	s.Equal(http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&stats))

	s.Equal(float64(500), stats["deposit_amount_usd"])
	s.Equal(float64(240), stats["hashrate_ths"])
	s.Equal(float64(68), stats["mining_power_pct"])
	s.Equal("active", stats["session_status"])
	s.Equal(float64(1254), stats["active_miners"])
}

func (s *Suite) TestDashboardStats_WithoutDeposit() {
	authResp, _ := s.login("fresh@example.com", "Fresh", "email")

	resp := s.authedRequest("GET", "/api/v1/dashboard/stats", authResp.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)

	var decision map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decision))
	s.Equal(false, decision["permit"])
	s.Equal("deposit", decision["redirect_to"])
}

func (s *Suite) TestWithdraw_WithoutDeposit() {
	authResp, _ := s.login("fresh@example.com", "Fresh", "email")

	resp := s.authedRequest("POST", "/api/v1/dashboard/withdraw", authResp.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusForbidden, resp.StatusCode)

	var decision map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&decision))
	s.Equal(false, decision["permit"])
	s.Equal("deposit", decision["redirect_to"])
}

func (s *Suite) TestWithdraw_ActiveDepositGetsThresholdExplanation() {
	authResp, _ := s.login("miner@example.com", "Miner", "email")
	s.activate(authResp.AccessToken, 500)

	resp := s.authedRequest("POST", "/api/v1/dashboard/withdraw", authResp.AccessToken, nil)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var withdrawResp dto.WithdrawResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&withdrawResp))
	s.False(withdrawResp.Accepted)
	s.Contains(withdrawResp.Message, "$400")
}

func (s *Suite) TestDemoStats_Public() {
	resp, err := http.Get(s.BaseURL + "/api/v1/demo/stats")
	s.Require().NoError(err)
	defer resp.Body.Close()

	s.Equal(http.StatusOK, resp.StatusCode)

	var stats map[string]interface{}
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&stats))
	s.Equal(float64(250), stats["deposit_amount_usd"])
	s.Equal("inactive", stats["session_status"])
}
