package public

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/paygate-next/internal/models"
	"github.com/paygate-next/internal/payment/alipay"
	"github.com/paygate-next/internal/provider"
	"github.com/paygate-next/internal/repository"
	"github.com/paygate-next/internal/service"
)

type stubPayConfigRepo struct {
	cfg *models.PayConfig
}

func (s *stubPayConfigRepo) Create(cfg *models.PayConfig) error { return nil }
func (s *stubPayConfigRepo) Update(cfg *models.PayConfig) error { return nil }
func (s *stubPayConfigRepo) Delete(id uint) error               { return nil }
func (s *stubPayConfigRepo) GetByID(id uint) (*models.PayConfig, error) {
	return s.cfg, nil
}
func (s *stubPayConfigRepo) FindByKey(merchantID, payType, channel string) (*models.PayConfig, error) {
	return s.cfg, nil
}
func (s *stubPayConfigRepo) List(filter repository.PayConfigListFilter) ([]models.PayConfig, int64, error) {
	return nil, 0, nil
}

func testKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	}))
}

func newPayRouter(repo repository.PayConfigRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := New(&provider.Container{
		PayService: service.NewPayService(repo, alipay.NewClient(alipay.ClientOptions{})),
	})
	engine := gin.New()
	engine.POST("/api/v1/pay", handler.InitiatePay)
	return engine
}

func payBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(gin.H{
		"merchant_id":  "M1",
		"pay_type":     "alipay",
		"channel":      "wap",
		"out_trade_no": "T100",
		"total_amount": "9.90",
		"subject":      "Order",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	return bytes.NewBuffer(body)
}

func TestInitiatePayRedirectsBrowser(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "https://openapi.alipay.com/cashier?token=abc")
		w.WriteHeader(http.StatusFound)
	}))
	defer gateway.Close()

	repo := &stubPayConfigRepo{cfg: &models.PayConfig{
		MerchantID: "M1", PayType: "alipay", Channel: "wap",
		AppID: "2088000000000001", GatewayURL: gateway.URL,
		PrivateKey: testKeyPEM(t), Charset: "utf-8", SignType: "RSA2",
		Version: "1.0", Method: "alipay.trade.wap.pay",
		NotifyURL: "https://merchant.example.com/notify",
		SellerID:  "2088000000000002", SellerEmail: "seller@example.com",
		TimeoutExpress: "30m", ProductCode: "QUICK_WAP_PAY", IsActive: true,
	}}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pay", payBody(t))
	req.Header.Set("Content-Type", "application/json")
	newPayRouter(repo).ServeHTTP(recorder, req)

	if recorder.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d: %s", recorder.Code, recorder.Body.String())
	}
	if got := recorder.Header().Get("Location"); got != "https://openapi.alipay.com/cashier?token=abc" {
		t.Fatalf("unexpected Location %q", got)
	}
}

func TestInitiatePayConfigMissing(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pay", payBody(t))
	req.Header.Set("Content-Type", "application/json")
	newPayRouter(&stubPayConfigRepo{}).ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d", recorder.Code)
	}
	var envelope struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			FailureKind string `json:"failure_kind"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.StatusCode != 404 {
		t.Fatalf("expected status_code 404, got %d", envelope.StatusCode)
	}
	if envelope.Data.FailureKind != string(alipay.FailureConfigurationMissing) {
		t.Fatalf("expected configuration_missing, got %q", envelope.Data.FailureKind)
	}
}

func TestInitiatePayRejectsBadBody(t *testing.T) {
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pay", bytes.NewBufferString(`{"merchant_id":"M1"}`))
	req.Header.Set("Content-Type", "application/json")
	newPayRouter(&stubPayConfigRepo{}).ServeHTTP(recorder, req)

	var envelope struct {
		StatusCode int `json:"status_code"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.StatusCode != 400 {
		t.Fatalf("expected status_code 400, got %d", envelope.StatusCode)
	}
}

func TestInitiatePayInvalidAmountEnvelope(t *testing.T) {
	repo := &stubPayConfigRepo{cfg: &models.PayConfig{
		MerchantID: "M1", PayType: "alipay", Channel: "wap",
		AppID: "2088000000000001", GatewayURL: "https://unused.example.com",
		PrivateKey: testKeyPEM(t), Charset: "utf-8", SignType: "RSA2",
		Version: "1.0", Method: "alipay.trade.wap.pay",
		NotifyURL: "https://merchant.example.com/notify",
		SellerID:  "2088000000000002", SellerEmail: "seller@example.com",
		TimeoutExpress: "30m", ProductCode: "QUICK_WAP_PAY", IsActive: true,
	}}

	body, err := json.Marshal(gin.H{
		"merchant_id":  "M1",
		"pay_type":     "alipay",
		"channel":      "wap",
		"out_trade_no": "T100",
		"total_amount": "abc",
		"subject":      "Order",
	})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pay", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	newPayRouter(repo).ServeHTTP(recorder, req)

	var envelope struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			FailureKind string `json:"failure_kind"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.StatusCode != 400 {
		t.Fatalf("expected status_code 400 for bad amount, got %d", envelope.StatusCode)
	}
	if envelope.Data.FailureKind != string(alipay.FailureInvalidRequest) {
		t.Fatalf("expected invalid_request, got %q", envelope.Data.FailureKind)
	}
}

func TestInitiatePayDirectSuccessEnvelope(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"alipay_trade_app_pay_response":{"code":"10000","msg":"Success"}}`))
	}))
	defer gateway.Close()

	repo := &stubPayConfigRepo{cfg: &models.PayConfig{
		MerchantID: "M1", PayType: "alipay", Channel: "app",
		AppID: "2088000000000001", GatewayURL: gateway.URL,
		PrivateKey: testKeyPEM(t), Charset: "utf-8", SignType: "RSA2",
		Version: "1.0", Method: "alipay.trade.app.pay",
		NotifyURL: "https://merchant.example.com/notify",
		SellerID:  "2088000000000002", SellerEmail: "seller@example.com",
		TimeoutExpress: "30m", ProductCode: "QUICK_MSECURITY_PAY", IsActive: true,
	}}

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pay", payBody(t))
	req.Header.Set("Content-Type", "application/json")
	newPayRouter(repo).ServeHTTP(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", recorder.Code)
	}
	var envelope struct {
		StatusCode int `json:"status_code"`
		Data       struct {
			OutTradeNo string `json:"out_trade_no"`
			Status     string `json:"status"`
		} `json:"data"`
	}
	if err := json.Unmarshal(recorder.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.StatusCode != 0 || envelope.Data.Status != "accepted" || envelope.Data.OutTradeNo != "T100" {
		t.Fatalf("unexpected envelope: %s", recorder.Body.String())
	}
}
