package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"busly/internal/shared/config"
	"busly/internal/shared/errs"
)

func testPayment(amount int64) *Payment {
	return &Payment{
		ID:      uuid.New(),
		PayerID: uuid.New(),
		Amount:  amount,
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry(
		NewVNPayAdapter(config.ProviderConfig{}),
		NewMomoAdapter(config.ProviderConfig{}, nil),
	)

	adapter, err := registry.Get("vnpay")
	require.NoError(t, err)
	assert.Equal(t, "vnpay", adapter.Name())

	_, err = registry.Get("paypal")
	assert.ErrorIs(t, err, errs.ErrProviderUnknown)

	assert.ElementsMatch(t, []string{"vnpay", "momo"}, registry.Names())
}

func TestVNPayInitiate(t *testing.T) {
	cfg := config.ProviderConfig{
		MerchantCode: "BUSLY01",
		Secret:       "vnpay-test-secret",
		Endpoint:     "https://sandbox.vnpayment.vn/paymentv2/vpcpay.html",
	}
	adapter := &vnpayAdapter{
		cfg: cfg,
		now: func() time.Time { return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC) },
	}

	payment := testPayment(350000)
	result, err := adapter.Initiate(context.Background(), payment, "https://api.busly.vn/api/v1/payments/return/vnpay")
	require.NoError(t, err)

	redirect, err := url.Parse(result.RedirectURL)
	require.NoError(t, err)
	query := redirect.Query()

	expectedTxnRef := strings.ReplaceAll(payment.ID.String(), "-", "")
	assert.Equal(t, expectedTxnRef, result.ProviderTxID)
	assert.Equal(t, expectedTxnRef, query.Get("vnp_TxnRef"))
	assert.Equal(t, "35000000", query.Get("vnp_Amount"), "amount must be multiplied by 100")
	assert.Equal(t, "20240315103000", query.Get("vnp_CreateDate"))
	assert.Equal(t, "BUSLY01", query.Get("vnp_TmnCode"))
	assert.NotEmpty(t, query.Get("vnp_SecureHash"))

	// The signature covers every vnp_ parameter except the hash itself, so
	// the redirect URL round-trips through the verifier.
	signed := make(map[string]string)
	for k := range query {
		if k != "vnp_SecureHash" && strings.HasPrefix(k, "vnp_") {
			signed[k] = query.Get(k)
		}
	}
	assert.Equal(t, query.Get("vnp_SecureHash"), hmacSHA512(cfg.Secret, vnpayCanonicalQuery(signed)))
}

func vnpayCallbackParams(secret string, txnRef string, amount int64, responseCode string) map[string]string {
	params := map[string]string{
		"vnp_TmnCode":       "BUSLY01",
		"vnp_TxnRef":        txnRef,
		"vnp_Amount":        strconv.FormatInt(amount*100, 10),
		"vnp_ResponseCode":  responseCode,
		"vnp_TransactionNo": "14226112",
		"vnp_BankCode":      "NCB",
		"vnp_PayDate":       "20240315104500",
	}
	params["vnp_SecureHash"] = hmacSHA512(secret, vnpayCanonicalQuery(params))
	return params
}

func TestVNPayVerifyCallback(t *testing.T) {
	cfg := config.ProviderConfig{MerchantCode: "BUSLY01", Secret: "vnpay-test-secret"}
	adapter := NewVNPayAdapter(cfg)

	t.Run("valid success callback", func(t *testing.T) {
		result := adapter.VerifyCallback(vnpayCallbackParams(cfg.Secret, "abc123", 350000, "00"))
		assert.True(t, result.Verified)
		assert.True(t, result.Succeeded)
		assert.Equal(t, "abc123", result.ProviderTxID)
		assert.Equal(t, int64(350000), result.Amount, "amount must be divided back by 100")
	})

	t.Run("valid failure callback", func(t *testing.T) {
		result := adapter.VerifyCallback(vnpayCallbackParams(cfg.Secret, "abc123", 350000, "24"))
		assert.True(t, result.Verified)
		assert.False(t, result.Succeeded)
		assert.Equal(t, "24", result.RawStatus)
	})

	t.Run("uppercase signature is accepted", func(t *testing.T) {
		params := vnpayCallbackParams(cfg.Secret, "abc123", 350000, "00")
		params["vnp_SecureHash"] = strings.ToUpper(params["vnp_SecureHash"])
		result := adapter.VerifyCallback(params)
		assert.True(t, result.Verified)
	})

	t.Run("tampered amount is rejected", func(t *testing.T) {
		params := vnpayCallbackParams(cfg.Secret, "abc123", 350000, "00")
		params["vnp_Amount"] = "100"
		result := adapter.VerifyCallback(params)
		assert.False(t, result.Verified)
	})

	t.Run("wrong secret is rejected", func(t *testing.T) {
		params := vnpayCallbackParams("forged-secret", "abc123", 350000, "00")
		result := adapter.VerifyCallback(params)
		assert.False(t, result.Verified)
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		params := vnpayCallbackParams(cfg.Secret, "abc123", 350000, "00")
		delete(params, "vnp_SecureHash")
		result := adapter.VerifyCallback(params)
		assert.False(t, result.Verified)
	})
}

func TestMomoInitiate(t *testing.T) {
	cfg := config.ProviderConfig{
		MerchantCode: "BUSLYMOMO",
		Secret:       "momo-test-secret",
		AccessKey:    "momo-access-key",
	}

	t.Run("successful order creation", func(t *testing.T) {
		var captured momoCreateRequest
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
			json.NewEncoder(w).Encode(momoCreateResponse{ResultCode: 0, PayURL: "https://test-payment.momo.vn/pay/abc"})
		}))
		defer srv.Close()
		cfg.Endpoint = srv.URL
		adapter := NewMomoAdapter(cfg, srv.Client())

		payment := testPayment(420000)
		result, err := adapter.Initiate(context.Background(), payment, "https://api.busly.vn/api/v1/payments/return/momo")
		require.NoError(t, err)

		assert.Equal(t, "https://test-payment.momo.vn/pay/abc", result.RedirectURL)
		assert.Equal(t, payment.ID.String(), result.ProviderTxID)
		assert.Equal(t, int64(420000), captured.Amount)
		assert.Equal(t, "captureWallet", captured.RequestType)

		rawSignature := fmt.Sprintf(
			"accessKey=%s&amount=%d&extraData=&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=captureWallet",
			cfg.AccessKey, captured.Amount, captured.IpnURL, captured.OrderID,
			captured.OrderInfo, cfg.MerchantCode, captured.RedirectURL, captured.RequestID,
		)
		assert.Equal(t, hmacSHA256(cfg.Secret, rawSignature), captured.Signature)
	})

	t.Run("provider error result code", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(momoCreateResponse{ResultCode: 41, Message: "duplicate order"})
		}))
		defer srv.Close()
		cfg.Endpoint = srv.URL
		adapter := NewMomoAdapter(cfg, srv.Client())

		_, err := adapter.Initiate(context.Background(), testPayment(420000), "https://api.busly.vn/return")
		assert.ErrorIs(t, err, errs.ErrProvider)
	})
}

func momoCallbackParams(cfg config.ProviderConfig, orderID string, amount int64, resultCode string) map[string]string {
	params := map[string]string{
		"partnerCode":  cfg.MerchantCode,
		"orderId":      orderID,
		"requestId":    orderID,
		"amount":       strconv.FormatInt(amount, 10),
		"orderInfo":    "Bus ticket payment " + orderID,
		"orderType":    "momo_wallet",
		"transId":      "4088878653",
		"resultCode":   resultCode,
		"message":      "Successful.",
		"payType":      "qr",
		"responseTime": "1710498600000",
		"extraData":    "",
	}
	raw := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		cfg.AccessKey, params["amount"], params["extraData"], params["message"],
		params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
		params["payType"], params["requestId"], params["responseTime"],
		params["resultCode"], params["transId"],
	)
	params["signature"] = hmacSHA256(cfg.Secret, raw)
	return params
}

func TestMomoVerifyCallback(t *testing.T) {
	cfg := config.ProviderConfig{
		MerchantCode: "BUSLYMOMO",
		Secret:       "momo-test-secret",
		AccessKey:    "momo-access-key",
	}
	adapter := NewMomoAdapter(cfg, nil)

	t.Run("valid success callback", func(t *testing.T) {
		result := adapter.VerifyCallback(momoCallbackParams(cfg, "order-1", 420000, "0"))
		assert.True(t, result.Verified)
		assert.True(t, result.Succeeded)
		assert.Equal(t, "order-1", result.ProviderTxID)
		assert.Equal(t, int64(420000), result.Amount)
	})

	t.Run("valid failure callback", func(t *testing.T) {
		result := adapter.VerifyCallback(momoCallbackParams(cfg, "order-1", 420000, "1006"))
		assert.True(t, result.Verified)
		assert.False(t, result.Succeeded)
	})

	t.Run("forged signature is rejected", func(t *testing.T) {
		params := momoCallbackParams(cfg, "order-1", 420000, "0")
		params["signature"] = hmacSHA256("wrong-secret", "anything")
		result := adapter.VerifyCallback(params)
		assert.False(t, result.Verified)
	})

	t.Run("tampered result code is rejected", func(t *testing.T) {
		params := momoCallbackParams(cfg, "order-1", 420000, "1006")
		params["resultCode"] = "0"
		result := adapter.VerifyCallback(params)
		assert.False(t, result.Verified)
	})
}

func TestZaloPayInitiate(t *testing.T) {
	cfg := config.ProviderConfig{
		MerchantCode: "2553",
		Secret:       "zalopay-key1",
		Secret2:      "zalopay-key2",
	}

	t.Run("successful order creation", func(t *testing.T) {
		var capturedForm url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			capturedForm = r.PostForm
			json.NewEncoder(w).Encode(zalopayCreateResponse{ReturnCode: 1, OrderURL: "https://sb-openapi.zalopay.vn/order/xyz"})
		}))
		defer srv.Close()
		cfg.Endpoint = srv.URL

		now := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
		adapter := &zalopayAdapter{cfg: cfg, client: srv.Client(), now: func() time.Time { return now }}

		payment := testPayment(180000)
		result, err := adapter.Initiate(context.Background(), payment, "https://api.busly.vn/api/v1/payments/return/zalopay")
		require.NoError(t, err)

		assert.Equal(t, "https://sb-openapi.zalopay.vn/order/xyz", result.RedirectURL)
		assert.True(t, strings.HasPrefix(result.ProviderTxID, "240315_"), "app_trans_id must carry the yyMMdd prefix")
		assert.Equal(t, result.ProviderTxID, capturedForm.Get("app_trans_id"))
		assert.Equal(t, "180000", capturedForm.Get("amount"))

		macInput := strings.Join([]string{
			cfg.MerchantCode,
			capturedForm.Get("app_trans_id"),
			capturedForm.Get("app_user"),
			capturedForm.Get("amount"),
			capturedForm.Get("app_time"),
			capturedForm.Get("embed_data"),
			capturedForm.Get("item"),
		}, "|")
		assert.Equal(t, hmacSHA256(cfg.Secret, macInput), capturedForm.Get("mac"))
	})

	t.Run("provider rejection", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(zalopayCreateResponse{ReturnCode: 2, ReturnMessage: "invalid mac"})
		}))
		defer srv.Close()
		cfg.Endpoint = srv.URL
		adapter := NewZaloPayAdapter(cfg, srv.Client())

		_, err := adapter.Initiate(context.Background(), testPayment(180000), "https://api.busly.vn/return")
		assert.ErrorIs(t, err, errs.ErrProvider)
	})
}

func TestZaloPayVerifyCallback(t *testing.T) {
	cfg := config.ProviderConfig{
		MerchantCode: "2553",
		Secret:       "zalopay-key1",
		Secret2:      "zalopay-key2",
	}
	adapter := NewZaloPayAdapter(cfg, nil)

	data := `{"app_trans_id":"240315_abc","amount":180000}`

	t.Run("callback signed with key2 is a success", func(t *testing.T) {
		result := adapter.VerifyCallback(map[string]string{
			"data": data,
			"mac":  hmacSHA256(cfg.Secret2, data),
		})
		assert.True(t, result.Verified)
		assert.True(t, result.Succeeded)
		assert.Equal(t, "240315_abc", result.ProviderTxID)
		assert.Equal(t, int64(180000), result.Amount)
	})

	t.Run("callback signed with key1 is rejected", func(t *testing.T) {
		result := adapter.VerifyCallback(map[string]string{
			"data": data,
			"mac":  hmacSHA256(cfg.Secret, data),
		})
		assert.False(t, result.Verified)
	})

	t.Run("tampered data is rejected", func(t *testing.T) {
		tampered := `{"app_trans_id":"240315_abc","amount":1}`
		result := adapter.VerifyCallback(map[string]string{
			"data": tampered,
			"mac":  hmacSHA256(cfg.Secret2, data),
		})
		assert.False(t, result.Verified)
	})

	t.Run("missing mac is rejected", func(t *testing.T) {
		result := adapter.VerifyCallback(map[string]string{"data": data})
		assert.False(t, result.Verified)
	})
}
