package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"busly/internal/shared/config"
	"busly/internal/shared/errs"
)

const ProviderMomo = "momo"

// momoAdapter opens wallet payments over momo's create-order API and
// verifies IPN callbacks. Signatures are HMAC-SHA256 over key=value pairs
// in a fixed field order dictated by the protocol.
type momoAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
}

func NewMomoAdapter(cfg config.ProviderConfig, client *http.Client) Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &momoAdapter{cfg: cfg, client: client}
}

func (a *momoAdapter) Name() string {
	return ProviderMomo
}

type momoCreateRequest struct {
	PartnerCode string `json:"partnerCode"`
	RequestID   string `json:"requestId"`
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	OrderInfo   string `json:"orderInfo"`
	RedirectURL string `json:"redirectUrl"`
	IpnURL      string `json:"ipnUrl"`
	RequestType string `json:"requestType"`
	ExtraData   string `json:"extraData"`
	Lang        string `json:"lang"`
	Signature   string `json:"signature"`
}

type momoCreateResponse struct {
	ResultCode int    `json:"resultCode"`
	Message    string `json:"message"`
	PayURL     string `json:"payUrl"`
}

func (a *momoAdapter) Initiate(ctx context.Context, payment *Payment, returnURL string) (*InitiateResult, error) {
	orderID := payment.ID.String()
	orderInfo := fmt.Sprintf("Bus ticket payment %s", orderID)
	ipnURL := returnURL

	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%d&extraData=%s&ipnUrl=%s&orderId=%s&orderInfo=%s&partnerCode=%s&redirectUrl=%s&requestId=%s&requestType=%s",
		a.cfg.AccessKey, payment.Amount, "", ipnURL, orderID, orderInfo,
		a.cfg.MerchantCode, returnURL, orderID, "captureWallet",
	)

	req := momoCreateRequest{
		PartnerCode: a.cfg.MerchantCode,
		RequestID:   orderID,
		OrderID:     orderID,
		Amount:      payment.Amount,
		OrderInfo:   orderInfo,
		RedirectURL: returnURL,
		IpnURL:      ipnURL,
		RequestType: "captureWallet",
		ExtraData:   "",
		Lang:        "vi",
		Signature:   hmacSHA256(a.cfg.Secret, rawSignature),
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, errs.ErrProvider
	}
	defer resp.Body.Close()

	var createResp momoCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
		return nil, errs.ErrProvider
	}
	if createResp.ResultCode != 0 || createResp.PayURL == "" {
		return nil, errs.ErrProvider
	}

	return &InitiateResult{
		RedirectURL:  createResp.PayURL,
		ProviderTxID: orderID,
	}, nil
}

func (a *momoAdapter) VerifyCallback(params map[string]string) CallbackResult {
	received := params["signature"]
	if received == "" {
		return CallbackResult{}
	}

	rawSignature := fmt.Sprintf(
		"accessKey=%s&amount=%s&extraData=%s&message=%s&orderId=%s&orderInfo=%s&orderType=%s&partnerCode=%s&payType=%s&requestId=%s&responseTime=%s&resultCode=%s&transId=%s",
		a.cfg.AccessKey, params["amount"], params["extraData"], params["message"],
		params["orderId"], params["orderInfo"], params["orderType"], params["partnerCode"],
		params["payType"], params["requestId"], params["responseTime"],
		params["resultCode"], params["transId"],
	)

	expected := hmacSHA256(a.cfg.Secret, rawSignature)
	if !hmac.Equal([]byte(received), []byte(expected)) {
		return CallbackResult{}
	}

	amount, _ := strconv.ParseInt(params["amount"], 10, 64)
	resultCode := params["resultCode"]

	return CallbackResult{
		Verified:     true,
		ProviderTxID: params["orderId"],
		Amount:       amount,
		Succeeded:    resultCode == "0",
		RawStatus:    resultCode,
	}
}

func hmacSHA256(secret, data string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
