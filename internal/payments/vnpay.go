package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"busly/internal/shared/config"
)

const ProviderVNPay = "vnpay"

// vnpayAdapter speaks the VNPay redirect protocol: the payer is sent to a
// hosted page whose URL carries the signed order, and VNPay calls back
// with vnp_* query parameters signed the same way.
type vnpayAdapter struct {
	cfg config.ProviderConfig
	now func() time.Time
}

func NewVNPayAdapter(cfg config.ProviderConfig) Adapter {
	return &vnpayAdapter{cfg: cfg, now: time.Now}
}

func (a *vnpayAdapter) Name() string {
	return ProviderVNPay
}

func (a *vnpayAdapter) Initiate(ctx context.Context, payment *Payment, returnURL string) (*InitiateResult, error) {
	txnRef := strings.ReplaceAll(payment.ID.String(), "-", "")

	params := map[string]string{
		"vnp_Version":   "2.1.0",
		"vnp_Command":   "pay",
		"vnp_TmnCode":   a.cfg.MerchantCode,
		"vnp_Amount":    strconv.FormatInt(payment.Amount*100, 10), // VNPay wants amounts x100
		"vnp_CurrCode":  "VND",
		"vnp_TxnRef":    txnRef,
		"vnp_OrderInfo": fmt.Sprintf("Bus ticket payment %s", payment.ID),
		"vnp_OrderType": "other",
		"vnp_Locale":    "vn",
		"vnp_IpAddr":    "127.0.0.1",
		"vnp_CreateDate": a.now().Format("20060102150405"),
		"vnp_ReturnUrl":  returnURL,
	}

	query := vnpayCanonicalQuery(params)
	signature := hmacSHA512(a.cfg.Secret, query)

	return &InitiateResult{
		RedirectURL:  fmt.Sprintf("%s?%s&vnp_SecureHash=%s", a.cfg.Endpoint, query, signature),
		ProviderTxID: txnRef,
	}, nil
}

func (a *vnpayAdapter) VerifyCallback(params map[string]string) CallbackResult {
	received := params["vnp_SecureHash"]
	if received == "" {
		return CallbackResult{}
	}

	signed := make(map[string]string, len(params))
	for k, v := range params {
		if k == "vnp_SecureHash" || k == "vnp_SecureHashType" {
			continue
		}
		if strings.HasPrefix(k, "vnp_") {
			signed[k] = v
		}
	}

	expected := hmacSHA512(a.cfg.Secret, vnpayCanonicalQuery(signed))
	if !hmac.Equal([]byte(strings.ToLower(received)), []byte(expected)) {
		return CallbackResult{}
	}

	amount, _ := strconv.ParseInt(params["vnp_Amount"], 10, 64)
	responseCode := params["vnp_ResponseCode"]

	return CallbackResult{
		Verified:     true,
		ProviderTxID: params["vnp_TxnRef"],
		Amount:       amount / 100,
		Succeeded:    responseCode == "00",
		RawStatus:    responseCode,
	}
}

// vnpayCanonicalQuery builds the string VNPay signs: parameters sorted by
// name, URL-encoded, joined with ampersands.
func vnpayCanonicalQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, url.QueryEscape(k)+"="+url.QueryEscape(params[k]))
	}
	return strings.Join(pairs, "&")
}

func hmacSHA512(secret, data string) string {
	mac := hmac.New(sha512.New, []byte(secret))
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
