package payments

import (
	"context"
	"crypto/hmac"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"busly/internal/shared/config"
	"busly/internal/shared/errs"
)

const ProviderZaloPay = "zalopay"

// zalopayAdapter creates orders over zalopay's gateway. Order creation is
// signed with key1 over a pipe-joined field list; callbacks ship the order
// as a JSON blob signed with key2.
type zalopayAdapter struct {
	cfg    config.ProviderConfig
	client *http.Client
	now    func() time.Time
}

func NewZaloPayAdapter(cfg config.ProviderConfig, client *http.Client) Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &zalopayAdapter{cfg: cfg, client: client, now: time.Now}
}

func (a *zalopayAdapter) Name() string {
	return ProviderZaloPay
}

type zalopayCreateResponse struct {
	ReturnCode    int    `json:"return_code"`
	ReturnMessage string `json:"return_message"`
	OrderURL      string `json:"order_url"`
}

func (a *zalopayAdapter) Initiate(ctx context.Context, payment *Payment, returnURL string) (*InitiateResult, error) {
	now := a.now()
	// app_trans_id must be date-prefixed with the provider's yyMMdd format
	appTransID := fmt.Sprintf("%s_%s", now.Format("060102"), strings.ReplaceAll(payment.ID.String(), "-", ""))
	appTime := strconv.FormatInt(now.UnixMilli(), 10)
	appUser := payment.PayerID.String()
	amount := strconv.FormatInt(payment.Amount, 10)
	embedData := fmt.Sprintf(`{"redirecturl":%q}`, returnURL)
	item := "[]"

	// mac input: app_id|app_trans_id|app_user|amount|app_time|embed_data|item
	macInput := strings.Join([]string{
		a.cfg.MerchantCode, appTransID, appUser, amount, appTime, embedData, item,
	}, "|")

	form := url.Values{}
	form.Set("app_id", a.cfg.MerchantCode)
	form.Set("app_trans_id", appTransID)
	form.Set("app_user", appUser)
	form.Set("app_time", appTime)
	form.Set("amount", amount)
	form.Set("embed_data", embedData)
	form.Set("item", item)
	form.Set("description", fmt.Sprintf("Bus ticket payment %s", payment.ID))
	form.Set("mac", hmacSHA256(a.cfg.Secret, macInput))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return nil, errs.ErrProvider
	}
	defer resp.Body.Close()

	var createResp zalopayCreateResponse
	if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
		return nil, errs.ErrProvider
	}
	if createResp.ReturnCode != 1 || createResp.OrderURL == "" {
		return nil, errs.ErrProvider
	}

	return &InitiateResult{
		RedirectURL:  createResp.OrderURL,
		ProviderTxID: appTransID,
	}, nil
}

type zalopayCallbackData struct {
	AppTransID string `json:"app_trans_id"`
	Amount     int64  `json:"amount"`
}

func (a *zalopayAdapter) VerifyCallback(params map[string]string) CallbackResult {
	data := params["data"]
	received := params["mac"]
	if data == "" || received == "" {
		return CallbackResult{}
	}

	expected := hmacSHA256(a.cfg.Secret2, data)
	if !hmac.Equal([]byte(received), []byte(expected)) {
		return CallbackResult{}
	}

	var payload zalopayCallbackData
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return CallbackResult{}
	}

	// zalopay only fires the callback once the payer has paid; a verified
	// callback is a success signal.
	return CallbackResult{
		Verified:     true,
		ProviderTxID: payload.AppTransID,
		Amount:       payload.Amount,
		Succeeded:    true,
		RawStatus:    "1",
	}
}
