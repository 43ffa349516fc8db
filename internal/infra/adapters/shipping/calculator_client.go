package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"qwintry-bot/internal/config"
	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/infra/metrics"
)

var _ adapter.ShippingCalculator = (*CalculatorClient)(nil)

const maxBody = 1 << 20

// CalculatorClient posts calculations to the Qwintry frontend calculator,
// trying each base URL in order until one answers with a cost table.
type CalculatorClient struct {
	bases   []string
	client  *http.Client
	limiter *rate.Limiter
	log     *zerolog.Logger
}

func NewCalculatorClient(cfg config.ShippingConfig, logger *zerolog.Logger) (*CalculatorClient, error) {
	if len(cfg.BaseURLs) == 0 {
		return nil, fmt.Errorf("shipping: no base urls")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	var lim *rate.Limiter
	if cfg.RPS > 0 {
		burst := int(cfg.RPS)
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	l := logger.With().Str("component", "shipping").Logger()
	return &CalculatorClient{
		bases:   append([]string(nil), cfg.BaseURLs...),
		client:  &http.Client{Timeout: timeout},
		limiter: lim,
		log:     &l,
	}, nil
}

type calcRequest struct {
	HubShortName          string           `json:"hubShortName"`
	CountryID             string           `json:"countryId"`
	CityID                string           `json:"cityId"`
	Weight                string           `json:"weight"`
	WeightMeasurement     string           `json:"weightMeasurement"`
	Dimensions            model.Dimensions `json:"dimensions"`
	DimensionsMeasurement string           `json:"dimensionsMeasurement"`
	Insurance             bool             `json:"insurance"`
	Zip                   string           `json:"zip"`
	DeclarationCost       string           `json:"declarationCost"`
}

func (c *CalculatorClient) Calculate(ctx context.Context, req model.ShipmentRequest) (*model.Quote, error) {
	body, err := json.Marshal(calcRequest{
		HubShortName:          req.Hub,
		CountryID:             req.CountryID,
		CityID:                req.CityID,
		Weight:                req.Weight,
		WeightMeasurement:     "kg",
		Dimensions:            req.Dimensions,
		DimensionsMeasurement: "cm",
		Zip:                   "",
		DeclarationCost:       "0",
	})
	if err != nil {
		return nil, err
	}

	var failures []string
	for _, base := range c.bases {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		start := time.Now()
		q, err := c.post(ctx, base, body)
		metrics.ObserveShippingCall(time.Since(start).Milliseconds(), err == nil)
		if err == nil {
			return q, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.log.Warn().Err(err).Str("base", base).Str("hub", req.Hub).Msg("shipping calculation failed")
		failures = append(failures, err.Error())
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUpstream, strings.Join(failures, " | "))
}

func (c *CalculatorClient) post(ctx context.Context, base string, body []byte) (*model.Quote, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calculator http %d", resp.StatusCode)
	}
	q, err := ParseQuote(raw)
	if err != nil {
		return nil, err
	}
	if len(q.Tariffs) == 0 {
		return nil, domain.ErrNoTariffs
	}
	return q, nil
}

// ParseQuote reads the costs table of a calculator response. Entries without a
// usable price are skipped; the result is not sorted.
func ParseQuote(raw []byte) (*model.Quote, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("calculator: malformed json")
	}
	doc := gjson.ParseBytes(raw)
	costs := doc.Get("costs")
	if !costs.Exists() {
		costs = doc.Get("result.costs")
	}

	q := &model.Quote{}
	costs.ForEach(func(key, v gjson.Result) bool {
		k := key.String()
		if !key.Exists() {
			// costs given as an array
			k = first(v, "key", "tariff", "code").String()
		}
		t, ok := parseTariff(k, v)
		if ok {
			q.Tariffs = append(q.Tariffs, t)
		}
		return true
	})

	if lim := doc.Get("country_info.customs_limit"); lim.Exists() {
		q.CustomsLimit = strings.TrimSpace(lim.String())
	}
	return q, nil
}

func parseTariff(key string, v gjson.Result) (model.Tariff, bool) {
	cost := v.Get("cost")
	if !cost.IsObject() {
		cost = v
	}
	price, ok := decimalOf(first(cost, "totalCost", "total_cost"))
	if !ok {
		price, ok = decimalOf(first(cost, "shippingCost", "shipping_cost"))
	}
	if !ok {
		return model.Tariff{}, false
	}
	label := first(cost, "label", "name").String()
	if label == "" {
		label = first(v, "label", "name").String()
	}
	if label == "" {
		label = key
	}
	currency := first(cost, "currency").String()
	if currency == "" {
		currency = first(v, "currency").String()
	}
	if currency == "" {
		currency = "$"
	}
	days := first(v, "days", "delivery_days", "deliveryDays", "transit_time", "transitTime")
	if !days.Exists() {
		days = first(cost, "days", "delivery_days", "transit_time")
	}
	return model.Tariff{
		Key:      key,
		Label:    strings.TrimSpace(label),
		Price:    price,
		Currency: strings.TrimSpace(currency),
		Days:     strings.TrimSpace(days.String()),
	}, true
}

func first(v gjson.Result, paths ...string) gjson.Result {
	for _, p := range paths {
		if r := v.Get(p); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

func decimalOf(r gjson.Result) (decimal.Decimal, bool) {
	var s string
	switch r.Type {
	case gjson.Number:
		s = r.Raw
	case gjson.String:
		s = strings.ReplaceAll(strings.TrimSpace(r.String()), ",", ".")
	default:
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	return d, true
}
