package telegram

import (
	"context"
	"errors"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/infra/logging"
	"qwintry-bot/internal/usecase"
)

type cbHandler func(ctx context.Context, chatID int64, data string) error

type prefixCB struct {
	Prefix string
	Fn     cbHandler
}

// Exact-match callbacks
func (d *Dispatcher) cbRoutes() map[string]cbHandler {
	wrap := func(h commandHandler) cbHandler {
		return func(ctx context.Context, chatID int64, _ string) error { return h(ctx, chatID) }
	}
	return map[string]cbHandler{
		cbCalc:       wrap(d.handleCalc),
		cbAI:         wrap(d.handleAIIntro),
		cbAIConsult:  wrap(d.handleAIIntro),
		cbDiscounts:  wrap(d.handleDiscounts),
		cbFAQ:        wrap(d.handleFAQ),
		cbBackMenu:   wrap(d.handleMenu),
		cbBackToMenu: wrap(d.handleMenu),
		cbCancelCalc: wrap(d.handleCancel),
	}
}

// Prefix-match callbacks; handlers receive the data with the prefix removed.
func (d *Dispatcher) cbPrefixRoutes() []prefixCB {
	return []prefixCB{
		{Prefix: cbPrefixCalc, Fn: d.cbWarehouse},
		{Prefix: cbPrefixWH, Fn: d.cbWarehouse},
		{Prefix: cbPrefixCntry, Fn: d.cbCountry},
		{Prefix: cbPrefixCity, Fn: d.cbCity},
	}
}

// cbWarehouse starts a fresh form with the warehouse already chosen; an
// unknown code falls back to the warehouse prompt.
func (d *Dispatcher) cbWarehouse(ctx context.Context, chatID int64, code string) error {
	out, err := d.calc.SelectWarehouse(ctx, chatID, code)
	if errors.Is(err, domain.ErrUnknownWarehouse) {
		return d.handleCalc(ctx, chatID)
	}
	if err != nil {
		logging.With(ctx, d.log).Error().Err(err).Str("warehouse", code).Msg("warehouse selection failed")
		return d.send(ctx, chatID, d.tr.T("error_generic"), nil)
	}
	return d.renderOutcome(ctx, chatID, out)
}

func (d *Dispatcher) cbCountry(ctx context.Context, chatID int64, id string) error {
	out, err := d.calc.SelectCountry(ctx, chatID, id)
	return d.afterSelect(ctx, chatID, out, err)
}

func (d *Dispatcher) cbCity(ctx context.Context, chatID int64, id string) error {
	out, err := d.calc.SelectCity(ctx, chatID, id)
	return d.afterSelect(ctx, chatID, out, err)
}

// afterSelect handles stale buttons: pressing a country or city outside its
// step only shows a hint and leaves the form untouched.
func (d *Dispatcher) afterSelect(ctx context.Context, chatID int64, out *usecase.CalcOutcome, err error) error {
	switch {
	case err == nil:
		return d.renderOutcome(ctx, chatID, out)
	case errors.Is(err, domain.ErrWrongStep), errors.Is(err, domain.ErrSessionNotFound):
		return d.send(ctx, chatID, d.tr.T("calc_button_inactive"), nil)
	default:
		logging.With(ctx, d.log).Error().Err(err).Msg("calculator selection failed")
		return d.send(ctx, chatID, d.tr.T("error_generic"), nil)
	}
}
