package telegram

import (
	"context"

	"qwintry-bot/internal/infra/logging"
)

type commandHandler func(ctx context.Context, chatID int64) error

// commandRoutes maps slash commands (without the slash) to handlers.
func (d *Dispatcher) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start":     d.handleStart,
		"menu":      d.handleMenu,
		"help":      d.handleHelp,
		"calc":      d.handleCalc,
		"cancel":    d.handleCancel,
		"clear":     d.handleClear,
		"faq":       d.handleFAQ,
		"discounts": d.handleDiscounts,
	}
}

// labelRoutes maps reply-keyboard labels, matched exactly.
func (d *Dispatcher) labelRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		d.tr.T("btn_calc"):      d.handleCalc,
		d.tr.T("btn_ai"):        d.handleAIIntro,
		d.tr.T("btn_discounts"): d.handleDiscounts,
		d.tr.T("btn_faq"):       d.handleFAQ,
		d.tr.T("btn_help"):      d.handleHelp,
		d.tr.T("btn_main_menu"): d.handleMenu,
		d.tr.T("btn_back"):      d.handleMenu,
		d.tr.T("btn_cancel"):    d.handleCancel,
	}
}

func (d *Dispatcher) handleStart(ctx context.Context, chatID int64) error {
	d.abortForm(ctx, chatID)
	return d.send(ctx, chatID, d.tr.T("welcome_message"), mainMenuInline(d.tr))
}

func (d *Dispatcher) handleMenu(ctx context.Context, chatID int64) error {
	d.abortForm(ctx, chatID)
	return d.send(ctx, chatID, d.tr.T("menu_prompt"), mainMenuInline(d.tr))
}

func (d *Dispatcher) handleHelp(ctx context.Context, chatID int64) error {
	return d.send(ctx, chatID, d.tr.T("help_text"), nil)
}

func (d *Dispatcher) handleFAQ(ctx context.Context, chatID int64) error {
	return d.send(ctx, chatID, d.tr.T("faq_text"), backKeyboard(d.tr))
}

func (d *Dispatcher) handleDiscounts(ctx context.Context, chatID int64) error {
	return d.send(ctx, chatID, d.tr.T("discounts_text"), backKeyboard(d.tr))
}

// handleCalc always restarts the form.
func (d *Dispatcher) handleCalc(ctx context.Context, chatID int64) error {
	out, err := d.calc.Start(ctx, chatID)
	if err != nil {
		logging.With(ctx, d.log).Error().Err(err).Msg("failed to start calculator")
		return d.send(ctx, chatID, d.tr.T("error_generic"), nil)
	}
	return d.renderOutcome(ctx, chatID, out)
}

func (d *Dispatcher) handleCancel(ctx context.Context, chatID int64) error {
	cancelled, err := d.calc.Cancel(ctx, chatID)
	if err != nil {
		logging.With(ctx, d.log).Error().Err(err).Msg("failed to cancel calculator")
		return d.send(ctx, chatID, d.tr.T("error_generic"), nil)
	}
	if !cancelled {
		return d.send(ctx, chatID, d.tr.T("calc_not_active"), nil)
	}
	return d.send(ctx, chatID, d.tr.T("calc_cancelled"), nil)
}

func (d *Dispatcher) handleClear(ctx context.Context, chatID int64) error {
	if err := d.consultant.ClearHistory(ctx, chatID); err != nil {
		logging.With(ctx, d.log).Error().Err(err).Msg("failed to clear ai history")
		return d.send(ctx, chatID, d.tr.T("error_generic"), nil)
	}
	return d.send(ctx, chatID, d.tr.T("ai_history_cleared"), nil)
}

func (d *Dispatcher) handleAIIntro(ctx context.Context, chatID int64) error {
	d.abortForm(ctx, chatID)
	return d.send(ctx, chatID, d.tr.T("ai_intro"), nil)
}

// abortForm drops a form in progress without telling the user.
func (d *Dispatcher) abortForm(ctx context.Context, chatID int64) {
	if _, err := d.calc.Cancel(ctx, chatID); err != nil {
		logging.With(ctx, d.log).Warn().Err(err).Msg("failed to drop calculator state")
	}
}
