package telegram

import (
	"context"
	"errors"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/infra/i18n"
	"qwintry-bot/internal/infra/logging"
	"qwintry-bot/internal/infra/metrics"
	red "qwintry-bot/internal/infra/redis"
	"qwintry-bot/internal/usecase"
)

const suggestionCount = 6

// RateChecker is satisfied by the redis fixed-window limiter.
type RateChecker interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Dispatcher routes one webhook update: commands and menu labels first,
// then an active calculator form, then callbacks, then the AI consultant.
type Dispatcher struct {
	bot        adapter.TelegramBotAdapter
	calc       usecase.CalculatorUseCase
	catalog    usecase.CatalogUseCase
	consultant usecase.ConsultantUseCase
	tr         *i18n.Translator
	limiter    RateChecker
	rateLimit  int
	log        *zerolog.Logger

	commands map[string]commandHandler
	labels   map[string]commandHandler
	exactCB  map[string]cbHandler
	prefixCB []prefixCB
}

type DispatcherDeps struct {
	Bot        adapter.TelegramBotAdapter
	Calculator usecase.CalculatorUseCase
	Catalog    usecase.CatalogUseCase
	Consultant usecase.ConsultantUseCase
	Translator *i18n.Translator
	// Limiter is optional; nil disables per-chat rate limiting.
	Limiter   RateChecker
	RateLimit int
	Logger    *zerolog.Logger
}

func NewDispatcher(deps DispatcherDeps) (*Dispatcher, error) {
	if deps.Bot == nil || deps.Calculator == nil || deps.Catalog == nil || deps.Consultant == nil {
		return nil, errors.New("dispatcher: missing dependency")
	}
	if deps.Translator == nil {
		return nil, errors.New("dispatcher: translator is nil")
	}
	l := deps.Logger.With().Str("component", "dispatcher").Logger()
	d := &Dispatcher{
		bot:        deps.Bot,
		calc:       deps.Calculator,
		catalog:    deps.Catalog,
		consultant: deps.Consultant,
		tr:         deps.Translator,
		limiter:    deps.Limiter,
		rateLimit:  deps.RateLimit,
		log:        &l,
	}
	d.commands = d.commandRoutes()
	d.labels = d.labelRoutes()
	d.exactCB = d.cbRoutes()
	d.prefixCB = d.cbPrefixRoutes()
	return d, nil
}

// HandleUpdate processes one update. Returned errors are for logging only;
// the webhook acknowledges every update regardless.
func (d *Dispatcher) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	defer logging.TraceDuration(d.log, "Dispatcher.HandleUpdate")()
	switch {
	case update.CallbackQuery != nil:
		return d.handleQuery(ctx, update.CallbackQuery)
	case update.Message != nil && update.Message.Chat != nil:
		return d.handleMessage(ctx, update.Message)
	default:
		metrics.IncTelegramUpdate("other", "ignored")
		return nil
	}
}

func (d *Dispatcher) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	chatID := msg.Chat.ID
	ctx = logging.WithChatID(ctx, chatID)
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		metrics.IncTelegramUpdate("message", "ignored")
		return nil
	}
	if !d.allow(ctx, chatID) {
		metrics.IncTelegramUpdate("message", "rate_limited")
		return d.send(ctx, chatID, d.tr.T("rate_limited"), nil)
	}

	if msg.IsCommand() {
		if h, ok := d.commands[msg.Command()]; ok {
			metrics.IncTelegramUpdate("message", "command")
			return h(ctx, chatID)
		}
	}
	if h, ok := d.labels[text]; ok {
		metrics.IncTelegramUpdate("message", "menu")
		return h(ctx, chatID)
	}

	out, err := d.calc.HandleInput(ctx, chatID, text)
	switch {
	case err == nil:
		metrics.IncTelegramUpdate("message", "calculator")
		return d.renderOutcome(ctx, chatID, out)
	case !errors.Is(err, domain.ErrSessionNotFound):
		logging.With(ctx, d.log).Error().Err(err).Msg("calculator input failed")
		metrics.IncTelegramUpdate("message", "calculator")
		return d.send(ctx, chatID, d.tr.T("error_generic"), nil)
	}

	metrics.IncTelegramUpdate("message", "ai")
	return d.askAI(ctx, chatID, text)
}

func (d *Dispatcher) handleQuery(ctx context.Context, q *tgbotapi.CallbackQuery) error {
	var chatID int64
	switch {
	case q.Message != nil && q.Message.Chat != nil:
		chatID = q.Message.Chat.ID
	case q.From != nil:
		chatID = q.From.ID
	}
	// stop the client spinner whatever happens next
	_ = d.bot.AnswerCallback(ctx, q.ID, "")
	if chatID == 0 {
		metrics.IncTelegramUpdate("callback", "ignored")
		return nil
	}
	ctx = logging.WithChatID(ctx, chatID)
	if !d.allow(ctx, chatID) {
		metrics.IncTelegramUpdate("callback", "rate_limited")
		return nil
	}

	data := strings.TrimSpace(q.Data)
	if fn, ok := d.exactCB[data]; ok {
		metrics.IncTelegramUpdate("callback", data)
		return fn(ctx, chatID, data)
	}
	for _, pr := range d.prefixCB {
		if strings.HasPrefix(data, pr.Prefix) {
			metrics.IncTelegramUpdate("callback", strings.TrimSuffix(pr.Prefix, "_"))
			return pr.Fn(ctx, chatID, strings.TrimPrefix(data, pr.Prefix))
		}
	}
	metrics.IncTelegramUpdate("callback", "unknown")
	logging.With(ctx, d.log).Debug().Str("data", data).Msg("unknown callback data")
	return nil
}

func (d *Dispatcher) allow(ctx context.Context, chatID int64) bool {
	if d.limiter == nil || d.rateLimit <= 0 {
		return true
	}
	ok, err := d.limiter.Allow(ctx, red.ChatKey(chatID), d.rateLimit, time.Minute)
	if err != nil {
		logging.With(ctx, d.log).Warn().Err(err).Msg("rate limiter unavailable")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}

func (d *Dispatcher) askAI(ctx context.Context, chatID int64, text string) error {
	reply, err := d.consultant.Ask(ctx, chatID, text)
	if err != nil {
		logging.With(ctx, d.log).Warn().Err(err).
			Str("question", logging.Redact(text, false)).
			Msg("ai consultant failed")
		return d.send(ctx, chatID, reply, nil)
	}
	return d.send(ctx, chatID, d.tr.T("ai_reply", reply), nil)
}

// renderOutcome turns a calculator step into the next prompt, a re-prompt,
// or the final quote.
func (d *Dispatcher) renderOutcome(ctx context.Context, chatID int64, out *usecase.CalcOutcome) error {
	st := out.State
	if out.Finished {
		if out.QuoteErr != nil || out.Quote == nil {
			return d.send(ctx, chatID, d.tr.T("quote_failed"), nil)
		}
		return d.send(ctx, chatID, FormatQuote(d.tr, st, out.Quote), nil)
	}
	if out.Reason != nil {
		return d.reprompt(ctx, chatID, st, out.Reason)
	}
	return d.prompt(ctx, chatID, st)
}

func (d *Dispatcher) prompt(ctx context.Context, chatID int64, st *model.ConversationState) error {
	switch st.Step {
	case model.StepAwaitingWarehouse:
		ws := d.catalog.Warehouses()
		return d.send(ctx, chatID, d.tr.T("calc_choose_warehouse", warehouseList(d.tr, ws)), warehouseKeyboard(d.tr, ws))

	case model.StepAwaitingCountry:
		cs := d.catalog.SuggestCountries(suggestionCount)
		text := d.tr.T("calc_enter_country", md(st.Warehouse.Name), countryNames(cs))
		if st.Warehouse.Tariff != "" {
			text = d.tr.T("calc_eu_tariff_note") + "\n\n" + text
		}
		return d.send(ctx, chatID, text, countryKeyboard(d.tr, cs))

	case model.StepAwaitingCity:
		cs := d.catalog.SuggestCities(st.Country.ID, suggestionCount)
		return d.send(ctx, chatID, d.tr.T("calc_enter_city", md(st.Country.Name), cityNames(cs)), cityKeyboard(d.tr, cs))

	case model.StepAwaitingWeight:
		return d.send(ctx, chatID, d.tr.T("calc_enter_weight", md(st.City.Name), d.calc.MaxWeight()), cancelKeyboard(d.tr))
	}
	return nil
}

func (d *Dispatcher) reprompt(ctx context.Context, chatID int64, st *model.ConversationState, reason error) error {
	switch st.Step {
	case model.StepAwaitingWarehouse:
		ws := d.catalog.Warehouses()
		return d.send(ctx, chatID, d.tr.T("calc_warehouse_invalid", len(ws)), warehouseKeyboard(d.tr, ws))

	case model.StepAwaitingCountry:
		cs := d.catalog.SuggestCountries(suggestionCount)
		return d.send(ctx, chatID, d.tr.T("calc_country_invalid", countryNames(cs)), countryKeyboard(d.tr, cs))

	case model.StepAwaitingCity:
		cs := d.catalog.SuggestCities(st.Country.ID, suggestionCount)
		return d.send(ctx, chatID, d.tr.T("calc_city_invalid", cityNames(cs)), cityKeyboard(d.tr, cs))

	case model.StepAwaitingWeight:
		if errors.Is(reason, domain.ErrWeightOutOfRange) {
			return d.send(ctx, chatID, d.tr.T("calc_weight_range", d.calc.MaxWeight()), cancelKeyboard(d.tr))
		}
		return d.send(ctx, chatID, d.tr.T("calc_weight_invalid"), cancelKeyboard(d.tr))
	}
	return nil
}

// send delivers text; transport failures are logged by the adapter and
// never abort handling.
func (d *Dispatcher) send(ctx context.Context, chatID int64, text string, markup *adapter.ReplyMarkup) error {
	err := d.bot.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text, ReplyMarkup: markup})
	if err != nil {
		logging.With(ctx, d.log).Debug().Err(err).Msg("message not delivered")
	}
	return nil
}
