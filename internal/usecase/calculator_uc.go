// File: internal/usecase/calculator_uc.go
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/looplab/fsm"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"qwintry-bot/internal/domain"
	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/domain/ports/repository"
	"qwintry-bot/internal/infra/metrics"
)

// Compile-time check
var _ CalculatorUseCase = (*calculatorUC)(nil)

// CalculatorUseCase drives the warehouse → country → city → weight form.
type CalculatorUseCase interface {
	Start(ctx context.Context, chatID int64) (*CalcOutcome, error)
	// HandleInput feeds free text to the current step. It returns
	// domain.ErrSessionNotFound when the chat has no form in progress.
	HandleInput(ctx context.Context, chatID int64, text string) (*CalcOutcome, error)
	SelectWarehouse(ctx context.Context, chatID int64, code string) (*CalcOutcome, error)
	SelectCountry(ctx context.Context, chatID int64, countryID string) (*CalcOutcome, error)
	SelectCity(ctx context.Context, chatID int64, cityID string) (*CalcOutcome, error)
	Cancel(ctx context.Context, chatID int64) (bool, error)
	Active(ctx context.Context, chatID int64) (bool, error)
	MaxWeight() string
}

// CalcOutcome describes what one input did to the form.
type CalcOutcome struct {
	State    *model.ConversationState
	Advanced bool
	// Reason is the validation error when the input was rejected.
	Reason error
	// Finished is set once the weight was accepted and the state removed.
	Finished bool
	Quote    *model.Quote
	QuoteErr error
}

type CalculatorSettings struct {
	MaxWeight  decimal.Decimal
	Dimensions model.Dimensions
}

const (
	evWarehouse = "select_warehouse"
	evCountry   = "select_country"
	evCity      = "select_city"
	evWeight    = "enter_weight"

	stateDone = "done"
)

var calcEvents = fsm.Events{
	{Name: evWarehouse, Src: []string{string(model.StepAwaitingWarehouse)}, Dst: string(model.StepAwaitingCountry)},
	{Name: evCountry, Src: []string{string(model.StepAwaitingCountry)}, Dst: string(model.StepAwaitingCity)},
	{Name: evCity, Src: []string{string(model.StepAwaitingCity)}, Dst: string(model.StepAwaitingWeight)},
	{Name: evWeight, Src: []string{string(model.StepAwaitingWeight)}, Dst: stateDone},
}

type calculatorUC struct {
	states   repository.StateRepository
	catalog  CatalogUseCase
	shipping adapter.ShippingCalculator
	settings CalculatorSettings
	log      *zerolog.Logger
	now      func() time.Time
}

func NewCalculatorUseCase(
	states repository.StateRepository,
	catalog CatalogUseCase,
	shipping adapter.ShippingCalculator,
	settings CalculatorSettings,
	logger *zerolog.Logger,
) *calculatorUC {
	return &calculatorUC{
		states:   states,
		catalog:  catalog,
		shipping: shipping,
		settings: settings,
		log:      logger,
		now:      time.Now,
	}
}

func (c *calculatorUC) MaxWeight() string { return c.settings.MaxWeight.String() }

// Start always begins a fresh form, discarding any partial answers.
func (c *calculatorUC) Start(ctx context.Context, chatID int64) (*CalcOutcome, error) {
	st := model.NewConversationState(chatID, c.now())
	if err := c.states.SetState(ctx, chatID, st); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return &CalcOutcome{State: st, Advanced: true}, nil
}

func (c *calculatorUC) HandleInput(ctx context.Context, chatID int64, text string) (*CalcOutcome, error) {
	st, err := c.states.GetState(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !st.Consistent() {
		return nil, c.drop(ctx, chatID, st.Step)
	}

	switch st.Step {
	case model.StepAwaitingWarehouse:
		w, err := c.catalog.ResolveWarehouse(text)
		if err != nil {
			return c.reprompt(st, err), nil
		}
		st.Warehouse = w
		return c.advance(ctx, st, evWarehouse)

	case model.StepAwaitingCountry:
		ct, err := c.catalog.ResolveCountry(ctx, text)
		if err != nil {
			return c.reprompt(st, err), nil
		}
		st.Country = ct
		return c.advance(ctx, st, evCountry)

	case model.StepAwaitingCity:
		city, err := c.catalog.ResolveCity(ctx, st.Country.ID, text)
		if err != nil {
			return c.reprompt(st, err), nil
		}
		st.City = city
		return c.advance(ctx, st, evCity)

	case model.StepAwaitingWeight:
		return c.acceptWeight(ctx, st, text)
	}

	return nil, c.drop(ctx, chatID, st.Step)
}

// drop discards a state that cannot be continued; the chat behaves as if it
// had no form.
func (c *calculatorUC) drop(ctx context.Context, chatID int64, step model.Step) error {
	c.log.Warn().Int64("chat_id", chatID).Str("step", string(step)).Msg("dropping unusable state")
	_ = c.states.ClearState(ctx, chatID)
	return domain.ErrSessionNotFound
}

// SelectWarehouse starts a new form with the warehouse already chosen.
func (c *calculatorUC) SelectWarehouse(ctx context.Context, chatID int64, code string) (*CalcOutcome, error) {
	w, err := c.catalog.ResolveWarehouse(code)
	if err != nil {
		return nil, err
	}
	st := model.NewConversationState(chatID, c.now())
	st.Warehouse = w
	return c.advance(ctx, st, evWarehouse)
}

func (c *calculatorUC) SelectCountry(ctx context.Context, chatID int64, countryID string) (*CalcOutcome, error) {
	st, err := c.stateAt(ctx, chatID, model.StepAwaitingCountry)
	if err != nil {
		return nil, err
	}
	ct, err := c.catalog.CountryByID(ctx, countryID)
	if err != nil {
		return c.reprompt(st, err), nil
	}
	st.Country = ct
	return c.advance(ctx, st, evCountry)
}

func (c *calculatorUC) SelectCity(ctx context.Context, chatID int64, cityID string) (*CalcOutcome, error) {
	st, err := c.stateAt(ctx, chatID, model.StepAwaitingCity)
	if err != nil {
		return nil, err
	}
	city, err := c.catalog.CityByID(ctx, st.Country.ID, cityID)
	if err != nil {
		return c.reprompt(st, err), nil
	}
	st.City = city
	return c.advance(ctx, st, evCity)
}

func (c *calculatorUC) Cancel(ctx context.Context, chatID int64) (bool, error) {
	active, err := c.Active(ctx, chatID)
	if err != nil || !active {
		return false, err
	}
	return true, c.states.ClearState(ctx, chatID)
}

func (c *calculatorUC) Active(ctx context.Context, chatID int64) (bool, error) {
	_, err := c.states.GetState(ctx, chatID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *calculatorUC) stateAt(ctx context.Context, chatID int64, step model.Step) (*model.ConversationState, error) {
	st, err := c.states.GetState(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !st.Consistent() {
		return nil, c.drop(ctx, chatID, st.Step)
	}
	if st.Step != step {
		return nil, domain.ErrWrongStep
	}
	return st, nil
}

func (c *calculatorUC) acceptWeight(ctx context.Context, st *model.ConversationState, text string) (*CalcOutcome, error) {
	w, err := ParseWeight(text, c.settings.MaxWeight)
	if err != nil {
		return c.reprompt(st, err), nil
	}
	st.Weight = w.String()
	if err := c.fire(ctx, st, evWeight); err != nil {
		return nil, err
	}

	out := &CalcOutcome{State: st, Advanced: true, Finished: true}
	out.Quote, out.QuoteErr = c.quote(ctx, st)
	switch {
	case out.QuoteErr == nil:
		metrics.IncShippingQuote("ok")
	case errors.Is(out.QuoteErr, domain.ErrNoTariffs):
		metrics.IncShippingQuote("no_tariffs")
	default:
		metrics.IncShippingQuote("error")
	}
	if out.QuoteErr != nil {
		c.log.Warn().Err(out.QuoteErr).
			Int64("chat_id", st.ChatID).
			Str("hub", st.Warehouse.Hub).
			Str("country", st.Country.ID).
			Str("city", st.City.ID).
			Str("weight", st.Weight).
			Msg("shipping quote failed")
	}

	if err := c.states.ClearState(ctx, st.ChatID); err != nil {
		c.log.Error().Err(err).Int64("chat_id", st.ChatID).Msg("failed to clear finished state")
	}
	return out, nil
}

func (c *calculatorUC) quote(ctx context.Context, st *model.ConversationState) (*model.Quote, error) {
	if !st.Complete() {
		return nil, fmt.Errorf("incomplete form at %s", st.Step)
	}
	q, err := c.shipping.Calculate(ctx, model.ShipmentRequest{
		Hub:        st.Warehouse.Hub,
		CountryID:  st.Country.ID,
		CityID:     st.City.ID,
		Weight:     st.Weight,
		Dimensions: c.settings.Dimensions,
	})
	if err != nil {
		return nil, err
	}
	q.Only(st.Warehouse.Tariff)
	if len(q.Tariffs) == 0 {
		return nil, domain.ErrNoTariffs
	}
	q.SortByPrice()
	return q, nil
}

// advance fires event and persists the new step.
func (c *calculatorUC) advance(ctx context.Context, st *model.ConversationState, event string) (*CalcOutcome, error) {
	if err := c.fire(ctx, st, event); err != nil {
		return nil, err
	}
	if err := c.states.SetState(ctx, st.ChatID, st); err != nil {
		return nil, fmt.Errorf("save state: %w", err)
	}
	return &CalcOutcome{State: st, Advanced: true}, nil
}

func (c *calculatorUC) fire(ctx context.Context, st *model.ConversationState, event string) error {
	m := fsm.NewFSM(string(st.Step), calcEvents, fsm.Callbacks{
		"enter_state": func(_ context.Context, e *fsm.Event) {
			result := "advanced"
			if e.Dst == stateDone {
				result = "completed"
			}
			metrics.IncConversationStep(e.Src, result)
		},
	})
	if err := m.Event(ctx, event); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrWrongStep, err)
	}
	if m.Current() == stateDone {
		st.Step = model.StepNone
	} else {
		st.Step = model.Step(m.Current())
	}
	st.UpdatedAt = c.now()
	return nil
}

func (c *calculatorUC) reprompt(st *model.ConversationState, reason error) *CalcOutcome {
	metrics.IncConversationStep(string(st.Step), "reprompt")
	return &CalcOutcome{State: st, Reason: reason}
}
