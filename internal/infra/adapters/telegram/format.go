package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"qwintry-bot/internal/domain/model"
	"qwintry-bot/internal/domain/ports/adapter"
	"qwintry-bot/internal/infra/i18n"
)

const (
	cbCalc        = "calc"
	cbAI          = "ai"
	cbAIConsult   = "ai_consultant"
	cbDiscounts   = "discounts"
	cbFAQ         = "faq"
	cbBackMenu    = "back_menu"
	cbBackToMenu  = "back_to_menu"
	cbCancelCalc  = "cancel_calc"
	cbPrefixCalc  = "calc_"
	cbPrefixWH    = "warehouse_"
	cbPrefixCntry = "country_"
	cbPrefixCity  = "city_"
)

// md escapes user or upstream text for legacy Markdown.
func md(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeMarkdown, s)
}

// MainReplyKeyboard is the persistent keyboard attached to plain messages.
// Its labels are recognised as commands by the dispatcher.
func MainReplyKeyboard(tr *i18n.Translator) *adapter.ReplyMarkup {
	return &adapter.ReplyMarkup{Buttons: [][]adapter.Button{
		{{Text: tr.T("btn_calc")}, {Text: tr.T("btn_ai")}},
		{{Text: tr.T("btn_discounts")}, {Text: tr.T("btn_faq")}},
		{{Text: tr.T("btn_main_menu")}},
	}}
}

func mainMenuInline(tr *i18n.Translator) *adapter.ReplyMarkup {
	return &adapter.ReplyMarkup{IsInline: true, Buttons: [][]adapter.Button{
		{{Text: tr.T("btn_calc"), Data: cbCalc}},
		{{Text: tr.T("btn_ai"), Data: cbAIConsult}},
		{{Text: tr.T("btn_discounts"), Data: cbDiscounts}},
		{{Text: tr.T("btn_faq"), Data: cbFAQ}},
	}}
}

func backKeyboard(tr *i18n.Translator) *adapter.ReplyMarkup {
	return &adapter.ReplyMarkup{IsInline: true, Buttons: [][]adapter.Button{
		{{Text: tr.T("btn_back"), Data: cbBackToMenu}},
	}}
}

func cancelKeyboard(tr *i18n.Translator) *adapter.ReplyMarkup {
	return &adapter.ReplyMarkup{IsInline: true, Buttons: [][]adapter.Button{
		{{Text: tr.T("btn_cancel"), Data: cbCancelCalc}},
	}}
}

// warehouseKeyboard puts one warehouse per row.
func warehouseKeyboard(tr *i18n.Translator, ws []model.Warehouse) *adapter.ReplyMarkup {
	rows := make([][]adapter.Button, 0, len(ws)+1)
	for _, w := range ws {
		rows = append(rows, []adapter.Button{{Text: w.Name, Data: cbPrefixCalc + w.Code}})
	}
	rows = append(rows, []adapter.Button{{Text: tr.T("btn_back"), Data: cbBackToMenu}})
	return &adapter.ReplyMarkup{IsInline: true, Buttons: rows}
}

func countryKeyboard(tr *i18n.Translator, cs []model.Country) *adapter.ReplyMarkup {
	btns := make([]adapter.Button, 0, len(cs))
	for _, c := range cs {
		btns = append(btns, adapter.Button{Text: c.Name, Data: cbPrefixCntry + c.ID})
	}
	return pairs(tr, btns)
}

func cityKeyboard(tr *i18n.Translator, cs []model.City) *adapter.ReplyMarkup {
	btns := make([]adapter.Button, 0, len(cs))
	for _, c := range cs {
		btns = append(btns, adapter.Button{Text: c.Name, Data: cbPrefixCity + c.ID})
	}
	return pairs(tr, btns)
}

// pairs lays buttons out two per row and appends the cancel row.
func pairs(tr *i18n.Translator, btns []adapter.Button) *adapter.ReplyMarkup {
	rows := make([][]adapter.Button, 0, len(btns)/2+2)
	for i := 0; i < len(btns); i += 2 {
		end := i + 2
		if end > len(btns) {
			end = len(btns)
		}
		rows = append(rows, btns[i:end])
	}
	rows = append(rows, []adapter.Button{{Text: tr.T("btn_cancel"), Data: cbCancelCalc}})
	return &adapter.ReplyMarkup{IsInline: true, Buttons: rows}
}

func warehouseList(tr *i18n.Translator, ws []model.Warehouse) string {
	lines := make([]string, 0, len(ws))
	for _, w := range ws {
		lines = append(lines, tr.T("calc_warehouse_line", w.Index, w.Name))
	}
	return strings.Join(lines, "\n")
}

func countryNames(cs []model.Country) string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, md(c.Name))
	}
	return strings.Join(names, ", ")
}

func cityNames(cs []model.City) string {
	names := make([]string, 0, len(cs))
	for _, c := range cs {
		names = append(names, md(c.Name))
	}
	return strings.Join(names, ", ")
}

// FormatQuote renders a finished calculation: one line per tariff in the
// order given, then the customs limit when known.
func FormatQuote(tr *i18n.Translator, st *model.ConversationState, q *model.Quote) string {
	var from, country, city string
	if st.Warehouse != nil {
		from = st.Warehouse.Name
	}
	if st.Country != nil {
		country = st.Country.Name
	}
	if st.City != nil {
		city = st.City.Name
	}

	var b strings.Builder
	b.WriteString(tr.T("quote_header", md(from), md(country), md(city), st.Weight))
	for _, t := range q.Tariffs {
		b.WriteString("\n")
		price := t.Price.StringFixed(2)
		if t.Days != "" {
			b.WriteString(tr.T("quote_line", md(t.Label), price, md(t.Currency), md(t.Days)))
		} else {
			b.WriteString(tr.T("quote_line_no_days", md(t.Label), price, md(t.Currency)))
		}
	}
	if q.CustomsLimit != "" {
		b.WriteString("\n")
		b.WriteString(tr.T("quote_customs", md(q.CustomsLimit)))
	}
	return b.String()
}
