package ai

import (
	"strings"

	"github.com/tidwall/gjson"
)

// ExtractionRule pulls a candidate reply out of a parsed response body.
type ExtractionRule struct {
	Name    string
	Extract func(body gjson.Result) (string, bool)
}

// DefaultRules is the priority order used for Abacus responses.
var DefaultRules = []ExtractionRule{
	stringAt("responseText"),
	stringAt("text"),
	stringAt("response"),
	stringAt("message"),
	stringAt("choices.0.message.content"),
	{Name: "result.messages", Extract: lastAssistantMessage},
	stringAt("result.text"),
}

func stringAt(path string) ExtractionRule {
	return ExtractionRule{
		Name: path,
		Extract: func(body gjson.Result) (string, bool) {
			v := body.Get(path)
			if v.Type != gjson.String {
				return "", false
			}
			s := strings.TrimSpace(v.String())
			return s, s != ""
		},
	}
}

// lastAssistantMessage picks the newest entry of result.messages with is_user false.
func lastAssistantMessage(body gjson.Result) (string, bool) {
	msgs := body.Get("result.messages").Array()
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		isUser := m.Get("is_user")
		if !isUser.Exists() || isUser.Type != gjson.False {
			continue
		}
		text := m.Get("text")
		if text.Type != gjson.String {
			continue
		}
		if s := strings.TrimSpace(text.String()); s != "" {
			return s, true
		}
	}
	return "", false
}

// ExtractReply applies rules in order and returns the first non-blank string
// with the name of the rule that produced it. Invalid JSON yields "".
func ExtractReply(raw []byte, rules []ExtractionRule) (string, string) {
	if !gjson.ValidBytes(raw) {
		return "", ""
	}
	body := gjson.ParseBytes(raw)
	for _, r := range rules {
		if s, ok := r.Extract(body); ok {
			return s, r.Name
		}
	}
	return "", ""
}
