package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ftahirops/xtimeline/util"
)

// RawRecord is one interval as delivered by a producer, before
// classification. Locator and message may each arrive as a plain string or
// as a structured object; the temp* fields of older producers take
// precedence when present.
type RawRecord struct {
	Source  string
	Locator Locator
	Message Message
	Text    string
	From    string
	To      string
}

type rawRecordJSON struct {
	Source                string          `json:"source"`
	TempSource            string          `json:"tempSource"`
	Locator               json.RawMessage `json:"locator"`
	TempStructuredLocator json.RawMessage `json:"tempStructuredLocator"`
	Message               json.RawMessage `json:"message"`
	TempStructuredMessage json.RawMessage `json:"tempStructuredMessage"`
	From                  string          `json:"from"`
	To                    string          `json:"to"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *RawRecord) UnmarshalJSON(data []byte) error {
	var aux rawRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*r = RawRecord{Source: aux.Source, From: aux.From, To: aux.To}
	if aux.TempSource != "" {
		r.Source = aux.TempSource
	}

	if err := r.decodeLocator(aux.Locator); err != nil {
		return fmt.Errorf("locator: %w", err)
	}
	if err := r.decodeLocator(aux.TempStructuredLocator); err != nil {
		return fmt.Errorf("tempStructuredLocator: %w", err)
	}
	if err := r.decodeMessage(aux.Message); err != nil {
		return fmt.Errorf("message: %w", err)
	}
	if err := r.decodeMessage(aux.TempStructuredMessage); err != nil {
		return fmt.Errorf("tempStructuredMessage: %w", err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func isString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func (r *RawRecord) decodeLocator(raw json.RawMessage) error {
	if isNull(raw) {
		return nil
	}
	if isString(raw) {
		return json.Unmarshal(raw, &r.Locator.Raw)
	}
	var s struct {
		Type string            `json:"type"`
		Keys map[string]string `json:"keys"`
	}
	if err := json.Unmarshal(raw, &s); err != nil {
		return err
	}
	if s.Type != "" {
		r.Locator.Type = s.Type
	}
	if len(s.Keys) > 0 {
		r.Locator.Keys = s.Keys
	}
	return nil
}

func (r *RawRecord) decodeMessage(raw json.RawMessage) error {
	if isNull(raw) {
		return nil
	}
	if isString(raw) {
		return json.Unmarshal(raw, &r.Text)
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	if m.Reason != "" {
		r.Message.Reason = m.Reason
	}
	if m.Cause != "" {
		r.Message.Cause = m.Cause
	}
	if m.HumanMessage != "" {
		r.Message.HumanMessage = m.HumanMessage
	}
	if len(m.Annotations) > 0 {
		r.Message.Annotations = m.Annotations
	}
	return nil
}

// ToInterval parses timestamps and returns an unclassified interval.
// A missing or unparseable "from" yields a *MalformedRecordError; a missing
// "to" defaults to "from". An empty message reason falls back to the
// "reason" annotation.
func (r *RawRecord) ToInterval(index int) (*Interval, error) {
	if r.From == "" {
		return nil, &MalformedRecordError{Index: index, Reason: "missing from"}
	}
	from, err := util.ParseTime(r.From)
	if err != nil {
		return nil, &MalformedRecordError{Index: index, Reason: err.Error()}
	}
	to := from
	if r.To != "" {
		if to, err = util.ParseTime(r.To); err != nil {
			return nil, &MalformedRecordError{Index: index, Reason: "to: " + err.Error()}
		}
	}

	msg := r.Message
	if msg.Reason == "" {
		msg.Reason = msg.Annotations["reason"]
	}
	return &Interval{
		Source:  r.Source,
		Locator: r.Locator,
		Message: msg,
		Text:    r.Text,
		From:    from,
		To:      to,
	}, nil
}
