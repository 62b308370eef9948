package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// TextKind tells how a loosely-typed display field arrived from the backend.
type TextKind uint8

const (
	TextEmpty TextKind = iota
	TextPlain
	TextStructured
)

// Text is a display string that the backend may send either as a scalar or
// as a nested object carrying name/label/title.
type Text struct {
	Kind  TextKind
	Plain string
	Name  string
	Label string
	Title string
	// Raw is the compact JSON of a structured value, used as the last fallback.
	Raw string
}

// PlainText wraps s as a plain value.
func PlainText(s string) Text {
	if s == "" {
		return Text{}
	}
	return Text{Kind: TextPlain, Plain: s}
}

// String normalizes t into a single display string.
func (t Text) String() string {
	switch t.Kind {
	case TextPlain:
		return t.Plain
	case TextStructured:
		for _, s := range []string{t.Name, t.Label, t.Title} {
			if s != "" {
				return s
			}
		}
		return t.Raw
	default:
		return ""
	}
}

// IsZero reports whether t normalizes to the empty string.
func (t Text) IsZero() bool {
	return t.String() == ""
}

// TextOf classifies a decoded JSON value.
func TextOf(v any) Text {
	switch x := v.(type) {
	case nil:
		return Text{}
	case string:
		return PlainText(x)
	case bool:
		return Text{Kind: TextPlain, Plain: strconv.FormatBool(x)}
	case float64:
		return Text{Kind: TextPlain, Plain: strconv.FormatFloat(x, 'f', -1, 64)}
	case json.Number:
		return Text{Kind: TextPlain, Plain: x.String()}
	case int:
		return Text{Kind: TextPlain, Plain: strconv.Itoa(x)}
	case map[string]any:
		raw, _ := json.Marshal(x)
		return Text{
			Kind:  TextStructured,
			Name:  TextOf(x["name"]).String(),
			Label: TextOf(x["label"]).String(),
			Title: TextOf(x["title"]).String(),
			Raw:   string(raw),
		}
	default:
		raw, _ := json.Marshal(x)
		return Text{Kind: TextStructured, Raw: string(raw)}
	}
}

// UnmarshalJSON accepts any JSON value.
func (t *Text) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	*t = TextOf(v)
	return nil
}

// MarshalJSON writes the normalized string.
func (t Text) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}
