package domain

import (
	"encoding/json"
	"fmt"
)

// Label is the categorical sentiment outcome. Values are only produced by
// ParseLabel (JSON decoding goes through it too), so switches over a Label
// cover exactly the three known cases; there is no silent fallback for an
// unrecognized string.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

func ParseLabel(s string) (Label, error) {
	switch Label(s) {
	case LabelPositive, LabelNeutral, LabelNegative:
		return Label(s), nil
	}
	return "", fmt.Errorf("unknown sentiment label %q", s)
}

func (l *Label) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseLabel(s)
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Icon names the glyph a consumer renders for the label.
func (l Label) Icon() string {
	switch l {
	case LabelPositive:
		return "thumbs-up"
	case LabelNeutral:
		return "dash"
	case LabelNegative:
		return "thumbs-down"
	}
	return "" // unreachable for parsed labels
}

func (l Label) Color() string {
	switch l {
	case LabelPositive:
		return "green"
	case LabelNeutral:
		return "gray"
	case LabelNegative:
		return "red"
	}
	return ""
}
