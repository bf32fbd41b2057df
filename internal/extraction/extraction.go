// Package extraction turns free text ("2 cartons of milk and some apples")
// into item drafts by asking an external language model.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"

	"pantry/internal/model"
)

const (
	MinQuantity   = 1
	MaxQuantity   = 10000
	MaxOffsetDays = 3650
)

var (
	// ErrNotConfigured is returned when no model credentials are available.
	ErrNotConfigured = errors.New("extraction not configured")
	// ErrMalformedResponse is returned when the model output is not a JSON array.
	ErrMalformedResponse = errors.New("malformed extraction response")
)

// Extractor proposes item drafts for a piece of free text.
type Extractor interface {
	Extract(ctx context.Context, text string) ([]model.ItemDraft, error)
}

// Disabled is the Extractor used when no model is configured.
type Disabled struct{}

func (Disabled) Extract(context.Context, string) ([]model.ItemDraft, error) {
	return nil, ErrNotConfigured
}

type rawDraft struct {
	Name                 string   `json:"name"`
	Category             string   `json:"category"`
	Quantity             *float64 `json:"quantity"`
	ExpiryDateOffsetDays *float64 `json:"expiryDateOffsetDays"`
}

// Decode validates a model response. Entries that cannot become a sane draft
// are dropped one by one; only a response that is not a JSON array at all is
// an error.
func Decode(raw []byte) ([]model.ItemDraft, error) {
	raw = stripFences(raw)

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, errors.Join(ErrMalformedResponse, err)
	}

	drafts := make([]model.ItemDraft, 0, len(entries))
	for _, e := range entries {
		var r rawDraft
		if err := json.Unmarshal(e, &r); err != nil {
			continue
		}
		if d, ok := r.draft(); ok {
			drafts = append(drafts, d)
		}
	}
	return drafts, nil
}

func (r rawDraft) draft() (model.ItemDraft, bool) {
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return model.ItemDraft{}, false
	}

	cat, ok := model.ParseCategory(r.Category)
	if !ok {
		cat = model.CategoryOther
	}

	qty := 1.0
	if r.Quantity != nil && *r.Quantity != 0 {
		qty = math.Round(*r.Quantity)
	}
	if qty < MinQuantity || qty > MaxQuantity {
		return model.ItemDraft{}, false
	}

	if r.ExpiryDateOffsetDays == nil {
		return model.ItemDraft{}, false
	}
	off := math.Round(*r.ExpiryDateOffsetDays)
	if math.IsNaN(off) || off < -MaxOffsetDays || off > MaxOffsetDays {
		return model.ItemDraft{}, false
	}

	return model.ItemDraft{
		Name:             name,
		Category:         cat,
		Quantity:         int(qty),
		ExpiryOffsetDays: int(off),
	}, true
}

func stripFences(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if !bytes.HasPrefix(raw, []byte("```")) {
		return raw
	}
	raw = raw[3:]
	if i := bytes.IndexByte(raw, '\n'); i >= 0 {
		raw = raw[i+1:]
	} else {
		raw = bytes.TrimPrefix(raw, []byte("json"))
	}
	raw = bytes.TrimSpace(raw)
	raw = bytes.TrimSuffix(raw, []byte("```"))
	return bytes.TrimSpace(raw)
}
