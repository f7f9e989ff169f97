package extractor

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/Houeta/gold-flow/internal/models"
)

const liveLabel = "Live price"

// stateKeys are the field names framework state blobs use for the live quote.
var stateKeys = []string{"currentPrice", "current_price", "goldPrice"}

var (
	reSellToken = regexp.MustCompile(`"sell"\s*:\s*"?(\d+)`)
	reBuyToken  = regexp.MustCompile(`"buy"\s*:\s*"?(\d+)`)

	escapeRepair = strings.NewReplacer(`\\\"`, `"`, `\"`, `"`, `\/`, `/`)

	errUnbalanced = errors.New("unbalanced object")
)

// EmbeddedState reads the live buy/sell quote from JSON state embedded in scripts.
type EmbeddedState struct{}

func NewEmbeddedState() *EmbeddedState {
	return &EmbeddedState{}
}

func (s *EmbeddedState) Origin() models.Origin {
	return models.OriginEmbedded
}

func (s *EmbeddedState) Extract(markup string) ([]models.Candidate, error) {
	src := markup
	if strings.Contains(src, `\"`) {
		src = escapeRepair.Replace(src)
	}

	var decodeErr error
	for _, key := range stateKeys {
		raw, found, err := objectAfterKey(src, key)
		if !found {
			continue
		}
		if err != nil {
			decodeErr = err
			continue
		}

		var obj map[string]any
		if err = json.Unmarshal([]byte(raw), &obj); err != nil {
			decodeErr = err
			continue
		}

		if c, ok := stateCandidate(obj); ok {
			return []models.Candidate{c}, nil
		}
	}

	if decodeErr == nil {
		return nil, nil
	}

	// The state object was there but could not be decoded: read the bare tokens.
	if c, ok := directFields(src); ok {
		return []models.Candidate{c}, nil
	}

	return nil, fmt.Errorf("%w: embedded state: %w", ErrStrategyParse, decodeErr)
}

// objectAfterKey returns the balanced {...} value that follows "key": in src.
func objectAfterKey(src, key string) (string, bool, error) {
	needle := `"` + key + `"`
	idx := strings.Index(src, needle)
	if idx < 0 {
		return "", false, nil
	}

	rest := strings.TrimLeft(src[idx+len(needle):], " \t\r\n")
	if !strings.HasPrefix(rest, ":") {
		return "", true, fmt.Errorf("key %q is not followed by a value", key)
	}

	rest = strings.TrimLeft(rest[1:], " \t\r\n")
	if !strings.HasPrefix(rest, "{") {
		return "", true, fmt.Errorf("key %q does not hold an object", key)
	}

	depth := 0
	inString := false
	for i := 0; i < len(rest); i++ {
		switch ch := rest[i]; {
		case inString && ch == '\\':
			i++
		case ch == '"':
			inString = !inString
		case !inString && ch == '{':
			depth++
		case !inString && ch == '}':
			depth--
			if depth == 0 {
				return rest[:i+1], true, nil
			}
		}
	}

	return "", true, fmt.Errorf("key %q: %w", key, errUnbalanced)
}

func stateCandidate(obj map[string]any) (models.Candidate, bool) {
	sell, ok := jsonInt(obj["sell"])
	if !ok {
		sell, ok = jsonInt(obj["mid"])
	}
	if !ok {
		return models.Candidate{}, false
	}

	c := models.Candidate{
		Label:     liveLabel,
		SellPrice: sell,
		Origin:    models.OriginEmbedded,
	}

	if buy, ok := jsonInt(obj["buy"]); ok {
		c.BuyPrice = &buy
	}

	for _, key := range []string{"weight", "gram"} {
		if w, ok := jsonWeight(obj[key]); ok {
			c.Weight = w
			c.Label = weightLabel(w)
			break
		}
	}

	for _, key := range []string{"updatedAt", "updated_at", "lastUpdate"} {
		if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
			c.UpdateTimeLabel = strings.TrimSpace(s)
			break
		}
	}

	return c, true
}

// directFields is the narrow fallback: isolated "sell":<int> and "buy":<int> tokens.
func directFields(src string) (models.Candidate, bool) {
	m := reSellToken.FindStringSubmatch(src)
	if m == nil {
		return models.Candidate{}, false
	}

	sell, ok := parseGrouped(m[1])
	if !ok {
		return models.Candidate{}, false
	}

	c := models.Candidate{
		Label:     liveLabel,
		SellPrice: sell,
		Origin:    models.OriginEmbedded,
	}

	if b := reBuyToken.FindStringSubmatch(src); b != nil {
		if buy, ok := parseGrouped(b[1]); ok {
			c.BuyPrice = &buy
		}
	}

	return c, true
}
