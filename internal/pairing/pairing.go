// Package pairing reconstructs typed test-case records from the flat,
// ordered fragment sequence the test panel query returns.
//
// The panel markup yields a repeating period-3 pattern per logical case:
// an expected-value text node, an input text node, and one residual
// fragment left over from the collapsed UI. Only position encodes which
// is which; there is no self-describing boundary in the markup.
package pairing

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ThatDudeAlex/algoexpert-scraper/internal/model"
)

// windowSize is the number of fragments per logical test case:
// expected, input, residual.
const windowSize = 3

// ErrMisaligned is returned when the fragment count is not a multiple of
// the window size. Pairing such a sequence would silently shift every
// subsequent expected/input pair, so it is rejected instead.
var ErrMisaligned = eris.New("pairing: fragment count not a multiple of 3")

// Pair converts fragments into test cases. Sequences shorter than one
// window yield an empty result. Malformed values inside a window are
// logged and leave the corresponding field unset; the case is still
// emitted and numbered. Deterministic for a given input sequence.
func Pair(fragments []string) ([]model.TestCase, error) {
	if len(fragments) < windowSize {
		return nil, nil
	}
	if len(fragments)%windowSize != 0 {
		zap.L().Error("pairing: misaligned fragment sequence",
			zap.Int("fragments", len(fragments)),
		)
		return nil, ErrMisaligned
	}

	cases := make([]model.TestCase, 0, len(fragments)/windowSize)
	for i := 0; i+windowSize <= len(fragments); i += windowSize {
		n := len(cases) + 1
		tc := model.TestCase{Name: fmt.Sprintf("Test Case %d", n)}

		// fragments[i+2] is the residual collapsed-UI fragment, skipped.
		if v, err := parseValue(fragments[i+1]); err != nil {
			zap.L().Warn("pairing: malformed input fragment",
				zap.Int("case", n),
				zap.String("fragment", fragments[i+1]),
				zap.Error(err),
			)
		} else {
			tc.Inputs = v
		}

		if v, err := SniffExpected(fragments[i]); err != nil {
			zap.L().Warn("pairing: malformed expected fragment",
				zap.Int("case", n),
				zap.String("fragment", fragments[i]),
				zap.Error(err),
			)
		} else {
			tc.Expected = v
		}

		cases = append(cases, tc)
	}
	return cases, nil
}

// SniffExpected decides how a raw expected fragment is interpreted. A
// fragment whose trimmed text starts with an ASCII letter is kept as the
// raw string verbatim: that catches word-booleans like "True" and
// free-text expected values that are not valid JSON. Everything else is
// parsed as a JSON value.
//
// This is a heuristic over the panel's value encodings, not a grammar;
// both paths are covered by tests.
func SniffExpected(raw string) (any, error) {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) > 0 && isASCIILetter(trimmed[0]) {
		return raw, nil
	}
	return parseValue(raw)
}

func parseValue(raw string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, eris.Wrap(err, "pairing: parse value")
	}
	return v, nil
}

func isASCIILetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
