package service

import (
	"regexp"
	"strconv"
	"strings"

	"finpulse/internal/models"
)

// Bounds for the largest-number fallback. Anything outside this range is more
// likely an account number, reference id, or OTP than a transaction amount.
const (
	fallbackMinAmount = 1
	fallbackMaxAmount = 10_000_000
)

var (
	debitedByRe      = regexp.MustCompile(`(?i)debited\s+(?:by|with|for)\s*(?:rs\.?|inr|₹)?\s*([\d,]+(?:\.\d{1,2})?)`)
	creditedByRe     = regexp.MustCompile(`(?i)credited\s+(?:by|with|for)\s*(?:rs\.?|inr|₹)?\s*([\d,]+(?:\.\d{1,2})?)`)
	currencyPrefixRe = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹)\s*([\d,]+(?:\.\d{1,2})?)`)
	currencySuffixRe = regexp.MustCompile(`(?i)([\d,]+(?:\.\d{1,2})?)\s*(?:rs\.?|inr|rupees)\b`)
	numberRe         = regexp.MustCompile(`[\d,]*\d(?:\.\d+)?`)

	merchantToAtRe = regexp.MustCompile(`(?i)\b(?:to|at)\s+([A-Za-z0-9@&._-]+(?:\s+[A-Za-z0-9@&._-]+)*?)(?:\s+(?:on|via|using|for|ref|upi|txn)\b|[.,;!]|$)`)
	merchantFromRe = regexp.MustCompile(`(?i)\bfrom\s+([A-Za-z0-9@&._-]+(?:\s+[A-Za-z0-9@&._-]+)*?)(?:\s+(?:on|via|using|for|ref|upi|txn)\b|[.,;!]|$)`)
)

// amountStrategy is one pure extraction rule. Strategies are tried in strict
// precedence order; the first match wins.
type amountStrategy struct {
	name    string
	extract func(body string) (float64, bool)
}

var amountStrategies = []amountStrategy{
	{name: "debited-by", extract: regexAmount(debitedByRe)},
	{name: "credited-by", extract: regexAmount(creditedByRe)},
	{name: "currency-prefix", extract: regexAmount(currencyPrefixRe)},
	{name: "currency-suffix", extract: regexAmount(currencySuffixRe)},
}

func regexAmount(re *regexp.Regexp) func(string) (float64, bool) {
	return func(body string) (float64, bool) {
		m := re.FindStringSubmatch(body)
		if m == nil {
			return 0, false
		}
		return parsePositiveAmount(m[1])
	}
}

func parsePositiveAmount(raw string) (float64, bool) {
	cleaned := strings.ReplaceAll(raw, ",", "")
	amount, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || amount <= 0 {
		return 0, false
	}
	return amount, true
}

// extractAmountFromText runs the strategy cascade, then the bounded
// largest-number fallback when the body carries a strong transactional
// keyword. The fallback assumes the amount is usually the largest number in a
// short alert, which is a known heuristic weakness when account numbers leak
// into range.
func extractAmountFromText(body string) (float64, bool) {
	for _, strategy := range amountStrategies {
		if amount, ok := strategy.extract(body); ok {
			return amount, true
		}
	}

	upper := strings.ToUpper(body)
	strong := strings.Contains(upper, "DEBITED") || strings.Contains(upper, "CREDITED") ||
		strings.Contains(upper, "PAID") || strings.Contains(upper, "RECEIVED")
	if !strong {
		return 0, false
	}

	best := 0.0
	for _, raw := range numberRe.FindAllString(body, -1) {
		amount, ok := parsePositiveAmount(raw)
		if !ok || amount < fallbackMinAmount || amount > fallbackMaxAmount {
			continue
		}
		if amount > best {
			best = amount
		}
	}
	if best == 0 {
		return 0, false
	}
	return best, true
}

// directionFromText applies the credit-keyword rule: anything else is a debit.
func directionFromText(body string) models.TransactionType {
	upper := strings.ToUpper(body)
	for _, keyword := range []string{"CREDITED", "RECEIVED", "DEPOSIT", "CREDIT"} {
		if strings.Contains(upper, keyword) {
			return models.TypeCredit
		}
	}
	return models.TypeDebit
}

// ExtractedTransaction is the candidate produced from one message. Amount is
// already signed: positive for credits, negative for debits.
type ExtractedTransaction struct {
	Amount   float64
	Type     models.TransactionType
	Merchant string
	Category models.TransactionCategory
}

// ExtractCandidate resolves amount, direction, merchant, and category for one
// message body, reconciling the regex cascade with an optional semantic hint.
// The second return is false when the message yields no transaction, which is
// an expected outcome rather than an error.
func ExtractCandidate(body string, hint *SemanticHint) (*ExtractedTransaction, bool) {
	if hint != nil && hint.ShouldSkip {
		return nil, false
	}

	var (
		amount    float64
		direction models.TransactionType
	)

	if raw, ok := extractAmountFromText(body); ok {
		amount = raw
		direction = directionFromText(body)
	} else if hint != nil && hint.Amount != nil && *hint.Amount > 0 {
		switch hint.Direction {
		case DirectionCredit:
			direction = models.TypeCredit
		case DirectionDebit:
			direction = models.TypeDebit
		default:
			// Unknown direction with no regex signal: drop the message.
			return nil, false
		}
		amount = *hint.Amount
	} else {
		return nil, false
	}

	if direction == models.TypeDebit {
		amount = -amount
	}

	merchant := resolveMerchant(body, hint)

	return &ExtractedTransaction{
		Amount:   amount,
		Type:     direction,
		Merchant: merchant,
		Category: resolveCategory(body, merchant, hint),
	}, true
}

// Leading tokens that mean the "merchant" capture is really the payer's own
// account, not a counterparty.
var merchantNoisePrefixes = []string{"your ", "the ", "my ", "a/c", "ac ", "account"}

func resolveMerchant(body string, hint *SemanticHint) string {
	if hint != nil {
		for _, candidate := range []string{hint.CounterpartyName, hint.CounterpartyHandle, hint.Bank} {
			if trimmed := strings.TrimSpace(candidate); trimmed != "" {
				return trimmed
			}
		}
	}

	for _, re := range []*regexp.Regexp{merchantToAtRe, merchantFromRe} {
		if m := re.FindStringSubmatch(body); m != nil {
			// The token class admits "." for UPI handles, so a sentence-ending
			// period gets captured with the name; strip it off.
			candidate := strings.TrimRight(strings.TrimSpace(m[1]), ".,;!")
			if candidate != "" && !isMerchantNoise(candidate) {
				return candidate
			}
		}
	}

	return "Other"
}

func isMerchantNoise(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, prefix := range merchantNoisePrefixes {
		if strings.HasPrefix(lower, prefix) || lower == strings.TrimSpace(prefix) {
			return true
		}
	}
	return false
}

var categoryKeywords = []struct {
	category models.TransactionCategory
	keywords []string
}{
	{models.CategoryFood, []string{"GROCERY", "FOOD", "RESTAURANT", "SWIGGY", "ZOMATO"}},
	{models.CategoryTransport, []string{"FUEL", "PETROL", "TAXI", "UBER", "OLA"}},
	{models.CategoryBills, []string{"BILL", "ELECTRICITY", "WATER", "RENT", "RECHARGE"}},
	{models.CategoryIncome, []string{"SALARY", "CREDITED", "DEPOSIT"}},
}

func resolveCategory(body, merchant string, hint *SemanticHint) models.TransactionCategory {
	if hint != nil {
		raw := strings.ToLower(strings.TrimSpace(hint.Category))
		if raw != "" && raw != "unknown" {
			if c := models.TransactionCategory(raw); models.KnownCategory(c) {
				return c
			}
		}
	}

	upper := strings.ToUpper(body + " " + merchant)
	for _, group := range categoryKeywords {
		for _, keyword := range group.keywords {
			if strings.Contains(upper, keyword) {
				return group.category
			}
		}
	}

	return models.CategoryOther
}
