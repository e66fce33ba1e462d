package service

import "strings"

// Sender short-codes and payment-app names that mark a message as coming from
// a bank or UPI channel. Matched against both sender and body.
var bankSenderTokens = []string{
	"HDFC", "ICICI", "SBI", "AXIS", "KOTAK", "PNB", "BOB", "CANARA", "IDFC",
	"YESBNK", "INDUSB", "FEDBNK", "RBLBNK", "AUBANK", "UNIONB",
	"UPI", "PAYTM", "GPAY", "PHONEPE", "BHIM", "AMAZONPAY", "MOBIKWIK", "FREECHARGE",
}

// Keywords that make a long-enough body look like a transaction record even
// when the sender is unrecognized. Currency markers are deliberately absent:
// bare substrings like "RS " match inside ordinary words ("HOURS today"), so
// currency is detected through the amount-pattern regexes instead.
var transactionKeywords = []string{
	"DEBITED", "CREDITED", "PAID", "RECEIVED", "BALANCE", "TRANSACTION",
	"ACCOUNT", "AMOUNT", "TRANSFER", "WITHDRAWAL", "DEPOSIT", "PURCHASE", "PAYMENT",
}

// IsTransactionMessage decides whether a raw alert is worth running through
// the extractor. Pure and deterministic; the ingest pipeline uses it as a
// strict pre-filter, so anything rejected here never reaches extraction.
func IsTransactionMessage(sender, body string) bool {
	if len(body) < 5 {
		return false
	}

	upperSender := strings.ToUpper(sender)
	upperBody := strings.ToUpper(body)

	for _, token := range bankSenderTokens {
		if strings.Contains(upperSender, token) || strings.Contains(upperBody, token) {
			return true
		}
	}

	for _, keyword := range transactionKeywords {
		if strings.Contains(upperBody, keyword) {
			return true
		}
	}

	// A bare amount in a reasonably long message is still a candidate.
	if len(body) > 20 && containsAmountPattern(body) {
		return true
	}

	return false
}

func containsAmountPattern(body string) bool {
	return currencyPrefixRe.MatchString(body) || currencySuffixRe.MatchString(body)
}
