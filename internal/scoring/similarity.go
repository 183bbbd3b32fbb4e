package scoring

import (
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"

	"invoicerecon/internal/domain"
)

// Similarity returns a 0-100 score from the Levenshtein distance between the
// lower-cased, trimmed inputs. Empty input scores 0.
func Similarity(a, b string) float64 {
	s1 := strings.ToLower(strings.TrimSpace(a))
	s2 := strings.ToLower(strings.TrimSpace(b))
	if s1 == "" || s2 == "" {
		return 0
	}
	if s1 == s2 {
		return 100
	}

	distance := levenshtein.Distance(s1, s2, nil)
	maxLen := utf8.RuneCountInString(s1)
	if n := utf8.RuneCountInString(s2); n > maxLen {
		maxLen = n
	}
	return domain.Round2((1 - float64(distance)/float64(maxLen)) * 100)
}

// StampMatch fills StampCompanyMatchingScore with the similarity between the
// supplier name and the stamp text when a stamp is present and the extractor
// did not already score it. Without a stamp the score is 0.
func StampMatch(rec *domain.InvoiceRecord) {
	if !strings.EqualFold(strings.TrimSpace(rec.StampPresent), "present") {
		rec.StampCompanyMatchingScore = domain.NumberOf(0)
		return
	}
	if rec.InformationInStamp == "" || rec.StampCompanyMatchingScore.Positive() {
		return
	}
	rec.StampCompanyMatchingScore = domain.NumberOf(Similarity(rec.SupplierName, rec.InformationInStamp))
}
