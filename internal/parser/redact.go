package parser

import "regexp"

// RedactionMarker replaces secrets and PII scrubbed from bullet text.
const RedactionMarker = "[…]"

var (
	reEmail     = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	reURL       = regexp.MustCompile(`\bhttps?://\S+`)
	reAPIKey    = regexp.MustCompile(`\bsk-[A-Za-z0-9]{16,}\b`)
	reHexSecret = regexp.MustCompile(`\b[a-fA-F0-9]{32,128}\b`)
	rePhone     = regexp.MustCompile(`\+?\d[\d\-\s]{7,}\d`)
	reCard      = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	reDigit     = regexp.MustCompile(`\d`)

	reImageMD = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	reLinkMD  = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	reHTMLTag = regexp.MustCompile(`<[^>]+>`)

	reLegal   = regexp.MustCompile(`(?i)\b(policy|compliance|gdpr|hipaa|terms|contract|license|liability)\b`)
	reMedical = regexp.MustCompile(`(?i)\b(clinical|diagnos|treatment|adverse|contraindication|guideline|prescrib)\b`)
)

// scrubSensitive redacts obvious secrets and PII: emails, URLs, API-key-shaped
// tokens, long hex strings, phone-like digit runs, and card-like digit groups
// when the text is digit-heavy.
func scrubSensitive(text string) string {
	if text == "" {
		return text
	}
	t := reEmail.ReplaceAllString(text, RedactionMarker)
	t = reURL.ReplaceAllString(t, RedactionMarker)
	t = reAPIKey.ReplaceAllString(t, RedactionMarker)
	t = reHexSecret.ReplaceAllString(t, RedactionMarker)
	t = rePhone.ReplaceAllString(t, RedactionMarker)
	if len(reDigit.FindAllString(t, -1)) >= 12 {
		t = reCard.ReplaceAllString(t, RedactionMarker)
	}
	return t
}

// stripMarkup removes markdown images, reduces links to their label text and
// drops HTML tags. Used on raw text in the fallback paths; the markdown walk
// produces already-clean text.
func stripMarkup(text string) string {
	t := reImageMD.ReplaceAllString(text, "")
	t = reLinkMD.ReplaceAllString(t, "$1")
	t = reHTMLTag.ReplaceAllString(t, "")
	return t
}

func likelyLegal(text string) bool   { return reLegal.MatchString(text) }
func likelyMedical(text string) bool { return reMedical.MatchString(text) }
