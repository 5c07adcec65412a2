package services

import (
	"regexp"
	"strings"
	"unicode"
)

// Rejection reasons returned by ContentFilter.Check.
const (
	ReasonInappropriateLanguage = "inappropriate_language"
	ReasonURLNotAllowed         = "url_not_allowed"
	ReasonContactInfo           = "contact_info_not_allowed"
	ReasonSpam                  = "spam_detected"
	ReasonExcessiveCaps         = "excessive_caps"
)

var BannedWords = []string{
	"fuck", "fucking", "shit", "bullshit",
	"asshole", "bastard", "bitch", "cunt",
	"porn", "porno", "nude", "nudes",
	"scam", "scammer", "phishing", "malware",
	"counterfeit", "replica", "stolen",
}

var rejectionMessages = map[string]string{
	ReasonInappropriateLanguage: "Your listing contains inappropriate language.",
	ReasonURLNotAllowed:         "Links are not allowed in listings. Use the share button instead.",
	ReasonContactInfo:           "Phone numbers and email addresses are not allowed. Buyers contact you through A2Z.",
	ReasonSpam:                  "Your listing looks like spam.",
	ReasonExcessiveCaps:         "Please avoid using excessive capital letters.",
}

// ContentFilter screens listing text before it is stored. Patterns are
// compiled once and the filter is safe for concurrent use.
type ContentFilter struct {
	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	allCapsPattern    *regexp.Regexp
}

// maxRepeatedRun is the longest run of one repeated character allowed.
const maxRepeatedRun = 4

func NewContentFilter() *ContentFilter {
	f := &ContentFilter{
		bannedWordRegexps: make([]*regexp.Regexp, 0, len(BannedWords)),
		urlPattern:        regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`),
		emailPattern:      regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z]{2,}\b`),

		// South African numbers: 0XX XXX XXXX or +27 XX XXX XXXX
		phonePattern:   regexp.MustCompile(`(\+27|\b0)[\s-]?\d{2}[\s-]?\d{3}[\s-]?\d{4}\b`),
		allCapsPattern: regexp.MustCompile(`\b[A-Z]{5,}\b`),
	}
	for _, word := range BannedWords {
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err == nil {
			f.bannedWordRegexps = append(f.bannedWordRegexps, re)
		}
	}
	return f
}

// Check returns true when text is acceptable, otherwise false and a reason.
func (f *ContentFilter) Check(text string) (bool, string) {
	if strings.TrimSpace(text) == "" {
		return true, ""
	}
	for _, re := range f.bannedWordRegexps {
		if re.MatchString(text) {
			return false, ReasonInappropriateLanguage
		}
	}
	if f.urlPattern.MatchString(text) {
		return false, ReasonURLNotAllowed
	}
	if f.emailPattern.MatchString(text) || f.phonePattern.MatchString(text) {
		return false, ReasonContactInfo
	}
	if hasRepeatedRun(text, maxRepeatedRun+1) {
		return false, ReasonSpam
	}
	if len(f.allCapsPattern.FindAllString(text, -1)) > 2 {
		return false, ReasonExcessiveCaps
	}
	return true, ""
}

func RejectionMessage(reason string) string {
	if msg, ok := rejectionMessages[reason]; ok {
		return msg
	}
	return "Your listing does not meet our content guidelines."
}

// hasRepeatedRun reports whether text holds n or more consecutive copies of
// the same letter or punctuation mark, ignoring case.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if r == prev && (unicode.IsLetter(r) || r == '!' || r == '?' || r == '.') {
			run++
			if run >= n {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}
