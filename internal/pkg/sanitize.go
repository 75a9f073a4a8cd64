package pkg

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Content limits applied before any write.
const (
	MessageMaxLen        = 1000
	HabitatNameMinLen    = 3
	HabitatNameMaxLen    = 100
	HabitatDescMinLen    = 10
	HabitatDescMaxLen    = 500
	DiscussionTitleMin   = 3
	DiscussionTitleMax   = 200
	PollTitleMinLen      = 5
	PollTitleMaxLen      = 200
	PollOptionMaxLen     = 100
	PollOptionsMin       = 2
	PollOptionsMax       = 6
	TagMaxLen            = 30
	TagsMax              = 5
)

var (
	uuidV4Re   = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)
	spaceRunRe = regexp.MustCompile(`[ \t]{2,}`)
)

// SanitizeText strips control characters (newlines survive), collapses runs
// of spaces and tabs, and trims. Idempotent.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r == '\n' {
			b.WriteRune(r)
			continue
		}
		if unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(b.String(), " "))
}

// ValidateMessageContent returns the sanitized content or ErrInvalidInput.
func ValidateMessageContent(s string) (string, error) {
	s = SanitizeText(s)
	if s == "" {
		return "", Invalid("message content is empty")
	}
	if utf8.RuneCountInString(s) > MessageMaxLen {
		return "", Invalid("message content exceeds %d characters", MessageMaxLen)
	}
	return s, nil
}

func ValidateHabitatName(s string) (string, error) {
	s = SanitizeText(s)
	if n := utf8.RuneCountInString(s); n < HabitatNameMinLen || n > HabitatNameMaxLen {
		return "", Invalid("habitat name must be %d-%d characters", HabitatNameMinLen, HabitatNameMaxLen)
	}
	return s, nil
}

func ValidateHabitatDescription(s string) (string, error) {
	s = SanitizeText(s)
	if n := utf8.RuneCountInString(s); n < HabitatDescMinLen || n > HabitatDescMaxLen {
		return "", Invalid("habitat description must be %d-%d characters", HabitatDescMinLen, HabitatDescMaxLen)
	}
	return s, nil
}

func ValidateDiscussionTitle(s string) (string, error) {
	s = SanitizeText(s)
	if n := utf8.RuneCountInString(s); n < DiscussionTitleMin || n > DiscussionTitleMax {
		return "", Invalid("discussion title must be %d-%d characters", DiscussionTitleMin, DiscussionTitleMax)
	}
	return s, nil
}

func ValidatePollTitle(s string) (string, error) {
	s = SanitizeText(s)
	if n := utf8.RuneCountInString(s); n < PollTitleMinLen || n > PollTitleMaxLen {
		return "", Invalid("poll title must be %d-%d characters", PollTitleMinLen, PollTitleMaxLen)
	}
	return s, nil
}

// SanitizeTags lowercases, trims, drops empties and deduplicates while
// preserving first-seen order. Idempotent.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// ValidateTags sanitizes then enforces 1-5 entries of at most TagMaxLen.
func ValidateTags(tags []string) ([]string, error) {
	tags = SanitizeTags(tags)
	if len(tags) == 0 || len(tags) > TagsMax {
		return nil, Invalid("habitat needs 1-%d tags", TagsMax)
	}
	for _, t := range tags {
		if utf8.RuneCountInString(t) > TagMaxLen {
			return nil, Invalid("tag %q exceeds %d characters", t, TagMaxLen)
		}
	}
	return tags, nil
}

// ValidatePollOptions trims entries, drops empties, and enforces 2-6 options
// of at most 100 characters each.
func ValidatePollOptions(options []string) ([]string, error) {
	out := make([]string, 0, len(options))
	for _, o := range options {
		o = SanitizeText(o)
		if o == "" {
			continue
		}
		if utf8.RuneCountInString(o) > PollOptionMaxLen {
			return nil, Invalid("poll option exceeds %d characters", PollOptionMaxLen)
		}
		out = append(out, o)
	}
	if len(out) < PollOptionsMin || len(out) > PollOptionsMax {
		return nil, Invalid("poll needs %d-%d options", PollOptionsMin, PollOptionsMax)
	}
	return out, nil
}

// IsUUID reports whether s is a v4 UUID. allowEmpty admits "" for
// optional-reference fields.
func IsUUID(s string, allowEmpty bool) bool {
	if s == "" {
		return allowEmpty
	}
	return uuidV4Re.MatchString(s)
}
