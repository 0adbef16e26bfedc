package extraction

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind groups extraction errors by how the retry policy reacts to them.
type Kind int

const (
	KindOther Kind = iota
	KindRateLimit
	KindParse
	KindConfiguration
)

func (k Kind) String() string {
	switch k {
	case KindRateLimit:
		return "rate_limit"
	case KindParse:
		return "parse"
	case KindConfiguration:
		return "configuration"
	default:
		return "other"
	}
}

// Classify maps an extraction error to its Kind. A nil error is KindOther.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return KindOther
	case errors.Is(err, ErrNotConfigured):
		return KindConfiguration
	case errors.Is(err, ErrRateLimited):
		return KindRateLimit
	case errors.Is(err, ErrParse):
		return KindParse
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "429") || strings.Contains(msg, "resource_exhausted") || strings.Contains(msg, "quota") {
		return KindRateLimit
	}
	return KindOther
}

var (
	retryInPattern    = regexp.MustCompile(`(?i)retry in ([0-9]+(?:\.[0-9]+)?)\s*s`)
	retryDelayPattern = regexp.MustCompile(`"retryDelay"\s*:\s*"([0-9]+(?:\.[0-9]+)?)s"`)
)

// RetryDelay returns how long the backend asked to wait, or def when it did
// not say. A typed RateLimitError.RetryAfter wins over the message text.
func RetryDelay(err error, def time.Duration) time.Duration {
	if err == nil {
		return def
	}
	var rl *RateLimitError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		return rl.RetryAfter
	}
	msg := err.Error()
	for _, re := range []*regexp.Regexp{retryInPattern, retryDelayPattern} {
		if m := re.FindStringSubmatch(msg); m != nil {
			if secs, perr := strconv.ParseFloat(m[1], 64); perr == nil && secs > 0 {
				return time.Duration(secs * float64(time.Second))
			}
		}
	}
	return def
}
