package filestore

import (
	"regexp"
	"time"
)

// DefaultExpirationThreshold is the idle timeout applied to an entry
// when no override pattern matches its path (or more than one does).
const DefaultExpirationThreshold = 60 * time.Second

// DefaultSweepInterval is how often the sweeper wakes to look for
// expired entries.
const DefaultSweepInterval = 10 * time.Second

// PatternOverride pairs a path-matching regex with the expiration
// threshold to use for paths it matches.
type PatternOverride struct {
	Pattern   *regexp.Regexp
	Threshold time.Duration
}

// Options configures a Repository.
type Options struct {
	// DefaultExpirationThreshold is used whenever zero or more than
	// one override pattern matches a path.
	DefaultExpirationThreshold time.Duration

	// PatternOverrides is consulted once per Create. Exactly one
	// matching pattern selects its threshold; any other match count
	// (zero, or more than one) falls back to DefaultExpirationThreshold.
	//
	// This is the behavior the source implements, preserved here even
	// though ambiguous multi-pattern matches silently falling back to
	// the default may be a bug in the original design (see DESIGN.md).
	PatternOverrides []PatternOverride

	// SweepInterval is how often the background sweeper looks for
	// idle-expired entries.
	SweepInterval time.Duration

	// Clock supplies lastAccess/expiresAt timestamps; defaults to
	// SystemClock when left nil.
	Clock Clock
}

func (o Options) withDefaults() Options {
	if o.DefaultExpirationThreshold <= 0 {
		o.DefaultExpirationThreshold = DefaultExpirationThreshold
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = DefaultSweepInterval
	}
	if o.Clock == nil {
		o.Clock = SystemClock{}
	}
	return o
}

// thresholdFor selects the expiration threshold for path per the
// exactly-one-match policy: if precisely one override pattern matches,
// its duration applies; otherwise the default does.
func (o Options) thresholdFor(path string) time.Duration {
	matched := -1
	for i, ov := range o.PatternOverrides {
		if ov.Pattern.MatchString(path) {
			if matched != -1 {
				// A second match makes the match count ambiguous;
				// fall back to default per the exactly-one-match policy.
				return o.DefaultExpirationThreshold
			}
			matched = i
		}
	}
	if matched == -1 {
		return o.DefaultExpirationThreshold
	}
	return o.PatternOverrides[matched].Threshold
}
