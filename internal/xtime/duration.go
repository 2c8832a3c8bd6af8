package xtime

import (
	"time"
)

// Duration is a time.Duration that (un)marshals as a string like "30s" or
// "24h", so config files can use the human-readable form. Convert back with
// time.Duration(d) at the point of use.
type Duration time.Duration

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}
