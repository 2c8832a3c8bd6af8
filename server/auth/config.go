package auth

import (
	"fmt"
	"strings"

	"github.com/campushq/unievents/internal/xtime"
)

type Config struct {
	// Secret authenticates the external identity provider's callback when it
	// mints sessions. Credentials themselves are never handled here.
	Secret     string         `toml:"secret"`
	SessionTTL xtime.Duration `toml:"session_ttl"`
}

func (c Config) String() string {
	return fmt.Sprintf("\n Secret: %s\n SessionTTL: %s",
		strings.Repeat("*", len(c.Secret)),
		c.SessionTTL,
	)
}
