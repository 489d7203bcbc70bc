package fetcher

import (
	"fmt"
	"net/url"

	"decks/internal/domain/entity"
	"decks/internal/usecase/ingest"
)

// validateURL validates a URL before making an HTTP request. The private
// network check can be disabled for local testing; scheme and host checks
// always apply.
func validateURL(urlStr string, denyPrivateIPs bool) error {
	if denyPrivateIPs {
		if err := entity.ValidateFeedURL(urlStr); err != nil {
			return fmt.Errorf("%w: %v", ingest.ErrInvalidURL, err)
		}
		return nil
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("%w: parse error: %v", ingest.ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: scheme %q not allowed (only http/https)", ingest.ErrInvalidURL, u.Scheme)
	}
	if u.Hostname() == "" {
		return fmt.Errorf("%w: empty hostname", ingest.ErrInvalidURL)
	}
	return nil
}
