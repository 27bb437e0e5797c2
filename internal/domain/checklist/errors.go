package checklist

import (
	"errors"
	"fmt"

	"github.com/insurdesk/claims-desk/internal/domain/entity"
)

// ErrConfiguration is matched by every catalog configuration failure
var ErrConfiguration = errors.New("checklist catalog configuration error")

// ConfigurationError reports a catalog that violates its invariants.
// It is returned while loading and must stop startup.
type ConfigurationError struct {
	Version   string
	ClaimType entity.ClaimType
	Label     string
	Reason    string
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s (version %q)", ErrConfiguration, e.Version)
	if e.ClaimType != "" {
		msg += fmt.Sprintf(": claim type %s", e.ClaimType)
	}
	if e.Label != "" {
		msg += fmt.Sprintf(": label %q", e.Label)
	}
	return msg + ": " + e.Reason
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}
