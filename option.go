package wiipad

import (
	"github.com/sirupsen/logrus"

	"github.com/berfenger/wiipad/mapping"
)

// Option configures a Manager at construction time, the same functional
// option pattern paypal-gatt uses for Device.
type Option func(*Manager) error

// WithLogger overrides the manager's logrus.FieldLogger. Defaults to
// logrus.StandardLogger().
func WithLogger(log logrus.FieldLogger) Option {
	return func(m *Manager) error {
		m.log = log
		return nil
	}
}

// WithProfile sets the MappingProfile every connecting session uses.
// Required: NewManager fails without one.
func WithProfile(p *mapping.Profile) Option {
	return func(m *Manager) error {
		m.profile = p
		return nil
	}
}
