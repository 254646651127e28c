package testfixtures

import (
	"fmt"
	"time"

	"github.com/example/meeting-poll/internal/application"
)

// PlainPasswords is a transparent password scheme for tests. Hashes are the
// password with a fixed prefix, keeping assertions readable and avoiding
// bcrypt cost in unit tests.
type PlainPasswords struct{}

func (PlainPasswords) Hash(password string) (string, error) {
	return "plain:" + password, nil
}

func (PlainPasswords) Verify(hash, password string) error {
	if hash != "plain:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// ServiceFactory assists tests with constructing the scheduling service using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock    *Clock
	ShortIDs *IDGenerator
	IDs      *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:    NewClock(time.Time{}),
		ShortIDs: NewIDGenerator("ses"),
		IDs:      NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.ShortIDs == nil {
		factory.ShortIDs = NewIDGenerator("ses")
	}
	if factory.IDs == nil {
		factory.IDs = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// NewSchedulingService builds a scheduling service backed by the provided or
// a fresh in-memory repository, a plain password scheme, sequential ids, and
// the factory clock.
func (f *ServiceFactory) NewSchedulingService(sessions *MemorySessionRepository) (*application.SchedulingService, *MemorySessionRepository) {
	if sessions == nil {
		sessions = NewMemorySessionRepository()
	}
	service := application.NewSchedulingService(
		sessions,
		sessions,
		PlainPasswords{},
		f.ShortIDs.NextFunc(),
		f.IDs.NextFunc(),
		f.Clock.NowFunc(),
	)
	return service, sessions
}
