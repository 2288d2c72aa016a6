package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/office-booking/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
	Locks       *application.FloorLocks
	Logger      *slog.Logger
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
		Locks:       application.NewFloorLocks(),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	if factory.Locks == nil {
		factory.Locks = application.NewFloorLocks()
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

// WithLogger attaches a logger to every service the factory builds.
func WithLogger(logger *slog.Logger) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Logger = logger
	}
}

// Notifier builds a cascade notifier sharing the factory clock and ids.
func (f *ServiceFactory) Notifier() *application.CascadeNotifier {
	return application.NewCascadeNotifier(f.IDGenerator.NextFunc(), f.Clock.NowFunc())
}

// CatalogService builds a catalog service over the supplied repository.
func (f *ServiceFactory) CatalogService(plans application.FloorPlanRepository) *application.CatalogService {
	return application.NewCatalogServiceWithLogger(plans, f.Notifier(), f.Locks, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// BookingService builds a booking service over the supplied dependencies.
func (f *ServiceFactory) BookingService(catalog application.CatalogReader, bookings application.BookingRepository) *application.BookingService {
	return application.NewBookingServiceWithLogger(catalog, bookings, f.Locks, f.IDGenerator.NextFunc(), f.Clock.NowFunc(), f.Logger)
}

// RecommendationService builds a recommendation service over the supplied
// read-side dependencies.
func (f *ServiceFactory) RecommendationService(plans application.FloorPlanLister, usage application.UsageHistoryReader) *application.RecommendationService {
	return application.NewRecommendationServiceWithLogger(plans, usage, f.Logger)
}

// NotificationService builds a notification service over the supplied
// repository.
func (f *ServiceFactory) NotificationService(notifications application.NotificationRepository) *application.NotificationService {
	return application.NewNotificationServiceWithLogger(notifications, f.Logger)
}
