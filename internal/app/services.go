package app

import (
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/svit-college/curriculum-portal/internal/announcements"
	"github.com/svit-college/curriculum-portal/internal/auth"
	"github.com/svit-college/curriculum-portal/internal/calendar"
	"github.com/svit-college/curriculum-portal/internal/curriculum"
	"github.com/svit-college/curriculum-portal/internal/dashboard"
	"github.com/svit-college/curriculum-portal/internal/resources"
	"github.com/svit-college/curriculum-portal/internal/shared"
)

// Stores groups the repositories behind the services.
type Stores struct {
	Users         auth.Repository
	Announcements announcements.Repository
	Events        calendar.Repository
	Resources     resources.Repository
	Curriculum    curriculum.Repository
	Auditor       shared.Auditor
}

// NewStores picks repositories for cfg.StoreDriver. The memory driver is
// seeded with the demo catalogue and audits to the log.
func NewStores(cfg *Config, pool *pgxpool.Pool, logger *slog.Logger) (Stores, error) {
	switch cfg.StoreDriver {
	case StorePostgres:
		if pool == nil {
			return Stores{}, errors.New("postgres store requires a connection pool")
		}
		return Stores{
			Users:         auth.NewPGRepository(pool),
			Announcements: announcements.NewPGRepository(pool),
			Events:        calendar.NewPGRepository(pool),
			Resources:     resources.NewPGRepository(pool),
			Curriculum:    curriculum.NewPGRepository(pool),
			Auditor:       shared.NewAuditLogger(pool),
		}, nil
	default:
		users, err := auth.Seed()
		if err != nil {
			return Stores{}, err
		}
		latency := cfg.StoreLatency
		return Stores{
			Users:         auth.NewMemoryRepository(users, latency),
			Announcements: announcements.NewMemoryRepository(announcements.Seed(), latency),
			Events:        calendar.NewMemoryRepository(calendar.Seed(), latency),
			Resources:     resources.NewMemoryRepository(resources.Seed(), latency),
			Curriculum:    curriculum.NewMemoryRepository(curriculum.Seed(), latency),
			Auditor:       shared.SlogAuditor{Logger: logger},
		}, nil
	}
}

// Outbox is where services hand work for the job queue. A nil Outbox
// disables notifications and mail.
type Outbox interface {
	announcements.Notifier
	auth.Mailer
}

// Services groups the domain services.
type Services struct {
	Auth          *auth.Service
	Announcements *announcements.Service
	Calendar      *calendar.Service
	Resources     *resources.Service
	Curriculum    *curriculum.Service
	Dashboard     *dashboard.Loader
}

// NewServices wires services over stores.
func NewServices(cfg *Config, stores Stores, outbox Outbox, logger *slog.Logger) Services {
	authOpts := []auth.Option{auth.WithLogger(logger)}
	announcementOpts := []announcements.Option{
		announcements.WithAuditor(stores.Auditor),
		announcements.WithLogger(logger),
	}
	if outbox != nil {
		authOpts = append(authOpts, auth.WithMailer(outbox))
		announcementOpts = append(announcementOpts, announcements.WithNotifier(outbox))
	}

	svc := Services{
		Auth:          auth.NewService(stores.Users, authOpts...),
		Announcements: announcements.NewService(stores.Announcements, announcementOpts...),
		Calendar:      calendar.NewService(stores.Events, stores.Auditor, logger),
		Resources:     resources.NewService(stores.Resources, stores.Auditor, logger),
		Curriculum:    curriculum.NewService(stores.Curriculum, stores.Auditor, logger),
	}
	svc.Dashboard = dashboard.NewLoader(dashboard.Sources{
		Announcements: svc.Announcements,
		Events:        svc.Calendar,
		Resources:     svc.Resources,
		Curriculum:    svc.Curriculum,
	}, cfg.UpcomingWindow)
	return svc
}
