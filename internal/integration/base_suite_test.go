package integration_test

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/vberezan/sport-booking-api/internal/booking"
	"github.com/vberezan/sport-booking-api/internal/loyalty"
	"github.com/vberezan/sport-booking-api/internal/notifier"
	"github.com/vberezan/sport-booking-api/internal/payment"
	"github.com/vberezan/sport-booking-api/internal/repository"
	"github.com/vberezan/sport-booking-api/migrations"
)

const (
	dbName      = "sport_booking"
	dbUser      = "test_user"
	dbPassword  = "test_password"
	dbImageName = "postgres:17-alpine"
)

// BaseSuite wires the real repositories and services against a throwaway
// Postgres container. Tests exercise the same code paths the HTTP layer
// uses, minus the transport.
type BaseSuite struct {
	suite.Suite
	dbContainer *PostgresContainer
	db          *pgxpool.Pool

	customerRepo     *repository.PostgresCustomerRepository
	reservationRepo  *repository.PostgresReservationRepository
	resourceRepo     *repository.PostgresResourceRepository
	loyaltyRepo      *repository.PostgresLoyaltyRepository
	notificationRepo *repository.PostgresNotificationRepository
	subscriptionRepo *repository.PostgresSubscriptionRepository

	bookings   *booking.Service
	settler    *payment.Settler
	loyalty    *loyalty.Service
	dispatcher *notifier.Dispatcher
}

func (s *BaseSuite) SetupSuite() {
	ctx := context.Background()

	dbContainer, err := getDbContainer(ctx)
	if err != nil {
		log.Printf("failed to start container: %s", err)
		s.T().Skipf("docker unavailable: %s", err)
		return
	}
	s.dbContainer = dbContainer

	if err := applyMigrations(dbContainer.ConnectionString); err != nil {
		s.T().Fatalf("failed to run migrations: %s", err)
	}

	db, err := pgxpool.New(ctx, dbContainer.ConnectionString)
	if err != nil {
		s.T().Fatalf("failed to open pool: %s", err)
	}
	s.db = db

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	pointValue := decimal.NewFromFloat(0.01)

	s.customerRepo = repository.NewPostgresCustomerRepository(db)
	s.reservationRepo = repository.NewPostgresReservationRepository(db)
	s.resourceRepo = repository.NewPostgresResourceRepository(db)
	s.loyaltyRepo = repository.NewPostgresLoyaltyRepository(db, pointValue)
	s.notificationRepo = repository.NewPostgresNotificationRepository(db)
	s.subscriptionRepo = repository.NewPostgresSubscriptionRepository(db)

	s.dispatcher = notifier.New(s.notificationRepo, s.customerRepo, logger, notifier.NewLogChannel(logger))

	s.loyalty = loyalty.NewService(s.loyaltyRepo, s.customerRepo, s.dispatcher, loyalty.Config{
		PointValue:         pointValue,
		PremiumThreshold:   decimal.NewFromInt(1000),
		CorporateThreshold: decimal.NewFromInt(5000),
	}, logger)

	s.bookings = booking.NewService(s.reservationRepo, s.resourceRepo, logger)

	s.settler = payment.NewSettler(
		s.reservationRepo, s.subscriptionRepo, s.resourceRepo,
		s.loyalty, payment.NewMockCardProcessor(), s.dispatcher, logger)
}

func (s *BaseSuite) TearDownSuite() {
	if s.dispatcher != nil {
		s.dispatcher.Wait()
	}
	if s.db != nil {
		s.db.Close()
	}
	if s.dbContainer != nil {
		if err := testcontainers.TerminateContainer(s.dbContainer.Container); err != nil {
			log.Printf("failed to terminate container: %s", err)
		}
	}
}

func (s *BaseSuite) TearDownTest() {
	ctx := context.Background()

	_, err := s.db.Exec(ctx, `
		TRUNCATE notifications, reservations, customer_subscriptions, subscriptions,
			section_schedules, time_slots, sections, halls, trainers, customers
		RESTART IDENTITY CASCADE`)
	if err != nil {
		s.T().Fatalf("failed to reset tables: %s", err)
	}
}

func applyMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

func timeout(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
