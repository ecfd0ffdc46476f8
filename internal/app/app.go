package app

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v82"
	"github.com/vberezan/sport-booking-api/internal/booking"
	"github.com/vberezan/sport-booking-api/internal/domain"
	"github.com/vberezan/sport-booking-api/internal/loyalty"
	"github.com/vberezan/sport-booking-api/internal/mailer"
	"github.com/vberezan/sport-booking-api/internal/notifier"
	"github.com/vberezan/sport-booking-api/internal/payment"
	"github.com/vberezan/sport-booking-api/internal/repository"
	appvalidator "github.com/vberezan/sport-booking-api/internal/validator"
	"github.com/vberezan/sport-booking-api/internal/vcs"
	"github.com/vberezan/sport-booking-api/migrations"
)

var (
	version = vcs.Version()
)

type application struct {
	config         config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	customerRepo     domain.CustomerRepository
	reservationRepo  domain.ReservationRepository
	resourceRepo     domain.ResourceRepository
	subscriptionRepo domain.SubscriptionRepository

	bookings   *booking.Service
	settler    *payment.Settler
	loyalty    *loyalty.Service
	dispatcher *notifier.Dispatcher

	metrics metrics
}

type config struct {
	port int
	env  string
	db   struct {
		dsn          string
		maxOpenConns int
		maxIdleTime  time.Duration
	}
	redis struct {
		url          string
		maxOpenConns int
		maxIdleConns int
		maxIdleTime  time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	stripe struct {
		secretKey string
		currency  string
	}
	amqp struct {
		url   string
		queue string
	}
	loyalty struct {
		pointValue         decimal.Decimal
		premiumThreshold   decimal.Decimal
		corporateThreshold decimal.Decimal
	}
	notifier struct {
		sweepInterval time.Duration
	}
	adminToken       string
	otelCollectorUrl string
}

func Run() error {
	var cfg config

	// .env is optional, flags take precedence over it.
	godotenv.Load()

	flag.IntVar(&cfg.port, "port", 3000, "server port")
	flag.StringVar(&cfg.env, "env", "dev", "Environment (dev|staging|prod)")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.db.maxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.redis.url, "redis-url", os.Getenv("REDIS_URL"), "Redis URL")
	flag.IntVar(&cfg.redis.maxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.redis.maxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.redis.maxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.smtp.host, "smtp-host", "sandbox.smtp.mailtrap.io", "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "SportBook <no-reply@sportbook.example.com>", "SMTP sender")

	flag.StringVar(&cfg.stripe.secretKey, "stripe-key", os.Getenv("STRIPE_KEY"), "Stripe secret key")
	flag.StringVar(&cfg.stripe.currency, "stripe-currency", "usd", "Stripe charge currency")

	flag.StringVar(&cfg.amqp.url, "amqp-url", os.Getenv("AMQP_URL"), "RabbitMQ URL for the notification channel")
	flag.StringVar(&cfg.amqp.queue, "amqp-queue", "notifications", "RabbitMQ notification queue name")

	pointValue := flag.String("loyalty-point-value", "0.01", "Monetary value of one bonus point")
	premiumThreshold := flag.String("loyalty-premium-threshold", "1000", "Points balance granting a premium card")
	corporateThreshold := flag.String("loyalty-corporate-threshold", "5000", "Points balance granting a corporate card")

	flag.DurationVar(&cfg.notifier.sweepInterval, "notifier-sweep-interval", time.Minute, "Pending notification sweep interval")

	flag.StringVar(&cfg.adminToken, "admin-token", os.Getenv("ADMIN_TOKEN"), "Bearer token for administrative endpoints")
	flag.StringVar(&cfg.otelCollectorUrl, "otel-collector-url", os.Getenv("OTEL_COLLECTOR_URL"), "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	var err error

	cfg.loyalty.pointValue, err = decimal.NewFromString(*pointValue)
	if err != nil {
		return fmt.Errorf("invalid loyalty-point-value: %w", err)
	}
	cfg.loyalty.premiumThreshold, err = decimal.NewFromString(*premiumThreshold)
	if err != nil {
		return fmt.Errorf("invalid loyalty-premium-threshold: %w", err)
	}
	cfg.loyalty.corporateThreshold, err = decimal.NewFromString(*corporateThreshold)
	if err != nil {
		return fmt.Errorf("invalid loyalty-corporate-threshold: %w", err)
	}

	stripe.Key = cfg.stripe.secretKey

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := runMigrations(cfg.db.dsn); err != nil {
		return err
	}

	db, err := newDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := newRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	customerRepo := repository.NewPostgresCustomerRepository(db)
	reservationRepo := repository.NewPostgresReservationRepository(db)
	resourceRepo := repository.NewPostgresResourceRepository(db)
	loyaltyRepo := repository.NewPostgresLoyaltyRepository(db, cfg.loyalty.pointValue)
	notificationRepo := repository.NewPostgresNotificationRepository(db)
	subscriptionRepo := repository.NewPostgresSubscriptionRepository(db)

	smtpMailer := mailer.NewSMTPMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)

	channels := []notifier.Channel{notifier.NewLogChannel(logger)}
	if cfg.smtp.username != "" {
		channels = append(channels, notifier.NewEmailChannel(smtpMailer))
	}
	if cfg.amqp.url != "" {
		channels = append(channels, notifier.NewBrokerChannel(cfg.amqp.url, cfg.amqp.queue))
	}

	dispatcher := notifier.New(notificationRepo, customerRepo, logger, channels...)

	loyaltyService := loyalty.NewService(loyaltyRepo, customerRepo, dispatcher, loyalty.Config{
		PointValue:         cfg.loyalty.pointValue,
		PremiumThreshold:   cfg.loyalty.premiumThreshold,
		CorporateThreshold: cfg.loyalty.corporateThreshold,
	}, logger)

	var cardProcessor domain.CardProcessor = payment.NewMockCardProcessor()
	if cfg.stripe.secretKey != "" {
		cardProcessor = payment.NewStripeCardProcessor(cfg.stripe.currency)
	}

	settler := payment.NewSettler(
		reservationRepo, subscriptionRepo, resourceRepo, loyaltyService, cardProcessor, dispatcher, logger)

	app := &application{
		config:           cfg,
		logger:           logger,
		db:               db,
		redis:            redisClient,
		validator:        appvalidator.NewValidator(),
		sessionManager:   newSessionManager(redisClient),
		customerRepo:     customerRepo,
		reservationRepo:  reservationRepo,
		resourceRepo:     resourceRepo,
		subscriptionRepo: subscriptionRepo,
		bookings:         booking.NewService(reservationRepo, resourceRepo, logger),
		settler:          settler,
		loyalty:          loyaltyService,
		dispatcher:       dispatcher,
	}

	return app.run()
}

func newSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func newRedisClient(cfg config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.redis.url,
		MaxIdleConns:    cfg.redis.maxIdleConns,
		MaxActiveConns:  cfg.redis.maxOpenConns,
		ConnMaxIdleTime: cfg.redis.maxIdleTime,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func newDatabasePool(cfg config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.db.maxIdleTime
	config.MaxConns = int32(cfg.db.maxOpenConns)

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// runMigrations applies the embedded goose migrations through a short-lived
// database/sql connection; the pgx pool is opened afterwards.
func runMigrations(dsn string) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.Up(db, ".")
}

func (app *application) run() error {
	shutdownTelemetry, err := app.initTelemetry()
	if err != nil {
		return err
	}

	workerCtx, stopWorker := context.WithCancel(context.Background())
	go app.dispatcher.RunPending(workerCtx, app.config.notifier.sweepInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.port),
		Handler:      app.routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
			return
		}

		stopWorker()
		app.dispatcher.Wait()
		shutdownTelemetry(ctx)

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}
