package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/rutlandfarmpark/booking-api/internal/availability"
	"github.com/rutlandfarmpark/booking-api/internal/calendar"
	"github.com/rutlandfarmpark/booking-api/internal/config"
	"github.com/rutlandfarmpark/booking-api/internal/database"
	"github.com/rutlandfarmpark/booking-api/internal/email"
	"github.com/rutlandfarmpark/booking-api/internal/handler"
	"github.com/rutlandfarmpark/booking-api/internal/payment"
	"github.com/rutlandfarmpark/booking-api/internal/queue"
	"github.com/rutlandfarmpark/booking-api/internal/reference"
	"github.com/rutlandfarmpark/booking-api/internal/repository"
	"github.com/rutlandfarmpark/booking-api/internal/router"
	"github.com/rutlandfarmpark/booking-api/internal/service"
)

// nopPublisher swallows confirmation events when no broker is configured.
// Emails are simply not sent; payment reconciliation is unaffected.
type nopPublisher struct{}

func (nopPublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return nil
}
func (nopPublisher) PublishOrderPaid(ctx context.Context, ev queue.OrderPaidEvent) error {
	return nil
}

func main() {
	_ = godotenv.Load() // optional .env for local development
	cfg := config.Load()

	var logger *zap.Logger
	var err error
	if cfg.Env == "prod" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and caching disabled")
	}

	// Stores.
	ticketRepo := repository.NewTicketTypeRepo(db)
	bookingRepo := repository.NewBookingRepo(db)
	orderRepo := repository.NewOrderRepo(db)
	voucherRepo := repository.NewVoucherRepo(db)
	adoptionRepo := repository.NewAdoptionRepo(db)
	settingsRepo := repository.NewSettingsRepo(db)
	contactRepo := repository.NewContactRepo(db)

	// Domain services.
	cal := calendar.New(calendar.UK2026())
	refs := reference.NewGenerator(cfg.ReferencePrefix)
	provider, err := payment.NewStripeProvider(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	if err != nil {
		logger.Fatal("stripe configuration invalid", zap.Error(err))
	}

	var publisher service.EventPublisher = nopPublisher{}
	if cfg.RabbitURL != "" {
		publisher = queue.NewPublisher(cfg.RabbitURL, logger)
	} else {
		logger.Warn("no broker configured; confirmation emails disabled")
	}

	availSvc := availability.NewService(bookingRepo, settingsRepo, cal, logger, time.Now)
	checkoutSvc := service.NewCheckoutService(service.CheckoutDeps{
		Tickets:   ticketRepo,
		Bookings:  bookingRepo,
		Orders:    orderRepo,
		Vouchers:  voucherRepo,
		Adoptions: adoptionRepo,
		Settings:  settingsRepo,
		Provider:  provider,
		Refs:      refs,
		Calendar:  cal,
		SiteURL:   cfg.SiteURL,
		SiteName:  cfg.SiteName,
		Logger:    logger,
		Now:       time.Now,
	})
	reconcileSvc := service.NewReconcileService(bookingRepo, orderRepo, voucherRepo, adoptionRepo, publisher, logger, time.Now)

	// Email pipeline: consume confirmation events off the broker and send
	// through SMTP.  Both integrations are optional.
	var mailer *email.Mailer
	if cfg.SMTPHost != "" {
		mailer = email.NewMailer(email.Config{
			Host:           cfg.SMTPHost,
			Port:           cfg.SMTPPort,
			Username:       cfg.SMTPUser,
			Password:       cfg.SMTPPass,
			From:           cfg.EmailFrom,
			NotificationTo: cfg.NotificationTo,
			SiteName:       cfg.SiteName,
		})
	}
	if cfg.RabbitURL != "" && mailer != nil {
		go queue.NewConsumer(cfg.RabbitURL, mailer, logger).Start()
	}

	var contactMailer handler.ContactMailer
	if mailer != nil {
		contactMailer = mailer
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())

	router.Register(e, router.Handlers{
		Availability: handler.NewAvailabilityHandler(availSvc),
		Booking:      handler.NewBookingHandler(checkoutSvc, bookingRepo, logger),
		Shop:         handler.NewShopHandler(checkoutSvc, logger),
		Webhook:      handler.NewWebhookHandler(provider, reconcileSvc, logger),
		Catalog:      handler.NewCatalogHandler(ticketRepo, logger),
		Contact:      handler.NewContactHandler(contactRepo, contactMailer, logger),
	}, rdb, config.LoadRateLimitConfig(), config.LoadCacheConfig())

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
