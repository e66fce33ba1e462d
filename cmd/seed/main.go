package main

import (
	"context"
	"log"
	"time"

	"finpulse/internal/dto"
	"finpulse/internal/models"
	"finpulse/internal/repository"
	"finpulse/internal/service"
	"finpulse/pkg/auth"
	"finpulse/pkg/config"
	"finpulse/pkg/logger"
	"finpulse/pkg/postgres"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	demoUsername = "demo"
	demoEmail    = "demo@finpulse.local"
	demoPassword = "demo-password-123"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	userRepo := repository.NewUserRepository(db, appLogger)
	msgRepo := repository.NewMessageRepository(db, appLogger)
	txRepo := repository.NewTransactionRepository(db, appLogger)

	semanticService, err := service.NewSemanticService(&cfg.GigaChat, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to initialize semantic parsing service", zap.Error(err))
	}
	defer semanticService.Close()

	ingestService := service.NewIngestService(msgRepo, txRepo, semanticService, cfg.Ingest.MaxBatchSize, appLogger)

	appLogger.Info("Starting database seeding...")

	userID, err := ensureDemoUser(ctx, userRepo)
	if err != nil {
		appLogger.Fatal("Failed to create demo user", zap.Error(err))
	}

	summary, err := ingestService.ImportMessages(ctx, userID, demoMessages())
	if err != nil {
		appLogger.Fatal("Failed to import demo messages", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!",
		zap.Int("processed", summary.Processed),
		zap.Int("saved", summary.Saved),
	)
}

func ensureDemoUser(ctx context.Context, userRepo *repository.UserRepository) (uuid.UUID, error) {
	if existing, err := userRepo.GetByEmail(ctx, demoEmail); err == nil {
		return existing.ID, nil
	}

	hashed, err := auth.HashPassword(demoPassword)
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now()
	user := &models.User{
		ID:            uuid.New(),
		Username:      demoUsername,
		Email:         demoEmail,
		Password:      hashed,
		RiskTolerance: models.RiskToleranceMedium,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		return uuid.Nil, err
	}
	return user.ID, nil
}

// demoMessages is a realistic alert corpus: a salary credit, a monthly
// subscription across several months, groceries, fuel, and some noise the
// classifier should drop.
func demoMessages() []dto.IncomingMessage {
	now := time.Now()
	monthsAgo := func(n int, day int) int64 {
		t := now.AddDate(0, -n, 0)
		return time.Date(t.Year(), t.Month(), day, 10, 0, 0, 0, t.Location()).UnixMilli()
	}

	var msgs []dto.IncomingMessage

	for i := 5; i >= 0; i-- {
		msgs = append(msgs,
			dto.IncomingMessage{
				Sender:     "HDFCBK",
				Body:       "Your A/c XX1234 is credited by Rs. 55,000.00 SALARY ACME CORP. Avl bal Rs. 82,450.00",
				ReceivedAt: monthsAgo(i, 1),
				Channel:    "sms",
			},
			dto.IncomingMessage{
				Sender:     "HDFCBK",
				Body:       "Rs.499.00 debited from A/c XX1234 for payment to NETFLIX. Ref 99120" + time.Now().Format("05"),
				ReceivedAt: monthsAgo(i, 3),
				Channel:    "sms",
			},
			dto.IncomingMessage{
				Sender:     "UPI",
				Body:       "Paid Rs. 1,840 to BIGBASKET GROCERY via UPI. UPI Ref 2210" + time.Now().Format("05"),
				ReceivedAt: monthsAgo(i, 9),
				Channel:    "sms",
			},
			dto.IncomingMessage{
				Sender:     "ICICIB",
				Body:       "INR 2,300.00 debited for FUEL PURCHASE at INDIANOIL. Info: card XX88",
				ReceivedAt: monthsAgo(i, 14),
				Channel:    "sms",
			},
		)
	}

	// Noise: promotions and OTPs the classifier should reject or the
	// extractor should drop.
	msgs = append(msgs,
		dto.IncomingMessage{
			Sender:     "VM-PROMO",
			Body:       "Mega sale! Up to 70% off on fashion this weekend only.",
			ReceivedAt: now.UnixMilli(),
			Channel:    "sms",
		},
		dto.IncomingMessage{
			Sender:     "FRIEND",
			Body:       "ok",
			ReceivedAt: now.UnixMilli(),
			Channel:    "sms",
		},
	)

	return msgs
}
