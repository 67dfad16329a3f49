package server

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/shopkpi/shopkpi/internal/auth/domain"
	authrepository "github.com/shopkpi/shopkpi/internal/auth/repository"
	authservice "github.com/shopkpi/shopkpi/internal/auth/service"
	"github.com/shopkpi/shopkpi/internal/auth/session"
	billingservice "github.com/shopkpi/shopkpi/internal/billing/service"
	"github.com/shopkpi/shopkpi/internal/billing/stripe"
	"github.com/shopkpi/shopkpi/internal/cache"
	"github.com/shopkpi/shopkpi/internal/clock"
	"github.com/shopkpi/shopkpi/internal/config"
	dashboarddomain "github.com/shopkpi/shopkpi/internal/dashboard/domain"
	dashboardrepository "github.com/shopkpi/shopkpi/internal/dashboard/repository"
	dashboardservice "github.com/shopkpi/shopkpi/internal/dashboard/service"
	reportdomain "github.com/shopkpi/shopkpi/internal/report/domain"
	reportrepository "github.com/shopkpi/shopkpi/internal/report/repository"
	reportservice "github.com/shopkpi/shopkpi/internal/report/service"
	"github.com/shopkpi/shopkpi/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testWebhookSecret = "whsec_test"

type stubGateway struct{}

func (stubGateway) CreateCustomer(_ context.Context, email, name string, _ map[string]string) (*stripe.Customer, error) {
	return &stripe.Customer{ID: "cus_test", Email: email, Name: name}, nil
}

func (stubGateway) CreateCheckoutSession(_ context.Context, params stripe.CheckoutParams) (*stripe.CheckoutSession, error) {
	return &stripe.CheckoutSession{ID: "cs_test", URL: "https://checkout.stripe.com/cs_test", Customer: params.CustomerID}, nil
}

func (stubGateway) GetSubscription(_ context.Context, subscriptionID string) (*stripe.Subscription, error) {
	return &stripe.Subscription{ID: subscriptionID, Status: "active"}, nil
}

type testServer struct {
	*Server
	users authdomain.Service
	db    *gorm.DB
	clock *clock.FakeClock
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dbConn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := dbConn.AutoMigrate(&authdomain.User{}, &authdomain.Session{}, &reportdomain.Report{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	cfg := config.Config{
		HTTPAddr:  ":0",
		PublicURL: "https://shopkpi.test",
		AdminKey:  "admin-key",
		CacheTTL:  time.Minute,
		Stripe: config.StripeConfig{
			SecretKey:      "sk_test",
			WebhookSecret:  testWebhookSecret,
			MonthlyPriceID: "price_monthly",
			YearlyPriceID:  "price_yearly",
		},
	}

	log := zap.NewNop()
	repo, sessionRepo := authrepository.New(dbConn)
	users := authservice.New(log, repo, sessionRepo, node)
	reports := reportservice.New(log, reportrepository.New(dbConn), node)

	clk := clock.NewFakeClock(time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC))
	dashboards := dashboardservice.New(log, dashboardrepository.New(dbConn), clk,
		cache.NewTTLCache[string, dashboarddomain.Data](), cfg)
	billing := billingservice.New(log, users, stubGateway{}, cfg)

	srv := NewServer(ServerParams{
		Gin:          NewEngine(log),
		Cfg:          cfg,
		Authsvc:      users,
		Sessions:     session.NewManager(cfg),
		ReportSvc:    reports,
		DashboardSvc: dashboards,
		BillingSvc:   billing,
	})

	return &testServer{Server: srv, users: users, db: dbConn, clock: clk}
}
