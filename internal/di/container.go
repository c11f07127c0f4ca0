package di

import (
	"github.com/lakpay/mpgs-hosted-checkout/internal/config"
	"github.com/lakpay/mpgs-hosted-checkout/internal/gateway"
	"github.com/lakpay/mpgs-hosted-checkout/internal/handler"
	"github.com/lakpay/mpgs-hosted-checkout/internal/redis"
	"github.com/lakpay/mpgs-hosted-checkout/internal/service"
	"github.com/lakpay/mpgs-hosted-checkout/internal/session"
)

// Container holds all dependencies for the checkout service
type Container struct {
	// Infrastructure
	Redis        *redis.Client
	SessionStore session.Store

	// Gateway client
	Gateway gateway.API

	// Services
	CheckoutService service.CheckoutService

	// Handlers
	HealthHandler   *handler.HealthHandler
	CheckoutHandler *handler.CheckoutHandler
	PagesHandler    *handler.PagesHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	Config  *config.Config
	Redis   *redis.Client
	Gateway gateway.API
	WireLog *gateway.WireLog
}

// NewContainer creates a new dependency injection container. Redis is
// optional: without it sessions live in process memory, which is fine for a
// single instance.
func NewContainer(cfg *ContainerConfig) (*Container, error) {
	c := &Container{
		Redis:   cfg.Redis,
		Gateway: cfg.Gateway,
	}

	gw := cfg.Config.Gateway

	if c.Gateway == nil {
		client, err := gateway.NewClient(&gateway.Config{
			BaseURL:      gw.BaseURL(),
			MerchantID:   gw.MerchantID,
			APIPassword:  gw.APIPassword,
			APIVersion:   gw.APIVersion,
			Currency:     gw.Currency,
			MerchantName: gw.MerchantName,
		}, cfg.WireLog)
		if err != nil {
			return nil, err
		}
		c.Gateway = client
	}

	if c.Redis != nil {
		c.SessionStore = session.NewRedisStore(c.Redis, gw.SessionTimeout)
	} else {
		c.SessionStore = session.NewMemoryStore(gw.SessionTimeout)
	}

	c.CheckoutService = service.NewCheckoutService(c.Gateway, c.SessionStore, &service.CheckoutServiceConfig{
		Currency:         gw.Currency,
		DefaultOperation: gateway.OperationPurchase,
	})

	c.HealthHandler = handler.NewHealthHandler(c.Redis)
	c.CheckoutHandler = handler.NewCheckoutHandler(c.CheckoutService)
	c.PagesHandler = handler.NewPagesHandler(handler.PageData{
		MerchantName: gw.MerchantName,
		GatewayURL:   gw.BaseURL(),
		Currency:     gw.Currency,
	})

	return c, nil
}
