package main

import (
	"context"
	"os"

	"checkout-and-tracking/internal/config"
	"checkout-and-tracking/internal/modules/cart"
	"checkout-and-tracking/internal/modules/checkout"
	"checkout-and-tracking/internal/modules/tracking"
	"checkout-and-tracking/internal/realtime"
	"checkout-and-tracking/pkg/notify"
	"checkout-and-tracking/pkg/payment"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load config")
	}

	// Notification sinks. Kafka carries the user-facing push pipeline; SES
	// mirrors terminal events to the ops inbox; the log sink always runs.
	sinks := []notify.Notifier{notify.Log{}}
	if cfg.KafkaBrokers != "" {
		sinks = append(sinks, notify.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic))
	}
	if cfg.SESSender != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			logger.Fatal().Err(err).Msg("could not load AWS config")
		}
		sinks = append(sinks, notify.NewSES(sesv2.NewFromConfig(awsCfg), cfg.SESSender, cfg.SESRecipient))
	}
	notifier := notify.NewMulti(sinks...)

	// Live event stream for order and rider updates.
	stream, err := realtime.ConnectAMQP(cfg.AmqpURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not connect to AMQP")
	}
	defer stream.Close()

	// Delivery-fee cache.
	var feeCache cart.CacheInterface
	if cfg.RedisAddr != "" {
		feeCache = cart.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	}

	cartRepo := cart.NewRepository(cfg.BackendBaseURL, cfg.RequestTimeout)
	cartSvc := cart.NewService(cartRepo, feeCache, cfg.TaxRate, cfg.DefaultDeliveryFee)

	checkoutRepo := checkout.NewRepository(cfg.BackendBaseURL, cfg.RequestTimeout)
	poller := checkout.NewPoller(checkoutRepo, notifier, cfg.PollInterval, cfg.PollMaxAttempts)
	cardGateway := payment.NewStripeGateway(cfg.StripeAPIKey)
	checkoutSvc := checkout.NewService(checkoutRepo, poller, cardGateway, notifier)
	checkoutHandler := checkout.NewHandler(checkoutSvc, cartSvc)

	trackingRepo := tracking.NewRepository(cfg.BackendBaseURL, cfg.RequestTimeout)
	trackingSvc := tracking.NewService(trackingRepo, stream, notifier)
	trackingHandler := tracking.NewHandler(trackingSvc, poller)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	api := e.Group("/api", echojwt.WithConfig(echojwt.Config{
		SigningKey: []byte(cfg.JWTSecret),
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				if sub, ok := claims["sub"].(string); ok {
					c.Set("userID", sub)
				}
			}
		},
	}))

	api.POST("/checkout", checkoutHandler.Checkout)
	api.POST("/orders/:orderId/card-callback", checkoutHandler.CardCallback)
	api.POST("/orders/:orderId/track", trackingHandler.StartTracking)
	api.GET("/orders/:orderId/tracking", trackingHandler.GetTracking)
	api.DELETE("/orders/:orderId/track", trackingHandler.StopTracking)

	logger.Info().Str("port", cfg.ServerPort).Msg("gateway listening")
	if err := e.Start(":" + cfg.ServerPort); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
