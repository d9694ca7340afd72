package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/layer-3/cookiecheck/adapters/audit"
	"github.com/layer-3/cookiecheck/adapters/browser"
	"github.com/layer-3/cookiecheck/adapters/remote"
	"github.com/layer-3/cookiecheck/adapters/store"
	"github.com/layer-3/cookiecheck/adapters/tokenizer"
	"github.com/layer-3/cookiecheck/internal/config"
	"github.com/layer-3/cookiecheck/ports"
	"github.com/layer-3/cookiecheck/service"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const tokenIssuer = "cookiecheck"

// app holds everything serve and verify need, plus what must be shut down
type app struct {
	service *service.VerificationService
	health  service.VerifierHealth

	manager   *browser.Manager
	audit     *audit.AsyncSink
	publisher interface{ Close() error }
	redis     *redis.Client

	log *zap.Logger
}

func build(cfg *config.Config, log *zap.Logger) (*app, error) {
	a := &app{log: log}

	requested, ok := service.ParseMode(cfg.Verifier.Mode)
	if !ok {
		log.Warn("unknown verifier mode, using auto", zap.String("mode", cfg.Verifier.Mode))
	}

	manager := browser.NewManager(browser.Config{
		Bin:           cfg.Browser.Bin,
		DataDir:       cfg.Browser.DataDir,
		Headless:      cfg.Browser.Headless,
		MaxConcurrent: cfg.Browser.MaxConcurrent,
		Flags:         cfg.Browser.Flags,
		BaseURL:       cfg.Verifier.BaseURL,
	}, log)

	browserAvailable := manager.Available()
	mode, reason := service.ResolveMode(requested, browserAvailable, cfg.Remote.Configured())
	a.health = service.NewVerifierHealth(mode, reason, browserAvailable, cfg.Remote.Configured())

	log.Info("verifier mode resolved",
		zap.String("requested", string(requested)),
		zap.String("mode", string(mode)),
		zap.String("reason", reason),
	)

	var verifier ports.Verifier
	switch mode {
	case service.ModeLocal:
		a.manager = manager
		verifier = service.NewBrowserVerifier(
			manager,
			service.NewNavigator(cfg.Verifier.BaseURL, cfg.Browser.PollInterval, cfg.Browser.SettleSnapshots, log.Named("navigator")),
			service.NewExtractor(cfg.Verifier.BaseURL, cfg.Browser.ProfileFallbackTimeout, cfg.Browser.PollInterval, log.Named("extractor")),
			log.Named("verifier"),
		)
	case service.ModeRemote:
		var tok ports.Tokenizer
		if cfg.Remote.JWTSecret != "" {
			tok = tokenizer.NewJWTTokenizer([]byte(cfg.Remote.JWTSecret), tokenIssuer)
		}
		verifier = remote.NewVerifier(remote.Config{
			Endpoint:  cfg.Remote.Endpoint,
			APIKey:    cfg.Remote.APIKey,
			APIHeader: cfg.Remote.APIHeader,
			BaseURL:   cfg.Verifier.BaseURL,
			Timeout:   cfg.Remote.Timeout,
			RetryMax:  cfg.Remote.RetryMax,
		}, tok, log.Named("remote"))
	default:
		verifier = service.DisabledVerifier{Reason: reason}
	}

	if cfg.Cache.TTL > 0 && mode != service.ModeDisabled {
		outcomes, err := a.outcomeStore(cfg)
		if err != nil {
			return nil, err
		}
		verifier = service.NewCachedVerifier(verifier, outcomes, cfg.Cache.TTL, log.Named("cache"))
	}

	sink, err := a.auditSink(cfg)
	if err != nil {
		a.close(context.Background())
		return nil, err
	}
	a.audit = audit.NewAsyncSink(sink, cfg.Audit.Buffer, log.Named("audit"))

	a.service = service.NewVerificationService(verifier, mode.Source(), a.audit, log.Named("service"), cfg.Verifier.Timeout)
	return a, nil
}

func (a *app) redisClient(cfg *config.Config) (*redis.Client, error) {
	if a.redis != nil {
		return a.redis, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	a.redis = redis.NewClient(opts)
	return a.redis, nil
}

func (a *app) outcomeStore(cfg *config.Config) (ports.OutcomeStore, error) {
	if cfg.Cache.Backend != "redis" {
		return store.NewMemoryStore(), nil
	}
	client, err := a.redisClient(cfg)
	if err != nil {
		return nil, err
	}
	return store.NewRedisStore(client), nil
}

func (a *app) auditSink(cfg *config.Config) (ports.AuditSink, error) {
	switch cfg.Audit.Sink {
	case "none":
		return audit.Nop{}, nil
	case "redis":
		client, err := a.redisClient(cfg)
		if err != nil {
			return nil, err
		}
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: client,
			},
			audit.NewZapLoggerAdapter(a.log.Named("watermill")),
		)
		if err != nil {
			return nil, fmt.Errorf("create redis publisher: %w", err)
		}
		a.publisher = publisher
		return audit.NewWatermillSink(publisher, cfg.Audit.Topic), nil
	default:
		return audit.NewLogSink(a.log), nil
	}
}

// close drains the audit buffer first, then stops the engine and connections
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.audit != nil {
		if err := a.audit.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("drain audit: %w", err))
		}
	}
	if a.manager != nil {
		if err := a.manager.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("shutdown browser: %w", err))
		}
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
