// Package server arma las dependencias desde config.Config y expone el
// handler HTTP listo para servir.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/dropDatabas3/userhub/internal/cache"
	"github.com/dropDatabas3/userhub/internal/config"
	"github.com/dropDatabas3/userhub/internal/email"
	healthctrl "github.com/dropDatabas3/userhub/internal/http/controllers/health"
	userctrl "github.com/dropDatabas3/userhub/internal/http/controllers/user"
	"github.com/dropDatabas3/userhub/internal/http/router"
	healthsvc "github.com/dropDatabas3/userhub/internal/http/services/health"
	usersvc "github.com/dropDatabas3/userhub/internal/http/services/user"
	jwtx "github.com/dropDatabas3/userhub/internal/jwt"
	"github.com/dropDatabas3/userhub/internal/media"
	"github.com/dropDatabas3/userhub/internal/metrics"
	"github.com/dropDatabas3/userhub/internal/observability/logger"
	"github.com/dropDatabas3/userhub/internal/rate"
	"github.com/dropDatabas3/userhub/internal/security/password"
	"github.com/dropDatabas3/userhub/internal/session"
	"github.com/dropDatabas3/userhub/internal/store"
)

// Version se setea con -ldflags en el build.
var Version = "dev"

// App contiene las dependencias vivas del proceso.
type App struct {
	Config   *config.Config
	DB       *bun.DB
	Cache    cache.Client
	Sessions *session.Store
	Tokens   *jwtx.Issuer
	Services usersvc.Services
	Metrics  *metrics.Recorder
	Handler  http.Handler

	closers []func() error
}

// Close libera recursos en orden inverso al de apertura.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build construye la App completa. Ante error libera lo que ya abrió.
func Build(ctx context.Context, cfg *config.Config) (_ *App, err error) {
	log := logger.L().With(logger.Component("server.wiring"))
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	// 1. Credential Store
	db, err := store.Open(ctx, store.Config{
		Driver:          cfg.Storage.Driver,
		DSN:             cfg.Storage.DSN,
		MaxOpenConns:    cfg.Storage.MaxOpenConns,
		MaxIdleConns:    cfg.Storage.MaxIdleConns,
		ConnMaxLifetime: cfg.Storage.ConnMaxLifetime,
	})
	if err != nil {
		return nil, err
	}
	app.DB = db
	app.closers = append(app.closers, db.Close)

	if cfg.Storage.AutoMigrate {
		if err := store.Migrate(ctx, db, cfg.Storage.Driver); err != nil {
			return nil, err
		}
		log.Info("migrations applied", logger.String("driver", cfg.Storage.Driver))
	}

	// 2. Cache + rate limiter (comparten el cliente redis si aplica)
	var limiter rate.Limiter
	switch cfg.Cache.Kind {
	case "redis":
		rdb, err := cache.DialRedis(ctx, cacheConfig(cfg))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, rdb.Close)
		app.Cache = cache.NewRedis(rdb, cfg.Cache.Prefix)
		limiter = newRedisLimiter(cfg, rdb)
	default:
		c, err := cache.New(ctx, cacheConfig(cfg))
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, c.Close)
		app.Cache = c
		if cfg.Rate.Enabled {
			limiter = rate.NewMemoryLimiter(cfg.Cache.Prefix+":rl:", cfg.Rate.Limit, cfg.Rate.Window)
		}
	}
	app.Sessions = session.NewStore(app.Cache, cfg.Session.TTL)

	// 3. Tokens
	app.Tokens = jwtx.NewIssuer(jwtx.Config{
		ActivationSecret: cfg.JWT.ActivationSecret,
		AccessSecret:     cfg.JWT.AccessSecret,
		RefreshSecret:    cfg.JWT.RefreshSecret,
		ActivationTTL:    cfg.JWT.ActivationTTL,
		AccessTTL:        cfg.AccessTTL(),
		RefreshTTL:       cfg.RefreshTTL(),
		CookieDomain:     cfg.Cookies.Domain,
		CookieSameSite:   cfg.Cookies.SameSite,
		CookieSecure:     !cfg.IsDevelopment(),
	})

	// 4. Mail
	notifier, err := email.NewNotifier(email.NewSMTPSender(email.SMTPConfig{
		Host:               cfg.SMTP.Host,
		Port:               cfg.SMTP.Port,
		From:               cfg.SMTP.From,
		Username:           cfg.SMTP.Username,
		Password:           cfg.SMTP.Password,
		TLSMode:            cfg.SMTP.TLS,
		InsecureSkipVerify: cfg.SMTP.InsecureSkipVerify,
	}))
	if err != nil {
		return nil, fmt.Errorf("server: mail templates: %w", err)
	}

	// 5. Avatars
	var avatars media.AvatarHost = media.Disabled{}
	if cfg.MediaEnabled() {
		s3host, err := media.NewS3Host(ctx, media.S3Config{
			Endpoint:     cfg.Media.S3.Endpoint,
			Region:       cfg.Media.S3.Region,
			Bucket:       cfg.Media.S3.Bucket,
			AccessKey:    cfg.Media.S3.AccessKey,
			SecretKey:    cfg.Media.S3.SecretKey,
			PublicURL:    cfg.Media.S3.PublicURL,
			UsePathStyle: cfg.Media.S3.UsePathStyle,
			Folder:       cfg.Media.Folder,
			MaxBytes:     cfg.Server.MaxAvatarBytes,
		})
		if err != nil {
			return nil, err
		}
		avatars = s3host
	} else {
		log.Warn("media storage not configured, avatar uploads disabled")
	}

	// 6. Metrics
	if cfg.Metrics.Enabled {
		rec, err := metrics.New(prometheus.NewRegistry())
		if err != nil {
			return nil, err
		}
		if err := rec.RegisterDB(db.DB, cfg.Storage.Driver); err != nil {
			return nil, err
		}
		if err := rec.RegisterCache(app.Cache); err != nil {
			return nil, err
		}
		app.Metrics = rec
	}

	// 7. Services + controllers + router
	pp := cfg.Security.PasswordPolicy
	users := store.NewUsers(db)
	app.Services = usersvc.NewServices(usersvc.Deps{
		Users:    users,
		Sessions: app.Sessions,
		Tokens:   app.Tokens,
		Mailer:   notifier,
		Avatars:  avatars,
		Policy: password.Policy{
			MinLength:     pp.MinLength,
			RequireUpper:  pp.RequireUpper,
			RequireLower:  pp.RequireLower,
			RequireDigit:  pp.RequireDigit,
			RequireSymbol: pp.RequireSymbol,
		},
		Metrics: app.Metrics,
	})

	health := healthsvc.NewHealthService(healthsvc.Deps{
		Version: Version,
		Checks: []healthsvc.Check{
			{Name: "store", Fn: users.Ping},
			{Name: "cache", Fn: app.Cache.Ping},
		},
	})

	app.Handler = router.New(router.Deps{
		Users: userctrl.NewControllers(app.Services, userctrl.Deps{
			Cookies:       app.Tokens,
			MaxBody:       cfg.Server.MaxBodyBytes,
			MaxAvatarBody: cfg.Server.MaxAvatarBytes,
		}),
		Health:      healthctrl.NewControllers(health),
		Verifier:    app.Tokens,
		Sessions:    app.Sessions,
		RateLimiter: limiter,
		CORSOrigins: cfg.Server.CORSAllowedOrigins,
		Metrics:     app.Metrics,
	})

	return app, nil
}

func cacheConfig(cfg *config.Config) cache.Config {
	return cache.Config{
		Driver:          cfg.Cache.Kind,
		URL:             cfg.Cache.Redis.URL,
		Addr:            cfg.Cache.Redis.Addr,
		Password:        cfg.Cache.Redis.Password,
		DB:              cfg.Cache.Redis.DB,
		Prefix:          cfg.Cache.Prefix,
		CleanupInterval: cfg.Cache.Memory.CleanupInterval,
	}
}

func newRedisLimiter(cfg *config.Config, rdb *redis.Client) rate.Limiter {
	if !cfg.Rate.Enabled {
		return nil
	}
	return rate.NewRedisLimiter(rdb, cfg.Cache.Prefix+":rl:", cfg.Rate.Limit, cfg.Rate.Window)
}
