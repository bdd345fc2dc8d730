package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"lettertrack/config"
	"lettertrack/handlers/api"
	"lettertrack/handlers/web"
	"lettertrack/middleware"
	"lettertrack/storage"
	"lettertrack/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nicksnyder/go-i18n/v2/i18n"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to the TOML configuration file")
	flag.Parse()

	utils.Log.Info("Initializing lettertrack...")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		utils.Log.Error("Failed to load config: %v", err)
		os.Exit(1)
	}

	level, err := utils.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		utils.Log.Warn("%v, using INFO", err)
	}
	utils.Log.SetLevel(level)

	if err := utils.InitI18n(cfg.I18n.LocalesDir); err != nil {
		utils.Log.Error("Failed to initialize i18n: %v", err)
	}

	store, err := openStore(cfg)
	if err != nil {
		utils.Log.Error("Failed to open %s storage: %v", cfg.Storage.Backend, err)
		os.Exit(1)
	}
	defer store.Close()

	app := newApp(cfg, store)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		utils.Log.Info("Shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			utils.Log.Error("Shutdown error: %v", err)
		}
	}()

	utils.Log.WithField("backend", cfg.Storage.Backend).Info("Starting server on port %d...", cfg.Server.Port)
	if err := app.Listen(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		utils.Log.Error("Error starting server: %v", err)
	}
}

// openStore opens the backend named in the configuration
func openStore(cfg *config.Config) (storage.LetterStore, error) {
	switch cfg.Storage.Backend {
	case storage.BackendSQLite:
		return storage.OpenSQLite(cfg.SQLitePath())
	case storage.BackendBolt:
		return storage.OpenBolt(cfg.Storage.DataDir)
	case storage.BackendRemote:
		return storage.NewRemote(storage.RemoteOptions{
			BaseURL:     cfg.Remote.BaseURL,
			Timeout:     cfg.Remote.RemoteTimeout(),
			TokenSecret: cfg.JWT.Secret,
		})
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Storage.Backend)
}

// newApp wires middleware and routes around the given store
func newApp(cfg *config.Config, store storage.LetterStore) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        web.NewViews(cfg.Server.TemplatesDir, cfg.Server.ReloadViews),
		ViewsLayout:  "layouts/main",
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(compress.New())
	app.Use(helmet.New(helmet.Config{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "SAMEORIGIN",
		ReferrerPolicy:        "no-referrer",
		ContentSecurityPolicy: "default-src 'self'; style-src 'self' 'unsafe-inline';",
	}))
	app.Use(middleware.LocaleMiddleware())
	app.Use(middleware.RateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.RateWindow()))

	app.Static("/assets", cfg.Server.AssetsDir, fiber.Static{
		Compress:      true,
		CacheDuration: 24 * time.Hour,
	})

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"backend": cfg.Storage.Backend,
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	i18nHandler := &api.I18nHandler{}
	app.Get("/api/i18n/:lang", i18nHandler.GetTranslations)

	// A remote-backed instance is a client of another instance's API and does not serve one
	if cfg.Storage.Backend != storage.BackendRemote {
		apiRoutes := app.Group("/api", middleware.APIAuth(cfg.JWT.Secret))
		api.NewLetterHandler(store).Register(apiRoutes)
	}

	pages := app.Group("", middleware.CSRFProtection(middleware.CSRFConfig{
		TokenLength:  32,
		CookieName:   "csrf_token",
		HeaderName:   "X-CSRF-Token",
		FormField:    "_csrf",
		ContextKey:   "csrf",
		CookieMaxAge: 3600,
		Skipper:      api.IsAPIPath,
	}))
	web.NewLetterHandler(store).Register(pages)

	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, utils.T(localizerOf(c), "error_404"))
	})

	return app
}

// errorHandler answers JSON for API requests and renders the error page otherwise
func errorHandler(c *fiber.Ctx, err error) error {
	if api.IsAPIRequest(c) {
		return api.ErrorHandler(c, err)
	}

	code := utils.ErrorCode(err)
	message := utils.T(localizerOf(c), "error_500")
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	} else if code < 500 {
		message = utils.PublicMessage(err)
	}
	if code >= 500 {
		utils.Log.WithField("path", c.Path()).Error("Request failed: %v", err)
	}

	lang, _ := c.Locals("lang").(string)
	if renderErr := c.Status(code).Render("error", fiber.Map{
		"Lang":  lang,
		"Error": message,
		"Code":  code,
	}); renderErr != nil {
		return c.Status(code).SendString(message)
	}
	return nil
}

func localizerOf(c *fiber.Ctx) *i18n.Localizer {
	l, _ := c.Locals("localizer").(*i18n.Localizer)
	return l
}
