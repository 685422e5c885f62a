// internal/app/bootstrap/routes.go
package bootstrap

import (
	"crypto/sha256"
	"net/http"

	authgooglefeature "github.com/dalemusser/eventhub/internal/app/features/authgoogle"
	coordinatorfeature "github.com/dalemusser/eventhub/internal/app/features/coordinator"
	dashboardfeature "github.com/dalemusser/eventhub/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/eventhub/internal/app/features/errors"
	eventsfeature "github.com/dalemusser/eventhub/internal/app/features/events"
	healthfeature "github.com/dalemusser/eventhub/internal/app/features/health"
	homefeature "github.com/dalemusser/eventhub/internal/app/features/home"
	loginfeature "github.com/dalemusser/eventhub/internal/app/features/login"
	logoutfeature "github.com/dalemusser/eventhub/internal/app/features/logout"
	monitoringfeature "github.com/dalemusser/eventhub/internal/app/features/monitoring"
	publicapifeature "github.com/dalemusser/eventhub/internal/app/features/publicapi"
	reviewsfeature "github.com/dalemusser/eventhub/internal/app/features/reviews"
	schedulesfeature "github.com/dalemusser/eventhub/internal/app/features/schedules"
	systemusersfeature "github.com/dalemusser/eventhub/internal/app/features/systemusers"
	auditstore "github.com/dalemusser/eventhub/internal/app/store/audit"
	detailsstore "github.com/dalemusser/eventhub/internal/app/store/eventdetails"
	eventstore "github.com/dalemusser/eventhub/internal/app/store/events"
	"github.com/dalemusser/eventhub/internal/app/store/oauthstate"
	userstore "github.com/dalemusser/eventhub/internal/app/store/users"
	"github.com/dalemusser/eventhub/internal/app/system/auditlog"
	"github.com/dalemusser/eventhub/internal/app/system/auth"
	"github.com/dalemusser/eventhub/internal/app/system/perflog"
	"github.com/dalemusser/eventhub/internal/app/system/review"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler for the app.
//
// WAFFLE calls this after configuration, DB connection, schema setup,
// and Startup have completed. It boots the template engine, builds the
// session manager and shared services (audit logger, review workflow,
// perf buffer), and mounts every feature router:
//
//   - public: home, health, static assets, the JSON API
//   - auth: login, logout, Google OAuth
//   - admin: dashboard, events, reviews, system users, monitoring
//   - coordinator: the coordinator dashboard and details submission
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	db := deps.MongoDatabase
	secure := coreCfg.Env == "prod"

	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so role changes and
	// disabled accounts take effect immediately.
	users := userstore.New(db)
	sessionMgr.SetUserFetcher(userstore.NewFetcher(users, logger))

	// Boot the template engine once at startup. Dev mode enables
	// template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	// Shared services.
	errLog := errorsfeature.NewErrorLogger(logger)
	audit := auditlog.New(auditstore.New(db), logger)
	workflow := review.NewWorkflow(deps.MongoClient, eventstore.New(db), detailsstore.New(db), audit, logger)

	perfCapacity := appCfg.PerfLogCapacity
	if perfCapacity <= 0 {
		perfCapacity = perflog.DefaultCapacity
	}
	perfBuf := perflog.NewBuffer(perfCapacity)

	googleEnabled := appCfg.GoogleClientID != "" && appCfg.GoogleClientSecret != ""

	r := chi.NewRouter()
	r.Use(perflog.Middleware(perfBuf))
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators.
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Static assets with pre-compressed file support (gzip/brotli).
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// The JSON API is session-free and CSRF-exempt. The bootstrap
	// admin endpoint rides on the same subtree with its own header
	// secret.
	apiHandler := publicapifeature.NewHandler(db, logger)
	api := publicapifeature.Routes(apiHandler, appCfg.CORSAllowedOrigins)
	api.Mount("/system", systemusersfeature.BootstrapRoutes(&systemusersfeature.BootstrapAPI{
		Users:  users,
		Secret: appCfg.AdminSecret,
		Log:    logger,
	}))
	r.Mount("/api", api)

	// Everything below serves HTML and takes CSRF protection. The key
	// is derived from the session key so deployments only manage one
	// secret.
	csrfKey := sha256.Sum256([]byte("csrf:" + appCfg.SessionKey))
	csrfProtect := csrf.Protect(csrfKey[:],
		csrf.Secure(secure),
		csrf.Path("/"),
	)

	r.Group(func(web chi.Router) {
		web.Use(csrfProtect)

		// Authentication.
		loginHandler := loginfeature.NewHandler(db, sessionMgr, errLog, audit, googleEnabled, logger)
		web.Mount("/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, audit, logger)
		web.Mount("/logout", logoutfeature.Routes(logoutHandler))

		if googleEnabled {
			googleHandler := authgooglefeature.NewHandler(db, sessionMgr, errLog, audit,
				oauthstate.New(db), appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
			web.Mount("/auth/google", authgooglefeature.Routes(googleHandler))
		}

		// Error pages.
		errorsHandler := errorsfeature.NewHandler()
		web.Get("/forbidden", errorsHandler.Forbidden)
		web.Get("/unauthorized", errorsHandler.Unauthorized)

		// Admin area.
		dashboardHandler := dashboardfeature.NewHandler(db, errLog, logger)
		web.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))

		scheduleHandler := schedulesfeature.NewHandler(db, errLog, audit, logger)
		eventsHandler := eventsfeature.NewHandler(db, errLog, audit, logger)
		web.Mount("/events", eventsfeature.Routes(eventsHandler, sessionMgr,
			schedulesfeature.Routes(scheduleHandler, sessionMgr)))

		reviewsHandler := reviewsfeature.NewHandler(db, workflow, errLog, logger)
		web.Mount("/reviews", reviewsfeature.Routes(reviewsHandler, sessionMgr))

		sysUsersHandler := systemusersfeature.NewHandler(db, errLog, audit, logger)
		web.Mount("/system-users", systemusersfeature.Routes(sysUsersHandler, sessionMgr))

		monitoringHandler := monitoringfeature.NewHandler(db, perfBuf, errLog, logger)
		web.Mount("/monitoring", monitoringfeature.Routes(monitoringHandler, sessionMgr))

		// Coordinator area.
		coordinatorHandler := coordinatorfeature.NewHandler(db, workflow, errLog, logger)
		web.Mount("/coordinator", coordinatorfeature.Routes(coordinatorHandler, sessionMgr))

		// Public home page, mounted last so specific routes win. Its
		// subrouter also carries the not-found page since the "/"
		// mount catches every path no other route claims.
		homeHandler := homefeature.NewHandler(db, logger)
		homeRouter := homefeature.Routes(homeHandler)
		homeRouter.NotFound(errorsHandler.NotFound)
		web.Mount("/", homeRouter)
	})

	return r, nil
}
