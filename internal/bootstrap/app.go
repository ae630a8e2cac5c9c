package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"glownexa-backend/internal/ai"
	"glownexa-backend/internal/analyses"
	"glownexa-backend/internal/contact"
	"glownexa-backend/internal/identity"
	"glownexa-backend/internal/mail"
	"glownexa-backend/internal/media"
	"glownexa-backend/internal/services/health"
	"glownexa-backend/internal/shared/auth"
	"glownexa-backend/internal/shared/config"
	"glownexa-backend/internal/shared/server"
	"glownexa-backend/internal/shared/server/middleware"
	"glownexa-backend/internal/shared/storage/db"
	localstore "glownexa-backend/internal/shared/storage/object/local"
	s3store "glownexa-backend/internal/shared/storage/object/s3"
	"glownexa-backend/internal/shared/telemetry"
	"glownexa-backend/internal/users"
)

const redisKeyPrefix = "glownexa:ratelimit:"

// App holds the wired router and the pieces cmd/api drives directly.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	Contact *contact.Service
	// MemoryLimiter is set when limiter windows live in process memory and need pruning.
	MemoryLimiter *middleware.MemoryWindowStore

	closers []func() error
}

// Close releases clients opened by Build, most recent first.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) onClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

// Build selects every backend from cfg and wires the HTTP router.
func Build(ctx context.Context, cfg config.Config) (_ *App, err error) {
	app := &App{Config: cfg}
	defer func() {
		if err != nil {
			_ = app.Close()
		}
	}()

	checks := health.NewService()

	fbApp, err := buildFirebase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	analysisRepo, userRepo, err := buildRepos(ctx, app, cfg, fbApp, checks)
	if err != nil {
		return nil, err
	}

	limiterStore, err := buildLimiterStore(ctx, app, cfg, checks)
	if err != nil {
		return nil, err
	}

	mailer := buildMailer(cfg)
	mediaStore, localDir, err := buildMediaStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	analyzer, err := buildAnalyzer(ctx, app, cfg)
	if err != nil {
		return nil, err
	}
	provider, devProvider, err := buildIdentity(ctx, cfg, fbApp)
	if err != nil {
		return nil, err
	}

	mediaSvc := &media.Service{Store: mediaStore}
	userSvc := users.NewService(userRepo)
	identitySvc := &identity.Service{
		Provider:    provider,
		Users:       userSvc,
		Mailer:      mailer,
		FromName:    cfg.MailFromName,
		FromAddress: cfg.MailFrom,
	}
	contactTo := cfg.ContactTo
	if contactTo == "" {
		contactTo = cfg.SMTP.User
	}
	app.Contact = &contact.Service{Sender: mailer, To: contactTo}

	deps := server.RouterDeps{
		AllowedOrigins: cfg.ClientOrigin,
		TrustedProxies: cfg.TrustedProxies,
		Verifier:       provider,
		LimiterStore:   limiterStore,
		Limit:          middleware.Window{Limit: cfg.ContactRateLimit, Period: cfg.ContactRateWindow},
		Health:         health.NewHandler(checks),
		Contact:        contact.NewHandler(app.Contact),
		Identity:       identity.NewHandler(identitySvc),
		Users:          users.NewHandler(userSvc),
		Analyses:       analyses.NewHandler(analyses.NewService(analysisRepo, mediaSvc, analyzer)),
		Media:          media.NewHandler(mediaSvc),
		LocalMediaDir:  localDir,
	}
	if devProvider != nil {
		deps.DevIdentity = &identity.DevHandler{Provider: devProvider, ContinueOrigins: continueOrigins(cfg)}
	}
	app.Router = server.NewRouter(deps)

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":         cfg.Env,
		"media_store": cfg.MediaStore,
		"firebase":    fbApp != nil,
		"redis":       app.MemoryLimiter == nil,
		"dev_auth":    devProvider != nil,
	})
	return app, nil
}

func buildFirebase(ctx context.Context, cfg config.Config) (*firebase.App, error) {
	if strings.TrimSpace(cfg.FirebaseProjectID) == "" {
		return nil, nil
	}
	var opts []option.ClientOption
	if creds := strings.TrimSpace(cfg.FirebaseCredentialsJSON); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	}
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase app: %w", err)
	}
	return fbApp, nil
}

func buildRepos(ctx context.Context, app *App, cfg config.Config, fbApp *firebase.App, checks *health.Service) (analyses.Repo, users.Repo, error) {
	if fbApp != nil {
		client, err := fbApp.Firestore(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("firestore client: %w", err)
		}
		app.onClose(client.Close)
		checks.Register("firestore", firestoreCheck(client))
		return analyses.NewFirestoreRepo(client), users.NewFirestoreRepo(client), nil
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	if sqlDB == nil {
		return analyses.NewMemoryRepo(), users.NewMemoryRepo(), nil
	}
	app.onClose(sqlDB.Close)
	checks.Register("database", sqlDB.PingContext)
	return &analyses.PGRepo{DB: sqlDB}, &users.PGRepo{DB: sqlDB}, nil
}

func firestoreCheck(client *firestore.Client) health.Check {
	return func(ctx context.Context) error {
		_, err := client.Collection(users.Collection).Limit(1).Documents(ctx).GetAll()
		return err
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Info("bootstrap.memory_repos", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID or DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Error("bootstrap.database_fallback", map[string]any{"error": err})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildLimiterStore(ctx context.Context, app *App, cfg config.Config, checks *health.Service) (middleware.WindowStore, error) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		app.MemoryLimiter = middleware.NewMemoryWindowStore(time.Now)
		return app.MemoryLimiter, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	app.onClose(client.Close)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	checks.Register("redis", func(ctx context.Context) error { return client.Ping(ctx).Err() })
	return middleware.NewRedisWindowStore(client, redisKeyPrefix, time.Now), nil
}

func buildMailer(cfg config.Config) mail.Sender {
	switch {
	case strings.TrimSpace(cfg.SendGridAPIKey) != "":
		return mail.NewSendGridSender(cfg.SendGridAPIKey, cfg.MailFrom)
	case cfg.SMTP.User == "" && isDevLike(cfg.Env):
		telemetry.Info("bootstrap.mail_recorder", map[string]any{"reason": "SMTP_USER empty"})
		return &mail.Recorder{}
	default:
		return mail.NewSMTPSender(mail.SMTPConfig{
			Host:   cfg.SMTP.Host,
			Port:   cfg.SMTP.Port,
			Secure: cfg.SMTP.Secure,
			User:   cfg.SMTP.User,
			Pass:   cfg.SMTP.Pass,
		})
	}
}

func buildMediaStore(ctx context.Context, cfg config.Config) (media.Store, string, error) {
	switch cfg.MediaStore {
	case "cloudinary":
		store, err := media.NewCloudinaryStore(media.CloudinaryOptions{
			URL:       cfg.Cloudinary.URL,
			CloudName: cfg.Cloudinary.CloudName,
			APIKey:    cfg.Cloudinary.APIKey,
			APISecret: cfg.Cloudinary.APISecret,
		})
		return store, "", err
	case "s3":
		objects, err := s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			KMSKeyID:      cfg.SSEKMSKeyID,
			PublicBaseURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, "", err
		}
		return media.NewObjectBackedStore(objects), "", nil
	default:
		objects := localstore.New(cfg.LocalMediaDir, cfg.PublicURL+"/media")
		return media.NewObjectBackedStore(objects), objects.Dir(), nil
	}
}

func buildAnalyzer(ctx context.Context, app *App, cfg config.Config) (ai.Analyzer, error) {
	if strings.TrimSpace(cfg.GeminiAPIKey) == "" {
		return ai.Placeholder{}, nil
	}
	gemini, err := ai.NewGeminiAnalyzer(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		return nil, err
	}
	app.onClose(gemini.Close)
	return ai.RetryAnalyzer{Base: gemini}, nil
}

func buildIdentity(ctx context.Context, cfg config.Config, fbApp *firebase.App) (identity.Provider, *identity.JWTProvider, error) {
	if fbApp != nil {
		provider, err := identity.NewFirebaseProvider(ctx, fbApp, cfg.VerifyContinueURL, cfg.ResetContinueURL)
		if err != nil {
			return nil, nil, err
		}
		return provider, nil, nil
	}
	if !isDevLike(cfg.Env) {
		return nil, nil, fmt.Errorf("FIREBASE_PROJECT_ID is required in %s", cfg.Env)
	}
	signer, err := auth.NewSigner(cfg.JWTSecret, cfg.Env, time.Now)
	if err != nil {
		return nil, nil, err
	}
	telemetry.Info("bootstrap.dev_identity", map[string]any{"reason": "FIREBASE_PROJECT_ID empty"})
	provider := identity.NewJWTProvider(signer, cfg.PublicURL+"/api/auth/action", cfg.VerifyContinueURL, cfg.ResetContinueURL)
	return provider, provider, nil
}

// continueOrigins is where dev action links may send the browser afterwards.
func continueOrigins(cfg config.Config) []string {
	var out []string
	for _, raw := range append([]string{cfg.VerifyContinueURL, cfg.ResetContinueURL}, cfg.ClientOrigin...) {
		if origin := identity.Origin(raw); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "test":
		return true
	default:
		return false
	}
}
