// internal/platform/di/infra.go
package di

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
	_ "github.com/lib/pq"
	"google.golang.org/api/option"

	appcfg "remarket/internal/infra/config"
	"remarket/internal/infra/secrets"
)

// Infra owns the external clients shared by the whole process.
// Firestore is strict (boot fails without it); Firebase Auth, Secret
// Manager, Redis and Postgres are best-effort: the app degrades (no
// auth'd routes / no cache / no reporting) instead of refusing to
// start.
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Redis         *redis.Client
	ReportDB      *sql.DB

	Secrets *secrets.ProviderSM

	// Secrets resolved once at boot (env first, Secret Manager second).
	PaymentAPIKey        string
	PaymentWebhookSecret string
	SendGridAPIKey       string
}

func NewInfra(ctx context.Context) (*Infra, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	inf := &Infra{Config: cfg, ProjectID: projectID}

	var clientOpts []option.ClientOption
	if credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile); credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di] using credentials file for GCP clients")
	} else {
		log.Printf("[di] using Application Default Credentials")
	}

	// Firestore (strict)
	fsClient, err := firestore.NewClient(ctx, projectID, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("di: firestore.NewClient failed (project=%s): %w", projectID, err)
	}
	inf.Firestore = fsClient
	log.Printf("[di] Firestore connected project=%s", projectID)

	// Firebase Auth (best-effort)
	fbApp, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, clientOpts...)
	if err != nil {
		log.Printf("[di] WARN: firebase app init failed: %v (auth'd routes will 503)", err)
	} else if authClient, err := fbApp.Auth(ctx); err != nil {
		log.Printf("[di] WARN: firebase auth init failed: %v (auth'd routes will 503)", err)
	} else {
		inf.FirebaseAuth = authClient
		log.Printf("[di] Firebase Auth initialized")
	}

	// Secret Manager (best-effort)
	if sm, err := secretmanager.NewClient(ctx, clientOpts...); err != nil {
		log.Printf("[di] WARN: secretmanager.NewClient failed: %v (env-only secrets)", err)
	} else {
		inf.SecretManager = sm
	}
	inf.Secrets = secrets.NewProviderSM(inf.SecretManager, projectID)

	inf.resolveSecrets(ctx)

	// Redis (best-effort)
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("[di] WARN: redis ping failed addr=%s: %v (cache disabled)", addr, err)
			_ = rdb.Close()
		} else {
			inf.Redis = rdb
			log.Printf("[di] Redis connected addr=%s", addr)
		}
	} else {
		log.Printf("[di] Redis not configured (cache disabled)")
	}

	// Postgres reporting mirror (best-effort)
	if dsn := strings.TrimSpace(cfg.DatabaseURL); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			err = db.PingContext(ctx)
		}
		if err != nil {
			log.Printf("[di] WARN: postgres connect failed: %v (reporting disabled)", err)
			if db != nil {
				_ = db.Close()
			}
		} else {
			inf.ReportDB = db
			log.Printf("[di] Postgres reporting mirror connected")
		}
	} else {
		log.Printf("[di] Postgres not configured (reporting disabled)")
	}

	return inf, nil
}

// resolveSecrets fills the gateway and mail credentials, preferring
// the env-sourced config values and falling back to Secret Manager.
func (i *Infra) resolveSecrets(ctx context.Context) {
	resolve := func(fromConfig, envKey, secretID string) string {
		if v := strings.TrimSpace(fromConfig); v != "" {
			return v
		}
		v, err := i.Secrets.Resolve(ctx, envKey, secretID)
		if err != nil {
			log.Printf("[di] WARN: secret %s unresolved: %v", secretID, err)
			return ""
		}
		return v
	}

	i.PaymentAPIKey = resolve(i.Config.PaymentAPIKey, "PAYMENT_API_KEY", "payment-api-key")
	i.PaymentWebhookSecret = resolve(i.Config.PaymentWebhookSecret, "PAYMENT_WEBHOOK_SECRET", "payment-webhook-secret")
	i.SendGridAPIKey = resolve(i.Config.SendGridAPIKey, "SENDGRID_API_KEY", "sendgrid-api-key")
}

func (i *Infra) Close() error {
	if i == nil {
		return nil
	}
	if i.Firestore != nil {
		_ = i.Firestore.Close()
	}
	if i.SecretManager != nil {
		_ = i.SecretManager.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.ReportDB != nil {
		_ = i.ReportDB.Close()
	}
	return nil
}
