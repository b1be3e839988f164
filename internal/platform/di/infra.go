package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	appcfg "storefront/internal/infra/config"
	"storefront/internal/infra/database"
)

// Infra owns the external clients shared across the container.
// Firestore is strict (boot fails without it); Firebase Auth, GCS,
// Secret Manager and Postgres are best-effort (warn and continue,
// the dependent features degrade).
type Infra struct {
	Config    *appcfg.Config
	ProjectID string

	Firestore     *firestore.Client
	GCS           *storage.Client
	FirebaseApp   *firebase.App
	FirebaseAuth  *firebaseauth.Client
	SecretManager *secretmanager.Client
	Postgres      *database.DB
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

	inf := &Infra{
		Config:    cfg,
		ProjectID: projectID,
	}

	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di] using credentials file for GCP clients")
	} else {
		log.Printf("[di] using Application Default Credentials")
	}

	// Firestore (strict)
	{
		fsClient, err := firestore.NewClient(ctx, projectID, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("di: firestore.NewClient failed (project=%s): %w", projectID, err)
		}
		inf.Firestore = fsClient
		log.Printf("[di] Firestore connected project=%s", projectID)
	}

	// GCS (best-effort; product image URLs fall back to bare refs)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: storage.NewClient failed: %v (image resolution disabled)", err)
		} else {
			inf.GCS = gcsClient
		}
	}

	// Secret Manager (best-effort; used to resolve the bootstrap token)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: secretmanager.NewClient failed: %v", err)
		} else {
			inf.SecretManager = sm
		}
	}

	// Firebase App/Auth (best-effort; checkout token verification degrades)
	{
		fbCfg := &firebase.Config{ProjectID: strings.TrimSpace(cfg.FirebaseProjectID)}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: firebase app init failed: %v", err)
		} else {
			inf.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di] WARN: firebase auth init failed: %v", err)
			} else {
				inf.FirebaseAuth = authClient
			}
		}
	}

	// Postgres (best-effort; order archiving is skipped without it)
	if strings.TrimSpace(cfg.PostgresHost) != "" {
		pg, err := database.NewConnection(cfg.PostgresHost, cfg.PostgresPort, cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB)
		if err != nil {
			log.Printf("[di] WARN: postgres connection failed: %v (order archiving disabled)", err)
		} else {
			inf.Postgres = pg
		}
	}

	return inf, nil
}

// BootstrapToken returns the custom sign-in token, preferring the Secret
// Manager secret over the raw env value.
func (i *Infra) BootstrapToken(ctx context.Context) string {
	if i == nil || i.Config == nil {
		return ""
	}
	secretName := strings.TrimSpace(i.Config.BootstrapTokenSecret)
	if secretName != "" && i.SecretManager != nil {
		if v, err := i.accessSecret(ctx, secretName); err != nil {
			log.Printf("[di] WARN: bootstrap token secret read failed: %v", err)
		} else if v != "" {
			return v
		}
	}
	return strings.TrimSpace(i.Config.BootstrapToken)
}

func (i *Infra) accessSecret(ctx context.Context, secretID string) (string, error) {
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", i.ProjectID, secretID)
	resp, err := i.SecretManager.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(resp.GetPayload().GetData())), nil
}

func (i *Infra) Close() {
	if i == nil {
		return
	}
	if i.Postgres != nil {
		if err := i.Postgres.Close(); err != nil {
			log.Printf("[di] postgres close: %v", err)
		}
	}
	if i.SecretManager != nil {
		if err := i.SecretManager.Close(); err != nil {
			log.Printf("[di] secretmanager close: %v", err)
		}
	}
	if i.GCS != nil {
		if err := i.GCS.Close(); err != nil {
			log.Printf("[di] gcs close: %v", err)
		}
	}
	if i.Firestore != nil {
		if err := i.Firestore.Close(); err != nil {
			log.Printf("[di] firestore close: %v", err)
		}
	}
}
