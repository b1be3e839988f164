package di

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/adapters/out/db"
	fsout "storefront/internal/adapters/out/firestore"
	"storefront/internal/adapters/out/gcs"
	"storefront/internal/adapters/out/identitytoolkit"
	"storefront/internal/adapters/out/mail"
	"storefront/internal/application/query/catalog"
	"storefront/internal/application/session"
	"storefront/internal/application/store"
	"storefront/internal/application/usecase"
)

// Container assembles the application graph on top of Infra.
type Container struct {
	Infra *Infra

	Cart     *store.CartStore
	Session  *session.Session
	Catalog  *catalog.Query
	Checkout *usecase.CheckoutUsecase

	Handler http.Handler
}

func NewContainer(ctx context.Context, inf *Infra) *Container {
	cfg := inf.Config

	// Outbound adapters
	userRepo := fsout.NewUserRepositoryFS(inf.Firestore)
	orderRepo := fsout.NewOrderRepositoryFS(inf.Firestore)
	snapshotSink := fsout.NewCartSnapshotFS(inf.Firestore)

	provider := identitytoolkit.NewClient(cfg.IdentityAPIKey)
	if strings.TrimSpace(cfg.IdentityAPIKey) == "" {
		log.Printf("[di] WARN: IDENTITY_API_KEY is empty; sign-in will report a configuration error")
	}

	// Session
	sessionOpts := []session.Option{
		session.WithAdminEmail(cfg.AdminEmail),
	}
	if token := inf.BootstrapToken(ctx); token != "" {
		sessionOpts = append(sessionOpts, session.WithBootstrapToken(token))
	}
	if strings.TrimSpace(cfg.SendGridAPIKey) != "" {
		mailer := mail.NewWelcomeMailer(mail.NewSendGridClient(cfg.SendGridAPIKey), cfg.MailFrom, cfg.StoreName)
		sessionOpts = append(sessionOpts, session.WithWelcomeMailer(mailer))
	} else {
		log.Printf("[di] welcome mail disabled (SENDGRID_API_KEY empty)")
	}
	sess := session.New(provider, userRepo, sessionOpts...)

	// Cart: one store per process, persisted under a per-boot session id.
	cart := store.NewCartStore(store.WithSnapshotSink(snapshotSink, uuid.NewString()))

	// Catalog
	var images catalog.ImageResolver
	if inf.GCS != nil && strings.TrimSpace(cfg.ProductImageBucket) != "" {
		images = gcs.NewProductImageResolver(inf.GCS, cfg.ProductImageBucket)
	}
	catalogQuery := catalog.NewQuery(images)

	// Checkout
	checkout := usecase.NewCheckoutUsecase(cart, orderRepo)
	if inf.Postgres != nil {
		checkout = checkout.WithArchiver(db.NewOrderRepositoryPG(inf.Postgres.Client))
	}

	handler := httpin.NewRouter(httpin.RouterDeps{
		Cart:         cart,
		Session:      sess,
		Catalog:      catalogQuery,
		Checkout:     checkout,
		Users:        userRepo,
		FirebaseAuth: inf.FirebaseAuth,
	})

	return &Container{
		Infra:    inf,
		Cart:     cart,
		Session:  sess,
		Catalog:  catalogQuery,
		Checkout: checkout,
		Handler:  handler,
	}
}

// Start kicks off the auth state watcher and the bootstrap sign-in.
func (c *Container) Start(ctx context.Context) {
	if c == nil || c.Session == nil {
		return
	}
	c.Session.Start(ctx)
}

func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Infra != nil {
		c.Infra.Close()
	}
}
