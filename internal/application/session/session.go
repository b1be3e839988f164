package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/user"
)

// State names the phases of the identity-resolution protocol.
type State string

const (
	StateInitializing   State = "initializing"
	StateAuthenticating State = "authenticating"
	StateRoleLookup     State = "role_lookup"
	StateReady          State = "ready"
)

// DefaultAdminEmail is the designated bootstrap administrator address:
// registration with exactly this email yields the admin role.
const DefaultAdminEmail = "admin@example.com"

const welcomeMailTimeout = 10 * time.Second

// Snapshot is the authoritative (userId, role, ready) tuple consuming views
// render from. Ready becomes true once resolution has completed, successfully
// or not; it gates the login/register entry points.
type Snapshot struct {
	UserID string    `json:"userId,omitempty"`
	Role   user.Role `json:"role"`
	Ready  bool      `json:"ready"`
	State  State     `json:"state"`
}

// Session reconciles the asynchronous identity provider and the asynchronous
// document store into a single published tuple.
//
// The provider's auth-state stream is the single source of truth. Each firing
// bumps an epoch; a role lookup result is applied only while its epoch is
// still current, so an in-flight lookup for a superseded identity can never
// overwrite a newer state. There is no cancellation of in-flight lookups;
// stale results are simply discarded at completion time.
type Session struct {
	provider Provider
	users    user.Repository
	mailer   WelcomeMailer

	adminEmail     string
	bootstrapToken string

	mu     sync.Mutex
	state  State
	userID string
	role   user.Role
	ready  bool
	epoch  uint64

	subs   map[int]func(Snapshot)
	nextID int
}

type Option func(*Session)

// WithBootstrapToken supplies the externally provided one-time credential
// tried before falling back to anonymous sign-in.
func WithBootstrapToken(token string) Option {
	return func(s *Session) { s.bootstrapToken = strings.TrimSpace(token) }
}

// WithAdminEmail overrides the bootstrap administrator address.
func WithAdminEmail(email string) Option {
	return func(s *Session) {
		if e := strings.TrimSpace(email); e != "" {
			s.adminEmail = e
		}
	}
}

// WithWelcomeMailer enables the best-effort registration welcome mail.
func WithWelcomeMailer(m WelcomeMailer) Option {
	return func(s *Session) { s.mailer = m }
}

func New(provider Provider, users user.Repository, opts ...Option) *Session {
	s := &Session{
		provider:   provider,
		users:      users,
		adminEmail: DefaultAdminEmail,
		state:      StateInitializing,
		role:       user.RoleUnknown,
		subs:       map[int]func(Snapshot){},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start registers the auth-state listener and kicks off the background
// bootstrap sign-in. It never blocks: bootstrap failures are logged and the
// session proceeds to Ready(unauthenticated) so the rest of the app renders.
func (s *Session) Start(ctx context.Context) {
	if s.provider == nil || s.users == nil {
		log.Printf("[session] WARN: provider or user repository missing; session stays not-ready")
		return
	}

	go s.watch(ctx)
	go s.bootstrap(ctx)
}

func (s *Session) watch(ctx context.Context) {
	states := s.provider.AuthStates()
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-states:
			if !ok {
				return
			}
			s.handleAuthState(ctx, st)
		}
	}
}

// bootstrap attempts the one-time custom-token sign-in when configured,
// falling back to anonymous on ANY failure (including the configuration
// error where anonymous auth is disabled; logged, never user-facing).
func (s *Session) bootstrap(ctx context.Context) {
	s.setState(StateAuthenticating)

	if s.bootstrapToken != "" {
		if _, err := s.provider.SignInWithCustomToken(ctx, s.bootstrapToken); err == nil {
			log.Printf("[session] bootstrap: custom token sign-in ok")
			return
		} else {
			log.Printf("[session] bootstrap: custom token sign-in failed, falling back to anonymous: %v", err)
		}
	}

	if _, err := s.provider.SignInAnonymously(ctx); err != nil {
		log.Printf("[session] bootstrap: anonymous sign-in failed: %v", err)
		// Do not block rendering: publish Ready(unauthenticated).
		s.mu.Lock()
		s.epoch++
		s.applySignedOutLocked()
		snap := s.snapshotLocked()
		subs := s.listenersLocked()
		s.mu.Unlock()
		notify(subs, snap)
	}
}

// handleAuthState re-enters the protocol for one firing of the stream.
func (s *Session) handleAuthState(ctx context.Context, st AuthState) {
	uid := strings.TrimSpace(st.UserID)

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch

	if uid == "" {
		// Sign-out: the service itself is still available, so ready stays true.
		s.applySignedOutLocked()
		snap := s.snapshotLocked()
		subs := s.listenersLocked()
		s.mu.Unlock()
		log.Printf("[session] auth state: signed out")
		notify(subs, snap)
		return
	}

	// Keep the already-resolved role while re-looking-up the SAME identity
	// (the stream re-fires after interactive login); a changed identity
	// falls back to unknown until its lookup lands.
	if uid != s.userID {
		s.role = user.RoleUnknown
	}
	s.userID = uid
	s.state = StateRoleLookup
	snap := s.snapshotLocked()
	subs := s.listenersLocked()
	s.mu.Unlock()

	log.Printf("[session] auth state: uid=%s (role lookup)", uid)
	notify(subs, snap)

	go s.resolveRole(ctx, uid, "", epoch)
}

// resolveRole reads users/{uid}, defaulting and writing back when the
// document is missing, then applies the result iff epoch is still current.
func (s *Session) resolveRole(ctx context.Context, uid, email string, epoch uint64) {
	role, err := s.lookupOrDefault(ctx, uid, email)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Printf("[session] discarding stale role lookup for uid=%s (epoch %d < %d)", uid, epoch, s.epoch)
		return
	}

	if err != nil {
		// Never hang the UI: ready goes true with role unknown.
		log.Printf("[session] WARN: role lookup failed for uid=%s: %v", uid, err)
		s.role = user.RoleUnknown
	} else {
		s.role = role
	}
	s.ready = true
	s.state = StateReady
	snap := s.snapshotLocked()
	subs := s.listenersLocked()
	s.mu.Unlock()

	notify(subs, snap)
}

// lookupOrDefault implements the role-lookup-or-default-creation step:
// existing document wins (absent field defaults to customer via ParseRole);
// a missing document defaults to customer AND is written back with merge
// semantics so a second read in the same session agrees with the first.
func (s *Session) lookupOrDefault(ctx context.Context, uid, email string) (user.Role, error) {
	u, err := s.users.GetByID(ctx, uid)
	if err == nil {
		return u.Role, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.RoleUnknown, err
	}

	if err := s.users.EnsureRole(ctx, uid, email, user.RoleCustomer); err != nil {
		return user.RoleUnknown, err
	}
	return user.RoleCustomer, nil
}

// Login performs the interactive email/password sign-in and returns the
// resolved role synchronously with the state update.
func (s *Session) Login(ctx context.Context, email, password string) (user.Role, error) {
	if s.provider == nil || s.users == nil {
		return user.RoleUnknown, NewAuthError(CodeServiceUnavailable, nil)
	}

	uid, err := s.provider.SignInWithPassword(ctx, email, password)
	if err != nil {
		return user.RoleUnknown, wrapUnknown(err)
	}

	s.mu.Lock()
	s.epoch++
	epoch := s.epoch
	s.userID = uid
	s.state = StateRoleLookup
	s.mu.Unlock()

	role, err := s.lookupOrDefault(ctx, uid, strings.TrimSpace(email))

	s.mu.Lock()
	if epoch == s.epoch {
		if err != nil {
			s.role = user.RoleUnknown
		} else {
			s.role = role
		}
		s.ready = true
		s.state = StateReady
	}
	snap := s.snapshotLocked()
	subs := s.listenersLocked()
	s.mu.Unlock()
	notify(subs, snap)

	if err != nil {
		return user.RoleUnknown, wrapUnknown(err)
	}
	return role, nil
}

// Register creates an account. The confirm-password check is local and runs
// before ANY network call. Success writes the role document: admin only when
// the email exactly equals the bootstrap administrator address.
func (s *Session) Register(ctx context.Context, email, password, confirmPassword string) (user.Role, error) {
	if password != confirmPassword {
		return user.RoleUnknown, NewAuthError(CodePasswordMismatch, nil)
	}
	if s.provider == nil || s.users == nil {
		return user.RoleUnknown, NewAuthError(CodeServiceUnavailable, nil)
	}

	uid, err := s.provider.SignUp(ctx, email, password)
	if err != nil {
		return user.RoleUnknown, wrapUnknown(err)
	}

	email = strings.TrimSpace(email)
	role := user.RoleCustomer
	if email == s.adminEmail {
		role = user.RoleAdmin
	}

	if err := s.users.EnsureRole(ctx, uid, email, role); err != nil {
		return user.RoleUnknown, wrapUnknown(err)
	}

	s.mu.Lock()
	s.epoch++
	s.userID = uid
	s.role = role
	s.ready = true
	s.state = StateReady
	snap := s.snapshotLocked()
	subs := s.listenersLocked()
	s.mu.Unlock()
	notify(subs, snap)

	if s.mailer != nil {
		go func() {
			mctx, cancel := context.WithTimeout(context.Background(), welcomeMailTimeout)
			defer cancel()
			if err := s.mailer.SendWelcome(mctx, email); err != nil {
				log.Printf("[session] WARN: welcome mail failed for %s: %v", email, err)
			}
		}()
	}

	return role, nil
}

// Logout signs out: role reverts to unknown and userId clears; ready stays
// true since the service itself remains available.
func (s *Session) Logout(ctx context.Context) {
	if s.provider != nil {
		if err := s.provider.SignOut(ctx); err != nil {
			log.Printf("[session] WARN: provider sign-out failed: %v", err)
		}
	}

	s.mu.Lock()
	s.epoch++
	s.applySignedOutLocked()
	snap := s.snapshotLocked()
	subs := s.listenersLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

// Snapshot returns the current tuple. Route decisions must call this on
// every navigation attempt, never cache it.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener notified after every published change.
// The returned func unsubscribes.
func (s *Session) Subscribe(fn func(Snapshot)) func() {
	if fn == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Session) setState(st State) {
	s.mu.Lock()
	s.state = st
	snap := s.snapshotLocked()
	subs := s.listenersLocked()
	s.mu.Unlock()
	notify(subs, snap)
}

func (s *Session) applySignedOutLocked() {
	s.userID = ""
	s.role = user.RoleUnknown
	s.ready = true
	s.state = StateReady
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{UserID: s.userID, Role: s.role, Ready: s.ready, State: s.state}
}

func (s *Session) listenersLocked() []func(Snapshot) {
	out := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		out = append(out, fn)
	}
	return out
}

func notify(subs []func(Snapshot), snap Snapshot) {
	for _, fn := range subs {
		fn(snap)
	}
}
