// Package session owns the process-wide authentication state: which client
// tenant and which admin are currently logged in, and the durable mirror of
// that state that lets a restart restore identity without re-authentication.
//
// At most one client session and one admin session are live at a time; a new
// login of the same kind overwrites the previous one. The two kinds are
// fully independent: logging one out never touches the other.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/credential"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/notify"
	"github.com/Legendary90/erp-zen-fix-47-sub001/pkg/statestore"
	"go.uber.org/zap"
)

// Kind identifies a session namespace. The token prefixes derived from these
// values keep client and admin tokens structurally disjoint.
type Kind string

const (
	KindClient Kind = "client"
	KindAdmin  Kind = "admin"
)

// Mirror is the durable local persistence the store writes through. It is
// satisfied by *statestore.StateStore.
type Mirror interface {
	Get(key string) (string, error)
	Put(key, value string) error
	Delete(keys ...string) error
}

// Store holds the current sessions. All state transitions go through named
// operations; consumers only get read accessors.
type Store struct {
	verifier *credential.Verifier
	mirror   Mirror
	notifier notify.Notifier
	log      *zap.Logger
	now      func() time.Time

	mu            sync.RWMutex
	clientSession string
	adminSession  string
	clientID      string
	adminID       string
	client        *model.Client
	loading       bool
	seq           uint64

	restoreOnce sync.Once
}

// New creates a Store in the loading state. Restore must be called once at
// startup before guard decisions are trustworthy.
func New(verifier *credential.Verifier, mirror Mirror, notifier notify.Notifier, log *zap.Logger) *Store {
	return &Store{
		verifier: verifier,
		mirror:   mirror,
		notifier: notifier,
		log:      log,
		now:      time.Now,
		loading:  true,
	}
}

// WithNowFunc overrides the clock (for tests).
func (s *Store) WithNowFunc(now func() time.Time) *Store {
	s.now = now
	return s
}

// Restore repopulates the in-memory state from the durable mirror. The
// mirrored session is trusted as-is; no credential re-verification and no
// row-store access happens here. Runs once; later calls are no-ops.
func (s *Store) Restore() {
	s.restoreOnce.Do(func() {
		clientSession := s.readMirror(statestore.KeyClientSession)
		clientID := s.readMirror(statestore.KeyCurrentClientID)
		adminSession := s.readMirror(statestore.KeyAdminSession)
		adminID := s.readMirror(statestore.KeyCurrentAdminID)

		s.mu.Lock()
		if clientSession != "" && clientID != "" {
			s.clientSession = clientSession
			s.clientID = clientID
		}
		if adminSession != "" && adminID != "" {
			s.adminSession = adminSession
			s.adminID = adminID
		}
		s.loading = false
		s.mu.Unlock()

		s.log.Info("session state restored",
			zap.Bool("client_session", clientSession != ""),
			zap.Bool("admin_session", adminSession != ""),
			zap.String("client_id", clientID))
	})
}

func (s *Store) readMirror(key string) string {
	value, err := s.mirror.Get(key)
	if err != nil {
		s.log.Warn("failed to read session mirror", zap.String("key", key), zap.Error(err))
		return ""
	}
	return value
}

// LoginAsClient verifies the credentials and, on success, replaces the
// current client session. The admin session is untouched either way. The
// boolean return tells the caller whether to navigate; failures surface as
// exactly one notification.
func (s *Store) LoginAsClient(ctx context.Context, username, password string) bool {
	client, err := s.verifier.VerifyClient(ctx, username, password)
	if err != nil {
		s.notifyFailure("Login failed", err)
		return false
	}

	token := s.mintToken(KindClient, client.ClientID)

	s.persist(statestore.KeyClientSession, token)
	s.persist(statestore.KeyCurrentClientID, client.ClientID)

	s.mu.Lock()
	s.clientSession = token
	s.clientID = client.ClientID
	s.client = client
	s.mu.Unlock()

	s.notifier.Notify(notify.Notification{
		Title:       "Login successful",
		Description: "Welcome back, " + client.CompanyName,
		Severity:    notify.SeveritySuccess,
	})
	return true
}

// RegisterClient creates a new client account. Registration never logs the
// new account in; the caller must follow with an explicit login.
func (s *Store) RegisterClient(ctx context.Context, params credential.RegisterParams) bool {
	client, err := s.verifier.RegisterClient(ctx, params)
	if err != nil {
		s.notifyFailure("Registration failed", err)
		return false
	}

	s.notifier.Notify(notify.Notification{
		Title:       "Registration successful",
		Description: fmt.Sprintf("Account created with Client ID %s. Please log in.", client.ClientID),
		Severity:    notify.SeveritySuccess,
	})
	return true
}

// LoginAsAdmin is the admin counterpart of LoginAsClient, operating on the
// disjoint admin namespace. A live client session is left untouched.
func (s *Store) LoginAsAdmin(ctx context.Context, username, password string) bool {
	admin, err := s.verifier.VerifyAdmin(ctx, username, password)
	if err != nil {
		s.notifyFailure("Login failed", err)
		return false
	}

	token := s.mintToken(KindAdmin, admin.Username)

	s.persist(statestore.KeyAdminSession, token)
	s.persist(statestore.KeyCurrentAdminID, admin.Username)

	s.mu.Lock()
	s.adminSession = token
	s.adminID = admin.Username
	s.mu.Unlock()

	s.notifier.Notify(notify.Notification{
		Title:       "Login successful",
		Description: "Welcome back, " + admin.Username,
		Severity:    notify.SeveritySuccess,
	})
	return true
}

// Logout clears the requested session kind(s), both in memory and in the
// durable mirror. With no arguments it clears both. Logging out a kind that
// is not live is harmless.
func (s *Store) Logout(kinds ...Kind) {
	if len(kinds) == 0 {
		kinds = []Kind{KindClient, KindAdmin}
	}

	for _, kind := range kinds {
		switch kind {
		case KindClient:
			if err := s.mirror.Delete(statestore.KeyClientSession, statestore.KeyCurrentClientID); err != nil {
				s.log.Warn("failed to clear client session mirror", zap.Error(err))
			}
			s.mu.Lock()
			s.clientSession = ""
			s.clientID = ""
			s.client = nil
			s.mu.Unlock()
		case KindAdmin:
			if err := s.mirror.Delete(statestore.KeyAdminSession, statestore.KeyCurrentAdminID); err != nil {
				s.log.Warn("failed to clear admin session mirror", zap.Error(err))
			}
			s.mu.Lock()
			s.adminSession = ""
			s.adminID = ""
			s.mu.Unlock()
		}
	}

	s.notifier.Notify(notify.Notification{
		Title:       "Logged out",
		Description: "You have been logged out.",
		Severity:    notify.SeverityInfo,
	})
}

// ClientSession returns the live client session token, or "".
func (s *Store) ClientSession() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientSession
}

// AdminSession returns the live admin session token, or "".
func (s *Store) AdminSession() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminSession
}

// ClientID returns the tenant scope of the live client session, or "".
// Every tenant-scoped query must be filtered by this value.
func (s *Store) ClientID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.clientID
}

// AdminID returns the identifier of the live admin session, or "".
func (s *Store) AdminID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.adminID
}

// CurrentClient returns a copy of the cached client record, or nil. The
// cache is display-only and is not repopulated after a restore.
func (s *Store) CurrentClient() *model.Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.client == nil {
		return nil
	}
	c := *s.client
	return &c
}

// Loading reports whether startup restoration is still in progress.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// mintToken builds an opaque session token. The kind prefix keeps the two
// namespaces disjoint; the sequence suffix keeps two logins within the same
// millisecond distinct.
func (s *Store) mintToken(kind Kind, id string) string {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.mu.Unlock()
	return fmt.Sprintf("%s_%s_%d_%d", kind, id, s.now().UnixMilli(), seq)
}

func (s *Store) persist(key, value string) {
	if err := s.mirror.Put(key, value); err != nil {
		s.log.Warn("failed to persist session mirror", zap.String("key", key), zap.Error(err))
	}
}

// notifyFailure maps a verification failure to its single user-facing
// notification. Only the duplicate-name case gets a distinct message;
// anything outside the known taxonomy is logged and generalized.
func (s *Store) notifyFailure(title string, err error) {
	var description string
	switch {
	case errors.Is(err, credential.ErrCredentialRejected):
		description = "Invalid credentials or access denied."
	case errors.Is(err, credential.ErrDuplicateCompanyName):
		description = "Company name already exists. Please choose another."
	case errors.Is(err, credential.ErrIdentifierGeneration),
		errors.Is(err, credential.ErrRegistrationFailed):
		description = "Failed to create account. Please try again."
	default:
		s.log.Error("unexpected auth failure", zap.Error(err))
		description = "An error occurred. Please try again."
	}

	s.notifier.Notify(notify.Notification{
		Title:       title,
		Description: description,
		Severity:    notify.SeverityError,
	})
}
