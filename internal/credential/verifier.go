// Package credential checks submitted credentials against the row-store and
// creates new client accounts. It is the only part of the application that
// mutates the principal tables.
package credential

import (
	"context"
	"time"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Verifier verifies client and admin credentials.
type Verifier struct {
	store store.RowStore
	log   *zap.Logger
	now   func() time.Time
}

// NewVerifier creates a Verifier backed by the given row-store.
func NewVerifier(rowStore store.RowStore, log *zap.Logger) *Verifier {
	return &Verifier{
		store: rowStore,
		log:   log,
		now:   time.Now,
	}
}

// WithNowFunc overrides the clock (for tests).
func (v *Verifier) WithNowFunc(now func() time.Time) *Verifier {
	v.now = now
	return v
}

// VerifyClient checks a client login. The lookup requires exactly one
// enabled row for the username; any miss, ambiguity, lookup error or
// password mismatch is reported as ErrCredentialRejected.
func (v *Verifier) VerifyClient(ctx context.Context, username, password string) (*model.Client, error) {
	var client model.Client
	err := v.store.SelectOne(ctx, store.TableClients, store.Filters{
		store.Eq("username", username),
		store.Eq("access_status", true),
	}, &client)
	if err != nil {
		v.log.Debug("client lookup failed", zap.String("username", username), zap.Error(err))
		return nil, ErrCredentialRejected
	}

	if bcrypt.CompareHashAndPassword([]byte(client.Password), []byte(password)) != nil {
		return nil, ErrCredentialRejected
	}

	// Best-effort last_login stamp; a failure here must not fail the login
	now := v.now()
	if err := v.store.Update(ctx, store.TableClients, store.Filters{
		store.Eq("client_id", client.ClientID),
	}, map[string]any{"last_login": now}); err != nil {
		v.log.Warn("failed to update last login",
			zap.String("client_id", client.ClientID),
			zap.Error(err))
	} else {
		client.LastLogin = &now
	}

	return &client, nil
}

// RegisterParams carries a client registration request.
type RegisterParams struct {
	CompanyName string
	Password    string
	Email       string
	Phone       string
}

// RegisterClient mints a fresh tenant id and inserts a new, auto-approved
// client row. A company-name collision is the one failure the caller may
// relay verbatim, so the name is checked up front; any insertion problem
// after that, a duplicate on some other unique column included, is reported
// as ErrRegistrationFailed.
func (v *Verifier) RegisterClient(ctx context.Context, params RegisterParams) (*model.Client, error) {
	var existing []model.Client
	err := v.store.Select(ctx, store.TableClients, store.Filters{
		store.Eq("company_name", params.CompanyName),
	}, store.Options{Limit: 1}, &existing)
	if err != nil {
		v.log.Error("failed to check company name",
			zap.String("company_name", params.CompanyName),
			zap.Error(err))
		return nil, ErrRegistrationFailed
	}
	if len(existing) > 0 {
		return nil, ErrDuplicateCompanyName
	}

	clientID, err := v.store.GenerateClientID(ctx)
	if err != nil {
		v.log.Error("client id generation failed", zap.Error(err))
		return nil, ErrIdentifierGeneration
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		v.log.Error("failed to hash password", zap.Error(err))
		return nil, ErrRegistrationFailed
	}

	client := model.Client{
		ClientID:           clientID,
		CompanyName:        params.CompanyName,
		Username:           params.CompanyName,
		Password:           string(hash),
		Email:              params.Email,
		Phone:              params.Phone,
		AccessStatus:       true,
		SubscriptionStatus: model.SubscriptionActive,
	}

	if err := v.store.Insert(ctx, store.TableClients, &client); err != nil {
		// The name was vetted above; a residual duplicate means the minted
		// client id collided, which is not the user's mistake
		v.log.Error("failed to insert client",
			zap.String("company_name", params.CompanyName),
			zap.String("client_id", clientID),
			zap.Error(err))
		return nil, ErrRegistrationFailed
	}

	v.log.Info("client registered",
		zap.String("client_id", client.ClientID),
		zap.String("company_name", client.CompanyName))
	return &client, nil
}

// VerifyAdmin checks an admin login against the admin identity space. There
// is no access gate and no self-registration path for admins.
func (v *Verifier) VerifyAdmin(ctx context.Context, username, password string) (*model.Admin, error) {
	var admin model.Admin
	err := v.store.SelectOne(ctx, store.TableAdmins, store.Filters{
		store.Eq("username", username),
	}, &admin)
	if err != nil {
		v.log.Debug("admin lookup failed", zap.String("username", username), zap.Error(err))
		return nil, ErrCredentialRejected
	}

	if bcrypt.CompareHashAndPassword([]byte(admin.Password), []byte(password)) != nil {
		return nil, ErrCredentialRejected
	}

	now := v.now()
	if err := v.store.Update(ctx, store.TableAdmins, store.Filters{
		store.Eq("username", admin.Username),
	}, map[string]any{"last_login": now}); err != nil {
		v.log.Warn("failed to update admin last login",
			zap.String("username", admin.Username),
			zap.Error(err))
	} else {
		admin.LastLogin = &now
	}

	return &admin, nil
}
