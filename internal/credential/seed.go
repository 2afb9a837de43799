package credential

import (
	"context"
	"fmt"

	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/model"
	"github.com/Legendary90/erp-zen-fix-47-sub001/internal/store"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// SeedAdmin creates the built-in admin account when the admins table is
// empty. There is no self-registration path for admins; this is the only
// way the first admin comes to exist.
func SeedAdmin(ctx context.Context, rowStore store.RowStore, username, password string, log *zap.Logger) error {
	var admins []model.Admin
	if err := rowStore.Select(ctx, store.TableAdmins, nil, store.Options{Limit: 1}, &admins); err != nil {
		return fmt.Errorf("failed to check for existing admins: %w", err)
	}
	if len(admins) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := model.Admin{
		Username: username,
		Password: string(hash),
	}
	if err := rowStore.Insert(ctx, store.TableAdmins, &admin); err != nil {
		return fmt.Errorf("failed to create admin account: %w", err)
	}

	log.Info("Seeded initial admin account", zap.String("username", username))
	return nil
}
