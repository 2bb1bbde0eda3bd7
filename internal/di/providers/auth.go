package providers

import (
	"github.com/samber/do/v2"

	"github.com/custodylog/custodylog-server/internal/auth"
	"github.com/custodylog/custodylog-server/internal/config"
	"github.com/custodylog/custodylog-server/internal/logger"
)

// TokenKey is the symmetric key that seals session tokens.
type TokenKey []byte

// ProvideTokenKey reads the key from the data directory, creating one on first boot.
func ProvideTokenKey(i do.Injector) (TokenKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}
	log.Info("Token key ready",
		"data_path", cfg.Storage.DataPath,
		"token_ttl", cfg.Auth.AccessTokenDuration,
	)
	return TokenKey(key), nil
}

func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return auth.NewTokenService(do.MustInvoke[TokenKey](i), cfg.Auth.AccessTokenDuration)
}
