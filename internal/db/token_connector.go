package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/metdbload/internal/retry"
	"github.com/vvka-141/metdbload/pkg/metdbload"
)

// TokenBasedConnector connects with a token from a TokenProvider as the password
// (AWS IAM, Azure Entra ID). A fresh token is acquired on every attempt.
type TokenBasedConnector struct {
	config        *metdbload.ConnectionConfig
	tokenProvider TokenProvider
	providerName  string
	logger        metdbload.Logger
	executor      *retry.Executor
}

// NewTokenBasedConnector creates a token connector. providerName appears in messages.
func NewTokenBasedConnector(config *metdbload.ConnectionConfig, tokenProvider TokenProvider, providerName string, logger metdbload.Logger) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		providerName:  providerName,
		logger:        logger,
		executor:      newRetryExecutor(logger),
	}
}

func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.executor.Execute(ctx, func(ctx context.Context) error {
		token, expiresOn, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("%w: failed to acquire %s token: %w", metdbload.ErrConnectionFailed, c.providerName, err)
		}
		if remaining := time.Until(expiresOn); remaining < tokenExpiryWarning {
			c.logger.Warn("%s token expires in %v", c.providerName, remaining.Round(time.Second))
		}
		c.logger.Verbose("Acquired token from %s", c.tokenProvider)

		withToken := *c.config
		withToken.Password = token

		pool, err = openPool(ctx, BuildConnectionString(&withToken), c.config, c.logger)
		return err
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}
