package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/melkeydev/logistics-admin/auth"
	"github.com/melkeydev/logistics-admin/config"
	"github.com/melkeydev/logistics-admin/databases"
	"github.com/melkeydev/logistics-admin/events"
	"github.com/melkeydev/logistics-admin/logging"
)

// app holds what every command needs: config, logger, the connector and
// the change publisher.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	connector databases.Connector
	publisher events.Publisher
	hub       *events.Hub
}

// newApp loads the config and opens the backend. withHub adds the websocket
// hub when the config enables it.
func newApp(configPath string, logOut io.Writer, withHub bool) (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := logging.New(logOut, logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})

	connStr, err := cfg.Database.GetConnectionString()
	if err != nil {
		return nil, err
	}
	var excluded []string
	if len(cfg.Database.ExcludePrefixes) > 0 {
		excluded = cfg.Database.ExcludePrefixes
	}
	connector, err := databases.NewConnector(cfg.Database.DBType, connStr, excluded)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}
	logger.Info("connected", "type", cfg.Database.DBType)

	a := &app{cfg: cfg, logger: logger, connector: connector}

	var publishers events.Multi
	if len(cfg.Events.KafkaBrokers) > 0 {
		kp, err := events.NewKafkaPublisher(cfg.Events.KafkaBrokers, cfg.Events.KafkaTopic)
		if err != nil {
			_ = connector.Close()
			return nil, err
		}
		logger.Info("publishing changes to kafka", "topic", cfg.Events.KafkaTopic, "brokers", cfg.Events.KafkaBrokers)
		publishers = append(publishers, kp)
	}
	if withHub && cfg.Events.Websocket {
		a.hub = events.NewHub(logger)
		publishers = append(publishers, a.hub)
	}
	switch len(publishers) {
	case 0:
		a.publisher = events.Nop{}
	case 1:
		a.publisher = publishers[0]
	default:
		a.publisher = publishers
	}
	return a, nil
}

func (a *app) authService() (*auth.Service, error) {
	accounts := make([]auth.Account, len(a.cfg.Auth.Admins))
	for i, admin := range a.cfg.Auth.Admins {
		accounts[i] = auth.Account{UserID: admin.UserID, Email: admin.Email, PasswordHash: admin.PasswordHash}
	}
	if len(accounts) == 0 {
		a.logger.Warn("no admin accounts configured, nobody can sign in")
	}
	return auth.NewService(a.cfg.Auth.Secret, a.cfg.Auth.TokenTTL, accounts)
}

func (a *app) Close() error {
	return errors.Join(a.publisher.Close(), a.connector.Close())
}
