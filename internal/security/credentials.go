package security

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"google.golang.org/api/option"
)

// embeddedCredentials is replaced during the release build with the
// encrypted service-account JSON. Empty in development builds, where the
// GOOGLE_APPLICATION_CREDENTIALS fallback applies.
var embeddedCredentials = ``

// credentialsPassphraseEnv names the environment variable carrying the
// decryption passphrase.
const credentialsPassphraseEnv = "MNAV_CREDENTIALS_KEY"

// CredentialsManager decrypts and hands out the Google service-account
// credentials, with access audit logging.
type CredentialsManager struct {
	cfg         *EncryptionConfig
	logger      *slog.Logger
	mu          sync.Mutex
	accessCount int64
}

// NewCredentialsManager creates a manager logging access events to the given
// logger.
func NewCredentialsManager(logger *slog.Logger) *CredentialsManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &CredentialsManager{
		cfg:    DefaultEncryptionConfig(),
		logger: logger.With(slog.String("component", "credentials")),
	}
}

// SheetsClientOption returns the google-api client option carrying the
// service-account credentials: the decrypted embedded blob when present,
// else a credentials file named by GOOGLE_APPLICATION_CREDENTIALS.
func (m *CredentialsManager) SheetsClientOption(ctx context.Context) (option.ClientOption, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accessCount++

	if embeddedCredentials != "" {
		data, err := m.decryptEmbedded()
		m.audit(ctx, "decrypt", err)
		if err != nil {
			return nil, err
		}
		return option.WithCredentialsJSON(data), nil
	}

	if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		m.audit(ctx, "file", nil)
		return option.WithCredentialsFile(path), nil
	}

	err := errors.New("no credentials available: embedded blob empty and GOOGLE_APPLICATION_CREDENTIALS unset")
	m.audit(ctx, "missing", err)
	return nil, err
}

func (m *CredentialsManager) decryptEmbedded() ([]byte, error) {
	passphrase := os.Getenv(credentialsPassphraseEnv)
	if passphrase == "" {
		return nil, errors.New(credentialsPassphraseEnv + " is not set")
	}
	var payload EncryptedPayload
	if err := json.Unmarshal([]byte(embeddedCredentials), &payload); err != nil {
		return nil, errors.New("embedded credential payload is malformed")
	}
	return Decrypt(m.cfg, &payload, []byte(passphrase))
}

func (m *CredentialsManager) audit(ctx context.Context, source string, err error) {
	attrs := []any{
		slog.Time("timestamp", time.Now().UTC()),
		slog.String("source", source),
		slog.Int64("access_count", m.accessCount),
		slog.Bool("success", err == nil),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		m.logger.WarnContext(ctx, "credential access failed", attrs...)
		return
	}
	m.logger.InfoContext(ctx, "credential access", attrs...)
}
