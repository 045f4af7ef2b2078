// internal/infra/secrets/provider_sm.go
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretspb "google.golang.org/genproto/googleapis/cloud/secretmanager/v1"
)

var (
	ErrNotConfigured = errors.New("secrets: not configured")
	ErrNotFound      = errors.New("secrets: secret not found")
)

// ProviderSM resolves named secrets from Secret Manager with an env
// var fallback, so local development works without GCP access.
type ProviderSM struct {
	Client    *secretmanager.Client
	ProjectID string
}

func NewProviderSM(client *secretmanager.Client, projectID string) *ProviderSM {
	return &ProviderSM{Client: client, ProjectID: strings.TrimSpace(projectID)}
}

// Resolve returns the env var when set, otherwise reads the latest
// version of the named secret. An empty result is ErrNotFound.
func (p *ProviderSM) Resolve(ctx context.Context, envKey, secretID string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(envKey)); v != "" {
		return v, nil
	}

	if p == nil || p.Client == nil || p.ProjectID == "" {
		return "", ErrNotConfigured
	}

	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", p.ProjectID, secretID)
	res, err := p.Client.AccessSecretVersion(ctx, &secretspb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if res == nil || res.Payload == nil {
		return "", ErrNotFound
	}

	s := strings.TrimSpace(string(res.Payload.Data))
	if s == "" {
		return "", ErrNotFound
	}
	return s, nil
}
