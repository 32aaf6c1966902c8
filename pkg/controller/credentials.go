package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type credentialBody struct {
	Name           string `json:"name"`
	CredentialType string `json:"credential_type"`
	Username       string `json:"username"`
	Secret         string `json:"secret"`
	Description    string `json:"description,omitempty"`
}

// FindCredential looks a credential up by name. Returns ErrNotFound when
// absent.
func (c *Client) FindCredential(ctx context.Context, name string) (*Credential, error) {
	return listByName[Credential](ctx, c, "/credentials/", name)
}

// CredentialID resolves a credential name to its ID, using the lookup cache
// when one is configured.
func (c *Client) CredentialID(ctx context.Context, name string) (int, error) {
	return c.cachedID(ctx, "credential:"+name, func(ctx context.Context) (int, error) {
		credential, err := c.FindCredential(ctx, name)
		if err != nil {
			return 0, err
		}
		return credential.ID, nil
	})
}

// EnsureCredential creates the credential if it does not exist, or updates
// it in place when it does. The second return value reports whether the
// credential was newly created. The secret is never logged.
func (c *Client) EnsureCredential(ctx context.Context, spec CredentialSpec) (*Credential, bool, error) {
	if spec.Name == "" {
		return nil, false, fmt.Errorf("credential name is required")
	}

	body := credentialBody{
		Name:           spec.Name,
		CredentialType: spec.CredentialType,
		Username:       spec.Username,
		Secret:         spec.Secret,
		Description:    spec.Description,
	}

	existing, err := c.FindCredential(ctx, spec.Name)
	switch {
	case err == nil:
		var updated Credential
		path := fmt.Sprintf("/credentials/%d/", existing.ID)
		if err := c.do(ctx, http.MethodPatch, path, nil, body, &updated); err != nil {
			return nil, false, fmt.Errorf("failed to update credential %q: %w", spec.Name, err)
		}
		c.logger.Info().Str("credential", spec.Name).Int("id", updated.ID).Msg("Credential updated.")
		return &updated, false, nil
	case errors.Is(err, ErrNotFound):
		var created Credential
		if err := c.do(ctx, http.MethodPost, "/credentials/", nil, body, &created); err != nil {
			return nil, false, fmt.Errorf("failed to create credential %q: %w", spec.Name, err)
		}
		c.logger.Info().Str("credential", spec.Name).Int("id", created.ID).Msg("Credential created.")
		return &created, true, nil
	default:
		return nil, false, fmt.Errorf("failed to check credential %q: %w", spec.Name, err)
	}
}
