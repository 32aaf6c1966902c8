package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type projectBody struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	CredentialID *int   `json:"credential_id,omitempty"`
}

// FindProject looks a project up by name. Returns ErrNotFound when absent.
func (c *Client) FindProject(ctx context.Context, name string) (*Project, error) {
	return listByName[Project](ctx, c, "/projects/", name)
}

// ProjectID resolves a project name to its ID, using the lookup cache when
// one is configured.
func (c *Client) ProjectID(ctx context.Context, name string) (int, error) {
	return c.cachedID(ctx, "project:"+name, func(ctx context.Context) (int, error) {
		project, err := c.FindProject(ctx, name)
		if err != nil {
			return 0, err
		}
		return project.ID, nil
	})
}

// EnsureProject creates the project if it does not exist, or updates it in
// place when it does. The second return value reports whether the project
// was newly created.
func (c *Client) EnsureProject(ctx context.Context, spec ProjectSpec) (*Project, bool, error) {
	if spec.Name == "" {
		return nil, false, fmt.Errorf("project name is required")
	}

	body := projectBody{
		Name:        spec.Name,
		Description: spec.Description,
		URL:         spec.GitURL,
	}
	if spec.Credential != "" {
		credentialID, err := c.CredentialID(ctx, spec.Credential)
		if err != nil {
			return nil, false, fmt.Errorf("failed to resolve credential %q: %w", spec.Credential, err)
		}
		body.CredentialID = &credentialID
	}

	existing, err := c.FindProject(ctx, spec.Name)
	switch {
	case err == nil:
		var updated Project
		path := fmt.Sprintf("/projects/%d/", existing.ID)
		if err := c.do(ctx, http.MethodPatch, path, nil, body, &updated); err != nil {
			return nil, false, fmt.Errorf("failed to update project %q: %w", spec.Name, err)
		}
		c.logger.Info().Str("project", spec.Name).Int("id", updated.ID).Msg("Project updated.")
		return &updated, false, nil
	case errors.Is(err, ErrNotFound):
		var created Project
		if err := c.do(ctx, http.MethodPost, "/projects/", nil, body, &created); err != nil {
			return nil, false, fmt.Errorf("failed to create project %q: %w", spec.Name, err)
		}
		c.logger.Info().Str("project", spec.Name).Int("id", created.ID).Msg("Project created.")
		return &created, true, nil
	default:
		return nil, false, fmt.Errorf("failed to check project %q: %w", spec.Name, err)
	}
}
