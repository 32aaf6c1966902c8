package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type activationBody struct {
	Name                  string `json:"name"`
	ProjectID             int    `json:"project_id"`
	DecisionEnvironmentID int    `json:"decision_environment_id"`
	RulebookID            int    `json:"rulebook_id"`
	RestartPolicy         string `json:"restart_policy"`
	IsEnabled             bool   `json:"is_enabled"`
	AWXTokenID            int    `json:"awx_token_id"`
	ExtraVarID            *int   `json:"extra_var_id,omitempty"`
}

// FindRulebook looks a rulebook up by name within a synced project. Returns
// ErrNotFound when the project exposes no rulebook with that name.
func (c *Client) FindRulebook(ctx context.Context, projectID int, name string) (*Rulebook, error) {
	query := url.Values{"project_id": []string{strconv.Itoa(projectID)}}
	var page resultPage[Rulebook]
	if err := c.do(ctx, http.MethodGet, "/rulebooks/", query, nil, &page); err != nil {
		return nil, err
	}
	for i := range page.Results {
		if page.Results[i].Name == name {
			return &page.Results[i], nil
		}
	}
	return nil, fmt.Errorf("%w: rulebook %q in project %d", ErrNotFound, name, projectID)
}

// AWXTokenID resolves an automation-controller token name to its ID. Tokens
// are listed per-user, so the result is filtered client-side.
func (c *Client) AWXTokenID(ctx context.Context, name string) (int, error) {
	return c.cachedID(ctx, "awx-token:"+name, func(ctx context.Context) (int, error) {
		var page resultPage[AWXToken]
		if err := c.do(ctx, http.MethodGet, "/users/me/awx-tokens/", nil, nil, &page); err != nil {
			return 0, err
		}
		for _, token := range page.Results {
			if token.Name == name {
				return token.ID, nil
			}
		}
		return 0, fmt.Errorf("%w: controller token %q for user %q", ErrNotFound, name, c.username)
	})
}

// CreateExtraVars stores an extra-variables document and returns its ID.
func (c *Client) CreateExtraVars(ctx context.Context, extraVars string) (*ExtraVars, error) {
	body := map[string]string{"extra_var": extraVars}
	var created ExtraVars
	if err := c.do(ctx, http.MethodPost, "/extra-vars/", nil, body, &created); err != nil {
		return nil, fmt.Errorf("failed to create extra vars: %w", err)
	}
	return &created, nil
}

// FindActivation looks an activation up by name. Returns ErrNotFound when
// absent.
func (c *Client) FindActivation(ctx context.Context, name string) (*Activation, error) {
	return listByName[Activation](ctx, c, "/activations/", name)
}

// CreateActivation resolves every resource the spec names by ID and creates
// the activation. The controller rejects duplicate names; that rejection is
// treated as success and the existing activation is returned, so repeated
// provisioning runs stay idempotent. The second return value reports whether
// the activation was newly created.
func (c *Client) CreateActivation(ctx context.Context, spec ActivationSpec) (*Activation, bool, error) {
	if spec.Name == "" {
		return nil, false, fmt.Errorf("activation name is required")
	}
	if spec.Project == "" {
		return nil, false, fmt.Errorf("project name is required for activation %q", spec.Name)
	}
	if spec.DecisionEnvironment == "" {
		return nil, false, fmt.Errorf("decision environment is required for activation %q", spec.Name)
	}
	if spec.ControllerToken == "" {
		return nil, false, fmt.Errorf("controller token name is required for activation %q", spec.Name)
	}

	projectID, err := c.ProjectID(ctx, spec.Project)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve project %q: %w", spec.Project, err)
	}
	environmentID, err := c.DecisionEnvironmentID(ctx, spec.DecisionEnvironment)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve decision environment %q: %w", spec.DecisionEnvironment, err)
	}
	tokenID, err := c.AWXTokenID(ctx, spec.ControllerToken)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve controller token %q: %w", spec.ControllerToken, err)
	}
	rulebook, err := c.FindRulebook(ctx, projectID, spec.Rulebook)
	if err != nil {
		return nil, false, fmt.Errorf("failed to resolve rulebook %q: %w", spec.Rulebook, err)
	}

	restartPolicy := spec.RestartPolicy
	if restartPolicy == "" {
		restartPolicy = "always"
	}
	enabled := true
	if spec.Enabled != nil {
		enabled = *spec.Enabled
	}

	body := activationBody{
		Name:                  spec.Name,
		ProjectID:             projectID,
		DecisionEnvironmentID: environmentID,
		RulebookID:            rulebook.ID,
		RestartPolicy:         restartPolicy,
		IsEnabled:             enabled,
		AWXTokenID:            tokenID,
	}

	if spec.ExtraVars != "" {
		extraVars, err := c.CreateExtraVars(ctx, spec.ExtraVars)
		if err != nil {
			return nil, false, err
		}
		body.ExtraVarID = &extraVars.ID
	}

	var created Activation
	err = c.do(ctx, http.MethodPost, "/activations/", nil, body, &created)
	if err == nil {
		c.logger.Info().Str("activation", spec.Name).Int("id", created.ID).Msg("Activation created.")
		return &created, true, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusBadRequest && strings.Contains(apiErr.Body, "already exists") {
		existing, findErr := c.FindActivation(ctx, spec.Name)
		if findErr != nil {
			return nil, false, fmt.Errorf("activation %q already exists but could not be fetched: %w", spec.Name, findErr)
		}
		c.logger.Info().Str("activation", spec.Name).Int("id", existing.ID).Msg("Activation already exists.")
		return existing, false, nil
	}
	return nil, false, fmt.Errorf("failed to create activation %q: %w", spec.Name, err)
}
