package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type decisionEnvironmentBody struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// FindDecisionEnvironment looks a decision environment up by name. Returns
// ErrNotFound when absent.
func (c *Client) FindDecisionEnvironment(ctx context.Context, name string) (*DecisionEnvironment, error) {
	return listByName[DecisionEnvironment](ctx, c, "/decision-environments/", name)
}

// DecisionEnvironmentID resolves a decision environment name to its ID,
// using the lookup cache when one is configured.
func (c *Client) DecisionEnvironmentID(ctx context.Context, name string) (int, error) {
	return c.cachedID(ctx, "decision-environment:"+name, func(ctx context.Context) (int, error) {
		env, err := c.FindDecisionEnvironment(ctx, name)
		if err != nil {
			return 0, err
		}
		return env.ID, nil
	})
}

// EnsureDecisionEnvironment creates the decision environment if it does not
// exist, or updates it in place when it does. The second return value
// reports whether it was newly created.
func (c *Client) EnsureDecisionEnvironment(ctx context.Context, spec DecisionEnvironmentSpec) (*DecisionEnvironment, bool, error) {
	if spec.Name == "" {
		return nil, false, fmt.Errorf("decision environment name is required")
	}

	body := decisionEnvironmentBody{Name: spec.Name, ImageURL: spec.ImageURL}

	existing, err := c.FindDecisionEnvironment(ctx, spec.Name)
	switch {
	case err == nil:
		var updated DecisionEnvironment
		path := fmt.Sprintf("/decision-environments/%d/", existing.ID)
		if err := c.do(ctx, http.MethodPatch, path, nil, body, &updated); err != nil {
			return nil, false, fmt.Errorf("failed to update decision environment %q: %w", spec.Name, err)
		}
		c.logger.Info().Str("decision_environment", spec.Name).Int("id", updated.ID).Msg("Decision environment updated.")
		return &updated, false, nil
	case errors.Is(err, ErrNotFound):
		var created DecisionEnvironment
		if err := c.do(ctx, http.MethodPost, "/decision-environments/", nil, body, &created); err != nil {
			return nil, false, fmt.Errorf("failed to create decision environment %q: %w", spec.Name, err)
		}
		c.logger.Info().Str("decision_environment", spec.Name).Int("id", created.ID).Msg("Decision environment created.")
		return &created, true, nil
	default:
		return nil, false, fmt.Errorf("failed to check decision environment %q: %w", spec.Name, err)
	}
}
