package provision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kubealex/kubealex.eda/pkg/controller"
)

// StepResult records the outcome of one provisioning step.
type StepResult struct {
	// Kind is the resource kind: credential, project, decision_environment
	// or activation.
	Kind string
	// Name is the resource name from the plan.
	Name string
	// Created reports whether the resource was newly created rather than
	// updated or already present.
	Created bool
	// ID is the controller-side ID of the resource after the step.
	ID int
}

// Applier executes a Plan against the controller.
type Applier struct {
	client *controller.Client
	logger zerolog.Logger
}

// NewApplier creates an Applier using the given controller client.
func NewApplier(client *controller.Client, logger zerolog.Logger) (*Applier, error) {
	if client == nil {
		return nil, fmt.Errorf("controller client cannot be nil")
	}
	return &Applier{
		client: client,
		logger: logger.With().Str("component", "Applier").Logger(),
	}, nil
}

// Apply provisions the plan's resources in dependency order and fails fast
// on the first controller error, returning the steps completed so far.
func (a *Applier) Apply(ctx context.Context, plan *Plan) ([]StepResult, error) {
	var results []StepResult

	for _, spec := range plan.Credentials {
		credential, created, err := a.client.EnsureCredential(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, StepResult{Kind: "credential", Name: spec.Name, Created: created, ID: credential.ID})
	}

	for _, spec := range plan.Projects {
		project, created, err := a.client.EnsureProject(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, StepResult{Kind: "project", Name: spec.Name, Created: created, ID: project.ID})
	}

	for _, spec := range plan.DecisionEnvironments {
		env, created, err := a.client.EnsureDecisionEnvironment(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, StepResult{Kind: "decision_environment", Name: spec.Name, Created: created, ID: env.ID})
	}

	for _, spec := range plan.Activations {
		activation, created, err := a.client.CreateActivation(ctx, spec)
		if err != nil {
			return results, err
		}
		results = append(results, StepResult{Kind: "activation", Name: spec.Name, Created: created, ID: activation.ID})
	}

	a.logger.Info().Int("steps", len(results)).Msg("Plan applied.")
	return results, nil
}
