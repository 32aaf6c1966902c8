// Package provision sequences controller API calls the way the original
// setup role does: credentials first, then the projects that reference them,
// then decision environments, then the activations tying it all together.
package provision

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kubealex/kubealex.eda/pkg/controller"
)

// Plan is the declarative description of the controller resources to
// provision, loaded from a YAML file.
type Plan struct {
	Controller           controller.Config                    `yaml:"controller"`
	Credentials          []controller.CredentialSpec          `yaml:"credentials"`
	Projects             []controller.ProjectSpec             `yaml:"projects"`
	DecisionEnvironments []controller.DecisionEnvironmentSpec `yaml:"decision_environments"`
	Activations          []controller.ActivationSpec          `yaml:"activations"`
}

// LoadPlan reads and validates a plan file. Unknown fields are rejected so
// typos fail fast instead of being silently ignored.
func LoadPlan(path string) (*Plan, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open plan file: %w", err)
	}
	defer func() { _ = file.Close() }()

	decoder := yaml.NewDecoder(file)
	decoder.KnownFields(true)

	var plan Plan
	if err := decoder.Decode(&plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan file %s: %w", path, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

// Validate checks the plan for the mistakes a dry run would catch.
func (p *Plan) Validate() error {
	if p.Controller.URL == "" {
		return fmt.Errorf("plan: controller.url is required")
	}
	for i, credential := range p.Credentials {
		if credential.Name == "" {
			return fmt.Errorf("plan: credentials[%d] is missing a name", i)
		}
	}
	for i, project := range p.Projects {
		if project.Name == "" {
			return fmt.Errorf("plan: projects[%d] is missing a name", i)
		}
	}
	for i, env := range p.DecisionEnvironments {
		if env.Name == "" {
			return fmt.Errorf("plan: decision_environments[%d] is missing a name", i)
		}
	}
	for i, activation := range p.Activations {
		if activation.Name == "" {
			return fmt.Errorf("plan: activations[%d] is missing a name", i)
		}
	}
	return nil
}
