package controller

// Project is a source-control project registered in the controller.
type Project struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	URL          string `json:"url"`
	CredentialID *int   `json:"credential_id,omitempty"`
}

// ProjectSpec describes the desired state of a project. Credential, when
// set, is resolved by name to the credential to associate with the project.
type ProjectSpec struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	GitURL      string `yaml:"git_url"`
	Credential  string `yaml:"credential"`
}

// Credential is a stored secret, e.g. a Git personal access token or a
// container registry login.
type Credential struct {
	ID             int    `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Username       string `json:"username"`
	CredentialType string `json:"credential_type"`
}

// CredentialSpec describes the desired state of a credential.
type CredentialSpec struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Username       string `yaml:"username"`
	Secret         string `yaml:"secret"`
	CredentialType string `yaml:"credential_type"`
}

// DecisionEnvironment is the container image rulebook activations run in.
type DecisionEnvironment struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// DecisionEnvironmentSpec describes the desired state of a decision
// environment.
type DecisionEnvironmentSpec struct {
	Name     string `yaml:"name"`
	ImageURL string `yaml:"image_url"`
}

// Rulebook is a rulebook discovered inside a synced project.
type Rulebook struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ProjectID int    `json:"project_id"`
}

// AWXToken is an automation-controller token registered for the current user.
type AWXToken struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ExtraVars is a stored extra-variables document referenced by activations.
type ExtraVars struct {
	ID       int    `json:"id"`
	ExtraVar string `json:"extra_var"`
}

// Activation is a running (or runnable) rulebook activation.
type Activation struct {
	ID                    int    `json:"id"`
	Name                  string `json:"name"`
	ProjectID             int    `json:"project_id"`
	DecisionEnvironmentID int    `json:"decision_environment_id"`
	RulebookID            int    `json:"rulebook_id"`
	RestartPolicy         string `json:"restart_policy"`
	IsEnabled             bool   `json:"is_enabled"`
}

// ActivationSpec describes an activation by the names of the resources it
// ties together. Enabled defaults to true and RestartPolicy to "always",
// matching the controller's own defaults.
type ActivationSpec struct {
	Name                string `yaml:"name"`
	Project             string `yaml:"project"`
	Rulebook            string `yaml:"rulebook"`
	ExtraVars           string `yaml:"extra_vars"`
	RestartPolicy       string `yaml:"restart_policy"`
	Enabled             *bool  `yaml:"enabled"`
	DecisionEnvironment string `yaml:"decision_environment"`
	ControllerToken     string `yaml:"controller_token"`
}
