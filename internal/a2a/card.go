package a2a

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AgentCard is the discovery document served at /.well-known/agent.json. It
// is generated statically from configuration and requires no authentication:
// it only exposes metadata.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	Provider           *AgentProvider    `json:"provider,omitempty"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Skills             []AgentSkill      `json:"skills"`
}

// AgentProvider identifies the organization operating the agent.
type AgentProvider struct {
	Organization string `json:"organization"`
	URL          string `json:"url,omitempty"`
}

// AgentCapabilities declares protocol capabilities.
type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

// AgentSkill describes one skill with example questions.
type AgentSkill struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Tags        []string `json:"tags" yaml:"tags"`
	Examples    []string `json:"examples" yaml:"examples"`
	InputModes  []string `json:"inputModes" yaml:"input_modes"`
	OutputModes []string `json:"outputModes" yaml:"output_modes"`
}

// BuildCard assembles the agent card for the given externally visible URL.
// skillsFile optionally replaces the built-in skill list with a YAML
// document (a list of skills).
func BuildCard(hostURL, skillsFile string) (*AgentCard, error) {
	skills := defaultSkills()
	if skillsFile != "" {
		loaded, err := loadSkills(skillsFile)
		if err != nil {
			return nil, err
		}
		skills = loaded
	}
	return &AgentCard{
		Name: "Text-to-SQL Agent",
		Description: "Converts natural language questions into SQL queries against a sales " +
			"database, executes them read-only, and returns a natural language answer " +
			"together with the SQL and raw results.",
		URL:     hostURL,
		Version: Version,
		Provider: &AgentProvider{
			Organization: "Text-to-SQL Workshop",
			URL:          hostURL,
		},
		Capabilities: AgentCapabilities{
			StateTransitionHistory: true,
		},
		DefaultInputModes:  []string{"text"},
		DefaultOutputModes: []string{"text", "data"},
		Skills:             skills,
	}, nil
}

func loadSkills(path string) ([]AgentSkill, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skills file: %w", err)
	}
	var skills []AgentSkill
	if err := yaml.Unmarshal(raw, &skills); err != nil {
		return nil, fmt.Errorf("parse skills file %s: %w", path, err)
	}
	if len(skills) == 0 {
		return nil, fmt.Errorf("skills file %s defines no skills", path)
	}
	return skills, nil
}

func defaultSkills() []AgentSkill {
	return []AgentSkill{
		{
			ID:          "text-to-sql",
			Name:        "Text-to-SQL Query",
			Description: "Converts natural language questions into SQL, executes them against the sales database, and answers in natural language with the SQL and raw results attached.",
			Tags:        []string{"sql", "database", "analytics", "sales", "text-to-sql"},
			Examples: []string{
				"Show me the top 5 customers by total spending",
				"What is the total revenue by product category?",
				"Which orders are still being processed?",
				"How many customers joined each month in 2023?",
				"What is the average order value?",
				"List products that have never been ordered",
			},
			InputModes:  []string{"text"},
			OutputModes: []string{"text", "data"},
		},
		{
			ID:          "schema-discovery",
			Name:        "Database Schema Discovery",
			Description: "Returns the database schema: tables, columns, data types, keys, and row counts.",
			Tags:        []string{"schema", "metadata", "database", "tables"},
			Examples: []string{
				"What tables are in the database?",
				"Show me the database schema",
			},
			InputModes:  []string{"text"},
			OutputModes: []string{"text"},
		},
	}
}
