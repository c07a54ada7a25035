package config

import (
	"go.trai.ch/matrix/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Workfile represents the structure of a workflow file.
type Workfile struct {
	Name string            `yaml:"name"`
	On   Triggers          `yaml:"on"`
	Env  map[string]string `yaml:"env"`
	Jobs Jobs              `yaml:"jobs"`
}

// Triggers lists the events a workflow runs on. It accepts a single event,
// a list of events or a mapping keyed by event.
type Triggers []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Triggers) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*t = Triggers{node.Value}
	case yaml.SequenceNode:
		var events []string
		if err := node.Decode(&events); err != nil {
			return err
		}
		*t = events
	case yaml.MappingNode:
		events := make(Triggers, 0, len(node.Content)/2)
		for i := 0; i < len(node.Content); i += 2 {
			events = append(events, node.Content[i].Value)
		}
		*t = events
	default:
		return nodeError(node, "on must be an event, a list of events or a mapping")
	}
	return nil
}

// JobEntry is a job declaration together with its id.
type JobEntry struct {
	ID  string
	Job JobDTO
}

// Jobs keeps job declarations in the order they appear in the file.
type Jobs []JobEntry

// UnmarshalYAML implements yaml.Unmarshaler.
func (j *Jobs) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, "jobs must be a mapping")
	}
	jobs := make(Jobs, 0, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		var dto JobDTO
		if err := node.Content[i+1].Decode(&dto); err != nil {
			return zerr.With(err, "job", node.Content[i].Value)
		}
		jobs = append(jobs, JobEntry{ID: node.Content[i].Value, Job: dto})
	}
	*j = jobs
	return nil
}

// JobDTO represents a job declaration in the workflow file.
type JobDTO struct {
	Name           string            `yaml:"name"`
	RunsOn         string            `yaml:"runs-on"`
	Strategy       StrategyDTO       `yaml:"strategy"`
	Env            map[string]string `yaml:"env"`
	Steps          []StepDTO         `yaml:"steps"`
	TimeoutMinutes int               `yaml:"timeout-minutes"`
}

// StrategyDTO represents the strategy block of a job.
type StrategyDTO struct {
	FailFast    bool      `yaml:"fail-fast"`
	MaxParallel int       `yaml:"max-parallel"`
	Matrix      MatrixDTO `yaml:"matrix"`
}

// MatrixDTO represents a matrix declaration. Axes keep their declaration order.
type MatrixDTO struct {
	Axes    []domain.Axis
	Include []domain.Combination
	Exclude []domain.Combination
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (m *MatrixDTO) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return nodeError(node, "matrix must be a mapping")
	}

	var out MatrixDTO
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i].Value, node.Content[i+1]
		switch key {
		case "include", "exclude":
			combos, err := decodeCombinations(value)
			if err != nil {
				return zerr.With(err, "matrix", key)
			}
			if key == "include" {
				out.Include = combos
			} else {
				out.Exclude = combos
			}
		default:
			values, err := decodeAxisValues(value)
			if err != nil {
				return zerr.With(err, "axis", key)
			}
			out.Axes = append(out.Axes, domain.Axis{Name: key, Values: values})
		}
	}
	*m = out
	return nil
}

// decodeAxisValues reads scalars verbatim so that "3.10" stays "3.10".
func decodeAxisValues(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode {
		return []string{node.Value}, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, nodeError(node, "matrix axis must be a list of values")
	}
	values := make([]string, 0, len(node.Content))
	for _, v := range node.Content {
		if v.Kind != yaml.ScalarNode {
			return nil, nodeError(v, "matrix values must be scalars")
		}
		values = append(values, v.Value)
	}
	return values, nil
}

func decodeCombinations(node *yaml.Node) ([]domain.Combination, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, nodeError(node, "expected a list of combinations")
	}
	combos := make([]domain.Combination, 0, len(node.Content))
	for _, entry := range node.Content {
		if entry.Kind != yaml.MappingNode {
			return nil, nodeError(entry, "combination must be a mapping")
		}
		c := make(domain.Combination, 0, len(entry.Content)/2)
		for i := 0; i < len(entry.Content); i += 2 {
			v := entry.Content[i+1]
			if v.Kind != yaml.ScalarNode {
				return nil, nodeError(v, "matrix values must be scalars")
			}
			c = append(c, domain.Binding{Key: entry.Content[i].Value, Value: v.Value})
		}
		combos = append(combos, c)
	}
	return combos, nil
}

// StepDTO represents a step declaration.
type StepDTO struct {
	Name             string            `yaml:"name"`
	Uses             string            `yaml:"uses"`
	With             map[string]string `yaml:"with"`
	Run              string            `yaml:"run"`
	Env              map[string]string `yaml:"env"`
	Shell            string            `yaml:"shell"`
	WorkingDirectory string            `yaml:"working-directory"`
}

func nodeError(node *yaml.Node, msg string) error {
	return zerr.With(zerr.With(zerr.New(msg), "line", node.Line), "column", node.Column)
}
