package reporter

import (
	_ "embed"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/mydub-ai/reporter-cli/internal/model"
)

//go:embed sources.yaml
var sourcesYAML []byte

// loadRegistry parses the embedded per-specialty source registry.
func loadRegistry() (map[model.Specialty]model.AgentConfig, error) {
	var reg map[model.Specialty]model.AgentConfig
	if err := yaml.Unmarshal(sourcesYAML, &reg); err != nil {
		return nil, eris.Wrap(err, "reporter: parse source registry")
	}
	for sp, cfg := range reg {
		if cfg.ID == "" {
			return nil, eris.Errorf("reporter: registry entry %s has no id", sp)
		}
		if len(cfg.Sources) == 0 {
			return nil, eris.Errorf("reporter: registry entry %s has no sources", sp)
		}
	}
	return reg, nil
}
