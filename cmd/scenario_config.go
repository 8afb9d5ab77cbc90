package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	sim "github.com/stadium-sim/stadium-sim/sim"
	"github.com/stadium-sim/stadium-sim/sim/telemetry"
)

// scenarioServiceTimes names the per-stage service distributions in YAML; a
// stage left out keeps its default.
type scenarioServiceTimes struct {
	Security  *sim.ServiceTime `yaml:"security"`
	Turnstile *sim.ServiceTime `yaml:"turnstile"`
	Vendor    *sim.ServiceTime `yaml:"vendor"`
	Exit      *sim.ServiceTime `yaml:"exit"`
}

// scenarioDoc is the YAML shape of a scenario: the flat run configuration
// plus named service-time sections.
type scenarioDoc struct {
	sim.Config   `yaml:",inline"`
	ServiceTimes scenarioServiceTimes `yaml:"service_times"`
}

// LoadScenario reads a scenario YAML file. Keys missing from the file keep
// their default values, so a scenario only states what it changes.
func LoadScenario(path string) (sim.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.Config{}, fmt.Errorf("read scenario %s: %w", path, err)
	}

	scenario := scenarioDoc{Config: sim.DefaultConfig()}
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return sim.Config{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}

	cfg := scenario.Config
	for st, override := range map[telemetry.Stage]*sim.ServiceTime{
		telemetry.StageSecurity:  scenario.ServiceTimes.Security,
		telemetry.StageTurnstile: scenario.ServiceTimes.Turnstile,
		telemetry.StageVendor:    scenario.ServiceTimes.Vendor,
		telemetry.StageExit:      scenario.ServiceTimes.Exit,
	} {
		if override != nil {
			cfg.ServiceTimes[st] = *override
		}
	}

	logrus.Infof("Using scenario %s", path)
	return cfg, nil
}
