package chat

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v2"
)

//go:embed rules.yaml
var rulesYAML []byte

type IntentRule struct {
	Keywords    []string `yaml:"keywords"`
	Response    string   `yaml:"response"`
	Suggestions []string `yaml:"suggestions"`
}

type Technology struct {
	Tag      string   `yaml:"tag"`
	Surfaces []string `yaml:"surfaces"`
	Purpose  string   `yaml:"purpose"`
}

// Rules holds the keyword sets, canned responses and technology synonym
// table driving the dispatcher. Loaded once at startup and treated as
// immutable afterwards; handlers receive it by reference and never write to
// it.
type Rules struct {
	Intents struct {
		Project   IntentRule `yaml:"project"`
		TechStack IntentRule `yaml:"tech_stack"`
		SelfIntro IntentRule `yaml:"self_intro"`
		Greeting  IntentRule `yaml:"greeting"`
	} `yaml:"intents"`
	Technologies []Technology `yaml:"technologies"`
}

func LoadRules() (*Rules, error) {
	var rules Rules
	if err := yaml.Unmarshal(rulesYAML, &rules); err != nil {
		return nil, fmt.Errorf("could not parse rules file: %w", err)
	}

	for _, intent := range []IntentRule{rules.Intents.Project, rules.Intents.TechStack, rules.Intents.SelfIntro, rules.Intents.Greeting} {
		if len(intent.Keywords) == 0 {
			return nil, fmt.Errorf("rules file has an intent with no keywords")
		}
	}
	for _, tech := range rules.Technologies {
		if tech.Tag == "" || len(tech.Surfaces) == 0 {
			return nil, fmt.Errorf("rules file has a technology entry missing tag or surfaces")
		}
	}

	return &rules, nil
}

const defaultPurpose = "적용 목적 정리 예정."

// PurposeFor looks up the role a technology played, matching either the
// canonical tag or any synonym, case-insensitively.
func (r *Rules) PurposeFor(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	for _, tech := range r.Technologies {
		if tech.Tag == lowered {
			return tech.Purpose
		}
		for _, surface := range tech.Surfaces {
			if surface == lowered {
				return tech.Purpose
			}
		}
	}
	return defaultPurpose
}
