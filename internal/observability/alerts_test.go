package observability

import (
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertGroup struct {
	Name  string      `yaml:"name"`
	Rules []alertRule `yaml:"rules"`
}

type alertSpec struct {
	Groups []alertGroup `yaml:"groups"`
}

func TestProposalAlertRules(t *testing.T) {
	path := filepath.Join("..", "..", "deploy", "prometheus", "alerts", "proposals.yml")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read alert file: %v", err)
	}

	var spec alertSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		t.Fatalf("failed to unmarshal alert file: %v", err)
	}

	if len(spec.Groups) == 0 {
		t.Fatal("expected at least one alert group")
	}

	var proposalGroup *alertGroup
	for i := range spec.Groups {
		if spec.Groups[i].Name == "proposals" {
			proposalGroup = &spec.Groups[i]
			break
		}
	}
	if proposalGroup == nil {
		t.Fatal("proposals alert group missing")
	}

	expected := map[string]string{
		"ProposalAPIHighErrorRate": "page",
		"ProposalAPISlowRequests":  "ticket",
		"NotificationQueueBacklog": "ticket",
	}

	if len(proposalGroup.Rules) != len(expected) {
		t.Fatalf("expected %d rules, got %d", len(expected), len(proposalGroup.Rules))
	}

	for _, rule := range proposalGroup.Rules {
		severity, ok := expected[rule.Alert]
		if !ok {
			t.Fatalf("unexpected rule %q", rule.Alert)
		}
		if rule.Labels["severity"] != severity {
			t.Fatalf("rule %s severity mismatch: %s", rule.Alert, rule.Labels["severity"])
		}
		if rule.Annotations["summary"] == "" || rule.Annotations["runbook"] == "" {
			t.Fatalf("rule %s must include summary and runbook annotations", rule.Alert)
		}
		if rule.Expr == "" {
			t.Fatalf("rule %s must define an expression", rule.Alert)
		}
		if rule.For == "" {
			t.Fatalf("rule %s must define a hold duration", rule.Alert)
		}
	}
}
