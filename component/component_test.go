package component

import (
	"context"
	"testing"
)

type plain struct{}

func (plain) Name() string                   { return "plain" }
func (plain) Start(context.Context) error    { return nil }
func (plain) Stop(context.Context) error     { return nil }
func (plain) Health(context.Context) Health  { return Health{Name: "plain", Status: StatusHealthy} }

type described struct{ plain }

func (described) Describe() Description { return Description{Type: "database", Details: "sqlite :memory:"} }

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		c    Component
		want Description
	}{
		{"falls back to name", plain{}, Description{Name: "plain"}},
		{"fills missing name", described{}, Description{Name: "plain", Type: "database", Details: "sqlite :memory:"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Describe(tt.c); got != tt.want {
				t.Errorf("Describe() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHealth_Healthy(t *testing.T) {
	for status, want := range map[HealthStatus]bool{
		StatusHealthy:   true,
		StatusDegraded:  false,
		StatusUnhealthy: false,
	} {
		if got := (Health{Status: status}).Healthy(); got != want {
			t.Errorf("Health{%s}.Healthy() = %v, want %v", status, got, want)
		}
	}
}
