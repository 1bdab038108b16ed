package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/cfb-analytics/internal/config"
	"github.com/riskibarqy/cfb-analytics/internal/platform/logging"
)

func TestStart_DisabledIsNoop(t *testing.T) {
	tests := []config.Config{
		{ServiceName: "cfb-analytics", ServiceVersion: "dev", AppEnv: config.EnvDev},
		{UptraceEnabled: true, UptraceDSN: "  ", ServiceName: "cfb-analytics", AppEnv: config.EnvDev},
	}
	for _, cfg := range tests {
		shutdown, err := Start(cfg, "builder", logging.NewNop())
		if err != nil {
			t.Fatalf("start observability: %v", err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown observability: %v", err)
		}
	}
}

func TestServiceName(t *testing.T) {
	tests := []struct {
		base, command, want string
	}{
		{base: "cfb-analytics", command: "builder", want: "cfb-analytics-builder"},
		{base: "cfb-analytics-builder", command: "builder", want: "cfb-analytics-builder"},
		{base: " cfb-analytics ", command: "", want: "cfb-analytics"},
	}
	for _, tc := range tests {
		if got := serviceName(tc.base, tc.command); got != tc.want {
			t.Fatalf("serviceName(%q, %q) = %q, want %q", tc.base, tc.command, got, tc.want)
		}
	}
}

func TestProfileTags(t *testing.T) {
	tags := profileTags(config.Config{AppEnv: config.EnvProd, ServiceName: "cfb", PBPFormat: config.PBPFormatCFBD}, "puller")
	if tags["command"] != "puller" || tags["pbp"] != "cfbd" || tags["env"] != "prod" {
		t.Fatalf("unexpected tags: %v", tags)
	}
}
