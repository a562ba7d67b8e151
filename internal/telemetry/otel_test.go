package telemetry

import (
	"context"
	"testing"
	"time"
)

func TestInitTracer(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		endpoint    string
		wantErr     bool
	}{
		{
			name:        "valid configuration",
			serviceName: "mindwell-api",
			endpoint:    "localhost:4318",
			wantErr:     false,
		},
		{
			// The exporter does not require a service name; the resource
			// just ends up unnamed.
			name:        "empty service name",
			serviceName: "",
			endpoint:    "localhost:4318",
			wantErr:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			tp, err := InitTracer(ctx, tt.serviceName, tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Errorf("InitTracer() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tp != nil {
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := Shutdown(shutdownCtx, tp); err != nil {
					t.Errorf("Shutdown() error = %v", err)
				}
			}
		})
	}
}

func TestShutdown(t *testing.T) {
	t.Run("nil provider", func(t *testing.T) {
		if err := Shutdown(context.Background(), nil); err != nil {
			t.Errorf("Shutdown() with nil provider should not error, got: %v", err)
		}
	})

	t.Run("valid provider", func(t *testing.T) {
		tp, err := InitTracer(context.Background(), "mindwell-api", "localhost:4318")
		if err != nil {
			t.Fatalf("Failed to initialize tracer: %v", err)
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := Shutdown(shutdownCtx, tp); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
}
