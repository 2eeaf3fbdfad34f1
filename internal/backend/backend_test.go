package backend

import (
	"context"
	"testing"

	"daybook/internal/remote/httpapi"
	"daybook/internal/remote/memory"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	gw, err := New(ctx, Config{Type: MemoryBackend}, nil)
	if err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, ok := gw.(*memory.Store); !ok {
		t.Fatalf("memory backend is %T", gw)
	}

	gw, err = New(ctx, Config{Type: RemoteBackend, APIBaseURL: "http://localhost:3000/api"}, nil)
	if err != nil {
		t.Fatalf("remote: %v", err)
	}
	if _, ok := gw.(*httpapi.Client); !ok {
		t.Fatalf("remote backend is %T", gw)
	}

	if _, err := New(ctx, Config{Type: RemoteBackend, APIBaseURL: "not a url"}, nil); err == nil {
		t.Fatal("expected error for relative base URL")
	}
	if _, err := New(ctx, Config{Type: "sheets"}, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestTypeIsValid(t *testing.T) {
	for _, tt := range []struct {
		in   Type
		want bool
	}{
		{RemoteBackend, true},
		{MemoryBackend, true},
		{"sqlite", false},
		{"", false},
	} {
		if got := tt.in.IsValid(); got != tt.want {
			t.Errorf("%q.IsValid() = %v, want %v", tt.in, got, tt.want)
		}
	}
}
