package system

import (
	"bytes"
	"strings"
	"testing"

	gokeyring "github.com/zalando/go-keyring"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/keyring"
)

func newKeyringContext() (*cli.Context, *bytes.Buffer) {
	var out bytes.Buffer
	return &cli.Context{Out: &out}, &out
}

func TestKeyringSetCmd(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteAPIKey() }()

	tests := []struct {
		name      string
		key       string
		want      string
		wantError bool
	}{
		{name: "valid key", key: "AIzaSyExample", want: "AIzaSyExample"},
		{name: "trims whitespace", key: "  AIzaSyExample\n", want: "AIzaSyExample"},
		{name: "blank key", key: "   ", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := newKeyringContext()
			err := (&KeyringSetCmd{APIKey: tt.key}).Run(ctx)
			if (err != nil) != tt.wantError {
				t.Fatalf("KeyringSetCmd.Run() error = %v, wantError %v", err, tt.wantError)
			}
			if err != nil {
				return
			}
			stored, getErr := keyring.GetAPIKey()
			if getErr != nil {
				t.Fatalf("failed to retrieve stored key: %v", getErr)
			}
			if stored != tt.want {
				t.Errorf("stored key = %q, want %q", stored, tt.want)
			}
		})
	}
}

func TestKeyringGetCmd(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteAPIKey() }()

	ctx, out := newKeyringContext()
	if err := (&KeyringGetCmd{}).Run(ctx); err == nil {
		t.Error("expected error when no key is stored")
	}

	if err := keyring.SetAPIKey("secret-value-9876"); err != nil {
		t.Fatal(err)
	}
	out.Reset()
	if err := (&KeyringGetCmd{}).Run(ctx); err != nil {
		t.Fatalf("KeyringGetCmd.Run() error = %v", err)
	}
	if strings.Contains(out.String(), "secret-value") {
		t.Errorf("key should be masked: %s", out.String())
	}
	if !strings.Contains(out.String(), "9876") {
		t.Errorf("masked key should keep its last four characters: %s", out.String())
	}
}

func TestKeyringDeleteCmd(t *testing.T) {
	gokeyring.MockInit()

	ctx, _ := newKeyringContext()
	if err := (&KeyringDeleteCmd{}).Run(ctx); err == nil {
		t.Error("expected error when deleting a missing key")
	}

	if err := keyring.SetAPIKey("to-delete"); err != nil {
		t.Fatal(err)
	}
	if err := (&KeyringDeleteCmd{}).Run(ctx); err != nil {
		t.Fatalf("KeyringDeleteCmd.Run() error = %v", err)
	}
	if _, err := keyring.GetAPIKey(); err != keyring.ErrNotFound {
		t.Errorf("GetAPIKey() after delete error = %v, want ErrNotFound", err)
	}
}

func TestKeyringStatusCmd(t *testing.T) {
	gokeyring.MockInit()
	defer func() { _ = keyring.DeleteAPIKey() }()

	ctx, out := newKeyringContext()
	if err := (&KeyringStatusCmd{}).Run(ctx); err != nil {
		t.Fatalf("KeyringStatusCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "No API key stored") {
		t.Errorf("unexpected output: %s", out.String())
	}
}
