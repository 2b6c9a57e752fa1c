package system

import (
	"errors"
	"fmt"

	"github.com/julianstephens/detoxscan/internal/cli"
	"github.com/julianstephens/detoxscan/internal/keyring"
)

// KeyringSetCmd stores the model API key in the OS keyring
type KeyringSetCmd struct {
	APIKey string `arg:"" name:"key" help:"Model API key to store in the keyring."`
}

func (cmd *KeyringSetCmd) Run(ctx *cli.Context) error {
	if err := keyring.SetAPIKey(cmd.APIKey); err != nil {
		return err
	}
	ctx.Println("✓ API key stored successfully in OS keyring")
	ctx.Println("  DETOXSCAN_API_KEY and GEMINI_API_KEY still take precedence when set")
	return nil
}

// KeyringGetCmd prints the stored API key, masked
type KeyringGetCmd struct{}

func (cmd *KeyringGetCmd) Run(ctx *cli.Context) error {
	key, err := keyring.GetAPIKey()
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring. Use 'detoxscan keyring set' to store one")
		}
		return fmt.Errorf("failed to retrieve API key from keyring: %w", err)
	}
	ctx.Println("API key retrieved from keyring:")
	ctx.Println(keyring.Mask(key))
	return nil
}

type KeyringDeleteCmd struct{}

func (cmd *KeyringDeleteCmd) Run(ctx *cli.Context) error {
	if err := keyring.DeleteAPIKey(); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return errors.New("no API key found in keyring")
		}
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	ctx.Println("✓ API key deleted from OS keyring")
	return nil
}

// KeyringStatusCmd checks the availability of the OS keyring
type KeyringStatusCmd struct{}

func (cmd *KeyringStatusCmd) Run(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		ctx.Println("❌ OS keyring is not available on this system")
		return keyring.ErrKeyringUnavailable
	}
	ctx.Println("✓ OS keyring is available")
	if _, err := keyring.GetAPIKey(); err == nil {
		ctx.Println("✓ API key is stored in keyring")
	} else if errors.Is(err, keyring.ErrNotFound) {
		ctx.Println("ℹ No API key stored in keyring")
	}
	return nil
}
