package cli

import (
	"fmt"

	"github.com/harun/toolgate/pkg/auth"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	keygenName        string
	keygenPermissions []string
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an API key",
	Long: `Generate a random API key and print it as a credentials entry that can
be pasted into the config file or the credentials file.`,
	RunE: runKeygen,
}

func init() {
	keygenCmd.Flags().StringVar(&keygenName, "name", "", "identity name for the key")
	keygenCmd.Flags().StringSliceVar(&keygenPermissions, "permission", []string{auth.Wildcard}, "tool the key may call (repeatable, * for all)")
	rootCmd.AddCommand(keygenCmd)
}

func runKeygen(cmd *cobra.Command, args []string) error {
	key, err := auth.GenerateKey()
	if err != nil {
		return err
	}

	name := keygenName
	if name == "" {
		name = "user"
	}

	data, err := yaml.Marshal(auth.CredentialFile{
		Credentials: []auth.Credential{{
			Key:         key,
			Name:        name,
			Permissions: keygenPermissions,
		}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode credential: %w", err)
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
