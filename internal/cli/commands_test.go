package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/harun/toolgate/pkg/auth"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := GetRootCmd()
	resetBuiltinFlags(cmd)
	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetErr(output)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return output.String(), err
}

// resetBuiltinFlags clears --help and --version left set by an earlier Execute
func resetBuiltinFlags(cmd *cobra.Command) {
	for _, name := range []string{"help", "version"} {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = f.Value.Set("false")
		}
	}
}

func TestToolsCommand(t *testing.T) {
	t.Run("table", func(t *testing.T) {
		out, err := execute(t, "tools", "--schemas=false")
		require.NoError(t, err)

		assert.Contains(t, out, "NAME")
		assert.Contains(t, out, "hello")
		assert.Contains(t, out, "run_n8n")
		assert.Contains(t, out, "notion")
	})

	t.Run("function schemas", func(t *testing.T) {
		out, err := execute(t, "tools", "--schemas", "--format", "function")
		require.NoError(t, err)

		var schemas []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &schemas))
		require.Len(t, schemas, 3)
		assert.Equal(t, "function", schemas[0]["type"])
	})

	t.Run("anthropic schemas", func(t *testing.T) {
		out, err := execute(t, "tools", "--schemas", "--format", "anthropic")
		require.NoError(t, err)

		var schemas []map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(out), &schemas))
		require.Len(t, schemas, 3)
		assert.Equal(t, "hello", schemas[0]["name"])
		assert.Contains(t, schemas[0], "input_schema")
	})

	t.Run("unknown format", func(t *testing.T) {
		_, err := execute(t, "tools", "--schemas", "--format", "xml")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported schema format")
	})

	toolsSchemas = false
	toolsFormat = "function"
}

func TestKeygenCommand(t *testing.T) {
	out, err := execute(t, "keygen", "--name", "ci", "--permission", "hello", "--permission", "notion")
	require.NoError(t, err)

	var file auth.CredentialFile
	require.NoError(t, yaml.Unmarshal([]byte(out), &file))
	require.Len(t, file.Credentials, 1)

	cred := file.Credentials[0]
	assert.True(t, strings.HasPrefix(cred.Key, auth.KeyPrefix))
	assert.Equal(t, "ci", cred.Name)
	assert.Equal(t, []string{"hello", "notion"}, cred.Permissions)

	keygenName = ""
	keygenPermissions = []string{auth.Wildcard}
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "toolgate.yaml")
	defer func() { cfgFile = "" }()

	t.Run("init writes defaults", func(t *testing.T) {
		out, err := execute(t, "--config", path, "config", "init")
		require.NoError(t, err)
		assert.Contains(t, out, path)

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("init refuses to overwrite", func(t *testing.T) {
		_, err := execute(t, "--config", path, "config", "init")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already exists")
	})

	t.Run("validate defaults", func(t *testing.T) {
		out, err := execute(t, "--config", path, "config", "validate")
		require.NoError(t, err)
		assert.Contains(t, out, "Configuration is valid")
	})

	t.Run("validate rejects unknown tool permission", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		content := `credentials:
  - key: k1
    name: alice
    permissions: ["does_not_exist"]
`
		require.NoError(t, os.WriteFile(bad, []byte(content), 0600))

		_, err := execute(t, "--config", bad, "config", "validate")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown tool in permissions: does_not_exist")
	})
}
