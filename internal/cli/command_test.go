package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contractsCUE = `contracts: {
	"adc-read": {
		ensures: ["10 > 5"]
	}
}`

// writeFixture drops content into a temp dir and returns the path.
func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// runCommand executes the torc CLI with args and captures output.
func runCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestValidateCommandText(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	out, _, err := runCommand(t, "validate", path)
	require.NoError(t, err)
	assert.Contains(t, out, "VALID: 2 nodes, 1 edges")
}

func TestValidateCommandJSON(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	out, _, err := runCommand(t, "--format", "json", "validate", path)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestValidateCommandMissingFile(t *testing.T) {
	_, _, err := runCommand(t, "validate", filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestValidateCommandInvalidGraph(t *testing.T) {
	// Source output is Linear but has no consumer.
	src := `{"nodes": [{"id": "buf", "class": "Literal", "outputs": [
		{"kind": "linear", "linearity": "Linear", "inner": {"kind": "int", "width": 32, "signed": true}}
	]}]}`
	path := writeFixture(t, "bad.json", src)

	out, _, err := runCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "INVALID: 1 error(s)")
}

func TestValidateCommandNegativePort(t *testing.T) {
	src := `{
		"nodes": [
			{"id": "p", "class": "Literal", "outputs": [{"kind": "int", "width": 32, "signed": true}]},
			{"id": "c", "class": "Write", "inputs": [{"kind": "int", "width": 32, "signed": true}]}
		],
		"edges": [{"source": {"node": "p", "port": 0}, "target": {"node": "c", "port": -1}}]
	}`
	path := writeFixture(t, "bad-port.json", src)

	out, _, err := runCommand(t, "validate", path)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "PORT_OUT_OF_RANGE")
}

func TestVerifyCommandNoObligations(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	_, _, err := runCommand(t, "verify", path)
	require.NoError(t, err)
}

func TestVerifyCommandWithContracts(t *testing.T) {
	graphPath := writeFixture(t, "pipeline.json", pipelineJSON)
	cuePath := writeFixture(t, "contracts.cue", contractsCUE)

	out, _, err := runCommand(t, "--format", "json", "verify", graphPath,
		"--contracts", cuePath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result VerifyResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.True(t, result.Passed)
	assert.Equal(t, 1, result.Total)
	assert.Equal(t, 1, result.Verified)
}

func TestVerifyCommandUnknownProfile(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	_, _, err := runCommand(t, "verify", path, "--profile", "paranoid")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestVerifyCommandFailedObligation(t *testing.T) {
	graphPath := writeFixture(t, "pipeline.json", pipelineJSON)
	cuePath := writeFixture(t, "contracts.cue", `contracts: "scale": ensures: ["3 > 10"]`)

	_, _, err := runCommand(t, "verify", graphPath, "--contracts", cuePath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestVerifyCommandProofDB(t *testing.T) {
	graphPath := writeFixture(t, "pipeline.json", pipelineJSON)
	cuePath := writeFixture(t, "contracts.cue", contractsCUE)
	dbPath := filepath.Join(t.TempDir(), "proofs.db")

	_, _, err := runCommand(t, "verify", graphPath, "--contracts", cuePath,
		"--proof-db", dbPath)
	require.NoError(t, err)

	// A second run reuses the witness stored by the first.
	out, _, err := runCommand(t, "--format", "json", "verify", graphPath,
		"--contracts", cuePath, "--proof-db", dbPath)
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result VerifyResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.True(t, result.Passed)
	assert.Equal(t, 1, result.Verified)
}

func TestMaterializeCommandText(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	out, _, err := runCommand(t, "materialize", path, "--platform", "linux-x86_64")
	require.NoError(t, err)
	assert.Contains(t, out, "=== Materialization Report ===")
	assert.Contains(t, out, "Target: linux-x86_64")
}

func TestMaterializeCommandJSON(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	out, _, err := runCommand(t, "--format", "json", "materialize", path,
		"--platform", "stm32f407-discovery")
	require.NoError(t, err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var result MaterializeResult
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.Equal(t, "stm32f407-discovery", result.Target)
	assert.Equal(t, 2, result.FinalNodeCount)
	assert.True(t, result.VerificationPassed)
	assert.True(t, result.ResourcesFit)
}

func TestMaterializeCommandUnknownPlatform(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	_, _, err := runCommand(t, "materialize", path, "--platform", "pdp-11")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestMaterializeCommandFailedGate(t *testing.T) {
	graphPath := writeFixture(t, "pipeline.json", pipelineJSON)
	cuePath := writeFixture(t, "contracts.cue", `contracts: "scale": ensures: ["3 > 10"]`)

	_, _, err := runCommand(t, "materialize", graphPath,
		"--platform", "linux-x86_64", "--contracts", cuePath)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestMaterializeCommandRequiresPlatform(t *testing.T) {
	path := writeFixture(t, "pipeline.json", pipelineJSON)

	_, _, err := runCommand(t, "materialize", path)
	require.Error(t, err)
}
