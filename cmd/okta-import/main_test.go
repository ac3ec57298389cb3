package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/okta-import/internal/domain"
)

func TestReadEmails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "emails.txt")
	require.NoError(t, os.WriteFile(path, []byte("a@x.io\nb@x.io\n"), 0o600))

	got, err := readEmails(path)
	require.NoError(t, err)
	assert.Equal(t, "a@x.io\nb@x.io\n", got)

	_, err = readEmails(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestPrintResult(t *testing.T) {
	result := &domain.BatchResult{}
	result.Add(domain.EmailResult{Email: "a@x.io", Outcome: domain.OutcomeCreated, UserID: "00u1"})
	result.Add(domain.EmailResult{Email: "b@x.io", Outcome: domain.OutcomeSkipped, Reason: "account already registered"})
	run := &domain.ImportRun{ID: "run-1"}
	run.Apply(result)

	var buf bytes.Buffer
	require.NoError(t, printResult(&buf, run))

	var decoded domain.BatchResult
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Total)
	assert.Equal(t, 1, decoded.Created)
	assert.Equal(t, 1, decoded.Skipped)
	assert.Equal(t, 1, decoded.Results[1].Position)
}

func TestFlagsAreDeclared(t *testing.T) {
	names := map[string]bool{}
	for _, flag := range newApp().Flags {
		names[flag.GetName()] = true
	}
	for _, want := range []string{"emails-file", "password", "question", "answer"} {
		assert.True(t, names[want], want)
	}
}
