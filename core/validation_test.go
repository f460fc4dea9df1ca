package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateSourceFile(t *testing.T) {
	valid := &SourceFile{
		Path:        "static/csv/places.csv",
		Fingerprint: "abc123",
		Status:      SourceStatusPending,
	}
	require.NoError(t, ValidateSourceFile(valid))

	tests := []struct {
		name    string
		mutate  func(*SourceFile)
		wantErr error
	}{
		{"empty path", func(f *SourceFile) { f.Path = "" }, ErrEmptyPath},
		{"empty fingerprint", func(f *SourceFile) { f.Fingerprint = "" }, ErrEmptyFingerprint},
		{"bad status", func(f *SourceFile) { f.Status = 0 }, ErrInvalidSourceStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := *valid
			tt.mutate(&file)
			err := ValidateSourceFile(&file)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSourceFile)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	err := ValidateSourceFile(nil)
	assert.ErrorIs(t, err, ErrInvalidSourceFile)
}

func TestValidateRow(t *testing.T) {
	valid := &Row{
		Fingerprint:    "abc123",
		ArtifactStatus: ArtifactStatusPending,
	}
	require.NoError(t, ValidateRow(valid))

	row := *valid
	row.Fingerprint = ""
	err := ValidateRow(&row)
	assert.ErrorIs(t, err, ErrInvalidRow)
	assert.ErrorIs(t, err, ErrEmptyFingerprint)

	row = *valid
	row.ArtifactStatus = 99
	err = ValidateRow(&row)
	assert.ErrorIs(t, err, ErrInvalidArtifactStatus)

	assert.ErrorIs(t, ValidateRow(nil), ErrInvalidRow)
}

func TestValidateStatuses(t *testing.T) {
	assert.NoError(t, ValidateSourceStatus(SourceStatusDone))
	assert.Error(t, ValidateSourceStatus(SourceStatus(42)))
	assert.NoError(t, ValidateArtifactStatus(ArtifactStatusFailed))
	assert.Error(t, ValidateArtifactStatus(ArtifactStatus(0)))
}
