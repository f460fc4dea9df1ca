package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDFromContent_Deterministic(t *testing.T) {
	id1 := IDFromContent("hello world")
	id2 := IDFromContent("hello world")
	assert.Equal(t, id1, id2)

	id3 := IDFromContent("hello world!")
	assert.NotEqual(t, id1, id3)
}

func TestRowFingerprint_OrderIndependent(t *testing.T) {
	a := RowFingerprint(map[string]string{"name": "clinic", "city": "tehran"})
	b := RowFingerprint(map[string]string{"city": "tehran", "name": "clinic"})
	assert.Equal(t, a, b)
}

func TestRowFingerprint_DistinguishesFields(t *testing.T) {
	a := RowFingerprint(map[string]string{"name": "clinic"})
	b := RowFingerprint(map[string]string{"name": "hospital"})
	assert.NotEqual(t, a, b)

	// key/value boundary must matter
	c := RowFingerprint(map[string]string{"ab": "c"})
	d := RowFingerprint(map[string]string{"a": "bc"})
	assert.NotEqual(t, c, d)
}

func TestFingerprintReader(t *testing.T) {
	fp1, err := FingerprintReader(strings.NewReader("id,name\n1,clinic\n"))
	require.NoError(t, err)
	fp2, err := FingerprintReader(strings.NewReader("id,name\n1,clinic\n"))
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64) // hex of 32 bytes

	fp3, err := FingerprintReader(strings.NewReader("id,name\n1,hospital\n"))
	require.NoError(t, err)
	assert.NotEqual(t, fp1, fp3)
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, `"quoted"`, NormalizeText("“quoted”"))
	assert.Equal(t, "a - b", NormalizeText("a – b"))
	assert.Equal(t, "one two", NormalizeText("  one    two ​"))
}

func TestNormalizeFields_StableFingerprint(t *testing.T) {
	raw := map[string]string{"name": "  St. Mary’s  "}
	clean := map[string]string{"name": "St. Mary's"}
	assert.Equal(t, RowFingerprint(NormalizeFields(raw)), RowFingerprint(clean))
}

func TestRowContent(t *testing.T) {
	content := RowContent(map[string]string{"name": "clinic", "city": "tehran"})
	assert.Equal(t, "city: tehran | name: clinic", content)
}

func TestLeaseExpired(t *testing.T) {
	now := time.Now().UTC()
	lease := &Lease{Key: "ingest", Owner: "w1", ExpiresAt: now.Add(time.Minute)}
	assert.False(t, lease.Expired(now))
	assert.True(t, lease.Expired(now.Add(time.Minute)))
	assert.True(t, lease.Expired(now.Add(2*time.Minute)))
}
