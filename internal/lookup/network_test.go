package lookup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseASN(t *testing.T) {
	tests := map[string]int{
		"AS15169 Google LLC":        15169,
		"as13335 Cloudflare, Inc.":  13335,
		"24940 Hetzner Online GmbH": 24940,
		"Google LLC":                0,
		"AS":                        0,
		"":                          0,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseASN(in), in)
	}
}

func TestOrgName(t *testing.T) {
	assert.Equal(t, "Google LLC", orgName("AS15169 Google LLC"))
	assert.Equal(t, "Google LLC", orgName("Google LLC"))
	assert.Equal(t, "", orgName("AS15169"))
}

func TestAnnotator_HostingNetwork(t *testing.T) {
	a := NewAnnotator("")
	defer a.Close()

	info := a.Annotate(&ExternalIP{IP: "35.1.2.3", Org: "AS15169 Google LLC"})
	require.NotNil(t, info)
	assert.Equal(t, 15169, info.ASN)
	assert.Equal(t, "Google LLC", info.Org)
	assert.True(t, info.Datacenter)
}

func TestAnnotator_ResidentialNetwork(t *testing.T) {
	a := NewAnnotator("")

	info := a.Annotate(&ExternalIP{IP: "84.1.2.3", Org: "AS3320 Deutsche Telekom AG"})
	require.NotNil(t, info)
	assert.Equal(t, 3320, info.ASN)
	assert.False(t, info.Datacenter)
}

func TestAnnotator_NoASN(t *testing.T) {
	a := NewAnnotator("")

	assert.Nil(t, a.Annotate(&ExternalIP{IP: "84.1.2.3"}))
	assert.Nil(t, a.Annotate(nil))
}

func TestAnnotator_MissingMMDB(t *testing.T) {
	a := NewAnnotator(t.TempDir() + "/GeoLite2-ASN.mmdb")
	defer a.Close()

	assert.Nil(t, a.local)
	assert.Nil(t, a.Annotate(&ExternalIP{IP: "84.1.2.3"}))
}

func TestHostingOrg(t *testing.T) {
	org, ok := HostingOrg(13335)
	assert.True(t, ok)
	assert.Equal(t, "Cloudflare", org)

	_, ok = HostingOrg(3320)
	assert.False(t, ok)
}
