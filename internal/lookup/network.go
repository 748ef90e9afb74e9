package lookup

import (
	"strings"

	"github.com/akl7777777/whoami-probe/internal/model"
)

// Annotator attaches ASN details to the external IP.
type Annotator struct {
	local *LocalDB
}

// NewAnnotator opens mmdbPath when set. Without it only the lookup
// response's org field is used.
func NewAnnotator(mmdbPath string) *Annotator {
	return &Annotator{local: NewLocalDB(mmdbPath)}
}

// Annotate returns nil when no ASN can be determined.
func (a *Annotator) Annotate(ext *ExternalIP) *model.NetworkInfo {
	if ext == nil {
		return nil
	}

	asn, org := parseASN(ext.Org), orgName(ext.Org)
	if asn == 0 && a.local != nil {
		var err error
		asn, org, err = a.local.Lookup(ext.IP)
		if err != nil {
			return nil
		}
	}
	if asn == 0 {
		return nil
	}

	info := &model.NetworkInfo{ASN: asn, Org: org}
	if name, ok := HostingOrg(asn); ok {
		info.Datacenter = true
		if info.Org == "" {
			info.Org = name
		}
	}
	return info
}

// Close releases the MMDB reader, if any.
func (a *Annotator) Close() {
	a.local.Close()
}

// parseASN extracts ASN number from strings like "AS16509 Amazon.com, Inc."
func parseASN(s string) int {
	if len(s) < 3 {
		return 0
	}
	num := s
	if s[:2] == "AS" || s[:2] == "as" {
		num = s[2:]
	}
	end := 0
	for end < len(num) && num[end] >= '0' && num[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}
	result := 0
	for i := 0; i < end; i++ {
		result = result*10 + int(num[i]-'0')
	}
	return result
}

// orgName drops the leading "ASnnn " token from an ipinfo org string.
func orgName(s string) string {
	if parseASN(s) == 0 {
		return strings.TrimSpace(s)
	}
	_, rest, _ := strings.Cut(s, " ")
	return strings.TrimSpace(rest)
}
