package lookup

// hostingASNs lists networks that only announce cloud, VPS or CDN space.
// An external IP in one of them means the probe runs in a datacenter.
var hostingASNs = map[int]string{
	// Cloud
	16509:  "Amazon.com / AWS",
	14618:  "Amazon.com / AWS",
	8075:   "Microsoft Azure",
	15169:  "Google Cloud",
	396982: "Google Cloud",
	45102:  "Alibaba Cloud",
	45090:  "Tencent Cloud",
	132203: "Tencent Cloud",
	31898:  "Oracle Cloud",
	36351:  "IBM Cloud / SoftLayer",

	// VPS
	14061:  "DigitalOcean",
	20473:  "Vultr / Choopa",
	63949:  "Linode / Akamai Connected Cloud",
	16276:  "OVHcloud",
	24940:  "Hetzner Online",
	213230: "Hetzner Cloud",
	12876:  "Scaleway (Online SAS)",
	51167:  "Contabo",
	60781:  "LeaseWeb",
	202053: "UpCloud",
	197540: "Netcup",
	50979:  "Selectel",

	// CDN / edge
	13335:  "Cloudflare",
	209242: "Cloudflare (WARP)",
	20940:  "Akamai Technologies",
	54113:  "Fastly",
}

// HostingOrg returns the provider name when asn belongs to a known
// hosting network.
func HostingOrg(asn int) (string, bool) {
	org, ok := hostingASNs[asn]
	return org, ok
}
