package urlx

import "strings"

// multiPartSuffixes lists two-label public suffixes where the registrable
// domain needs three labels (api.example.co.uk -> example.co.uk). Kept as a
// table so country coverage can grow without touching extraction logic.
var multiPartSuffixes = map[string]struct{}{}

func init() {
	for _, suffix := range []string{
		"co.uk", "org.uk", "ac.uk", "gov.uk", "nhs.uk", "police.uk", "mod.uk",
		"com.au", "net.au", "org.au", "edu.au", "gov.au",
		"co.nz", "org.nz", "net.nz", "ac.nz", "govt.nz",
		"co.jp", "ne.jp", "or.jp", "ac.jp", "go.jp",
		"co.in", "net.in", "org.in", "ac.in", "gov.in",
		"co.za", "org.za", "gov.za", "ac.za",
		"com.my", "net.my", "org.my", "edu.my", "gov.my",
		"com.sg", "net.sg", "org.sg", "edu.sg", "gov.sg",
		"co.id", "net.id", "or.id", "ac.id", "go.id",
		"co.th", "or.th", "ac.th", "go.th", "net.th",
		"com.ph", "net.ph", "org.ph", "edu.ph", "gov.ph",
		"co.il", "org.il", "net.il", "ac.il", "gov.il",
		"com.br", "net.br", "org.br", "edu.br", "gov.br",
		"co.kr", "ne.kr", "or.kr", "ac.kr", "go.kr", "re.kr",
	} {
		multiPartSuffixes[suffix] = struct{}{}
	}
}

// RootDomain derives the registrable root domain from a hostname:
// web.whatsapp.com -> whatsapp.com, api.example.co.uk -> example.co.uk.
// localhost and bare labels are returned unchanged. Pure function.
func RootDomain(hostname string) string {
	if hostname == "localhost" {
		return hostname
	}

	parts := strings.Split(hostname, ".")
	if len(parts) < 2 {
		return hostname
	}

	lastTwo := strings.Join(parts[len(parts)-2:], ".")
	if _, ok := multiPartSuffixes[lastTwo]; ok && len(parts) >= 3 {
		return strings.Join(parts[len(parts)-3:], ".")
	}

	return lastTwo
}
