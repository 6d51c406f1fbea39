// Package digest implements the Digest access authentication parameters used
// by SIP authentication headers (RFC 2617, RFC 7616, RFC 3261 Section 22).
//
// [ParseChallenge] and [ParseCredentials] parse the parameter list that
// follows the "Digest" scheme token of WWW-Authenticate/Proxy-Authenticate and
// Authorization/Proxy-Authorization headers respectively. Parameters unknown to
// the scheme are kept in the Params field in the order they were seen.
//
// [Credentials.ComputeHash] computes the request-digest for MD5 (the default),
// SHA-256 and SHA-512-256 algorithms and their "-sess" variants, with or without
// "auth"/"auth-int" quality of protection:
//
//	crd, _ := digest.ParseCredentials(`username="bob", realm="biloxi.com", ...`)
//	resp, err := crd.ComputeHash("INVITE", "zanzibar", nil)
package digest
