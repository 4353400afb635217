// Package traffic turns live-connection samples into classified flows.
package traffic

import (
	"strconv"
	"strings"
)

// prefixRule maps a literal leading address substring to a service name.
type prefixRule struct {
	Prefix  string
	Service string
}

// portRule maps a destination port to a protocol label.
type portRule struct {
	Port  int
	Label string
}

// defaultPrefixRules is scanned top to bottom and the first match wins.
// Order is load-bearing: several blocks appear twice, once under a specific
// service and again under a generic cloud fallback, and the displayed label
// depends on which entry comes first. Do not reorder or dedupe.
var defaultPrefixRules = []prefixRule{
	{"142.250.", "google"},
	{"172.217.", "google"},
	{"216.58.", "google"},
	{"8.8.8.", "google dns"},
	{"8.8.4.", "google dns"},
	{"142.250.10.", "google cloud"}, // shadowed by 142.250. above, kept on purpose
	{"17.", "apple"},
	{"23.246.", "netflix"},
	{"45.57.", "netflix"},
	{"108.175.", "netflix"},
	{"31.13.", "meta"},
	{"157.240.", "meta"},
	{"104.16.", "cloudflare"},
	{"104.17.", "cloudflare"},
	{"1.1.1.", "cloudflare dns"},
	{"151.101.", "fastly"},
	{"185.199.", "github pages"},
	{"140.82.", "github"},
	{"13.", "aws"},
	{"18.", "aws"},
	{"52.", "aws"},
	{"54.", "aws"},
	{"3.", "aws"},
	{"20.", "azure"},
	{"40.", "azure"},
	{"52.", "azure"}, // same block as aws above; first declaration wins
	{"34.", "google cloud"},
	{"35.", "google cloud"},
	{"239.255.255.250", "ssdp"},
}

var defaultPortRules = []portRule{
	{443, "HTTPS"},
	{80, "HTTP"},
	{53, "DNS"},
	{853, "DNS-TLS"},
	{22, "SSH"},
	{123, "NTP"},
	{993, "IMAPS"},
	{587, "SMTP"},
	{1900, "SSDP"},
	{3478, "STUN"},
	{5228, "GOOGLE PUSH"},
	{8883, "MQTT"},
}

// TagOther marks a flow that matched neither rule table.
const TagOther = "other"

// Classifier labels destination endpoints from two immutable ordered rule
// tables. Classification is pure: same input, same output, no state.
type Classifier struct {
	prefixes []prefixRule
	ports    []portRule
}

// NewClassifier builds a classifier over the default rule tables.
func NewClassifier() *Classifier {
	return &Classifier{prefixes: defaultPrefixRules, ports: defaultPortRules}
}

// Classify maps a destination (address, port) to a display label and tag.
// Address prefixes are checked first in declaration order, then the port
// table; an unmatched flow is labeled with its literal port number.
func (c *Classifier) Classify(addr string, port int) (label, tag string) {
	for _, rule := range c.prefixes {
		if strings.HasPrefix(addr, rule.Prefix) {
			return strings.ToUpper(rule.Service), slug(rule.Service)
		}
	}
	for _, rule := range c.ports {
		if rule.Port == port {
			return rule.Label, slug(rule.Label)
		}
	}
	return "PORT " + strconv.Itoa(port), TagOther
}

func slug(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "-")
}
