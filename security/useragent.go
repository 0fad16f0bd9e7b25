package security

import "strings"

// UAVerdict is the outcome of the user-agent gate
type UAVerdict struct {
	Allowed bool
	Crawler bool   // matched the known-good crawler allow-list
	Reason  string // set when blocked
}

// Block reasons
const (
	UAReasonMissing    = "missing"
	UAReasonAutomation = "automation"
	UAReasonNotBrowser = "not_a_browser"
)

// Known good crawlers, search engines and link-preview bots. A match here
// bypasses the remaining user-agent checks only, not the rest of the
// pipeline.
var allowedCrawlerSignatures = []string{
	"googlebot",
	"bingbot",
	"duckduckbot",
	"slurp",
	"baiduspider",
	"yandexbot",
	"applebot",
	"facebookexternalhit",
	"twitterbot",
	"linkedinbot",
	"whatsapp",
	"telegrambot",
	"discordbot",
	"slackbot",
}

// Automation tools and scanners that never belong on a portfolio site
var blockedAutomationSignatures = []string{
	"curl",
	"wget",
	"python-requests",
	"python-urllib",
	"go-http-client",
	"java/",
	"libwww",
	"okhttp",
	"httpclient",
	"scrapy",
	"aiohttp",
	"postmanruntime",
	"insomnia",
	"sqlmap",
	"nikto",
	"nmap",
	"masscan",
	"nuclei",
	"gobuster",
	"dirbuster",
	"zgrab",
}

// Tokens a real browser user-agent is expected to carry
var browserTokens = []string{
	"mozilla",
	"chrome",
	"safari",
	"firefox",
	"edge",
	"edg/",
	"opera",
	"opr/",
}

// CheckUserAgent decides whether a user-agent looks like a real browser or a
// known good crawler. Empty agents, automation tools and strings without any
// recognized browser token are blocked.
func CheckUserAgent(userAgent string) UAVerdict {
	ua := strings.ToLower(strings.TrimSpace(userAgent))
	if ua == "" {
		return UAVerdict{Reason: UAReasonMissing}
	}

	for _, signature := range allowedCrawlerSignatures {
		if strings.Contains(ua, signature) {
			return UAVerdict{Allowed: true, Crawler: true}
		}
	}

	for _, signature := range blockedAutomationSignatures {
		if strings.Contains(ua, signature) {
			return UAVerdict{Reason: UAReasonAutomation}
		}
	}

	for _, token := range browserTokens {
		if strings.Contains(ua, token) {
			return UAVerdict{Allowed: true}
		}
	}

	return UAVerdict{Reason: UAReasonNotBrowser}
}
