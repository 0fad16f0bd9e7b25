package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckUserAgentBrowsers(t *testing.T) {
	browsers := []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) Version/17.0 Safari/605.1.15",
		"Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
	}
	for _, ua := range browsers {
		verdict := CheckUserAgent(ua)
		assert.True(t, verdict.Allowed, "expected %q to pass", ua)
		assert.False(t, verdict.Crawler)
	}
}

func TestCheckUserAgentAutomationBlocked(t *testing.T) {
	tools := []string{
		"curl/7.68.0",
		"Wget/1.21.2",
		"python-requests/2.31.0",
		"Go-http-client/2.0",
		"sqlmap/1.7",
		"PostmanRuntime/7.35.0",
	}
	for _, ua := range tools {
		verdict := CheckUserAgent(ua)
		assert.False(t, verdict.Allowed, "expected %q to be blocked", ua)
		assert.Equal(t, UAReasonAutomation, verdict.Reason)
	}
}

func TestCheckUserAgentCrawlerAllowlist(t *testing.T) {
	crawlers := []string{
		"Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)",
		"Mozilla/5.0 (compatible; bingbot/2.0)",
		"Twitterbot/1.0",
		"Slackbot-LinkExpanding 1.0",
	}
	for _, ua := range crawlers {
		verdict := CheckUserAgent(ua)
		assert.True(t, verdict.Allowed, "expected %q to pass", ua)
		assert.True(t, verdict.Crawler)
	}
}

func TestCheckUserAgentMissingOrUnrecognized(t *testing.T) {
	verdict := CheckUserAgent("")
	assert.False(t, verdict.Allowed)
	assert.Equal(t, UAReasonMissing, verdict.Reason)

	verdict = CheckUserAgent("   ")
	assert.False(t, verdict.Allowed)
	assert.Equal(t, UAReasonMissing, verdict.Reason)

	verdict = CheckUserAgent("TotallyLegitClient/1.0")
	assert.False(t, verdict.Allowed)
	assert.Equal(t, UAReasonNotBrowser, verdict.Reason)
}
