package middleware

import (
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"digitaltwin/database"
	"digitaltwin/security"
)

// AttackSink receives attack records detected by the ingress pipeline
type AttackSink interface {
	Insert(record *database.AttackRecord) error
}

// Enricher resolves geo fields for an inserted record without blocking
type Enricher interface {
	Enrich(recordID int64, ip string)
}

// IngressConfig carries the ingress pipeline's collaborators and policy
type IngressConfig struct {
	Sink     AttackSink
	Enricher Enricher
	Engine   security.Engine

	// FailClosed blocks traffic when the decision engine is unreachable.
	// Default is fail-open: a firewall outage should not take the site down.
	FailClosed bool
}

// Severities assigned per verdict category
const (
	severityBot       = 3
	severityGeneric   = 5
	severityRateLimit = 6
	severityShield    = 8
)

// IngressFilter is the single per-request firewall pipeline:
// user-agent check, then pattern scan, then the decision engine. Any denial
// writes an attack record before the response goes out so the dashboard
// reflects it immediately.
func IngressFilter(cfg IngressConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if clientIP == "" {
			clientIP = database.UnknownIP
		}

		// Stage 1: does the client look like a real browser? Known good
		// crawlers bypass this stage only.
		verdict := security.CheckUserAgent(c.GetHeader("User-Agent"))
		if !verdict.Allowed {
			recordAttack(cfg, clientIP, database.AttackTypeBotDetected, severityBot)
			respondForbidden(c, "Automated clients are not permitted")
			return
		}

		// Stage 2: scan URL and headers for injection signatures. A
		// confirmed signature is unambiguous, so the decision engine is
		// never consulted on this path.
		if match, ok := security.DetectAny(scanInputs(c)...); ok {
			recordAttack(cfg, clientIP, match.Type, match.Severity)
			respondForbidden(c, "Request blocked by security policy")
			return
		}

		// Stage 3: delegate to the decision engine
		decision, err := cfg.Engine.Evaluate(c.Request.Context(), security.RequestInfo{
			IP:        clientIP,
			Method:    c.Request.Method,
			Path:      c.Request.URL.Path,
			UserAgent: c.GetHeader("User-Agent"),
		})
		if err != nil {
			log.Printf("Decision engine unavailable: %v", err)
			if cfg.FailClosed {
				respondForbidden(c, "Request blocked by security policy")
				return
			}
			c.Next()
			return
		}

		switch decision.Category {
		case security.CategoryAllow:
			c.Next()

		case security.CategoryRateLimit:
			recordAttack(cfg, clientIP, database.AttackTypeRateLimit, severityRateLimit)
			respondRateLimited(c, decision.RetryAfter)

		case security.CategoryBot:
			recordAttack(cfg, clientIP, database.AttackTypeBotDetected, severityBot)
			respondForbidden(c, "Automated clients are not permitted")

		case security.CategoryShield:
			recordAttack(cfg, clientIP, database.AttackTypeShieldPrefix+decision.Subtype, severityShield)
			respondForbidden(c, "Request blocked by security policy")

		default:
			recordAttack(cfg, clientIP, database.AttackTypeWAFDenied, severityGeneric)
			respondForbidden(c, "Request blocked by security policy")
		}
	}
}

// recordAttack inserts synchronously, then kicks off geo enrichment in the
// background. An insert failure is logged and swallowed: the firewall's own
// bookkeeping must never break request handling.
func recordAttack(cfg IngressConfig, ip, attackType string, severity int) {
	record := &database.AttackRecord{
		IP:       ip,
		Type:     attackType,
		Severity: severity,
	}
	if err := cfg.Sink.Insert(record); err != nil {
		log.Printf("Failed to record attack %s from %s: %v", attackType, ip, err)
		return
	}
	if cfg.Enricher != nil {
		cfg.Enricher.Enrich(record.ID, ip)
	}
}

// scanInputs collects the request strings the pattern detector inspects:
// the raw and decoded request URI plus header values. Authorization and
// Cookie values are excluded from the scan.
func scanInputs(c *gin.Context) []string {
	inputs := make([]string, 0, 8)

	rawURI := c.Request.URL.RequestURI()
	inputs = append(inputs, rawURI)
	if decoded, err := url.QueryUnescape(rawURI); err == nil && decoded != rawURI {
		inputs = append(inputs, decoded)
	}

	for key, values := range c.Request.Header {
		if strings.EqualFold(key, "Authorization") || strings.EqualFold(key, "Cookie") {
			continue
		}
		inputs = append(inputs, values...)
	}

	return inputs
}

func respondForbidden(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"error":   "Forbidden",
		"message": message,
	})
}

func respondRateLimited(c *gin.Context, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	trackingID := uuid.NewString()
	c.Header("Retry-After", strconv.Itoa(retryAfter))
	c.Header("Content-Type", "text/html; charset=utf-8")
	body := fmt.Sprintf(
		"<html><head><title>429 Too Many Requests</title></head>"+
			"<body><h1>Too Many Requests</h1>"+
			"<p>You have sent too many requests. Try again in %d seconds.</p>"+
			"<p>Tracking ID: %s</p></body></html>",
		retryAfter, trackingID,
	)
	c.String(http.StatusTooManyRequests, body)
	c.Abort()
}
