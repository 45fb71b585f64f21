package scrape

import (
	"net/http"
	"strings"
)

// BlockType describes the kind of anti-bot response detected.
type BlockType string

const (
	BlockNone       BlockType = ""
	BlockCloudflare BlockType = "cloudflare"
	BlockCaptcha    BlockType = "captcha"
	BlockJSShell    BlockType = "js_shell"
)

// interstitialMax is the body size under which a page is small enough to be
// a challenge interstitial rather than a real page that embeds a widget.
const interstitialMax = 16 * 1024

// DetectBlock reports whether a response is an anti-bot page instead of
// site content. Contact forms often embed reCAPTCHA, so captcha markers
// only count on small pages or refusal statuses.
func DetectBlock(resp *http.Response, body []byte) (bool, BlockType) {
	if resp == nil {
		return false, BlockNone
	}

	refused := resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusTooManyRequests ||
		resp.StatusCode == http.StatusServiceUnavailable

	if refused && (resp.Header.Get("cf-ray") != "" ||
		resp.Header.Get("cf-mitigated") != "" ||
		strings.EqualFold(resp.Header.Get("server"), "cloudflare")) {
		return true, BlockCloudflare
	}

	lower := strings.ToLower(string(body))
	small := len(body) < interstitialMax

	if strings.Contains(lower, "cf-browser-verification") ||
		(small && strings.Contains(lower, "checking your browser")) ||
		(small && strings.Contains(lower, "just a moment") && strings.Contains(lower, "cloudflare")) {
		return true, BlockCloudflare
	}

	if (small || refused) && (strings.Contains(lower, "captcha") ||
		strings.Contains(lower, "are you a robot") ||
		strings.Contains(lower, "verify you are human")) {
		return true, BlockCaptcha
	}

	if len(body) < 2000 {
		if strings.Contains(lower, "<noscript") && strings.Contains(lower, "enable javascript") {
			return true, BlockJSShell
		}
	}

	return false, BlockNone
}
