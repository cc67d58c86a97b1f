package amazon

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"sort"
	"strings"
	"time"
)

const (
	algorithm     = "AWS4-HMAC-SHA256"
	serviceName   = "ProductAdvertisingAPI"
	apiPath       = "/Products/2020-08-26"
	amzDateFormat = "20060102T150405Z"
	dateFormat    = "20060102"
)

// signedHeaderNames is the fixed header set covered by the signature, sorted.
var signedHeaderNames = []string{
	"content-encoding",
	"content-type",
	"host",
	"x-amz-access-token",
	"x-amz-date",
	"x-amz-target",
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// SigningKey derives the day, region and service scoped key from the secret.
func SigningKey(secret, date, region, service string) []byte {
	kDate := hmacSHA256([]byte("AWS4"+secret), date)
	kRegion := hmacSHA256(kDate, region)
	kService := hmacSHA256(kRegion, service)
	return hmacSHA256(kService, "aws4_request")
}

// canonicalRequest returns the canonical request and the signed header list.
// headers must be keyed by lower-case name.
func canonicalRequest(method, path string, headers map[string]string, payloadHash string) (string, string) {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(headers[name]))
		b.WriteByte('\n')
	}
	signed := strings.Join(names, ";")

	return strings.Join([]string{method, path, "", b.String(), signed, payloadHash}, "\n"), signed
}

func credentialScope(date, region, service string) string {
	return date + "/" + region + "/" + service + "/aws4_request"
}

func stringToSign(amzDate, scope, canonical string) string {
	return algorithm + "\n" + amzDate + "\n" + scope + "\n" + sha256Hex([]byte(canonical))
}

// signRequest stamps x-amz-date and the Authorization header onto r.
func signRequest(r *http.Request, payload []byte, accessKey, secretKey, region string, t time.Time) {
	t = t.UTC()
	amzDate := t.Format(amzDateFormat)
	date := t.Format(dateFormat)
	r.Header.Set("X-Amz-Date", amzDate)

	headers := make(map[string]string, len(signedHeaderNames))
	for _, name := range signedHeaderNames {
		if name == "host" {
			headers[name] = hostOf(r)
			continue
		}
		headers[name] = r.Header.Get(name)
	}

	canonical, signed := canonicalRequest(r.Method, r.URL.EscapedPath(), headers, sha256Hex(payload))
	scope := credentialScope(date, region, serviceName)
	signature := hex.EncodeToString(hmacSHA256(SigningKey(secretKey, date, region, serviceName), stringToSign(amzDate, scope, canonical)))

	r.Header.Set("Authorization", algorithm+" Credential="+accessKey+"/"+scope+", SignedHeaders="+signed+", Signature="+signature)
}

func hostOf(r *http.Request) string {
	if r.Host != "" {
		return r.Host
	}
	return r.URL.Host
}
