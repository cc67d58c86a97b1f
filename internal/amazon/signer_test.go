package amazon

import (
	"context"
	"encoding/hex"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSigningKey_KnownAnswer(t *testing.T) {
	key := SigningKey("wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY", "20120215", "us-east-1", "iam")
	assert.Equal(t, "f4780e2d9f65fa895f9c67b32ce1baf0b0d8a43505a000a1a9e090d414db404d", hex.EncodeToString(key))
}

func TestSigningKey_Deterministic(t *testing.T) {
	inputs := []struct{ secret, date, region, service string }{
		{"secret", "20240101", "eu-west-1", serviceName},
		{"another-secret", "20251231", "us-east-1", serviceName},
		{"", "20200229", "eu-west-1", "s3"},
	}

	for _, in := range inputs {
		first := SigningKey(in.secret, in.date, in.region, in.service)
		second := SigningKey(in.secret, in.date, in.region, in.service)
		assert.Equal(t, first, second)
		assert.Len(t, first, 32)
	}

	assert.NotEqual(t,
		SigningKey("secret", "20240101", "eu-west-1", serviceName),
		SigningKey("secret", "20240102", "eu-west-1", serviceName),
	)
}

func TestCanonicalRequest(t *testing.T) {
	headers := map[string]string{
		"x-amz-target": "com.amazon.paapi.v2020-08-26.GetItems",
		"host":         "webservices.amazon.in",
		"content-type": " application/json; charset=utf-8 ",
	}

	canonical, signed := canonicalRequest("POST", apiPath, headers, "abc")

	assert.Equal(t, "content-type;host;x-amz-target", signed)
	assert.Equal(t, "POST\n/Products/2020-08-26\n\n"+
		"content-type:application/json; charset=utf-8\n"+
		"host:webservices.amazon.in\n"+
		"x-amz-target:com.amazon.paapi.v2020-08-26.GetItems\n"+
		"\ncontent-type;host;x-amz-target\nabc", canonical)
}

func newSignableRequest(t *testing.T) *http.Request {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, "https://webservices.amazon.in"+apiPath, nil)
	require.NoError(t, err)
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("X-Amz-Target", targetGetItems)
	req.Header.Set("X-Amz-Access-Token", "AKIDEXAMPLE")
	return req
}

func TestSignRequest_MatchesSDKSigner(t *testing.T) {
	payload := []byte(`{"ItemIds":["B08N5WRWNW"],"PartnerTag":"bachat-21","PartnerType":"Associates"}`)
	signingTime := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	ours := newSignableRequest(t)
	signRequest(ours, payload, "AKIDEXAMPLE", "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY", "eu-west-1", signingTime)

	theirs := newSignableRequest(t)
	err := v4.NewSigner().SignHTTP(context.Background(),
		aws.Credentials{AccessKeyID: "AKIDEXAMPLE", SecretAccessKey: "wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY"},
		theirs, sha256Hex(payload), serviceName, "eu-west-1", signingTime,
	)
	require.NoError(t, err)

	assert.Equal(t, theirs.Header.Get("X-Amz-Date"), ours.Header.Get("X-Amz-Date"))
	assert.Equal(t, theirs.Header.Get("Authorization"), ours.Header.Get("Authorization"))
}

func TestSignRequest_AuthorizationLayout(t *testing.T) {
	req := newSignableRequest(t)
	signRequest(req, []byte("{}"), "AKIDEXAMPLE", "secret", "eu-west-1", time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

	auth := req.Header.Get("Authorization")
	assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20240102/eu-west-1/ProductAdvertisingAPI/aws4_request, "))
	assert.Contains(t, auth, "SignedHeaders=content-encoding;content-type;host;x-amz-access-token;x-amz-date;x-amz-target, ")
	assert.Regexp(t, `Signature=[0-9a-f]{64}$`, auth)
	assert.Equal(t, "20240102T030405Z", req.Header.Get("X-Amz-Date"))
}
