package checkout

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SignatureHeader is the header the payment provider signs webhook
// deliveries with, in the form "t=<unix>,v1=<hex hmac>".
const SignatureHeader = "Billing-Signature"

var (
	ErrSignatureInvalid = errors.New("checkout: webhook signature invalid")
	ErrSignatureExpired = errors.New("checkout: webhook timestamp outside tolerance")
)

// VerifySignature checks header against the HMAC-SHA256 of
// "<timestamp>.<body>" under secret. The comparison is constant time
// and the signed timestamp must be within tolerance of now. The body
// must be the untouched request bytes; the signature is byte
// sensitive.
func VerifySignature(secret string, header string, body []byte, tolerance time.Duration, now time.Time) error {
	ts, sig, err := parseSignatureHeader(header)
	if err != nil {
		return err
	}

	if tolerance > 0 {
		signedAt := time.Unix(ts, 0)
		if signedAt.Before(now.Add(-tolerance)) || signedAt.After(now.Add(tolerance)) {
			return ErrSignatureExpired
		}
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(body)
	expected := mac.Sum(nil)

	provided, err := hex.DecodeString(sig)
	if err != nil {
		return ErrSignatureInvalid
	}

	if subtle.ConstantTimeCompare(expected, provided) != 1 {
		return ErrSignatureInvalid
	}

	return nil
}

// Sign produces a header value VerifySignature accepts. Used by tests
// and local tooling.
func Sign(secret string, body []byte, at time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", at.Unix())
	mac.Write(body)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func parseSignatureHeader(header string) (int64, string, error) {
	var ts int64
	var sig string

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", ErrSignatureInvalid
			}
			ts = parsed
		case "v1":
			sig = v
		}
	}

	if ts == 0 || sig == "" {
		return 0, "", ErrSignatureInvalid
	}

	return ts, sig, nil
}
