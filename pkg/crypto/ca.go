package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	mrand "math/rand"
	"time"
)

// generateKeyPair generates a CA key pair and certificate using the provided seed.
// The seed makes certificate generation deterministic for the same key.
// Returns PEM-encoded private key and certificate.
func generateKeyPair(seed string) ([]byte, []byte, error) {
	key, err := generateCAKey(seed)
	if err != nil {
		return nil, nil, fmt.Errorf("generateKey(%s): %s", seed, err)
	}

	cert, err := generateCACertificate(key, seed)
	if err != nil {
		return nil, nil, fmt.Errorf("generateCertificate(key): %s", err)
	}

	certPem := pem.EncodeToMemory(&pem.Block{
		Type:  "CERTIFICATE",
		Bytes: cert,
	})

	b, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to marshal ECDSA private key: %v", err)
	}
	keyPem := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: b})

	return keyPem, certPem, nil
}

// generateCAKey generates an ECDSA P256 private key using the provided seed.
func generateCAKey(seed string) (*ecdsa.PrivateKey, error) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), getRandReader(seed))
	if err != nil {
		return nil, err
	}

	return priv, nil
}

// certValidity is how long an eyeball-minted certificate remains valid.
// Peers only ever compare certificates against the shared seed, never
// against wall-clock trust anchors, so this just needs to outlive any
// single connector's lifetime.
const certValidity = 10 * 365 * 24 * time.Hour

// generateCACertificate creates a self-signed CA certificate using the provided private key and seed.
// The certificate has random Common Name and Organization fields derived from the seed.
func generateCACertificate(key *ecdsa.PrivateKey, seed string) ([]byte, error) {
	rng := getRandReader(seed)

	cn, err := generateRandomString(8, rng)
	if err != nil {
		return nil, fmt.Errorf("generating random common name: %s", err)
	}

	org, err := generateRandomString(8, rng)
	if err != nil {
		return nil, fmt.Errorf("generating random organization: %s", err)
	}

	now := time.Now()
	tml := x509.Certificate{
		NotBefore:    now.Add(-time.Hour),
		NotAfter:     now.Add(certValidity),
		SerialNumber: big.NewInt(mrand.Int63()),
		Subject: pkix.Name{
			CommonName:   "eyeball-ca-" + cn,
			Organization: []string{"eyeballnet/" + org},
		},
		BasicConstraintsValid: true,
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	cert, err := x509.CreateCertificate(rand.Reader, &tml, &tml, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("creating certificate: %s", err)
	}

	return cert, nil
}
